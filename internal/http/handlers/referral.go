package handlers

import (
	"net/http"

	"alchemy_webapp/internal/telegram"

	"github.com/gin-gonic/gin"
)

// GetReferralLink returns the links a user shares to invite friends
func (h *Handler) GetReferralLink(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"link":         telegram.ReferralLink(h.cfg.BotUsername, userID),
		"web_app_link": telegram.MiniAppLink(h.cfg.BotUsername, h.cfg.WebAppShortName, userID),
		"payload":      telegram.ReferralPayload(userID),
	})
}

// GetReferralStats returns user's referral statistics
func (h *Handler) GetReferralStats(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	stats, err := h.Services.Referrals.Stats(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	referrals, err := h.Services.Referrals.List(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":     stats,
		"referrals": referrals,
	})
}

type ApplyReferralRequest struct {
	ReferrerID int64 `json:"referrer_id"`
	// Code - "ref_<id>" из ссылки
	Code string `json:"code"`
}

// ApplyReferralCode credits both users once per pair.
func (h *Handler) ApplyReferralCode(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req ApplyReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	referrerID := req.ReferrerID
	if referrerID == 0 {
		id, ok := telegram.ParseRefPayload(req.Code)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid referral code"})
			return
		}
		referrerID = id
	}
	if referrerID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot use your own code"})
		return
	}

	applied, err := h.Services.Referrals.Handle(c.Request.Context(), referrerID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !applied {
		c.JSON(http.StatusConflict, gin.H{"error": "referral already applied or unknown user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "referral applied successfully", "bonus": h.Services.Referrals.Bonus()})
}
