package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SendLightRequest struct {
	ToUserID int64 `json:"to_user_id" binding:"required"`
	Amount   int64 `json:"amount" binding:"required"`
}

// SendLight gifts light to a friend within the daily limit.
func (h *Handler) SendLight(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req SendLightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to_user_id and amount are required"})
		return
	}

	ctx := c.Request.Context()
	info, err := h.Services.Balance.SendLight(ctx, userID, req.ToUserID, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	balance, err := h.Services.Balance.GetBalance(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"new_balance": balance,
		"daily":       info,
	})
}

func (h *Handler) DailyLight(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	info, err := h.Services.Balance.DailyInfo(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
