package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type UpdateLightRequest struct {
	UserID *int64 `json:"userId"`
	Amount *int64 `json:"amount"`
}

// UpdateLight adjusts a user's light balance by amount (can be negative).
// The token owner may only change their own balance.
func (h *Handler) UpdateLight(c *gin.Context) {
	var req UpdateLightRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == nil || *req.UserID == 0 || req.Amount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId и amount обязательны"})
		return
	}

	tokenUser, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if tokenUser != *req.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	balance, err := h.Services.Balance.AdjustLight(c.Request.Context(), *req.UserID, *req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}

	message := "Свет потрачен"
	if *req.Amount > 0 {
		message = "Свет добавлен"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"newBalance": balance,
		"message":    message,
	})
}
