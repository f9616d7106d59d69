package handlers

import (
	"errors"
	"net/http"

	"alchemy_webapp/internal/http/middleware"
	"alchemy_webapp/internal/logger"
	"alchemy_webapp/internal/service"
	"alchemy_webapp/internal/telegram"

	"github.com/gin-gonic/gin"
)

// HandlerConfig holds configuration for handler
type HandlerConfig struct {
	BotUsername     string
	WebAppShortName string
}

type Handler struct {
	Services *service.Services
	cfg      HandlerConfig
}

func NewHandler(svc *service.Services, cfg HandlerConfig) *Handler {
	return &Handler{Services: svc, cfg: cfg}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (int64, bool) {
	return middleware.UserID(c)
}

// writeError maps service errors to HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "fields": service.FormatValidationError(err)})
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrSelfTransfer),
		errors.Is(err, service.ErrInsufficientLight),
		errors.Is(err, service.ErrDailyLimitExceeded),
		errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRecipientNotFound),
		errors.Is(err, service.ErrMissionNotFound),
		errors.Is(err, service.ErrProgressNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrMissionLocked):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, telegram.ErrInitDataTooLong),
		errors.Is(err, telegram.ErrMalformed),
		errors.Is(err, telegram.ErrNoUser):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, telegram.ErrMissingHash),
		errors.Is(err, telegram.ErrBadSignature),
		errors.Is(err, telegram.ErrStale):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or stale telegram data"})
	default:
		logger.FromContext(c.Request.Context()).Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
