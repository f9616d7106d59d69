package http

import (
	"time"

	"alchemy_webapp/internal/config"
	"alchemy_webapp/internal/http/handlers"
	"alchemy_webapp/internal/http/middleware"
	"alchemy_webapp/internal/kv"
	"alchemy_webapp/internal/service"
	"alchemy_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// подарки света: не чаще 10 раз в минуту на пользователя
const (
	sendLightRateLimit  = 10
	sendLightRateWindow = time.Minute
)

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(cfg *config.Config, svc *service.Services, store kv.Store, hub *ws.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Metrics(), middleware.CORS(cfg.AllowedOrigin))
	RegisterRoutes(r, cfg, svc, store, hub)
	return r
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, svc *service.Services, store kv.Store, hub *ws.Hub) {
	h := handlers.NewHandler(svc, handlers.HandlerConfig{
		BotUsername:     cfg.BotUsername,
		WebAppShortName: cfg.WebAppShortName,
	})
	healthHandler := handlers.NewHealthHandler(store, cfg.Version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(api, h, cfg)

	// WebSocket notifications (light received, mission completed, ...)
	if hub != nil {
		r.GET("/ws", ws.HandleWS(hub, cfg.AllowedOrigin))
	}
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config) {
	// Auth
	api.POST("/auth", middleware.RedisRateLimitNamed("rl_auth", cfg.AuthRateLimit, cfg.AuthRateWindow), h.Auth)

	// Static content
	api.GET("/catalog/elements", h.Elements)
	api.GET("/catalog/elements/:id", h.Element)

	auth := api.Group("", middleware.JWT())

	// User context
	auth.GET("/me", h.Me)
	auth.GET("/me/progress", h.MyProgress)
	auth.GET("/me/artifacts", h.MyArtifacts)
	auth.GET("/me/history", h.MyHistory)
	auth.GET("/me/referrals", h.GetReferralStats)

	auth.POST("/user/update-light", h.UpdateLight)

	// Missions
	missions := auth.Group("/missions/:id")
	{
		missions.PATCH("/progress", h.UpdateProgress)
		missions.POST("/step", h.StepForward)
		missions.POST("/step-back", h.StepBack)
		missions.POST("/reset", h.ResetMission)
		missions.POST("/complete", h.CompleteMission)
		missions.POST("/unlock", h.UnlockMission)
	}

	// Light
	auth.POST("/light/send", middleware.UserRateLimit("light_send", sendLightRateLimit, sendLightRateWindow), h.SendLight)
	auth.GET("/light/daily", h.DailyLight)

	// Referral system
	referral := auth.Group("/referral")
	{
		referral.GET("/link", h.GetReferralLink)
		referral.GET("/stats", h.GetReferralStats)
		referral.POST("/apply", h.ApplyReferralCode)
	}
}
