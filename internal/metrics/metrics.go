// Package metrics holds the business counters exported on /metrics.
// HTTP rate-limiter counters live next to the middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LightAmount sums light moved, by kind (mission_reward, gift_sent, ...).
	LightAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alchemy_light_amount_total",
		Help: "Total amount of light moved by kind",
	}, []string{"kind"})

	// LightOps counts balance operations by kind and result (ok, rejected, error).
	LightOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alchemy_light_operations_total",
		Help: "Light balance operations by kind and result",
	}, []string{"kind", "result"})

	MissionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alchemy_mission_events_total",
		Help: "Mission progress events (step, step_back, reset, complete, unlock)",
	}, []string{"event"})

	Referrals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alchemy_referrals_total",
		Help: "Referral attempts by result",
	}, []string{"result"})

	StoreFallback = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alchemy_kv_fallback_total",
		Help: "Times the app fell back to the in-memory store",
	})

	StoreBackend = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "alchemy_kv_backend",
		Help: "Active key-value backend (1 for the backend in use)",
	}, []string{"backend"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "alchemy_ws_connections",
		Help: "Open notification websocket connections",
	})

	BotUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alchemy_bot_updates_total",
		Help: "Telegram updates handled by the bot, by command or kind",
	}, []string{"kind"})
)
