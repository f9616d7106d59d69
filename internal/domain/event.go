package domain

import "time"

// Типы уведомлений, которые уходят в вебсокет
const (
	EventLightReceived    = "light_received"
	EventLightSent        = "light_sent"
	EventReferralBonus    = "referral_bonus"
	EventMissionCompleted = "mission_completed"
	EventMissionUnlocked  = "mission_unlocked"
	EventBalanceChanged   = "balance_changed"
)

type Event struct {
	Type      string         `json:"type"`
	UserID    int64          `json:"user_id"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
