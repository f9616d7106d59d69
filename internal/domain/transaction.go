package domain

import "time"

type TxType string

const (
	TxWelcome       TxType = "welcome"
	TxMissionReward TxType = "mission_reward"
	TxMissionUnlock TxType = "mission_unlock"
	TxGiftSent      TxType = "gift_sent"
	TxGiftReceived  TxType = "gift_received"
	TxReferralBonus TxType = "referral_bonus"
	TxAdjustment    TxType = "adjustment"
	TxRefund        TxType = "refund"
)

// LightTransaction - запись в истории движения света. Amount со знаком.
type LightTransaction struct {
	ID             string         `json:"id"`
	UserID         int64          `json:"user_id"`
	Type           TxType         `json:"type"`
	Amount         int64          `json:"amount"`
	BalanceAfter   int64          `json:"balance_after"`
	CounterpartyID int64          `json:"counterparty_id,omitempty"`
	MissionID      string         `json:"mission_id,omitempty"`
	Meta           map[string]any `json:"meta,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// DailyLimitInfo - сколько света пользователь уже подарил сегодня
type DailyLimitInfo struct {
	DailySent      int64 `json:"daily_sent"`
	DailyLimit     int64 `json:"daily_limit"`
	RemainingToday int64 `json:"remaining_today"`
	CanSend        bool  `json:"can_send"`
}

func NewDailyLimitInfo(sent, limit int64) DailyLimitInfo {
	remaining := limit - sent
	if remaining < 0 {
		remaining = 0
	}
	return DailyLimitInfo{
		DailySent:      sent,
		DailyLimit:     limit,
		RemainingToday: remaining,
		CanSend:        remaining > 0,
	}
}
