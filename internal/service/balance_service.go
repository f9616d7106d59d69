package service

import (
	"context"
	"errors"
	"time"

	"alchemy_webapp/internal/config"
	"alchemy_webapp/internal/domain"
	"alchemy_webapp/internal/logger"
	"alchemy_webapp/internal/metrics"
)

// BalanceService handles all light balance operations
type BalanceService struct {
	repos
	economy  config.Economy
	notifier Notifier
	now      func() time.Time
}

// txMeta описывает операцию для истории
type txMeta struct {
	Type           domain.TxType
	CounterpartyID int64
	MissionID      string
	Extra          map[string]any
}

// GetBalance returns user's current balance
func (s *BalanceService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.LightBalance, nil
}

// CanAfford reports whether the user has at least amount light.
func (s *BalanceService) CanAfford(ctx context.Context, userID, amount int64) (bool, error) {
	balance, err := s.GetBalance(ctx, userID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

// Credit adds amount (> 0) to the user's balance.
func (s *BalanceService) Credit(ctx context.Context, userID, amount int64, meta txMeta) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.apply(ctx, userID, amount, meta)
}

// Debit deducts amount (> 0); fails with ErrInsufficientLight instead of going negative.
func (s *BalanceService) Debit(ctx context.Context, userID, amount int64, meta txMeta) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.apply(ctx, userID, -amount, meta)
}

// AdjustLight is the raw balance update used by POST /api/user/update-light
// and the admin bot: any delta, rejected when the result is negative. Zero
// changes nothing and returns the current balance.
func (s *BalanceService) AdjustLight(ctx context.Context, userID, amount int64) (int64, error) {
	if amount == 0 {
		return s.GetBalance(ctx, userID)
	}
	return s.apply(ctx, userID, amount, txMeta{Type: domain.TxAdjustment})
}

func (s *BalanceService) apply(ctx context.Context, userID, delta int64, meta txMeta) (int64, error) {
	u, err := s.users.AdjustBalance(ctx, userID, delta)
	if err != nil {
		result := "error"
		if errors.Is(err, ErrInsufficientLight) || errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrUserNotFound) {
			result = "rejected"
		}
		metrics.LightOps.WithLabelValues(string(meta.Type), result).Inc()
		return 0, err
	}
	s.record(ctx, userID, delta, u.LightBalance, meta)
	return u.LightBalance, nil
}

// record пишет историю, метрики и уведомление после уже применённого изменения баланса
func (s *BalanceService) record(ctx context.Context, userID, delta, balanceAfter int64, meta txMeta) {
	metrics.LightOps.WithLabelValues(string(meta.Type), "ok").Inc()
	if delta > 0 {
		metrics.LightAmount.WithLabelValues(string(meta.Type)).Add(float64(delta))
	} else {
		metrics.LightAmount.WithLabelValues(string(meta.Type)).Add(float64(-delta))
	}

	_, err := s.transactions.Create(ctx, domain.LightTransaction{
		UserID:         userID,
		Type:           meta.Type,
		Amount:         delta,
		BalanceAfter:   balanceAfter,
		CounterpartyID: meta.CounterpartyID,
		MissionID:      meta.MissionID,
		Meta:           meta.Extra,
		CreatedAt:      s.now().UTC(),
	})
	if err != nil {
		logger.FromContext(ctx).Warn("failed to write light ledger", "user_id", userID, "type", meta.Type, "error", err)
	}

	s.notifier.Notify(ctx, domain.Event{
		Type:   domain.EventBalanceChanged,
		UserID: userID,
		Data: map[string]any{
			"delta":   delta,
			"balance": balanceAfter,
			"reason":  string(meta.Type),
		},
		CreatedAt: s.now().UTC(),
	})
}

// DailyInfo returns today's gifting state for the user.
func (s *BalanceService) DailyInfo(ctx context.Context, userID int64) (domain.DailyLimitInfo, error) {
	sent, err := s.dailyLight.Sent(ctx, userID, s.now())
	if err != nil {
		return domain.DailyLimitInfo{}, err
	}
	return domain.NewDailyLimitInfo(sent, s.economy.DailyLightLimit), nil
}

// SendLight gifts amount from one user to another within the daily limit.
//
// The daily quota is reserved first and released on any later failure; the
// receiver is credited only after the sender has been debited, and the
// sender is refunded if that credit fails.
func (s *BalanceService) SendLight(ctx context.Context, fromID, toID, amount int64) (domain.DailyLimitInfo, error) {
	log := logger.FromContext(ctx).With("from", fromID, "to", toID, "amount", amount)

	if amount <= 0 {
		return domain.DailyLimitInfo{}, ErrInvalidAmount
	}
	if fromID == toID {
		return domain.DailyLimitInfo{}, ErrSelfTransfer
	}

	sender, err := s.users.Get(ctx, fromID)
	if err != nil {
		return domain.DailyLimitInfo{}, err
	}
	receiver, err := s.users.Get(ctx, toID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return domain.DailyLimitInfo{}, ErrRecipientNotFound
		}
		return domain.DailyLimitInfo{}, err
	}
	if sender.LightBalance < amount {
		metrics.LightOps.WithLabelValues(string(domain.TxGiftSent), "rejected").Inc()
		return domain.DailyLimitInfo{}, ErrInsufficientLight
	}

	day := s.now()
	total, err := s.dailyLight.Reserve(ctx, fromID, day, amount, s.economy.DailyLightLimit)
	if err != nil {
		if errors.Is(err, ErrDailyLimitExceeded) {
			metrics.LightOps.WithLabelValues(string(domain.TxGiftSent), "rejected").Inc()
		}
		return domain.DailyLimitInfo{}, err
	}

	if _, err := s.Debit(ctx, fromID, amount, txMeta{Type: domain.TxGiftSent, CounterpartyID: toID}); err != nil {
		if rerr := s.dailyLight.Release(ctx, fromID, day, amount); rerr != nil {
			log.Error("failed to release daily light reservation", "error", rerr)
		}
		return domain.DailyLimitInfo{}, err
	}

	if _, err := s.Credit(ctx, toID, amount, txMeta{Type: domain.TxGiftReceived, CounterpartyID: fromID}); err != nil {
		log.Error("credit to receiver failed, refunding sender", "error", err)
		if _, rerr := s.Credit(ctx, fromID, amount, txMeta{Type: domain.TxRefund, CounterpartyID: toID}); rerr != nil {
			log.Error("refund to sender failed", "error", rerr)
		}
		if rerr := s.dailyLight.Release(ctx, fromID, day, amount); rerr != nil {
			log.Error("failed to release daily light reservation", "error", rerr)
		}
		return domain.DailyLimitInfo{}, err
	}

	now := s.now().UTC()
	s.notifier.Notify(ctx, domain.Event{
		Type:   domain.EventLightReceived,
		UserID: toID,
		Data: map[string]any{
			"amount":    amount,
			"from_id":   fromID,
			"from_name": sender.DisplayName(),
		},
		CreatedAt: now,
	})
	s.notifier.Notify(ctx, domain.Event{
		Type:   domain.EventLightSent,
		UserID: fromID,
		Data: map[string]any{
			"amount":  amount,
			"to_id":   toID,
			"to_name": receiver.DisplayName(),
		},
		CreatedAt: now,
	})

	log.Info("light sent")
	return domain.NewDailyLimitInfo(total, s.economy.DailyLightLimit), nil
}

// History returns the latest ledger entries of the user.
func (s *BalanceService) History(ctx context.Context, userID int64, limit int) ([]domain.LightTransaction, error) {
	return s.transactions.GetByUserID(ctx, userID, limit)
}
