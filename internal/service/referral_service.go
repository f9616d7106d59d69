package service

import (
	"context"
	"time"

	"alchemy_webapp/internal/config"
	"alchemy_webapp/internal/domain"
	"alchemy_webapp/internal/logger"
	"alchemy_webapp/internal/metrics"
)

// ReferralService pays the invite bonus once per pair of users.
type ReferralService struct {
	repos
	economy  config.Economy
	balance  *BalanceService
	notifier Notifier
	now      func() time.Time
}

type ReferralStats struct {
	Invited      int   `json:"invited"`
	ReferredBy   int64 `json:"referred_by,omitempty"`
	BonusPerUser int64 `json:"bonus_per_user"`
	TotalEarned  int64 `json:"total_earned"`
}

// Handle records that referrerID invited referredID and credits both of them.
// It returns false (without error) for self referral, unknown users and a
// pair that was already recorded in either direction.
func (s *ReferralService) Handle(ctx context.Context, referrerID, referredID int64) (bool, error) {
	log := logger.FromContext(ctx).With("referrer", referrerID, "referred", referredID)

	if referrerID <= 0 || referredID <= 0 || referrerID == referredID {
		metrics.Referrals.WithLabelValues("invalid").Inc()
		return false, nil
	}
	for _, id := range []int64{referrerID, referredID} {
		ok, err := s.users.Exists(ctx, id)
		if err != nil {
			return false, err
		}
		if !ok {
			metrics.Referrals.WithLabelValues("unknown_user").Inc()
			return false, nil
		}
	}

	_, recorded, err := s.referrals.Record(ctx, referrerID, referredID, s.now().UTC())
	if err != nil {
		if !recorded {
			return false, err
		}
		// пара уже занята нами, бонус всё равно выдаём
		log.Warn("referral list update failed", "error", err)
	}
	if !recorded {
		metrics.Referrals.WithLabelValues("duplicate").Inc()
		return false, nil
	}

	bonus := s.economy.ReferralBonus
	if bonus > 0 {
		if err := s.payBonus(ctx, referrerID, referredID, bonus); err != nil {
			// бонус не выдан - освобождаем пару, повторный вызов выдаст его заново
			if rerr := s.referrals.Remove(ctx, referrerID, referredID); rerr != nil {
				log.Error("failed to release referral pair", "error", rerr)
			}
			metrics.Referrals.WithLabelValues("error").Inc()
			return false, err
		}
	}
	if err := s.referrals.MarkBonusGiven(ctx, referrerID, referredID); err != nil {
		log.Warn("failed to mark referral bonus", "error", err)
	}

	metrics.Referrals.WithLabelValues("ok").Inc()
	now := s.now().UTC()
	for _, pair := range [][2]int64{{referrerID, referredID}, {referredID, referrerID}} {
		s.notifier.Notify(ctx, domain.Event{
			Type:      domain.EventReferralBonus,
			UserID:    pair[0],
			Data:      map[string]any{"amount": bonus, "friend_id": pair[1]},
			CreatedAt: now,
		})
	}
	log.Info("referral bonus granted", "bonus", bonus)
	return true, nil
}

// payBonus credits both sides; if the second credit fails the first one is taken back.
func (s *ReferralService) payBonus(ctx context.Context, referrerID, referredID, bonus int64) error {
	if _, err := s.balance.Credit(ctx, referrerID, bonus, txMeta{Type: domain.TxReferralBonus, CounterpartyID: referredID}); err != nil {
		return err
	}
	if _, err := s.balance.Credit(ctx, referredID, bonus, txMeta{Type: domain.TxReferralBonus, CounterpartyID: referrerID}); err != nil {
		rollback := txMeta{Type: domain.TxAdjustment, CounterpartyID: referredID, Extra: map[string]any{"reason": "referral_rollback"}}
		if _, rerr := s.balance.Debit(ctx, referrerID, bonus, rollback); rerr != nil {
			logger.FromContext(ctx).Error("failed to roll back referral bonus", "user_id", referrerID, "error", rerr)
		}
		return err
	}
	return nil
}

// List returns every referral the user takes part in.
func (s *ReferralService) List(ctx context.Context, userID int64) ([]domain.Referral, error) {
	return s.referrals.List(ctx, userID)
}

func (s *ReferralService) Stats(ctx context.Context, userID int64) (ReferralStats, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return ReferralStats{}, err
	}
	list, err := s.referrals.List(ctx, userID)
	if err != nil {
		return ReferralStats{}, err
	}
	st := ReferralStats{BonusPerUser: s.economy.ReferralBonus}
	for _, r := range list {
		if r.ReferrerUserID == userID {
			st.Invited++
		}
		if r.BonusGiven {
			st.TotalEarned += s.economy.ReferralBonus
		}
	}
	by, ok, err := s.referrals.ReferredBy(ctx, userID)
	if err != nil {
		return ReferralStats{}, err
	}
	if ok {
		st.ReferredBy = by
	}
	return st, nil
}

// Bonus - сколько света получает каждая сторона
func (s *ReferralService) Bonus() int64 { return s.economy.ReferralBonus }
