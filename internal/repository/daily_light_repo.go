package repository

import (
	"context"
	"errors"
	"time"

	"alchemy_webapp/internal/kv"
)

// счётчик живёт двое суток, чтобы пережить смену даты в любом часовом поясе
const dailyLightTTL = 48 * time.Hour

type DailyLightRepository struct {
	store kv.Store
}

func NewDailyLightRepository(store kv.Store) *DailyLightRepository {
	return &DailyLightRepository{store: store}
}

// Sent returns how much light userID has gifted on day (UTC).
func (r *DailyLightRepository) Sent(ctx context.Context, userID int64, day time.Time) (int64, error) {
	var n int64
	if err := kv.GetJSON(ctx, r.store, kv.DailyLightKey(userID, day), &n); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// Reserve adds amount to the day counter unless that would pass limit.
// It returns the new total.
func (r *DailyLightRepository) Reserve(ctx context.Context, userID int64, day time.Time, amount, limit int64) (int64, error) {
	return kv.UpdateJSON(ctx, r.store, kv.DailyLightKey(userID, day), dailyLightTTL, func(n *int64, _ bool) error {
		if *n+amount > limit {
			return ErrDailyLimitExceeded
		}
		*n += amount
		return nil
	})
}

// Release returns a reservation after a failed transfer.
func (r *DailyLightRepository) Release(ctx context.Context, userID int64, day time.Time, amount int64) error {
	_, err := kv.UpdateJSON(ctx, r.store, kv.DailyLightKey(userID, day), dailyLightTTL, func(n *int64, exists bool) error {
		if !exists {
			return kv.ErrNoChange
		}
		*n -= amount
		if *n < 0 {
			*n = 0
		}
		return nil
	})
	return err
}
