package repository

import (
	"context"
	"errors"
	"math"
	"time"

	"alchemy_webapp/internal/domain"
	"alchemy_webapp/internal/kv"
)

type UserRepository struct {
	store kv.Store
}

func NewUserRepository(store kv.Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Get(ctx context.Context, userID int64) (*domain.User, error) {
	var u domain.User
	if err := kv.GetJSON(ctx, r.store, kv.UserKey(userID), &u); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Exists(ctx context.Context, userID int64) (bool, error) {
	_, err := r.Get(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Create stores a new user; a concurrent first open of the app loses with ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, u domain.User) error {
	ok, err := kv.SetNXJSON(ctx, r.store, kv.UserKey(u.ID), u, 0)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserExists
	}
	return nil
}

// Update применяет fn к пользователю атомарно и проставляет updated_at
func (r *UserRepository) Update(ctx context.Context, userID int64, fn func(u *domain.User) error) (*domain.User, error) {
	u, err := kv.UpdateJSON(ctx, r.store, kv.UserKey(userID), 0, func(u *domain.User, exists bool) error {
		if !exists {
			return ErrUserNotFound
		}
		if err := fn(u); err != nil {
			return err
		}
		u.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AdjustBalance adds delta (may be negative). The balance never goes below zero.
func (r *UserRepository) AdjustBalance(ctx context.Context, userID, delta int64) (*domain.User, error) {
	return r.Update(ctx, userID, func(u *domain.User) error {
		return ApplyLight(u, delta)
	})
}

// ApplyLight меняет баланс на delta внутри Update: без ухода в минус и без переполнения int64
func ApplyLight(u *domain.User, delta int64) error {
	if delta > 0 && u.LightBalance > math.MaxInt64-delta {
		return ErrInvalidAmount
	}
	if u.LightBalance+delta < 0 {
		return ErrInsufficientLight
	}
	u.LightBalance += delta
	return nil
}
