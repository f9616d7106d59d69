// Package kv is the key-value layer every record of the app lives in.
// Values are opaque bytes; typed access goes through GetJSON/SetJSON/UpdateJSON.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("kv: key not found")
	// ErrConflict is returned when an optimistic update kept losing the race.
	ErrConflict = errors.New("kv: too many concurrent updates")
	// ErrNoChange lets an UpdateJSON callback finish without writing.
	ErrNoChange = errors.New("kv: no change")
)

// UpdateFunc receives the current value and returns the next one.
// Returning a nil slice leaves the key untouched. The function may run
// more than once, so it must not have side effects outside its result.
type UpdateFunc func(cur []byte, exists bool) ([]byte, error)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes value; ttl 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX writes only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	// Update is an atomic read-modify-write of a single key.
	Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error
	Ping(ctx context.Context) error
	Close() error
	Backend() string
}

func GetJSON(ctx context.Context, s Store, key string, dst any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("kv: decode %s: %w", key, err)
	}
	return nil
}

func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv: encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw, ttl)
}

// SetNXJSON is SetNX for a JSON value.
func SetNXJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("kv: encode %s: %w", key, err)
	}
	return s.SetNX(ctx, key, raw, ttl)
}

// UpdateJSON decodes the current value into T (zero value when absent),
// lets fn mutate it and stores the result atomically. It returns the value
// as it was left by the winning attempt.
func UpdateJSON[T any](ctx context.Context, s Store, key string, ttl time.Duration, fn func(v *T, exists bool) error) (T, error) {
	var out T
	err := s.Update(ctx, key, ttl, func(cur []byte, exists bool) ([]byte, error) {
		var v T
		if exists {
			if err := json.Unmarshal(cur, &v); err != nil {
				return nil, fmt.Errorf("kv: decode %s: %w", key, err)
			}
		}
		if err := fn(&v, exists); err != nil {
			if errors.Is(err, ErrNoChange) {
				out = v
				return nil, nil
			}
			return nil, err
		}
		next, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("kv: encode %s: %w", key, err)
		}
		out = v
		return next, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
