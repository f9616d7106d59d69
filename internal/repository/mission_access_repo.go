package repository

import (
	"context"
	"errors"
	"slices"

	"alchemy_webapp/internal/kv"
)

// MissionAccessRepository tracks which missions a user has unlocked
// (available_missions:<user_id>). A user without a record sees the defaults.
type MissionAccessRepository struct {
	store    kv.Store
	defaults []string
}

func NewMissionAccessRepository(store kv.Store, defaults []string) *MissionAccessRepository {
	return &MissionAccessRepository{store: store, defaults: append([]string(nil), defaults...)}
}

func (r *MissionAccessRepository) List(ctx context.Context, userID int64) ([]string, error) {
	var ids []string
	if err := kv.GetJSON(ctx, r.store, kv.AvailableMissionsKey(userID), &ids); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return append([]string(nil), r.defaults...), nil
		}
		return nil, err
	}
	return ids, nil
}

func (r *MissionAccessRepository) Has(ctx context.Context, userID int64, missionID string) (bool, error) {
	ids, err := r.List(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, missionID), nil
}

// Add reports added=false when the mission was already available.
func (r *MissionAccessRepository) Add(ctx context.Context, userID int64, missionID string) (bool, error) {
	added := false
	_, err := kv.UpdateJSON(ctx, r.store, kv.AvailableMissionsKey(userID), 0, func(ids *[]string, exists bool) error {
		if !exists {
			*ids = append([]string(nil), r.defaults...)
		}
		if slices.Contains(*ids, missionID) {
			added = false
			if exists {
				return kv.ErrNoChange
			}
			return nil
		}
		*ids = append(*ids, missionID)
		added = true
		return nil
	})
	return added, err
}

// Remove takes a mission back (used to undo a failed unlock).
func (r *MissionAccessRepository) Remove(ctx context.Context, userID int64, missionID string) error {
	_, err := kv.UpdateJSON(ctx, r.store, kv.AvailableMissionsKey(userID), 0, func(ids *[]string, exists bool) error {
		if !exists {
			return kv.ErrNoChange
		}
		*ids = slices.DeleteFunc(*ids, func(id string) bool { return id == missionID })
		return nil
	})
	return err
}
