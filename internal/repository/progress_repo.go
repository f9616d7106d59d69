package repository

import (
	"context"
	"errors"
	"time"

	"alchemy_webapp/internal/domain"
	"alchemy_webapp/internal/kv"
)

// ProgressRepository keeps all mission progress of a user in one list under
// progress:<user_id>, so a single CAS covers any change to it.
type ProgressRepository struct {
	store kv.Store
}

func NewProgressRepository(store kv.Store) *ProgressRepository {
	return &ProgressRepository{store: store}
}

func (r *ProgressRepository) List(ctx context.Context, userID int64) ([]domain.MissionProgress, error) {
	var list []domain.MissionProgress
	if err := kv.GetJSON(ctx, r.store, kv.ProgressKey(userID), &list); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return []domain.MissionProgress{}, nil
		}
		return nil, err
	}
	for i := range list {
		list[i].Normalize()
	}
	return list, nil
}

func (r *ProgressRepository) Get(ctx context.Context, userID int64, missionID string) (*domain.MissionProgress, error) {
	list, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].MissionID == missionID {
			return &list[i], nil
		}
	}
	return nil, ErrProgressNotFound
}

// Upsert creates the record lazily (not_started, totalSteps) and lets fn
// change it. fn may return kv.ErrNoChange to keep the stored value.
func (r *ProgressRepository) Upsert(
	ctx context.Context,
	userID int64,
	missionID string,
	totalSteps int,
	now time.Time,
	fn func(p *domain.MissionProgress, created bool) error,
) (domain.MissionProgress, error) {
	var result domain.MissionProgress

	_, err := kv.UpdateJSON(ctx, r.store, kv.ProgressKey(userID), 0, func(list *[]domain.MissionProgress, _ bool) error {
		idx := -1
		for i := range *list {
			if (*list)[i].MissionID == missionID {
				idx = i
				break
			}
		}

		created := idx < 0
		var p domain.MissionProgress
		if created {
			p = domain.NewMissionProgress(userID, missionID, totalSteps, now)
		} else {
			p = (*list)[idx]
		}

		if err := fn(&p, created); err != nil {
			if errors.Is(err, kv.ErrNoChange) {
				result = p
			}
			return err
		}
		p.Normalize()
		p.LastActivity = now

		if created {
			*list = append(*list, p)
		} else {
			(*list)[idx] = p
		}
		result = p
		return nil
	})
	if err != nil {
		return domain.MissionProgress{}, err
	}
	return result, nil
}
