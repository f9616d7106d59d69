package repository

import (
	"context"
	"errors"
	"time"

	"alchemy_webapp/internal/domain"
	"alchemy_webapp/internal/kv"
)

type ArtifactRepository struct {
	store kv.Store
}

func NewArtifactRepository(store kv.Store) *ArtifactRepository {
	return &ArtifactRepository{store: store}
}

func (r *ArtifactRepository) List(ctx context.Context, userID int64) ([]domain.UserArtifact, error) {
	var list []domain.UserArtifact
	if err := kv.GetJSON(ctx, r.store, kv.ArtifactsKey(userID), &list); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return []domain.UserArtifact{}, nil
		}
		return nil, err
	}
	return list, nil
}

func (r *ArtifactRepository) Has(ctx context.Context, userID int64, artifactID string) (bool, error) {
	list, err := r.List(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, a := range list {
		if a.ArtifactID == artifactID {
			return true, nil
		}
	}
	return false, nil
}

// Add выдаёт артефакт один раз; повторный вызов возвращает уже выданный и added=false
func (r *ArtifactRepository) Add(ctx context.Context, userID int64, artifactID, source string, now time.Time) (domain.UserArtifact, bool, error) {
	var (
		result domain.UserArtifact
		added  bool
	)
	_, err := kv.UpdateJSON(ctx, r.store, kv.ArtifactsKey(userID), 0, func(list *[]domain.UserArtifact, _ bool) error {
		for _, a := range *list {
			if a.ArtifactID == artifactID {
				result, added = a, false
				return kv.ErrNoChange
			}
		}
		result = domain.NewUserArtifact(userID, artifactID, source, now)
		added = true
		*list = append(*list, result)
		return nil
	})
	if err != nil {
		return domain.UserArtifact{}, false, err
	}
	return result, added, nil
}
