package repository

import (
	"context"
	"errors"

	"alchemy_webapp/internal/domain"
	"alchemy_webapp/internal/kv"

	"github.com/google/uuid"
)

// DefaultLedgerSize - сколько последних операций храним на пользователя
const DefaultLedgerSize = 100

// TransactionRepository keeps the light ledger of a user, newest first.
type TransactionRepository struct {
	store kv.Store
	size  int
}

func NewTransactionRepository(store kv.Store) *TransactionRepository {
	return &TransactionRepository{store: store, size: DefaultLedgerSize}
}

func (r *TransactionRepository) Create(ctx context.Context, tx domain.LightTransaction) (domain.LightTransaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	_, err := kv.UpdateJSON(ctx, r.store, kv.LedgerKey(tx.UserID), 0, func(list *[]domain.LightTransaction, _ bool) error {
		next := make([]domain.LightTransaction, 0, len(*list)+1)
		next = append(next, tx)
		next = append(next, *list...)
		if len(next) > r.size {
			next = next[:r.size]
		}
		*list = next
		return nil
	})
	if err != nil {
		return domain.LightTransaction{}, err
	}
	return tx, nil
}

// GetByUserID returns recent transactions for a user
func (r *TransactionRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.LightTransaction, error) {
	if limit <= 0 || limit > r.size {
		limit = r.size
	}
	var list []domain.LightTransaction
	if err := kv.GetJSON(ctx, r.store, kv.LedgerKey(userID), &list); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return []domain.LightTransaction{}, nil
		}
		return nil, err
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
