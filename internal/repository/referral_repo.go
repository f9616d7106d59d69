package repository

import (
	"context"
	"errors"
	"time"

	"alchemy_webapp/internal/domain"
	"alchemy_webapp/internal/kv"
)

// ReferralRepository stores each referral twice (in both users' lists) plus
// a pair marker ref:<lo>:<hi> that makes the pair unique in either direction.
type ReferralRepository struct {
	store kv.Store
}

func NewReferralRepository(store kv.Store) *ReferralRepository {
	return &ReferralRepository{store: store}
}

func (r *ReferralRepository) List(ctx context.Context, userID int64) ([]domain.Referral, error) {
	var list []domain.Referral
	if err := kv.GetJSON(ctx, r.store, kv.ReferralsKey(userID), &list); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return []domain.Referral{}, nil
		}
		return nil, err
	}
	return list, nil
}

// GetPair returns the referral between a and b in any direction.
func (r *ReferralRepository) GetPair(ctx context.Context, a, b int64) (*domain.Referral, error) {
	var ref domain.Referral
	if err := kv.GetJSON(ctx, r.store, kv.ReferralPairKey(a, b), &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// ReferredBy returns who invited userID, if anyone.
func (r *ReferralRepository) ReferredBy(ctx context.Context, userID int64) (int64, bool, error) {
	list, err := r.List(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	for _, ref := range list {
		if ref.ReferredUserID == userID {
			return ref.ReferrerUserID, true, nil
		}
	}
	return 0, false, nil
}

// Record claims the pair marker first. Only the caller that wins the SetNX
// gets recorded=true; every later call for the same pair is a no-op.
func (r *ReferralRepository) Record(ctx context.Context, referrerID, referredID int64, now time.Time) (domain.Referral, bool, error) {
	ref := domain.Referral{
		ReferrerUserID: referrerID,
		ReferredUserID: referredID,
		CreatedAt:      now,
	}
	ok, err := kv.SetNXJSON(ctx, r.store, kv.ReferralPairKey(referrerID, referredID), ref, 0)
	if err != nil {
		return domain.Referral{}, false, err
	}
	if !ok {
		return domain.Referral{}, false, nil
	}

	for _, uid := range []int64{referrerID, referredID} {
		if err := r.appendTo(ctx, uid, ref); err != nil {
			return ref, true, err
		}
	}
	return ref, true, nil
}

func (r *ReferralRepository) appendTo(ctx context.Context, userID int64, ref domain.Referral) error {
	_, err := kv.UpdateJSON(ctx, r.store, kv.ReferralsKey(userID), 0, func(list *[]domain.Referral, _ bool) error {
		for _, existing := range *list {
			if existing.Involves(ref.ReferrerUserID, ref.ReferredUserID) {
				return kv.ErrNoChange
			}
		}
		*list = append(*list, ref)
		return nil
	})
	return err
}

// Remove forgets the pair so it can be recorded again. The pair marker is
// deleted even when a list update fails.
func (r *ReferralRepository) Remove(ctx context.Context, a, b int64) error {
	var errs []error
	for _, uid := range []int64{a, b} {
		_, err := kv.UpdateJSON(ctx, r.store, kv.ReferralsKey(uid), 0, func(list *[]domain.Referral, exists bool) error {
			if !exists {
				return kv.ErrNoChange
			}
			kept := (*list)[:0]
			for _, ref := range *list {
				if !ref.Involves(a, b) {
					kept = append(kept, ref)
				}
			}
			*list = kept
			return nil
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.store.Delete(ctx, kv.ReferralPairKey(a, b)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// MarkBonusGiven flags the pair marker and both list entries.
func (r *ReferralRepository) MarkBonusGiven(ctx context.Context, referrerID, referredID int64) error {
	_, err := kv.UpdateJSON(ctx, r.store, kv.ReferralPairKey(referrerID, referredID), 0, func(ref *domain.Referral, exists bool) error {
		if !exists {
			return kv.ErrNotFound
		}
		ref.BonusGiven = true
		return nil
	})
	if err != nil {
		return err
	}

	for _, uid := range []int64{referrerID, referredID} {
		_, err := kv.UpdateJSON(ctx, r.store, kv.ReferralsKey(uid), 0, func(list *[]domain.Referral, _ bool) error {
			for i := range *list {
				if (*list)[i].Involves(referrerID, referredID) {
					(*list)[i].BonusGiven = true
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
