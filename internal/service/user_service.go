package service

import (
	"context"
	"errors"
	"time"

	"alchemy_webapp/internal/catalog"
	"alchemy_webapp/internal/config"
	"alchemy_webapp/internal/domain"
	"alchemy_webapp/internal/logger"
)

// UserService creates accounts and assembles the user context for the app.
type UserService struct {
	repos
	catalog  *catalog.Catalog
	economy  config.Economy
	balance  *BalanceService
	progress *ProgressService
	now      func() time.Time
}

// ElementProgress - прогресс по одной стихии
type ElementProgress struct {
	ElementID  string `json:"element_id"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

// Overview is everything the Mini App loads on start.
type Overview struct {
	User              domain.User              `json:"user"`
	Progress          []domain.MissionProgress `json:"progress"`
	Artifacts         []domain.OwnedArtifact   `json:"artifacts"`
	AvailableMissions []string                 `json:"available_missions"`
	Elements          []ElementProgress        `json:"elements"`
	DailyLight        domain.DailyLimitInfo    `json:"daily_light"`
	ReferralCount     int                      `json:"referral_count"`
}

// Initialize creates the user on first open (starting light, free missions)
// and refreshes profile and streak on later opens. created reports whether
// the account is new.
func (s *UserService) Initialize(ctx context.Context, p domain.Profile) (*domain.User, bool, error) {
	if err := validateStruct(p); err != nil {
		return nil, false, err
	}
	now := s.now().UTC()
	log := logger.FromContext(ctx).With("user_id", p.ID)

	u := domain.NewUser(p, s.economy.StartingLight, now)
	err := s.users.Create(ctx, u)
	switch {
	case err == nil:
		if err := s.progress.InitFreeMissions(ctx, u.ID); err != nil {
			log.Warn("failed to init free missions", "error", err)
		}
		if u.LightBalance > 0 {
			s.balance.record(ctx, u.ID, u.LightBalance, u.LightBalance, txMeta{Type: domain.TxWelcome})
		}
		log.Info("user created", "light", u.LightBalance)
		return &u, true, nil
	case !errors.Is(err, ErrUserExists):
		return nil, false, err
	}

	existing, err := s.users.Update(ctx, p.ID, func(u *domain.User) error {
		u.ApplyProfile(p)
		u.Touch(now)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *UserService) Get(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}

// Artifacts returns owned artifacts joined with the catalog.
func (s *UserService) Artifacts(ctx context.Context, userID int64) ([]domain.OwnedArtifact, error) {
	list, err := s.artifacts.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.OwnedArtifact, 0, len(list))
	for _, ua := range list {
		out = append(out, domain.OwnedArtifact{UserArtifact: ua, Artifact: s.catalog.ArtifactOrUnknown(ua.ArtifactID)})
	}
	return out, nil
}

// Overview собирает всё, что нужно клиенту при старте
func (s *UserService) Overview(ctx context.Context, userID int64) (Overview, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	progress, err := s.progress.List(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	artifacts, err := s.Artifacts(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	available, err := s.access.List(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	daily, err := s.balance.DailyInfo(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	refs, err := s.referrals.List(ctx, userID)
	if err != nil {
		return Overview{}, err
	}

	completed := make(map[string]bool, len(progress))
	for _, p := range progress {
		if p.IsCompleted() {
			completed[p.MissionID] = true
		}
	}
	var elements []ElementProgress
	for _, el := range s.catalog.Elements() {
		missions := s.catalog.Missions(el.ID)
		ep := ElementProgress{ElementID: el.ID, Total: len(missions)}
		for _, m := range missions {
			if completed[m.ID] {
				ep.Completed++
			}
		}
		ep.Percentage = domain.Percentage(ep.Completed, ep.Total)
		elements = append(elements, ep)
	}

	invited := 0
	for _, r := range refs {
		if r.ReferrerUserID == userID {
			invited++
		}
	}

	return Overview{
		User:              *u,
		Progress:          progress,
		Artifacts:         artifacts,
		AvailableMissions: available,
		Elements:          elements,
		DailyLight:        daily,
		ReferralCount:     invited,
	}, nil
}
