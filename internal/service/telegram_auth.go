package service

import (
	"context"
	"time"

	"alchemy_webapp/internal/domain"
	"alchemy_webapp/internal/logger"
	"alchemy_webapp/internal/telegram"
)

// AuthService turns Telegram initData into an account and a session token.
type AuthService struct {
	users     *UserService
	referrals *ReferralService
	botToken  string
	devMode   bool
	maxAge    time.Duration
	now       func() time.Time
}

type AuthResult struct {
	Token           string       `json:"token"`
	User            *domain.User `json:"user"`
	IsNewUser       bool         `json:"is_new_user"`
	ReferrerID      int64        `json:"referrer_id,omitempty"`
	ReferralApplied bool         `json:"referral_applied"`
}

// Authenticate validates initData (DEV_MODE skips the signature), creates or
// refreshes the user and, for new users, applies the inviter from
// start_param=ref_<id> or, failing that, referrerID.
func (s *AuthService) Authenticate(ctx context.Context, initData string, referrerID int64) (AuthResult, error) {
	var (
		data *telegram.InitData
		err  error
	)
	if s.devMode {
		data, err = telegram.ParseInitData(initData)
	} else {
		data, err = telegram.ValidateInitData(initData, s.botToken, s.maxAge, s.now())
	}
	if err != nil {
		return AuthResult{}, err
	}

	ctx = logger.ContextWith(ctx, "user_id", data.User.ID)
	user, created, err := s.users.Initialize(ctx, data.User.Profile())
	if err != nil {
		return AuthResult{}, err
	}

	res := AuthResult{User: user, IsNewUser: created}
	refID, ok := telegram.ParseRefPayload(data.StartParam)
	if !ok && referrerID > 0 {
		refID, ok = referrerID, true
	}
	if ok && created {
		res.ReferrerID = refID
		applied, err := s.referrals.Handle(ctx, refID, user.ID)
		if err != nil {
			logger.FromContext(ctx).Warn("referral from start_param failed", "referrer", refID, "error", err)
		}
		res.ReferralApplied = applied
		if applied {
			if fresh, err := s.users.Get(ctx, user.ID); err == nil {
				res.User = fresh
			}
		}
	}

	res.Token, err = GenerateJWT(user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return res, nil
}
