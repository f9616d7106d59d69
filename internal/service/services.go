package service

import (
	"time"

	"alchemy_webapp/internal/catalog"
	"alchemy_webapp/internal/config"
	"alchemy_webapp/internal/kv"
	"alchemy_webapp/internal/repository"
	"alchemy_webapp/internal/telegram"
)

type Deps struct {
	Store    kv.Store
	Catalog  *catalog.Catalog
	Economy  config.Economy
	Notifier Notifier
	// Clock defaults to time.Now; tests pin it.
	Clock func() time.Time

	BotToken string
	// DevMode принимает initData без подписи
	DevMode     bool
	InitDataTTL time.Duration
}

type repos struct {
	users        *repository.UserRepository
	progress     *repository.ProgressRepository
	artifacts    *repository.ArtifactRepository
	referrals    *repository.ReferralRepository
	dailyLight   *repository.DailyLightRepository
	access       *repository.MissionAccessRepository
	transactions *repository.TransactionRepository
}

// Services groups everything the HTTP API and the bot call into.
type Services struct {
	Users     *UserService
	Progress  *ProgressService
	Balance   *BalanceService
	Referrals *ReferralService
	Auth      *AuthService
	Catalog   *catalog.Catalog
}

func NewServices(d Deps) *Services {
	if d.Catalog == nil {
		d.Catalog = catalog.Default()
	}
	if d.Notifier == nil {
		d.Notifier = NopNotifier{}
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.InitDataTTL <= 0 {
		d.InitDataTTL = telegram.DefaultMaxAge
	}

	r := repos{
		users:        repository.NewUserRepository(d.Store),
		progress:     repository.NewProgressRepository(d.Store),
		artifacts:    repository.NewArtifactRepository(d.Store),
		referrals:    repository.NewReferralRepository(d.Store),
		dailyLight:   repository.NewDailyLightRepository(d.Store),
		access:       repository.NewMissionAccessRepository(d.Store, d.Catalog.FreeMissionIDs()),
		transactions: repository.NewTransactionRepository(d.Store),
	}

	balance := &BalanceService{repos: r, economy: d.Economy, notifier: d.Notifier, now: d.Clock}
	progress := &ProgressService{repos: r, catalog: d.Catalog, economy: d.Economy, balance: balance, notifier: d.Notifier, now: d.Clock}
	referrals := &ReferralService{repos: r, economy: d.Economy, balance: balance, notifier: d.Notifier, now: d.Clock}
	users := &UserService{repos: r, catalog: d.Catalog, economy: d.Economy, balance: balance, progress: progress, now: d.Clock}

	auth := &AuthService{users: users, referrals: referrals, botToken: d.BotToken, devMode: d.DevMode, maxAge: d.InitDataTTL, now: d.Clock}

	return &Services{
		Users:     users,
		Progress:  progress,
		Balance:   balance,
		Referrals: referrals,
		Auth:      auth,
		Catalog:   d.Catalog,
	}
}
