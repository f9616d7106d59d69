package service

import (
	"context"
	"errors"
	"math"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"alchemy_webapp/internal/catalog"
	"alchemy_webapp/internal/config"
	"alchemy_webapp/internal/domain"
	"alchemy_webapp/internal/kv"
	"alchemy_webapp/internal/telegram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	secondMissionID = "b2e3f8a0-cb3a-4c9c-8f1a-6d5b7a8e9c0e"
	thirdMissionID  = "c3e4f9a1-db4a-5c9d-9f2a-7d6b8a9e0c1f"
)

var testEconomy = config.Economy{StartingLight: 100, MissionReward: 10, ReferralBonus: 30, DailyLightLimit: 50}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingNotifier) Notify(_ context.Context, e domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingNotifier) ofType(typ string) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, e := range r.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

var errStoreDown = errors.New("store down")

// brokenKeyStore fails every Update of one key until heal is called.
type brokenKeyStore struct {
	kv.Store
	mu     sync.Mutex
	broken string
}

func (s *brokenKeyStore) breakKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken = key
}

func (s *brokenKeyStore) heal() { s.breakKey("") }

func (s *brokenKeyStore) Update(ctx context.Context, key string, ttl time.Duration, fn kv.UpdateFunc) error {
	s.mu.Lock()
	broken := s.broken
	s.mu.Unlock()
	if broken != "" && key == broken {
		return errStoreDown
	}
	return s.Store.Update(ctx, key, ttl, fn)
}

type fixture struct {
	svc      *Services
	store    *brokenKeyStore
	notifier *recordingNotifier
	now      time.Time
}

func newFixture(t testing.TB) *fixture {
	f := &fixture{
		store:    &brokenKeyStore{Store: kv.NewMemoryStore()},
		notifier: &recordingNotifier{},
		now:      time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewServices(Deps{
		Store:    f.store,
		Catalog:  catalog.Default(),
		Economy:  testEconomy,
		Notifier: f.notifier,
		Clock:    func() time.Time { return f.now },
		BotToken: "123:token",
	})
	return f
}

func (f *fixture) user(t testing.TB, id int64) *domain.User {
	u, created, err := f.svc.Users.Initialize(context.Background(), domain.Profile{ID: id, FirstName: "U" + strconv.FormatInt(id, 10)})
	require.NoError(t, err)
	require.True(t, created)
	return u
}

func (f *fixture) balance(t testing.TB, id int64) int64 {
	b, err := f.svc.Balance.GetBalance(context.Background(), id)
	require.NoError(t, err)
	return b
}

func TestInitialize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, 1)
	assert.EqualValues(t, 100, u.LightBalance)
	assert.Equal(t, domain.DefaultLanguage, u.LanguageCode)
	assert.Equal(t, 1, u.Level)

	p, err := f.svc.Progress.Get(ctx, 1, catalog.FirstWaterMissionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, p.Status)

	history, err := f.svc.Balance.History(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.TxWelcome, history[0].Type)

	f.now = f.now.Add(24 * time.Hour)
	again, created, err := f.svc.Users.Initialize(ctx, domain.Profile{ID: 1, Username: "neo"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "U1", again.FirstName)
	assert.Equal(t, "neo", again.Username)
	assert.Equal(t, 2, again.StreakDays)
	assert.EqualValues(t, 100, again.LightBalance)

	_, _, err = f.svc.Users.Initialize(ctx, domain.Profile{ID: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStepThroughMissionCompletesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1)

	var last StepResult
	for i := 0; i < 5; i++ {
		res, err := f.svc.Progress.StepForward(ctx, 1, catalog.FirstWaterMissionID)
		require.NoError(t, err)
		last = res
	}
	require.NotNil(t, last.Completion)
	assert.Equal(t, domain.StatusCompleted, last.Progress.Status)
	assert.Equal(t, 100, last.Progress.ProgressPercentage)
	assert.EqualValues(t, 10, last.Completion.LightEarned)
	assert.True(t, last.Completion.ArtifactNew)
	assert.Equal(t, catalog.PearlArtifactID, last.Completion.Artifact.ID)
	require.NotNil(t, last.Completion.NextMission)
	assert.Equal(t, secondMissionID, last.Completion.NextMission.ID)
	assert.EqualValues(t, 110, f.balance(t, 1))

	again, err := f.svc.Progress.Complete(ctx, 1, catalog.FirstWaterMissionID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyCompleted)
	assert.Zero(t, again.LightEarned)
	assert.EqualValues(t, 110, f.balance(t, 1))

	_, err = f.svc.Progress.StepBack(ctx, 1, catalog.FirstWaterMissionID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// после сброса миссию можно пройти снова, но без второй награды
	p, err := f.svc.Progress.Reset(ctx, 1, catalog.FirstWaterMissionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, p.Status)
	assert.Equal(t, 1, p.Attempts)
	c, err := f.svc.Progress.Complete(ctx, 1, catalog.FirstWaterMissionID)
	require.NoError(t, err)
	assert.True(t, c.AlreadyCompleted)
	assert.Equal(t, domain.StatusCompleted, c.Progress.Status)
	assert.EqualValues(t, 110, f.balance(t, 1))

	u, err := f.svc.Users.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, u.TotalMissionsCompleted)
	assert.Equal(t, 5, u.TotalMeditationMinutes)

	arts, err := f.svc.Users.Artifacts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Equal(t, "Жемчужина Чуткости", arts[0].Artifact.Name)
	assert.Len(t, f.notifier.ofType(domain.EventMissionCompleted), 1)
}

func TestConcurrentCompleteRewardsOnce(t *testing.T) {
	f := newFixture(t)
	f.user(t, 1)

	var (
		wg      sync.WaitGroup
		rewards atomic.Int64
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.svc.Progress.Complete(context.Background(), 1, catalog.FirstWaterMissionID)
			if err == nil {
				rewards.Add(res.LightEarned)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 10, rewards.Load())
	assert.EqualValues(t, 110, f.balance(t, 1))
}

func TestCompleteRejectsBalanceOverflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1)

	balance, err := f.svc.Balance.AdjustLight(ctx, 1, math.MaxInt64-100)
	require.NoError(t, err)
	require.EqualValues(t, int64(math.MaxInt64), balance)

	_, err = f.svc.Progress.Complete(ctx, 1, catalog.FirstWaterMissionID)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.EqualValues(t, int64(math.MaxInt64), f.balance(t, 1))

	// награда не выдана, отметка снята
	p, err := f.svc.Progress.Get(ctx, 1, catalog.FirstWaterMissionID)
	require.NoError(t, err)
	assert.Nil(t, p.RewardedAt)

	_, err = f.svc.Balance.AdjustLight(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	u, err := f.svc.Users.Get(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, u.TotalMissionsCompleted)
}

func TestCompleteGrantsArtifactOnRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1)

	f.store.breakKey(kv.ArtifactsKey(1))
	_, err := f.svc.Progress.Complete(ctx, 1, catalog.FirstWaterMissionID)
	require.ErrorIs(t, err, errStoreDown)
	assert.EqualValues(t, 110, f.balance(t, 1))

	f.store.heal()
	res, err := f.svc.Progress.Complete(ctx, 1, catalog.FirstWaterMissionID)
	require.NoError(t, err)
	assert.True(t, res.AlreadyCompleted)
	assert.True(t, res.ArtifactNew)
	assert.Zero(t, res.LightEarned)

	res, err = f.svc.Progress.Complete(ctx, 1, catalog.FirstWaterMissionID)
	require.NoError(t, err)
	assert.False(t, res.ArtifactNew)

	arts, err := f.svc.Users.Artifacts(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, arts, 1)
	assert.EqualValues(t, 110, f.balance(t, 1))
}

func TestUnlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1)

	_, err := f.svc.Progress.StepForward(ctx, 1, secondMissionID)
	assert.ErrorIs(t, err, ErrMissionLocked)

	res, err := f.svc.Progress.Unlock(ctx, 1, secondMissionID)
	require.NoError(t, err)
	assert.EqualValues(t, 100, res.Cost)
	assert.EqualValues(t, 0, res.NewBalance)

	again, err := f.svc.Progress.Unlock(ctx, 1, secondMissionID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyUnlocked)
	assert.EqualValues(t, 0, f.balance(t, 1))

	free, err := f.svc.Progress.Unlock(ctx, 1, catalog.FirstWaterMissionID)
	require.NoError(t, err)
	assert.True(t, free.AlreadyUnlocked)

	_, err = f.svc.Progress.Unlock(ctx, 1, thirdMissionID)
	assert.ErrorIs(t, err, ErrInsufficientLight)

	_, err = f.svc.Progress.Unlock(ctx, 1, "nope")
	assert.ErrorIs(t, err, ErrMissionNotFound)

	p, err := f.svc.Progress.Get(ctx, 1, secondMissionID)
	require.NoError(t, err)
	assert.Equal(t, 6, p.TotalSteps)

	ok, err := f.svc.Progress.Accessible(ctx, 1, secondMissionID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 100, f.svc.Progress.NextMissionCost(catalog.FirstWaterMissionID))
	assert.Len(t, f.notifier.ofType(domain.EventMissionUnlocked), 1)
}

func TestUpdateProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1)

	step, secs := 2, 130
	res, err := f.svc.Progress.Update(ctx, 1, catalog.FirstWaterMissionID, domain.ProgressUpdate{CurrentStep: &step, TimeSpentSeconds: &secs})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, res.Progress.Status)
	assert.Equal(t, 40, res.Progress.ProgressPercentage)
	assert.Nil(t, res.Completion)

	// время не уменьшается
	less := 10
	res, err = f.svc.Progress.Update(ctx, 1, catalog.FirstWaterMissionID, domain.ProgressUpdate{TimeSpentSeconds: &less})
	require.NoError(t, err)
	assert.Equal(t, 130, res.Progress.TimeSpentSeconds)

	u, err := f.svc.Users.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, u.TotalMeditationMinutes)

	completed := domain.StatusCompleted
	_, err = f.svc.Progress.Update(ctx, 1, catalog.FirstWaterMissionID, domain.ProgressUpdate{Status: &completed})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	bad := -1
	_, err = f.svc.Progress.Update(ctx, 1, catalog.FirstWaterMissionID, domain.ProgressUpdate{CurrentStep: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	last := 5
	res, err = f.svc.Progress.Update(ctx, 1, catalog.FirstWaterMissionID, domain.ProgressUpdate{CurrentStep: &last})
	require.NoError(t, err)
	require.NotNil(t, res.Completion)
	assert.EqualValues(t, 110, res.Completion.NewBalance)

	back, err := f.svc.Progress.StepBack(ctx, 2, catalog.FirstWaterMissionID)
	assert.ErrorIs(t, err, ErrUserNotFound, "%+v", back)
}

func TestStepBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1)

	_, err := f.svc.Progress.StepForward(ctx, 1, catalog.FirstWaterMissionID)
	require.NoError(t, err)
	p, err := f.svc.Progress.StepBack(ctx, 1, catalog.FirstWaterMissionID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.CurrentStep)
	assert.Equal(t, domain.StatusNotStarted, p.Status)

	p, err = f.svc.Progress.StepBack(ctx, 1, catalog.FirstWaterMissionID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.CurrentStep)
}

func TestSendLight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1)
	f.user(t, 2)

	info, err := f.svc.Balance.SendLight(ctx, 1, 2, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 20, info.DailySent)
	assert.EqualValues(t, 30, info.RemainingToday)
	assert.EqualValues(t, 80, f.balance(t, 1))
	assert.EqualValues(t, 120, f.balance(t, 2))

	_, err = f.svc.Balance.SendLight(ctx, 1, 2, 31)
	assert.ErrorIs(t, err, ErrDailyLimitExceeded)
	_, err = f.svc.Balance.SendLight(ctx, 1, 1, 5)
	assert.ErrorIs(t, err, ErrSelfTransfer)
	_, err = f.svc.Balance.SendLight(ctx, 1, 99, 5)
	assert.ErrorIs(t, err, ErrRecipientNotFound)
	_, err = f.svc.Balance.SendLight(ctx, 1, 2, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// на следующий день лимит снова полный
	f.now = f.now.Add(24 * time.Hour)
	daily, err := f.svc.Balance.DailyInfo(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 50, daily.RemainingToday)

	received := f.notifier.ofType(domain.EventLightReceived)
	require.Len(t, received, 1)
	assert.EqualValues(t, 2, received[0].UserID)
	assert.Equal(t, "U1", received[0].Data["from_name"])
}

func TestSendLightInsufficient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1)
	f.user(t, 2)

	_, err := f.svc.Balance.AdjustLight(ctx, 1, -95)
	require.NoError(t, err)
	_, err = f.svc.Balance.SendLight(ctx, 1, 2, 10)
	assert.ErrorIs(t, err, ErrInsufficientLight)

	daily, err := f.svc.Balance.DailyInfo(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, daily.DailySent)

	_, err = f.svc.Balance.AdjustLight(ctx, 1, -6)
	assert.ErrorIs(t, err, ErrInsufficientLight)
	b, err := f.svc.Balance.AdjustLight(ctx, 1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 5, b)
}

func TestConcurrentSendsRespectDailyLimit(t *testing.T) {
	f := newFixture(t)
	f.user(t, 1)
	f.user(t, 2)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.Balance.SendLight(context.Background(), 1, 2, 5)
		}()
	}
	wg.Wait()

	daily, err := f.svc.Balance.DailyInfo(context.Background(), 1)
	require.NoError(t, err)
	assert.LessOrEqual(t, daily.DailySent, int64(50))
	assert.EqualValues(t, 200, f.balance(t, 1)+f.balance(t, 2))
	assert.EqualValues(t, 100-daily.DailySent, f.balance(t, 1))
}

func TestReferralOncePerPair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1)
	f.user(t, 2)

	ok, err := f.svc.Referrals.Handle(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.Referrals.Handle(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.Referrals.Handle(ctx, 1, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.Referrals.Handle(ctx, 1, 77)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.EqualValues(t, 130, f.balance(t, 1))
	assert.EqualValues(t, 130, f.balance(t, 2))

	st, err := f.svc.Referrals.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Invited)
	assert.EqualValues(t, 30, st.TotalEarned)

	st, err = f.svc.Referrals.Stats(ctx, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, st.ReferredBy)

	ov, err := f.svc.Users.Overview(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, ov.ReferralCount)
	assert.Len(t, f.notifier.ofType(domain.EventReferralBonus), 2)
}

func TestReferralBonusPaidAfterFailedCredit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1)
	f.user(t, 2)

	f.store.breakKey(kv.UserKey(2))
	ok, err := f.svc.Referrals.Handle(ctx, 1, 2)
	require.ErrorIs(t, err, errStoreDown)
	assert.False(t, ok)
	// бонус пригласившего откатан
	assert.EqualValues(t, 100, f.balance(t, 1))
	assert.EqualValues(t, 100, f.balance(t, 2))

	f.store.heal()
	ok, err = f.svc.Referrals.Handle(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 130, f.balance(t, 1))
	assert.EqualValues(t, 130, f.balance(t, 2))

	st, err := f.svc.Referrals.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Invited)
	assert.EqualValues(t, 30, st.TotalEarned)

	history, err := f.svc.Balance.History(ctx, 1, 10)
	require.NoError(t, err)
	var rollbacks int
	for _, tx := range history {
		if tx.Type == domain.TxAdjustment && tx.Amount == -30 {
			rollbacks++
		}
	}
	assert.Equal(t, 1, rollbacks)
}

func TestConcurrentReferralBothDirections(t *testing.T) {
	f := newFixture(t)
	f.user(t, 1)
	f.user(t, 2)

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := int64(1), int64(2)
			if i%2 == 1 {
				a, b = b, a
			}
			if ok, err := f.svc.Referrals.Handle(context.Background(), a, b); err == nil && ok {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())
	assert.EqualValues(t, 260, f.balance(t, 1)+f.balance(t, 2))
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1)

	_, err := f.svc.Progress.Complete(ctx, 1, catalog.FirstWaterMissionID)
	require.NoError(t, err)

	ov, err := f.svc.Users.Overview(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 110, ov.User.LightBalance)
	assert.Len(t, ov.Artifacts, 1)
	assert.Contains(t, ov.AvailableMissions, catalog.FirstWaterMissionID)
	assert.EqualValues(t, 50, ov.DailyLight.RemainingToday)
	require.NotEmpty(t, ov.Elements)
	assert.Equal(t, catalog.WaterElementID, ov.Elements[0].ElementID)
	assert.Equal(t, 25, ov.Elements[0].Percentage)

	_, err = f.svc.Users.Overview(ctx, 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthenticate(t *testing.T) {
	require.NoError(t, InitJWT("test-secret"))
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 42)

	v := url.Values{}
	v.Set("auth_date", strconv.FormatInt(f.now.Unix(), 10))
	v.Set("user", `{"id":7,"first_name":"Ann"}`)
	v.Set("start_param", "ref_42")

	res, err := f.svc.Auth.Authenticate(ctx, telegram.SignInitData(v, "123:token"), 0)
	require.NoError(t, err)
	assert.True(t, res.IsNewUser)
	assert.True(t, res.ReferralApplied)
	assert.EqualValues(t, 130, res.User.LightBalance)

	uid, err := ParseJWT(res.Token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, uid)

	// повторный вход не даёт второго бонуса
	res, err = f.svc.Auth.Authenticate(ctx, telegram.SignInitData(v, "123:token"), 0)
	require.NoError(t, err)
	assert.False(t, res.IsNewUser)
	assert.False(t, res.ReferralApplied)

	_, err = f.svc.Auth.Authenticate(ctx, telegram.SignInitData(v, "wrong"), 0)
	assert.ErrorIs(t, err, telegram.ErrBadSignature)

	// реферер из тела запроса, когда start_param пуст
	v.Del("start_param")
	v.Set("user", `{"id":8,"first_name":"Bob"}`)
	res, err = f.svc.Auth.Authenticate(ctx, telegram.SignInitData(v, "123:token"), 42)
	require.NoError(t, err)
	assert.True(t, res.ReferralApplied)
	assert.EqualValues(t, 42, res.ReferrerID)
}

func TestJWT(t *testing.T) {
	assert.Error(t, InitJWT(""))
	require.NoError(t, InitJWT("test-secret"))

	tok, err := GenerateJWT(5)
	require.NoError(t, err)
	uid, err := ParseJWT(tok)
	require.NoError(t, err)
	assert.EqualValues(t, 5, uid)

	_, err = ParseJWT(tok + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// Баланс никогда не уходит в минус, а подарки сохраняют общую сумму.
func TestBalanceInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(t)
		ctx := context.Background()
		ids := []int64{1, 2, 3}
		for _, id := range ids {
			f.user(t, id)
		}
		var minted int64

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			from := rapid.SampledFrom(ids).Draw(rt, "from")
			to := rapid.SampledFrom(ids).Draw(rt, "to")
			amount := rapid.Int64Range(-60, 60).Draw(rt, "amount")

			switch rapid.IntRange(0, 3).Draw(rt, "op") {
			case 0, 1:
				_, _ = f.svc.Balance.SendLight(ctx, from, to, amount)
			case 2:
				if _, err := f.svc.Balance.AdjustLight(ctx, from, amount); err == nil {
					minted += amount
				}
			case 3:
				if res, err := f.svc.Progress.Complete(ctx, from, catalog.FirstWaterMissionID); err == nil {
					minted += res.LightEarned
				}
			}
			if rapid.Bool().Draw(rt, "next_day") {
				f.now = f.now.Add(24 * time.Hour)
			}
		}

		var total int64
		for _, id := range ids {
			b := f.balance(t, id)
			if b < 0 {
				rt.Fatalf("user %d balance %d", id, b)
			}
			daily, err := f.svc.Balance.DailyInfo(ctx, id)
			require.NoError(t, err)
			if daily.DailySent > testEconomy.DailyLightLimit {
				rt.Fatalf("user %d sent %d today", id, daily.DailySent)
			}
			total += b
		}
		if total != 300+minted {
			rt.Fatalf("total %d, want %d", total, 300+minted)
		}
	})
}
