package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alchemy_webapp/internal/catalog"
	"alchemy_webapp/internal/config"
	"alchemy_webapp/internal/domain"
	"alchemy_webapp/internal/kv"
	"alchemy_webapp/internal/logger"
	"alchemy_webapp/internal/metrics"
	"alchemy_webapp/internal/repository"
)

// secondsPerStep - сколько времени засчитываем за шаг вперёд
const secondsPerStep = 60

// ProgressService owns mission state: steps, completion, unlocking.
type ProgressService struct {
	repos
	catalog  *catalog.Catalog
	economy  config.Economy
	balance  *BalanceService
	notifier Notifier
	now      func() time.Time
}

// CompletionResult describes what a completion call granted.
type CompletionResult struct {
	Progress         domain.MissionProgress `json:"progress"`
	LightEarned      int64                  `json:"light_earned"`
	NewBalance       int64                  `json:"new_balance"`
	Level            int                    `json:"level"`
	Artifact         *domain.Artifact       `json:"artifact,omitempty"`
	ArtifactNew      bool                   `json:"artifact_new"`
	AlreadyCompleted bool                   `json:"already_completed"`
	NextMission      *domain.Mission        `json:"next_mission,omitempty"`
}

// StepResult is returned by step/update calls; Completion is set when the
// call finished the mission.
type StepResult struct {
	Progress   domain.MissionProgress `json:"progress"`
	Completion *CompletionResult      `json:"completion,omitempty"`
}

type UnlockResult struct {
	MissionID       string `json:"mission_id"`
	Cost            int64  `json:"cost"`
	NewBalance      int64  `json:"new_balance"`
	AlreadyUnlocked bool   `json:"already_unlocked"`
}

func (s *ProgressService) mission(missionID string) (domain.Mission, error) {
	m, ok := s.catalog.Mission(missionID)
	if !ok {
		return domain.Mission{}, ErrMissionNotFound
	}
	return m, nil
}

// List returns every progress record of the user.
func (s *ProgressService) List(ctx context.Context, userID int64) ([]domain.MissionProgress, error) {
	return s.progress.List(ctx, userID)
}

// Get returns ErrProgressNotFound until the user touched the mission.
func (s *ProgressService) Get(ctx context.Context, userID int64, missionID string) (*domain.MissionProgress, error) {
	return s.progress.Get(ctx, userID, missionID)
}

// Accessible: free missions always, paid ones after unlocking.
func (s *ProgressService) Accessible(ctx context.Context, userID int64, missionID string) (bool, error) {
	m, err := s.mission(missionID)
	if err != nil {
		return false, err
	}
	if m.Free() {
		return true, nil
	}
	return s.access.Has(ctx, userID, missionID)
}

// AvailableMissions returns unlocked mission ids.
func (s *ProgressService) AvailableMissions(ctx context.Context, userID int64) ([]string, error) {
	return s.access.List(ctx, userID)
}

// NextMissionCost is the price of the mission after missionID (0 when there is none).
func (s *ProgressService) NextMissionCost(missionID string) int64 {
	next, ok := s.catalog.NextMission(missionID)
	if !ok {
		return 0
	}
	return next.LightCost
}

func (s *ProgressService) requireAccess(ctx context.Context, userID int64, missionID string) (domain.Mission, error) {
	m, err := s.mission(missionID)
	if err != nil {
		return m, err
	}
	if _, err := s.users.Get(ctx, userID); err != nil {
		return m, err
	}
	ok, err := s.Accessible(ctx, userID, missionID)
	if err != nil {
		return m, err
	}
	if !ok {
		return m, ErrMissionLocked
	}
	return m, nil
}

// Update applies a partial progress update from the client.
//
// Status may move between not_started and in_progress only; completion goes
// through Complete (or a step update that reaches the last step), and a
// completed mission only changes again after Reset.
func (s *ProgressService) Update(ctx context.Context, userID int64, missionID string, upd domain.ProgressUpdate) (StepResult, error) {
	if err := validateStruct(upd); err != nil {
		return StepResult{}, err
	}
	if upd.Status != nil && (!upd.Status.Valid() || *upd.Status == domain.StatusCompleted) {
		return StepResult{}, fmt.Errorf("%w: status %q", ErrInvalidTransition, *upd.Status)
	}

	m, err := s.requireAccess(ctx, userID, missionID)
	if err != nil {
		return StepResult{}, err
	}

	now := s.now().UTC()
	var (
		prevSeconds int
		reachedEnd  bool
	)
	p, err := s.progress.Upsert(ctx, userID, missionID, m.TotalSteps(), now, func(p *domain.MissionProgress, _ bool) error {
		prevSeconds = p.TimeSpentSeconds
		reachedEnd = false

		touchesState := upd.Status != nil || upd.CurrentStep != nil || upd.TotalSteps != nil
		if p.IsCompleted() && touchesState {
			return ErrInvalidTransition
		}

		if upd.TotalSteps != nil {
			p.TotalSteps = *upd.TotalSteps
		}
		if upd.CurrentStep != nil {
			p.CurrentStep = *upd.CurrentStep
		}
		if upd.TimeSpentSeconds != nil && *upd.TimeSpentSeconds > p.TimeSpentSeconds {
			p.TimeSpentSeconds = *upd.TimeSpentSeconds
		}
		if upd.Attempts != nil {
			p.Attempts = *upd.Attempts
		}
		p.Normalize()

		switch {
		case upd.Status != nil && *upd.Status == domain.StatusNotStarted:
			p.Status = domain.StatusNotStarted
		case upd.Status != nil && *upd.Status == domain.StatusInProgress:
			p.MarkStarted(now)
		case upd.CurrentStep != nil && p.CurrentStep > 0:
			p.MarkStarted(now)
		}
		reachedEnd = !p.IsCompleted() && p.CurrentStep >= p.TotalSteps
		return nil
	})
	if err != nil {
		return StepResult{}, err
	}

	if err := s.addMeditation(ctx, userID, prevSeconds, p.TimeSpentSeconds); err != nil {
		return StepResult{}, err
	}

	res := StepResult{Progress: p}
	if reachedEnd {
		c, err := s.Complete(ctx, userID, missionID)
		if err != nil {
			return res, err
		}
		res.Progress = c.Progress
		res.Completion = &c
	}
	return res, nil
}

// addMeditation adds whole minutes crossed between two time_spent values.
func (s *ProgressService) addMeditation(ctx context.Context, userID int64, before, after int) error {
	minutes := after/60 - before/60
	if minutes <= 0 {
		return nil
	}
	_, err := s.users.Update(ctx, userID, func(u *domain.User) error {
		u.TotalMeditationMinutes += minutes
		return nil
	})
	return err
}

// StepForward moves one step ahead (+60s). Reaching the last step completes the mission.
func (s *ProgressService) StepForward(ctx context.Context, userID int64, missionID string) (StepResult, error) {
	m, err := s.requireAccess(ctx, userID, missionID)
	if err != nil {
		return StepResult{}, err
	}

	now := s.now().UTC()
	var (
		prevSeconds int
		reachedEnd  bool
	)
	p, err := s.progress.Upsert(ctx, userID, missionID, m.TotalSteps(), now, func(p *domain.MissionProgress, _ bool) error {
		prevSeconds = p.TimeSpentSeconds
		reachedEnd = false
		if p.IsCompleted() {
			return kv.ErrNoChange
		}
		p.CurrentStep = min(p.CurrentStep+1, p.TotalSteps)
		p.TimeSpentSeconds += secondsPerStep
		p.MarkStarted(now)
		p.Normalize()
		reachedEnd = p.CurrentStep >= p.TotalSteps
		return nil
	})
	if err != nil {
		return StepResult{}, err
	}
	metrics.MissionEvents.WithLabelValues("step").Inc()

	if err := s.addMeditation(ctx, userID, prevSeconds, p.TimeSpentSeconds); err != nil {
		return StepResult{}, err
	}

	res := StepResult{Progress: p}
	if reachedEnd {
		c, err := s.Complete(ctx, userID, missionID)
		if err != nil {
			return res, err
		}
		res.Progress = c.Progress
		res.Completion = &c
	}
	return res, nil
}

// StepBack moves one step back; at step 0 the mission is not_started again.
func (s *ProgressService) StepBack(ctx context.Context, userID int64, missionID string) (domain.MissionProgress, error) {
	m, err := s.requireAccess(ctx, userID, missionID)
	if err != nil {
		return domain.MissionProgress{}, err
	}

	p, err := s.progress.Upsert(ctx, userID, missionID, m.TotalSteps(), s.now().UTC(), func(p *domain.MissionProgress, _ bool) error {
		if p.IsCompleted() {
			return ErrInvalidTransition
		}
		if p.CurrentStep == 0 {
			return kv.ErrNoChange
		}
		p.CurrentStep--
		if p.CurrentStep == 0 {
			p.Status = domain.StatusNotStarted
		}
		return nil
	})
	if err != nil {
		return domain.MissionProgress{}, err
	}
	metrics.MissionEvents.WithLabelValues("step_back").Inc()
	return p, nil
}

// Reset starts the mission over and counts an attempt. A mission rewarded
// before is not rewarded again when completed after a reset.
func (s *ProgressService) Reset(ctx context.Context, userID int64, missionID string) (domain.MissionProgress, error) {
	m, err := s.requireAccess(ctx, userID, missionID)
	if err != nil {
		return domain.MissionProgress{}, err
	}

	p, err := s.progress.Upsert(ctx, userID, missionID, m.TotalSteps(), s.now().UTC(), func(p *domain.MissionProgress, _ bool) error {
		p.Reset()
		return nil
	})
	if err != nil {
		return domain.MissionProgress{}, err
	}
	metrics.MissionEvents.WithLabelValues("reset").Inc()
	return p, nil
}

// Complete marks the mission completed and, the first time only, awards the
// light reward and the mission artifact. The progress record is the gate: the
// caller whose CAS sets rewarded_at is the only one that pays out.
func (s *ProgressService) Complete(ctx context.Context, userID int64, missionID string) (CompletionResult, error) {
	log := logger.FromContext(ctx).With("user_id", userID, "mission_id", missionID)

	m, err := s.requireAccess(ctx, userID, missionID)
	if err != nil {
		return CompletionResult{}, err
	}

	now := s.now().UTC()
	var firstReward bool
	p, err := s.progress.Upsert(ctx, userID, missionID, m.TotalSteps(), now, func(p *domain.MissionProgress, _ bool) error {
		firstReward = false
		if p.IsCompleted() && p.RewardedAt != nil {
			return kv.ErrNoChange
		}
		p.MarkCompleted(now)
		if p.RewardedAt == nil {
			t := now
			p.RewardedAt = &t
			firstReward = true
		}
		return nil
	})
	if err != nil {
		return CompletionResult{}, err
	}

	res := CompletionResult{Progress: p, AlreadyCompleted: !firstReward}
	if next, ok := s.catalog.NextMission(missionID); ok {
		res.NextMission = &next
	}
	if a, ok := s.catalog.ArtifactForMission(missionID); ok {
		res.Artifact = &a
	}

	if !firstReward {
		// награда уже выдана, но артефакт мог не записаться в прошлый раз
		if res.Artifact != nil {
			_, added, err := s.artifacts.Add(ctx, userID, res.Artifact.ID, "mission:"+missionID, now)
			if err != nil {
				return res, fmt.Errorf("grant artifact: %w", err)
			}
			if added {
				log.Warn("artifact granted on repeated completion", "artifact_id", res.Artifact.ID)
			}
			res.ArtifactNew = added
		}
		u, err := s.users.Get(ctx, userID)
		if err != nil {
			return res, err
		}
		res.NewBalance, res.Level = u.LightBalance, u.Level
		return res, nil
	}

	reward := s.economy.MissionReward
	u, err := s.users.Update(ctx, userID, func(u *domain.User) error {
		if err := repository.ApplyLight(u, reward); err != nil {
			return err
		}
		u.TotalMissionsCompleted++
		u.Level = domain.LevelFor(u.TotalMissionsCompleted)
		return nil
	})
	if err != nil {
		// награда не выдана - снимаем отметку, чтобы повторный вызов мог её выдать
		_, rerr := s.progress.Upsert(ctx, userID, missionID, m.TotalSteps(), now, func(p *domain.MissionProgress, _ bool) error {
			p.RewardedAt = nil
			return nil
		})
		if rerr != nil {
			log.Error("failed to roll back completion marker", "error", rerr)
		}
		return CompletionResult{}, err
	}
	s.balance.record(ctx, userID, reward, u.LightBalance, txMeta{Type: domain.TxMissionReward, MissionID: missionID})

	res.LightEarned = reward
	res.NewBalance = u.LightBalance
	res.Level = u.Level

	if res.Artifact != nil {
		_, added, err := s.artifacts.Add(ctx, userID, res.Artifact.ID, "mission:"+missionID, now)
		if err != nil {
			return res, fmt.Errorf("grant artifact: %w", err)
		}
		res.ArtifactNew = added
	}

	metrics.MissionEvents.WithLabelValues("complete").Inc()
	data := map[string]any{
		"mission_id":    missionID,
		"mission_title": m.Title,
		"light_earned":  reward,
		"level":         u.Level,
	}
	if res.Artifact != nil {
		data["artifact"] = res.Artifact.Name
	}
	s.notifier.Notify(ctx, domain.Event{Type: domain.EventMissionCompleted, UserID: userID, Data: data, CreatedAt: now})

	log.Info("mission completed", "light_earned", reward, "artifact_new", res.ArtifactNew)
	return res, nil
}

// Unlock buys a paid mission. Free or already unlocked missions cost nothing.
func (s *ProgressService) Unlock(ctx context.Context, userID int64, missionID string) (UnlockResult, error) {
	log := logger.FromContext(ctx).With("user_id", userID, "mission_id", missionID)

	m, err := s.mission(missionID)
	if err != nil {
		return UnlockResult{}, err
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return UnlockResult{}, err
	}
	res := UnlockResult{MissionID: missionID, Cost: m.LightCost, NewBalance: u.LightBalance}

	has, err := s.Accessible(ctx, userID, missionID)
	if err != nil {
		return UnlockResult{}, err
	}
	if has {
		res.AlreadyUnlocked = true
		res.Cost = 0
		return res, nil
	}

	balance, err := s.balance.Debit(ctx, userID, m.LightCost, txMeta{Type: domain.TxMissionUnlock, MissionID: missionID})
	if err != nil {
		return UnlockResult{}, err
	}
	res.NewBalance = balance

	added, err := s.access.Add(ctx, userID, missionID)
	if err != nil || !added {
		// не открыли (ошибка или параллельный запрос успел раньше) - возвращаем свет
		refunded, rerr := s.balance.Credit(ctx, userID, m.LightCost, txMeta{Type: domain.TxRefund, MissionID: missionID})
		if rerr != nil {
			log.Error("refund after failed unlock failed", "error", rerr)
		} else {
			res.NewBalance = refunded
		}
		if err != nil {
			return UnlockResult{}, err
		}
		res.AlreadyUnlocked = true
		res.Cost = 0
		return res, nil
	}

	_, err = s.progress.Upsert(ctx, userID, missionID, m.TotalSteps(), s.now().UTC(), func(_ *domain.MissionProgress, created bool) error {
		if !created {
			return kv.ErrNoChange
		}
		return nil
	})
	if err != nil && !errors.Is(err, kv.ErrNoChange) {
		log.Warn("failed to create progress for unlocked mission", "error", err)
	}

	metrics.MissionEvents.WithLabelValues("unlock").Inc()
	s.notifier.Notify(ctx, domain.Event{
		Type:      domain.EventMissionUnlocked,
		UserID:    userID,
		Data:      map[string]any{"mission_id": missionID, "mission_title": m.Title, "cost": m.LightCost},
		CreatedAt: s.now().UTC(),
	})
	log.Info("mission unlocked", "cost", m.LightCost)
	return res, nil
}

// InitFreeMissions creates not_started progress for every free mission.
func (s *ProgressService) InitFreeMissions(ctx context.Context, userID int64) error {
	now := s.now().UTC()
	for _, id := range s.catalog.FreeMissionIDs() {
		m, _ := s.catalog.Mission(id)
		_, err := s.progress.Upsert(ctx, userID, id, m.TotalSteps(), now, func(_ *domain.MissionProgress, created bool) error {
			if !created {
				return kv.ErrNoChange
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
