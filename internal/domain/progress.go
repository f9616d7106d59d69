package domain

import (
	"math"
	"strconv"
	"time"
)

type MissionStatus string

const (
	StatusNotStarted MissionStatus = "not_started"
	StatusInProgress MissionStatus = "in_progress"
	StatusCompleted  MissionStatus = "completed"
)

const DefaultTotalSteps = 5

func (s MissionStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type MissionProgress struct {
	ID                 string        `json:"id"`
	UserID             int64         `json:"user_id"`
	MissionID          string        `json:"mission_id"`
	Status             MissionStatus `json:"status"`
	ProgressPercentage int           `json:"progress_percentage"`
	CurrentStep        int           `json:"current_step"`
	TotalSteps         int           `json:"total_steps"`
	TimeSpentSeconds   int           `json:"time_spent_seconds"`
	Attempts           int           `json:"attempts"`
	StartedAt          *time.Time    `json:"started_at,omitempty"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty"`
	// RewardedAt переживает сброс миссии: награда выдаётся один раз
	RewardedAt   *time.Time `json:"rewarded_at,omitempty"`
	LastActivity time.Time  `json:"last_activity"`
}

func ProgressID(userID int64, missionID string) string {
	return strconv.FormatInt(userID, 10) + "-" + missionID
}

func NewMissionProgress(userID int64, missionID string, totalSteps int, now time.Time) MissionProgress {
	if totalSteps <= 0 {
		totalSteps = DefaultTotalSteps
	}
	return MissionProgress{
		ID:           ProgressID(userID, missionID),
		UserID:       userID,
		MissionID:    missionID,
		Status:       StatusNotStarted,
		TotalSteps:   totalSteps,
		LastActivity: now,
	}
}

// Percentage возвращает round(step/total*100) в пределах 0..100
func Percentage(step, total int) int {
	if total <= 0 || step <= 0 {
		return 0
	}
	if step >= total {
		return 100
	}
	return int(math.Round(float64(step) / float64(total) * 100))
}

// Normalize clamps steps into [0, total] and recomputes the percentage from them.
func (p *MissionProgress) Normalize() {
	if p.TotalSteps <= 0 {
		p.TotalSteps = DefaultTotalSteps
	}
	if p.CurrentStep < 0 {
		p.CurrentStep = 0
	}
	if p.CurrentStep > p.TotalSteps {
		p.CurrentStep = p.TotalSteps
	}
	if p.TimeSpentSeconds < 0 {
		p.TimeSpentSeconds = 0
	}
	p.ProgressPercentage = Percentage(p.CurrentStep, p.TotalSteps)
}

func (p *MissionProgress) IsCompleted() bool {
	return p.Status == StatusCompleted
}

// MarkStarted переводит not_started в in_progress
func (p *MissionProgress) MarkStarted(now time.Time) {
	if p.Status == StatusNotStarted || p.Status == "" {
		p.Status = StatusInProgress
	}
	if p.StartedAt == nil {
		t := now
		p.StartedAt = &t
	}
}

// Reset starts the mission over. Attempts grow, the reward marker stays.
func (p *MissionProgress) Reset() {
	p.Status = StatusNotStarted
	p.CurrentStep = 0
	p.ProgressPercentage = 0
	p.CompletedAt = nil
	p.Attempts++
}

func (p *MissionProgress) MarkCompleted(now time.Time) {
	p.Status = StatusCompleted
	p.CurrentStep = p.TotalSteps
	p.ProgressPercentage = 100
	if p.StartedAt == nil {
		t := now
		p.StartedAt = &t
	}
	t := now
	p.CompletedAt = &t
}

// ProgressUpdate - частичное обновление прогресса от клиента (nil = не менять)
type ProgressUpdate struct {
	Status           *MissionStatus `json:"status,omitempty"`
	CurrentStep      *int           `json:"current_step,omitempty" validate:"omitempty,gte=0,lte=100"`
	TotalSteps       *int           `json:"total_steps,omitempty" validate:"omitempty,gt=0,lte=100"`
	TimeSpentSeconds *int           `json:"time_spent_seconds,omitempty" validate:"omitempty,gte=0"`
	Attempts         *int           `json:"attempts,omitempty" validate:"omitempty,gte=0"`
}
