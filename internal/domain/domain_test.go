package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Percentage(0, 5))
	assert.Equal(t, 20, Percentage(1, 5))
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 100, Percentage(5, 5))
	assert.Equal(t, 100, Percentage(9, 5))
	assert.Equal(t, 0, Percentage(3, 0))
}

func TestNormalizeKeepsPercentageConsistent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := MissionProgress{
			CurrentStep: rapid.IntRange(-10, 40).Draw(t, "step"),
			TotalSteps:  rapid.IntRange(-2, 30).Draw(t, "total"),
		}
		p.Normalize()

		if p.TotalSteps <= 0 || p.CurrentStep < 0 || p.CurrentStep > p.TotalSteps {
			t.Fatalf("steps out of range: %d/%d", p.CurrentStep, p.TotalSteps)
		}
		want := int(math.Round(float64(p.CurrentStep) / float64(p.TotalSteps) * 100))
		if p.ProgressPercentage != want {
			t.Fatalf("percentage %d, want %d", p.ProgressPercentage, want)
		}
	})
}

func TestMarkCompleted(t *testing.T) {
	now := time.Now()
	p := NewMissionProgress(1, "m", 0, now)
	assert.Equal(t, DefaultTotalSteps, p.TotalSteps)
	assert.Equal(t, "1-m", p.ID)

	p.MarkStarted(now)
	assert.Equal(t, StatusInProgress, p.Status)

	p.MarkCompleted(now)
	assert.True(t, p.IsCompleted())
	assert.Equal(t, 100, p.ProgressPercentage)
	assert.Equal(t, p.TotalSteps, p.CurrentStep)
	assert.NotNil(t, p.CompletedAt)
}

func TestUserTouchStreak(t *testing.T) {
	day := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	u := NewUser(Profile{ID: 1, FirstName: "A"}, 100, day)
	assert.Equal(t, 1, u.StreakDays)
	assert.Equal(t, DefaultLanguage, u.LanguageCode)
	assert.Equal(t, DefaultElementID, u.CurrentElementID)

	u.Touch(day.Add(3 * time.Hour))
	assert.Equal(t, 1, u.StreakDays)

	u.Touch(day.Add(24 * time.Hour))
	assert.Equal(t, 2, u.StreakDays)

	u.Touch(day.Add(4 * 24 * time.Hour))
	assert.Equal(t, 1, u.StreakDays)
}

func TestApplyProfileKeepsExistingFields(t *testing.T) {
	u := NewUser(Profile{ID: 1, FirstName: "A", Username: "a"}, 100, time.Now())
	u.ApplyProfile(Profile{ID: 1, FirstName: "B"})
	assert.Equal(t, "B", u.FirstName)
	assert.Equal(t, "a", u.Username)
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, 1, LevelFor(0))
	assert.Equal(t, 1, LevelFor(2))
	assert.Equal(t, 2, LevelFor(3))
	assert.Equal(t, 1, LevelFor(-1))
}

func TestDailyLimitInfo(t *testing.T) {
	info := NewDailyLimitInfo(20, 50)
	assert.Equal(t, int64(30), info.RemainingToday)
	assert.True(t, info.CanSend)

	info = NewDailyLimitInfo(60, 50)
	assert.Equal(t, int64(0), info.RemainingToday)
	assert.False(t, info.CanSend)
}

func TestReferralInvolves(t *testing.T) {
	r := Referral{ReferrerUserID: 1, ReferredUserID: 2}
	assert.True(t, r.Involves(2, 1))
	assert.False(t, r.Involves(1, 3))
}
