package domain

import "time"

const (
	DefaultLanguage = "ru"
	// Вода - стихия, с которой начинает каждый пользователь
	DefaultElementID = "f2e4e168-e5a9-4a9c-b829-3e2c1a8a0b1a"
	MissionsPerLevel = 3
)

type User struct {
	ID                     int64     `json:"id"` // telegram id
	FirstName              string    `json:"first_name"`
	LastName               string    `json:"last_name,omitempty"`
	Username               string    `json:"username,omitempty"`
	PhotoURL               string    `json:"photo_url,omitempty"`
	LanguageCode           string    `json:"language_code"`
	CurrentElementID       string    `json:"current_element_id"`
	LightBalance           int64     `json:"light_balance"`
	Level                  int       `json:"level"`
	TotalMissionsCompleted int       `json:"total_missions_completed"`
	TotalMeditationMinutes int       `json:"total_meditation_minutes"`
	StreakDays             int       `json:"streak_days"`
	LastActivity           time.Time `json:"last_activity"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Profile - поля профиля, которые приходят из Telegram при каждом открытии
type Profile struct {
	ID           int64  `json:"id" validate:"required,gt=0"`
	FirstName    string `json:"first_name" validate:"max=256"`
	LastName     string `json:"last_name,omitempty" validate:"max=256"`
	Username     string `json:"username,omitempty" validate:"max=64"`
	PhotoURL     string `json:"photo_url,omitempty" validate:"omitempty,url"`
	LanguageCode string `json:"language_code,omitempty" validate:"max=16"`
}

// NewUser builds a fresh account with the starting balance.
func NewUser(p Profile, startingLight int64, now time.Time) User {
	lang := p.LanguageCode
	if lang == "" {
		lang = DefaultLanguage
	}
	return User{
		ID:               p.ID,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Username:         p.Username,
		PhotoURL:         p.PhotoURL,
		LanguageCode:     lang,
		CurrentElementID: DefaultElementID,
		LightBalance:     startingLight,
		Level:            1,
		StreakDays:       1,
		LastActivity:     now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// ApplyProfile обновляет поля профиля, пустые значения не затирают сохранённые
func (u *User) ApplyProfile(p Profile) {
	if p.FirstName != "" {
		u.FirstName = p.FirstName
	}
	if p.LastName != "" {
		u.LastName = p.LastName
	}
	if p.Username != "" {
		u.Username = p.Username
	}
	if p.PhotoURL != "" {
		u.PhotoURL = p.PhotoURL
	}
	if p.LanguageCode != "" {
		u.LanguageCode = p.LanguageCode
	}
}

// Touch records activity at now and maintains the daily streak (UTC days).
func (u *User) Touch(now time.Time) {
	last := u.LastActivity.UTC().Truncate(24 * time.Hour)
	today := now.UTC().Truncate(24 * time.Hour)
	switch days := int(today.Sub(last).Hours() / 24); {
	case u.LastActivity.IsZero():
		u.StreakDays = 1
	case days == 1:
		u.StreakDays++
	case days > 1:
		u.StreakDays = 1
	}
	if u.StreakDays < 1 {
		u.StreakDays = 1
	}
	u.LastActivity = now
}

// LevelFor - уровень по числу пройденных миссий
func LevelFor(missionsCompleted int) int {
	if missionsCompleted < 0 {
		missionsCompleted = 0
	}
	return 1 + missionsCompleted/MissionsPerLevel
}

// DisplayName returns first name, then @username, then the id.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return "@" + u.Username
	default:
		return "user"
	}
}
