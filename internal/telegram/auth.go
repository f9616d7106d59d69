package telegram

import (
	"crypto/hmac"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"

	"alchemy_webapp/internal/domain"
)

const (
	// MaxInitDataLen - больше этого Telegram не присылает
	MaxInitDataLen = 4096
	DefaultMaxAge  = time.Hour
	// допустимое расхождение часов клиента
	clockSkew = 5 * time.Minute
)

var (
	ErrInitDataTooLong = errors.New("init_data too long")
	ErrMalformed       = errors.New("malformed init_data")
	ErrMissingHash     = errors.New("init_data hash is missing")
	ErrBadSignature    = errors.New("init_data signature mismatch")
	ErrStale           = errors.New("init_data is stale")
	ErrNoUser          = errors.New("init_data has no user")
)

// WebAppUser - объект user из initData
type WebAppUser struct {
	ID           int64  `json:"id"`
	IsBot        bool   `json:"is_bot,omitempty"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

func (u WebAppUser) Profile() domain.Profile {
	return domain.Profile{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Username:     u.Username,
		PhotoURL:     u.PhotoURL,
		LanguageCode: u.LanguageCode,
	}
}

// InitData is the verified payload the Mini App sends on start.
type InitData struct {
	User       WebAppUser
	AuthDate   time.Time
	StartParam string
	QueryID    string
	Raw        url.Values
}

// ValidateInitData checks the initData signature with the bot token and
// rejects payloads older than maxAge (0 disables the age check).
func ValidateInitData(initData, botToken string, maxAge time.Duration, now time.Time) (*InitData, error) {
	if len(initData) > MaxInitDataLen {
		return nil, ErrInitDataTooLong
	}
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrMalformed
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, ErrMissingHash
	}
	provided, err := hex.DecodeString(hash)
	if err != nil {
		return nil, ErrBadSignature
	}
	if !hmac.Equal(sign(values, botToken), provided) {
		return nil, ErrBadSignature
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, ErrMalformed
	}
	issued := time.Unix(authDate, 0)
	if maxAge > 0 && (now.Sub(issued) > maxAge || issued.Sub(now) > clockSkew) {
		return nil, ErrStale
	}

	data, err := parse(values)
	if err != nil {
		return nil, err
	}
	data.AuthDate = issued
	return data, nil
}

// ParseInitData reads the payload without checking the signature (DEV_MODE only).
func ParseInitData(initData string) (*InitData, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrMalformed
	}
	data, err := parse(values)
	if err != nil {
		return nil, err
	}
	if ts, err := strconv.ParseInt(values.Get("auth_date"), 10, 64); err == nil {
		data.AuthDate = time.Unix(ts, 0)
	}
	return data, nil
}

func parse(values url.Values) (*InitData, error) {
	raw := values.Get("user")
	if raw == "" {
		return nil, ErrNoUser
	}
	var u WebAppUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID <= 0 {
		return nil, ErrNoUser
	}
	return &InitData{
		User:       u,
		StartParam: values.Get("start_param"),
		QueryID:    values.Get("query_id"),
		Raw:        values,
	}, nil
}
