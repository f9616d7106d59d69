package telegram

import (
	"net/url"
	"strconv"
	"strings"
)

const refPrefix = "ref_"

// ReferralPayload - параметр /start и startapp для приглашения
func ReferralPayload(userID int64) string {
	return refPrefix + strconv.FormatInt(userID, 10)
}

// ParseRefPayload extracts the inviter id from "ref_<id>".
func ParseRefPayload(payload string) (int64, bool) {
	payload = strings.TrimSpace(payload)
	if !strings.HasPrefix(payload, refPrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(payload, refPrefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ReferralLink opens a chat with the bot and sends /start ref_<id>.
func ReferralLink(botUsername string, userID int64) string {
	return "https://t.me/" + strings.TrimPrefix(botUsername, "@") + "?start=" + ReferralPayload(userID)
}

// MiniAppLink opens the Mini App directly with start_param=ref_<id>.
func MiniAppLink(botUsername, shortName string, userID int64) string {
	return "https://t.me/" + strings.TrimPrefix(botUsername, "@") + "/" + shortName + "?startapp=" + ReferralPayload(userID)
}

// WebAppURL - адрес, который бот открывает кнопкой web_app.
// newUserID > 0 помечает приглашённого, которого ещё нет в базе.
func WebAppURL(base string, referrerID, newUserID int64) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	if referrerID > 0 {
		q.Set("referrer", strconv.FormatInt(referrerID, 10))
	}
	if newUserID > 0 {
		q.Set("new_user", strconv.FormatInt(newUserID, 10))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
