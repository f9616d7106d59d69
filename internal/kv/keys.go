package kv

import (
	"strconv"
	"time"
)

// Key prefixes. They match the layout the web client has always used so
// existing Redis data stays readable.
const (
	prefixUser              = "user:"
	prefixProgress          = "progress:"
	prefixArtifacts         = "artifacts:"
	prefixReferrals         = "referrals:"
	prefixReferralPair      = "ref:"
	prefixDailyLight        = "daily_light:"
	prefixAvailableMissions = "available_missions:"
	prefixLedger            = "ledger:"
)

const DayLayout = "2006-01-02"

func id(v int64) string { return strconv.FormatInt(v, 10) }

func UserKey(userID int64) string              { return prefixUser + id(userID) }
func ProgressKey(userID int64) string          { return prefixProgress + id(userID) }
func ArtifactsKey(userID int64) string         { return prefixArtifacts + id(userID) }
func ReferralsKey(userID int64) string         { return prefixReferrals + id(userID) }
func AvailableMissionsKey(userID int64) string { return prefixAvailableMissions + id(userID) }
func LedgerKey(userID int64) string            { return prefixLedger + id(userID) }

// ReferralPairKey is the same for (a, b) and (b, a).
func ReferralPairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return prefixReferralPair + id(a) + ":" + id(b)
}

// DailyLightKey buckets by UTC calendar day.
func DailyLightKey(userID int64, day time.Time) string {
	return prefixDailyLight + id(userID) + ":" + day.UTC().Format(DayLayout)
}
