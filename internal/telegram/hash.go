package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// webAppKey - константа из документации Telegram для ключа проверки initData
const webAppKey = "WebAppData"

func secretKey(botToken string) []byte {
	h := hmac.New(sha256.New, []byte(webAppKey))
	h.Write([]byte(botToken))
	return h.Sum(nil)
}

// dataCheckString joins every field except hash as sorted "key=value" lines.
func dataCheckString(values url.Values) string {
	parts := make([]string, 0, len(values))
	for k, v := range values {
		if k == "hash" {
			continue
		}
		parts = append(parts, k+"="+strings.Join(v, ""))
	}
	sort.Strings(parts)
	return strings.Join(parts, "\n")
}

func sign(values url.Values, botToken string) []byte {
	h := hmac.New(sha256.New, secretKey(botToken))
	h.Write([]byte(dataCheckString(values)))
	return h.Sum(nil)
}

// SignInitData returns values encoded as init data with a valid hash.
// Used by the dev tools and tests to act as the Telegram client.
func SignInitData(values url.Values, botToken string) string {
	out := url.Values{}
	for k, v := range values {
		if k != "hash" {
			out[k] = append([]string(nil), v...)
		}
	}
	out.Set("hash", hex.EncodeToString(sign(out, botToken)))
	return out.Encode()
}
