package platform

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Telegram credential validation errors. The HTTP layer maps these to the
// MISSING_TELEGRAM_DATA / INVALID_BOT_TOKEN error codes.
var (
	// ErrMissingInitData is returned when a mini-app request carries no
	// init data payload.
	ErrMissingInitData = errors.New("telegram init data is missing")

	// ErrInvalidInitData is returned when the init data signature does not
	// verify against the bot token, or the payload is structurally invalid.
	ErrInvalidInitData = errors.New("telegram init data is invalid")

	// ErrExpiredInitData is returned when the init data auth_date is older
	// than the allowed freshness window.
	ErrExpiredInitData = errors.New("telegram init data is expired")

	// ErrInvalidBotToken is returned when the webhook secret token does not
	// match the configured value.
	ErrInvalidBotToken = errors.New("telegram bot token is invalid")
)

// VerifyBotToken compares a webhook secret token against the configured one
// in constant time. An empty configured secret disables bot authentication
// (every presented token is rejected).
func VerifyBotToken(presented, configured string) error {
	if configured == "" || presented == "" {
		return ErrInvalidBotToken
	}
	if subtle.ConstantTimeCompare([]byte(presented), []byte(configured)) != 1 {
		return ErrInvalidBotToken
	}
	return nil
}

// VerifyInitData validates a Telegram WebApp init-data payload against the
// bot token, per the documented scheme: the payload is a URL-encoded form;
// its "hash" field must equal HMAC-SHA256 over the sorted key=value lines of
// the remaining fields, keyed by HMAC-SHA256("WebAppData", botToken).
//
// maxAge bounds the accepted age of the auth_date field; maxAge <= 0 skips
// the freshness check. On success the parsed form values are returned so the
// caller can extract the embedded user object.
func VerifyInitData(initData, botToken string, maxAge time.Duration, now time.Time) (url.Values, error) {
	if initData == "" {
		return nil, ErrMissingInitData
	}
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInvalidInitData
	}
	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, ErrInvalidInitData
	}

	// Data-check string: sorted key=value lines, hash excluded.
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "hash" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+values.Get(k))
	}
	checkString := strings.Join(lines, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	want := hex.EncodeToString(mac.Sum(nil))

	if subtle.ConstantTimeCompare([]byte(want), []byte(gotHash)) != 1 {
		return nil, ErrInvalidInitData
	}

	if maxAge > 0 {
		authDate := values.Get("auth_date")
		ts, err := parseUnix(authDate)
		if err != nil {
			return nil, ErrInvalidInitData
		}
		if now.Sub(ts) > maxAge {
			return nil, ErrExpiredInitData
		}
	}
	return values, nil
}

// parseUnix converts a decimal unix-seconds string to a time.Time.
func parseUnix(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	var sec int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return time.Time{}, errors.New("non-numeric timestamp")
		}
		sec = sec*10 + int64(r-'0')
	}
	return time.Unix(sec, 0), nil
}
