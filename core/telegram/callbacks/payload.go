// Package callbacks parses Telebot callback data into keys and typed payloads.
package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseCallbackData parses Telebot's \f<unique>|<payload> encoding.
// Returns unique and payload (may be empty).
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\\f")
	parts := strings.SplitN(raw, "|", 2)
	unique := strings.TrimSpace(parts[0])
	payload := ""
	if len(parts) == 2 {
		payload = parts[1]
	}
	return unique, payload
}

// CallbackKey returns cb.Unique if present; otherwise parses from Data.
func CallbackKey(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	k, _ := ParseCallbackData(cb)
	return k
}

// CallbackPayload returns payload (after '|') parsed from Data.
func CallbackPayload(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	_, payload := ParseCallbackData(cb)
	return payload
}

// PayloadInt parses callback payload as int.
func PayloadInt(c tele.Context) (int, error) {
	p := strings.TrimSpace(CallbackPayload(c))
	return strconv.Atoi(p)
}

// PayloadInt64 parses callback payload as int64.
func PayloadInt64(c tele.Context) (int64, error) {
	p := strings.TrimSpace(CallbackPayload(c))
	return strconv.ParseInt(p, 10, 64)
}
