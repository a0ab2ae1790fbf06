package callbacks

import (
	"regexp"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// actionDataRe matches bare action payloads like "reply_42" or "close_42"
// attached to inline buttons as raw callback data.
var actionDataRe = regexp.MustCompile(`^([a-z_]+?)_(\d+)$`)

// ParseCallbackData parses callback data into a routing key and payload.
// Two encodings are recognized:
//   - Telebot's \f<unique>|<payload>
//   - bare <action>_<digits>, where the digits become the payload
//
// Returns key and payload (may be empty).
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	raw := cb.Data
	if !strings.HasPrefix(raw, "\f") && !strings.Contains(raw, "|") {
		if m := actionDataRe.FindStringSubmatch(raw); m != nil {
			return m[1], m[2]
		}
	}
	// Telebot encodes like: \f<unique>|<payload>
	raw = strings.TrimPrefix(raw, "\f")
	// Split once: unique | payload?
	parts := strings.SplitN(raw, "|", 2)
	unique := strings.TrimSpace(parts[0])
	payload := ""
	if len(parts) == 2 {
		payload = parts[1]
	}
	return unique, payload
}

// CallbackKey returns the routing key parsed from callback data.
func CallbackKey(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	k, _ := ParseCallbackData(cb)
	return k
}

// CallbackPayload returns the payload parsed from callback data.
func CallbackPayload(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	_, payload := ParseCallbackData(cb)
	return payload
}
