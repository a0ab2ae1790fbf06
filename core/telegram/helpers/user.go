package helpers

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// DisplayName resolves a human-readable name for a Telegram user.
// Username is preferred, then first/last name, then the fallback.
func DisplayName(u *tele.User, fallback string) string {
	if u == nil {
		return fallback
	}
	if u.Username != "" {
		return u.Username
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	return fallback
}
