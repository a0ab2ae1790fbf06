package support

import (
	"github.com/K0rzet/obuffka-assistant/core/logger"
	tghelpers "github.com/K0rzet/obuffka-assistant/core/telegram/helpers"
	"github.com/K0rzet/obuffka-assistant/core/telegram/ui"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

var _ ui.FallbackProvider = (*Handlers)(nil)

// UnknownText ignores texts that matched nothing; the relay protocol treats
// them as no-ops rather than errors.
func (h *Handlers) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		logger.Debug(ctx, "support", "text.ignored",
			slog.String("status", "skip"),
			slog.String("payload", logger.SanitizeLimit(c.Text(), 128)),
		)
		return nil
	}
}

// UnknownDocument ignores non-text attachments; the flow is text only.
func (h *Handlers) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		logger.Debug(ctx, "support", "document.ignored",
			slog.String("status", "skip"),
		)
		return nil
	}
}

// UnknownCallback ignores unrecognized or malformed button payloads
// (for example "reply_abc"): no reply, no state change.
func (h *Handlers) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		logger.Debug(ctx, "support", "callback.ignored",
			slog.String("status", "skip"),
		)
		return nil
	}
}
