package support

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/K0rzet/obuffka-assistant/core/logger"
	coretelegram "github.com/K0rzet/obuffka-assistant/core/telegram"
	"github.com/K0rzet/obuffka-assistant/core/telegram/callbacks"
	"github.com/K0rzet/obuffka-assistant/core/telegram/commands"
	tghelpers "github.com/K0rzet/obuffka-assistant/core/telegram/helpers"
	"github.com/K0rzet/obuffka-assistant/core/telegram/keyboard"
	"github.com/K0rzet/obuffka-assistant/core/telegram/state"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// FSM states used by the support flow.
const (
	// StateWaiting marks a user who picked a topic; every further text
	// message is forwarded to the admin. The state is deliberately not
	// cleared after a forward, so repeated messages keep overwriting the
	// registry entry.
	StateWaiting state.State = "support_waiting"
	// StateDrafting marks the admin while composing a reply to one user.
	StateDrafting state.State = "admin_drafting"
)

// Session temp data keys.
const (
	tempTopic   = "support_topic"
	tempReplyTo = "support_reply_to"
)

// Callback routing keys; on the wire the payloads look like "reply_42".
const (
	CallbackReply = "reply"
	CallbackClose = "close"
)

// replyChainRe extracts the origin user id from a forwarded summary the
// admin replied to. This textual back-reference is the only binding
// between a plain admin reply and its recipient.
var replyChainRe = regexp.MustCompile(`ID: (\d+)`)

// Sender delivers messages to arbitrary recipients. *tele.Bot satisfies it.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Handlers routes bot updates for the user↔admin relay flow.
type Handlers struct {
	adminID  int64
	sessions state.Manager
	chats    *Registry
	out      Sender
}

// NewHandlers builds the support routing handlers.
func NewHandlers(adminID int64, sessions state.Manager, chats *Registry) *Handlers {
	return &Handlers{
		adminID:  adminID,
		sessions: sessions,
		chats:    chats,
	}
}

// WithSender overrides outbound delivery. Without an override messages are
// sent through the bot instance carried by the incoming update.
func (h *Handlers) WithSender(s Sender) *Handlers {
	h.out = s
	return h
}

// Register wires commands, callbacks, fallbacks, and FSM states into the registry.
func (h *Handlers) Register(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.OnStart,
		Description: "Начать диалог",
	})
	reg.RegisterCommand("/chats", commands.Command{
		Handler:     h.ShowActiveChats,
		Description: "Показать активные чаты",
		AdminOnly:   true,
		Hidden:      true,
	})
	_ = reg.RegisterCallback(CallbackReply, h.ReplyCallback)
	_ = reg.RegisterCallback(CallbackClose, h.CloseCallback)
	reg.SetTextFallback(h.OnText)
	reg.SetCallbackNotFound(h.UnknownCallback())

	state.RegisterHandler(StateWaiting, h.ForwardText)
	state.RegisterHandler(StateDrafting, h.DraftReply)
}

func (h *Handlers) isAdmin(u *tele.User) bool {
	return u != nil && u.ID == h.adminID
}

func (h *Handlers) sender(c tele.Context) Sender {
	if h.out != nil {
		return h.out
	}
	return c.Bot()
}

// OnStart shows the role-specific menu. No state is touched.
func (h *Handlers) OnStart(c tele.Context) error {
	if h.isAdmin(c.Sender()) {
		markup := keyboard.ReplyButtons([]string{BtnShowChats})
		return tghelpers.SendText(c, TextAdminWelcome, &tele.SendOptions{ReplyMarkup: markup})
	}
	markup := keyboard.ReplyButtons([]string{BtnAskQuestion, BtnPlaceOrder})
	return tghelpers.SendText(c, TextChooseAction, &tele.SendOptions{ReplyMarkup: markup})
}

// OnText handles text messages from senders with no active FSM state:
// topic selection for users, listing and reply-chain replies for the admin.
// Anything else is a silent no-op.
func (h *Handlers) OnText(c tele.Context) error {
	text := c.Text()
	if h.isAdmin(c.Sender()) {
		return h.adminText(c, text)
	}
	switch text {
	case BtnAskQuestion:
		return h.startTopic(c, TopicQuestion)
	case BtnPlaceOrder:
		return h.startTopic(c, TopicOrder)
	}
	return nil
}

func (h *Handlers) adminText(c tele.Context, text string) error {
	if text == BtnShowChats {
		return h.ShowActiveChats(c)
	}

	msg := c.Message()
	if msg == nil || msg.ReplyTo == nil {
		return nil
	}
	m := replyChainRe.FindStringSubmatch(msg.ReplyTo.Text)
	if m == nil {
		ctx := tghelpers.BuildContext(c)
		logger.Debug(ctx, "support", "reply_chain.skip",
			slog.String("status", "skip"),
			slog.String("reason", "no_id_marker"),
		)
		return nil
	}
	target, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil
	}

	if _, err := h.sender(c).Send(&tele.User{ID: target}, text); err != nil {
		ctx := tghelpers.BuildContext(c)
		logger.Error(ctx, "support", "reply_chain.deliver",
			slog.String("status", "fail"),
			slog.Int64("target_id", target),
			slog.String("err", err.Error()),
		)
		return err
	}
	return c.Send(TextReplySent)
}

func (h *Handlers) startTopic(c tele.Context, topic Topic) error {
	userID := c.Sender().ID
	h.sessions.SetTemp(userID, tempTopic, string(topic))
	h.sessions.SetState(userID, StateWaiting)

	prompt := TextDescribeQuestion
	if topic == TopicOrder {
		prompt = TextDescribeOrder
	}
	return tghelpers.SendText(c, prompt)
}

func (h *Handlers) topicOf(userID int64) Topic {
	if v, ok := h.sessions.GetTemp(userID, tempTopic); ok {
		if s, ok := v.(string); ok && Topic(s) == TopicOrder {
			return TopicOrder
		}
	}
	return TopicQuestion
}

// ForwardText runs for users in StateWaiting: the message body becomes the
// registry entry for that user (overwriting any previous one) and a summary
// goes to the admin. Topic labels restart topic selection instead.
func (h *Handlers) ForwardText(c tele.Context) error {
	text := c.Text()
	switch text {
	case BtnAskQuestion:
		return h.startTopic(c, TopicQuestion)
	case BtnPlaceOrder:
		return h.startTopic(c, TopicOrder)
	}

	from := c.Sender()
	entry := ActiveChat{
		UserID: from.ID,
		Name:   tghelpers.DisplayName(from, TextUserFallback),
		Text:   text,
		Topic:  h.topicOf(from.ID),
	}
	if msg := c.Message(); msg != nil {
		entry.MessageID = msg.ID
	}
	h.chats.Upsert(entry)

	ctx := tghelpers.BuildContext(c)
	if _, err := h.sender(c).Send(&tele.User{ID: h.adminID}, FormatNewRequest(entry)); err != nil {
		logger.Error(ctx, "support", "forward.deliver",
			slog.String("status", "fail"),
			slog.String("topic", string(entry.Topic)),
			slog.String("err", err.Error()),
		)
		return err
	}
	logger.Info(ctx, "support", "forward.accepted",
		slog.String("status", "ok"),
		slog.String("topic", string(entry.Topic)),
		slog.Int("chats", h.chats.Len()),
	)
	return c.Send(TextForwarded)
}

// DraftReply runs for the admin in StateDrafting: the message body is
// delivered verbatim to the drafting target. On delivery failure the
// drafting state is kept so the admin can retry.
func (h *Handlers) DraftReply(c tele.Context) error {
	adminID := c.Sender().ID
	target, ok := h.sessions.GetTempInt64(adminID, tempReplyTo)
	if !ok {
		h.sessions.ClearState(adminID)
		return nil
	}

	if _, err := h.sender(c).Send(&tele.User{ID: target}, c.Text()); err != nil {
		ctx := tghelpers.BuildContext(c)
		logger.Error(ctx, "support", "draft.deliver",
			slog.String("status", "fail"),
			slog.Int64("target_id", target),
			slog.String("err", err.Error()),
		)
		return err
	}

	h.sessions.ClearTemp(adminID, tempReplyTo)
	h.sessions.ClearState(adminID)
	return c.Send(TextReplySent)
}

// ReplyCallback handles the inline "reply" button for one active chat.
func (h *Handlers) ReplyCallback(c tele.Context) error {
	target, err := callbacks.PayloadInt64(c)
	if err != nil {
		return nil
	}
	if _, ok := h.chats.Get(target); !ok {
		return c.Send(TextChatNotFound)
	}

	adminID := c.Sender().ID
	h.sessions.SetTemp(adminID, tempReplyTo, target)
	h.sessions.SetState(adminID, StateDrafting)
	return c.Send(FormatReplyPrompt(target))
}

// CloseCallback handles the inline "close" button: the registry entry is
// dropped, the admin gets a confirmation, the user a closure notice, and
// the user's session returns to idle.
func (h *Handlers) CloseCallback(c tele.Context) error {
	target, err := callbacks.PayloadInt64(c)
	if err != nil {
		return nil
	}
	if !h.chats.Remove(target) {
		return nil
	}
	h.sessions.ClearTemp(target, tempTopic)
	h.sessions.ClearState(target)

	if err := c.Send(FormatChatClosed(target)); err != nil {
		return err
	}
	if _, err := h.sender(c).Send(&tele.User{ID: target}, TextChatClosedUser); err != nil {
		ctx := tghelpers.BuildContext(c)
		logger.Error(ctx, "support", "close.notify",
			slog.String("status", "fail"),
			slog.Int64("target_id", target),
			slog.String("err", err.Error()),
		)
		return err
	}
	return nil
}

// ShowActiveChats lists every open chat with reply/close actions. A send
// failure mid-listing aborts the enumeration and reports one generic error
// to the admin instead of crashing the handler.
func (h *Handlers) ShowActiveChats(c tele.Context) error {
	chats := h.chats.List()
	if len(chats) == 0 {
		markup := keyboard.ReplyButtons([]string{BtnShowChats})
		return c.Send(TextNoActiveChats, &tele.SendOptions{ReplyMarkup: markup})
	}

	for _, chat := range chats {
		markup := keyboard.RawInlineRows([]keyboard.RawBtn{
			{Text: BtnReply, Data: fmt.Sprintf("%s_%d", CallbackReply, chat.UserID)},
			{Text: BtnClose, Data: fmt.Sprintf("%s_%d", CallbackClose, chat.UserID)},
		})
		if err := c.Send(FormatChatSummary(chat), &tele.SendOptions{ReplyMarkup: markup}); err != nil {
			ctx := tghelpers.BuildContext(c)
			logger.Error(ctx, "support", "chats.render",
				slog.String("status", "fail"),
				slog.Int("chats", len(chats)),
				slog.String("err", err.Error()),
			)
			return c.Send(TextShowChatsError)
		}
	}
	return nil
}
