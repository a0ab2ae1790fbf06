package support

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/K0rzet/obuffka-assistant/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

const testAdminID int64 = 99

type sentMessage struct {
	to   int64 // zero for replies into the current chat
	what interface{}
	opts []interface{}
}

func (m sentMessage) text() string {
	s, _ := m.what.(string)
	return s
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	id, _ := strconv.ParseInt(to.Recipient(), 10, 64)
	f.sent = append(f.sent, sentMessage{to: id, what: what, opts: opts})
	return &tele.Message{}, nil
}

// fakeContext implements the subset of tele.Context the handlers touch.
type fakeContext struct {
	tele.Context
	user     *tele.User
	msg      *tele.Message
	cb       *tele.Callback
	data     map[string]interface{}
	sent     []sentMessage
	failNext int
}

func textContext(user *tele.User, text string) *fakeContext {
	return &fakeContext{
		user: user,
		msg:  &tele.Message{ID: 1001, Text: text},
		data: make(map[string]interface{}),
	}
}

func callbackContext(user *tele.User, data string) *fakeContext {
	return &fakeContext{
		user: user,
		cb:   &tele.Callback{Data: data},
		data: make(map[string]interface{}),
	}
}

func (f *fakeContext) Sender() *tele.User { return f.user }

func (f *fakeContext) Chat() *tele.Chat {
	if f.user == nil {
		return nil
	}
	return &tele.Chat{ID: f.user.ID}
}

func (f *fakeContext) Message() *tele.Message { return f.msg }

func (f *fakeContext) Text() string {
	if f.msg == nil {
		return ""
	}
	return f.msg.Text
}

func (f *fakeContext) Callback() *tele.Callback { return f.cb }

func (f *fakeContext) Update() tele.Update { return tele.Update{ID: 1} }

func (f *fakeContext) Get(key string) interface{} { return f.data[key] }

func (f *fakeContext) Set(key string, val interface{}) { f.data[key] = val }

func (f *fakeContext) Respond(_ ...*tele.CallbackResponse) error { return nil }

func (f *fakeContext) Bot() tele.API { return nil }

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	if f.failNext > 0 {
		f.failNext--
		return errors.New("send failed")
	}
	f.sent = append(f.sent, sentMessage{what: what, opts: opts})
	return nil
}

func newTestHandlers() (*Handlers, *fakeSender, state.Manager, *Registry) {
	sessions := state.NewMemoryManager()
	chats := NewRegistry()
	out := &fakeSender{}
	h := NewHandlers(testAdminID, sessions, chats).WithSender(out)
	return h, out, sessions, chats
}

func markupOf(t *testing.T, msg sentMessage) *tele.ReplyMarkup {
	t.Helper()
	if len(msg.opts) == 0 {
		t.Fatal("expected send options with a keyboard")
	}
	so, ok := msg.opts[0].(*tele.SendOptions)
	if !ok || so.ReplyMarkup == nil {
		t.Fatalf("expected reply markup, got %#v", msg.opts[0])
	}
	return so.ReplyMarkup
}

func TestStartShowsRoleMenus(t *testing.T) {
	h, _, _, _ := newTestHandlers()

	admin := textContext(&tele.User{ID: testAdminID}, "/start")
	if err := h.OnStart(admin); err != nil {
		t.Fatalf("admin start: %v", err)
	}
	if len(admin.sent) != 1 || admin.sent[0].text() != TextAdminWelcome {
		t.Fatalf("unexpected admin greeting: %#v", admin.sent)
	}
	if kb := markupOf(t, admin.sent[0]); kb.ReplyKeyboard[0][0].Text != BtnShowChats {
		t.Fatalf("unexpected admin keyboard: %#v", kb.ReplyKeyboard)
	}

	user := textContext(&tele.User{ID: 7}, "/start")
	if err := h.OnStart(user); err != nil {
		t.Fatalf("user start: %v", err)
	}
	if len(user.sent) != 1 || user.sent[0].text() != TextChooseAction {
		t.Fatalf("unexpected user greeting: %#v", user.sent)
	}
	row := markupOf(t, user.sent[0]).ReplyKeyboard[0]
	if len(row) != 2 || row[0].Text != BtnAskQuestion || row[1].Text != BtnPlaceOrder {
		t.Fatalf("unexpected user keyboard row: %#v", row)
	}
}

func TestQuestionFlowForwardsToAdmin(t *testing.T) {
	h, out, sessions, chats := newTestHandlers()
	user := &tele.User{ID: 7, Username: "alice"}

	pick := textContext(user, BtnAskQuestion)
	if err := h.OnText(pick); err != nil {
		t.Fatalf("topic selection: %v", err)
	}
	if got := sessions.GetState(user.ID); got != StateWaiting {
		t.Fatalf("expected waiting state, got %q", got)
	}
	if len(pick.sent) != 1 || pick.sent[0].text() != TextDescribeQuestion {
		t.Fatalf("unexpected topic prompt: %#v", pick.sent)
	}

	ask := textContext(user, "почему не работает?")
	if err := h.ForwardText(ask); err != nil {
		t.Fatalf("forward: %v", err)
	}

	if len(out.sent) != 1 || out.sent[0].to != testAdminID {
		t.Fatalf("expected exactly one admin forward, got %#v", out.sent)
	}
	summary := out.sent[0].text()
	for _, want := range []string{"Новое обращение", "alice", "ID: 7", "почему не работает?"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q: %s", want, summary)
		}
	}
	if len(ask.sent) != 1 || ask.sent[0].text() != TextForwarded {
		t.Fatalf("expected exactly one confirmation, got %#v", ask.sent)
	}

	chat, ok := chats.Get(user.ID)
	if !ok {
		t.Fatal("expected registry entry for user 7")
	}
	if chat.Topic != TopicQuestion || chat.Text != "почему не работает?" {
		t.Fatalf("unexpected registry entry: %#v", chat)
	}
}

func TestSecondMessageOverwritesEntry(t *testing.T) {
	h, out, sessions, chats := newTestHandlers()
	user := &tele.User{ID: 7}
	sessions.SetTemp(user.ID, tempTopic, string(TopicOrder))
	sessions.SetState(user.ID, StateWaiting)

	if err := h.ForwardText(textContext(user, "first")); err != nil {
		t.Fatalf("first forward: %v", err)
	}
	if err := h.ForwardText(textContext(user, "second")); err != nil {
		t.Fatalf("second forward: %v", err)
	}

	if chats.Len() != 1 {
		t.Fatalf("expected single registry entry, got %d", chats.Len())
	}
	chat, _ := chats.Get(user.ID)
	if chat.Text != "second" {
		t.Fatalf("expected overwritten entry, got %q", chat.Text)
	}
	// The waiting flag survives a forward, so both messages reach the admin.
	if len(out.sent) != 2 {
		t.Fatalf("expected two admin forwards, got %d", len(out.sent))
	}
}

func TestReplyRoundTrip(t *testing.T) {
	h, out, sessions, chats := newTestHandlers()
	chats.Upsert(ActiveChat{UserID: 42, Text: "need 3 widgets", Topic: TopicOrder})
	admin := &tele.User{ID: testAdminID}

	press := callbackContext(admin, "reply_42")
	if err := h.ReplyCallback(press); err != nil {
		t.Fatalf("reply press: %v", err)
	}
	if len(press.sent) != 1 || !strings.Contains(press.sent[0].text(), "42") {
		t.Fatalf("unexpected drafting prompt: %#v", press.sent)
	}
	if got := sessions.GetState(testAdminID); got != StateDrafting {
		t.Fatalf("expected drafting state, got %q", got)
	}

	draft := textContext(admin, "Shipped!")
	if err := h.DraftReply(draft); err != nil {
		t.Fatalf("draft reply: %v", err)
	}
	if len(out.sent) != 1 || out.sent[0].to != 42 || out.sent[0].text() != "Shipped!" {
		t.Fatalf("expected verbatim delivery to user 42, got %#v", out.sent)
	}
	if len(draft.sent) != 1 || draft.sent[0].text() != TextReplySent {
		t.Fatalf("expected admin confirmation, got %#v", draft.sent)
	}
	if sessions.InProgress(testAdminID) {
		t.Fatal("drafting state should be cleared after delivery")
	}
	if _, ok := chats.Get(42); !ok {
		t.Fatal("a reply must not auto-close the chat")
	}

	// A second admin message without pressing reply again goes nowhere.
	second := textContext(admin, "also this")
	if err := h.OnText(second); err != nil {
		t.Fatalf("stray admin text: %v", err)
	}
	if len(out.sent) != 1 {
		t.Fatalf("stray admin text must not be delivered, got %#v", out.sent)
	}
	if len(second.sent) != 0 {
		t.Fatalf("stray admin text must not be answered, got %#v", second.sent)
	}
}

func TestDraftDeliveryFailureKeepsState(t *testing.T) {
	h, out, sessions, _ := newTestHandlers()
	admin := &tele.User{ID: testAdminID}
	sessions.SetTemp(testAdminID, tempReplyTo, int64(42))
	sessions.SetState(testAdminID, StateDrafting)
	out.err = errors.New("telegram unavailable")

	draft := textContext(admin, "Shipped!")
	if err := h.DraftReply(draft); err == nil {
		t.Fatal("expected delivery error to surface")
	}
	if len(draft.sent) != 0 {
		t.Fatalf("no confirmation on failure, got %#v", draft.sent)
	}
	if got := sessions.GetState(testAdminID); got != StateDrafting {
		t.Fatalf("drafting state must survive a failed delivery, got %q", got)
	}
}

func TestCloseChat(t *testing.T) {
	h, out, sessions, chats := newTestHandlers()
	chats.Upsert(ActiveChat{UserID: 42, Text: "hi", Topic: TopicQuestion})
	sessions.SetState(42, StateWaiting)
	admin := &tele.User{ID: testAdminID}

	press := callbackContext(admin, "close_42")
	if err := h.CloseCallback(press); err != nil {
		t.Fatalf("close press: %v", err)
	}
	if _, ok := chats.Get(42); ok {
		t.Fatal("entry must be removed on close")
	}
	if len(press.sent) != 1 || press.sent[0].text() != FormatChatClosed(42) {
		t.Fatalf("unexpected admin confirmation: %#v", press.sent)
	}
	if len(out.sent) != 1 || out.sent[0].to != 42 || out.sent[0].text() != TextChatClosedUser {
		t.Fatalf("expected closure notice to user, got %#v", out.sent)
	}
	if sessions.InProgress(42) {
		t.Fatal("closed user must return to idle")
	}

	// A reply press for the closed chat reports the miss.
	retry := callbackContext(admin, "reply_42")
	if err := h.ReplyCallback(retry); err != nil {
		t.Fatalf("reply press after close: %v", err)
	}
	if len(retry.sent) != 1 || retry.sent[0].text() != TextChatNotFound {
		t.Fatalf("expected chat-not-found reply, got %#v", retry.sent)
	}
}

func TestMalformedCallbackPayloadsAreNoOps(t *testing.T) {
	h, out, sessions, chats := newTestHandlers()
	chats.Upsert(ActiveChat{UserID: 42, Text: "hi"})
	admin := &tele.User{ID: testAdminID}

	for _, data := range []string{"reply_abc", "close_"} {
		c := callbackContext(admin, data)
		if err := h.ReplyCallback(c); err != nil {
			t.Fatalf("%s via reply handler: %v", data, err)
		}
		if err := h.CloseCallback(c); err != nil {
			t.Fatalf("%s via close handler: %v", data, err)
		}
		if len(c.sent) != 0 {
			t.Fatalf("%s must not be answered, got %#v", data, c.sent)
		}
	}
	if len(out.sent) != 0 {
		t.Fatalf("no outbound messages expected, got %#v", out.sent)
	}
	if sessions.InProgress(testAdminID) {
		t.Fatal("no state change expected")
	}
	if chats.Len() != 1 {
		t.Fatalf("registry must be untouched, got %d entries", chats.Len())
	}
}

func TestAdminReplyChainByIDMarker(t *testing.T) {
	h, out, _, _ := newTestHandlers()
	admin := &tele.User{ID: testAdminID}
	summary := FormatNewRequest(ActiveChat{UserID: 7, Name: "alice", Text: "hi", Topic: TopicQuestion})

	c := textContext(admin, "Ответ по вашему вопросу")
	c.msg.ReplyTo = &tele.Message{Text: summary}
	if err := h.OnText(c); err != nil {
		t.Fatalf("reply-chain text: %v", err)
	}
	if len(out.sent) != 1 || out.sent[0].to != 7 || out.sent[0].text() != "Ответ по вашему вопросу" {
		t.Fatalf("expected verbatim delivery to user 7, got %#v", out.sent)
	}
	if len(c.sent) != 1 || c.sent[0].text() != TextReplySent {
		t.Fatalf("expected admin confirmation, got %#v", c.sent)
	}

	// A reply to a message without the ID marker is silently ignored.
	plain := textContext(admin, "кому это?")
	plain.msg.ReplyTo = &tele.Message{Text: "просто текст"}
	if err := h.OnText(plain); err != nil {
		t.Fatalf("markerless reply: %v", err)
	}
	if len(out.sent) != 1 || len(plain.sent) != 0 {
		t.Fatalf("markerless reply must be a no-op, got %#v / %#v", out.sent, plain.sent)
	}
}

func TestShowActiveChatsEmpty(t *testing.T) {
	h, _, _, _ := newTestHandlers()
	c := textContext(&tele.User{ID: testAdminID}, BtnShowChats)

	if err := h.OnText(c); err != nil {
		t.Fatalf("show chats: %v", err)
	}
	if len(c.sent) != 1 || c.sent[0].text() != TextNoActiveChats {
		t.Fatalf("expected exactly one empty-listing reply, got %#v", c.sent)
	}
}

func TestShowActiveChatsListsEntriesWithActions(t *testing.T) {
	h, _, _, chats := newTestHandlers()
	chats.Upsert(ActiveChat{UserID: 42, Text: "need 3 widgets", Topic: TopicOrder})
	chats.Upsert(ActiveChat{UserID: 7, Text: "вопрос", Topic: TopicQuestion})
	c := textContext(&tele.User{ID: testAdminID}, BtnShowChats)

	if err := h.OnText(c); err != nil {
		t.Fatalf("show chats: %v", err)
	}
	if len(c.sent) != 2 {
		t.Fatalf("expected one message per entry, got %d", len(c.sent))
	}
	if !strings.Contains(c.sent[0].text(), "need 3 widgets") {
		t.Fatalf("expected insertion order, got %q first", c.sent[0].text())
	}
	row := markupOf(t, c.sent[0]).InlineKeyboard[0]
	if len(row) != 2 || row[0].Data != "reply_42" || row[1].Data != "close_42" {
		t.Fatalf("unexpected action buttons: %#v", row)
	}
}

func TestShowActiveChatsPartialFailure(t *testing.T) {
	h, _, _, chats := newTestHandlers()
	chats.Upsert(ActiveChat{UserID: 1, Text: "a"})
	chats.Upsert(ActiveChat{UserID: 2, Text: "b"})
	c := textContext(&tele.User{ID: testAdminID}, BtnShowChats)
	c.failNext = 1

	if err := h.ShowActiveChats(c); err != nil {
		t.Fatalf("listing failure must be caught, got %v", err)
	}
	if len(c.sent) != 1 || c.sent[0].text() != TextShowChatsError {
		t.Fatalf("expected one generic error reply, got %#v", c.sent)
	}
}
