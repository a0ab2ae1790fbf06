package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		key     string
		payload string
	}{
		{"action with id", "reply_42", "reply", "42"},
		{"close action", "close_17", "close", "17"},
		{"telebot encoding", "\fmenu|12", "menu", "12"},
		{"telebot without payload", "\fcancel", "cancel", ""},
		{"action without digits", "close_", "close_", ""},
		{"action with letters", "reply_abc", "reply_abc", ""},
		{"empty", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, payload := ParseCallbackData(&tele.Callback{Data: tc.data})
			if key != tc.key || payload != tc.payload {
				t.Fatalf("ParseCallbackData(%q) = (%q, %q), expected (%q, %q)",
					tc.data, key, payload, tc.key, tc.payload)
			}
		})
	}
}

func TestParseCallbackDataNil(t *testing.T) {
	key, payload := ParseCallbackData(nil)
	if key != "" || payload != "" {
		t.Fatalf("expected empty result for nil callback, got (%q, %q)", key, payload)
	}
}

type callbackOnlyContext struct {
	tele.Context
	cb *tele.Callback
}

func (c callbackOnlyContext) Callback() *tele.Callback { return c.cb }

func TestPayloadInt64(t *testing.T) {
	c := callbackOnlyContext{cb: &tele.Callback{Data: "reply_42"}}
	got, err := PayloadInt64(c)
	if err != nil {
		t.Fatalf("PayloadInt64: %v", err)
	}
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}

	bad := callbackOnlyContext{cb: &tele.Callback{Data: "reply_abc"}}
	if _, err := PayloadInt64(bad); err == nil {
		t.Fatal("expected parse error for non-numeric payload")
	}
}
