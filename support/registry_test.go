package support

import "testing"

func TestRegistryUpsertOverwrites(t *testing.T) {
	reg := NewRegistry()
	reg.Upsert(ActiveChat{UserID: 7, Text: "first", Topic: TopicQuestion})
	reg.Upsert(ActiveChat{UserID: 7, Text: "second", Topic: TopicQuestion})

	if got := reg.Len(); got != 1 {
		t.Fatalf("expected 1 entry, got %d", got)
	}
	chat, ok := reg.Get(7)
	if !ok {
		t.Fatal("expected entry for user 7")
	}
	if chat.Text != "second" {
		t.Fatalf("expected overwritten text, got %q", chat.Text)
	}
}

func TestRegistryListKeepsInsertionOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Upsert(ActiveChat{UserID: 3, Text: "a"})
	reg.Upsert(ActiveChat{UserID: 1, Text: "b"})
	reg.Upsert(ActiveChat{UserID: 2, Text: "c"})
	// Overwriting must not move the entry.
	reg.Upsert(ActiveChat{UserID: 3, Text: "a2"})

	list := reg.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(list))
	}
	wantOrder := []int64{3, 1, 2}
	for i, id := range wantOrder {
		if list[i].UserID != id {
			t.Fatalf("position %d: expected user %d, got %d", i, id, list[i].UserID)
		}
	}
	if list[0].Text != "a2" {
		t.Fatalf("expected overwritten text at original position, got %q", list[0].Text)
	}
}

func TestRegistryRemove(t *testing.T) {
	reg := NewRegistry()
	reg.Upsert(ActiveChat{UserID: 42, Text: "x"})

	if !reg.Remove(42) {
		t.Fatal("expected removal of existing entry")
	}
	if reg.Remove(42) {
		t.Fatal("expected second removal to report missing entry")
	}
	if _, ok := reg.Get(42); ok {
		t.Fatal("entry still present after removal")
	}
	if got := len(reg.List()); got != 0 {
		t.Fatalf("expected empty listing, got %d entries", got)
	}
}
