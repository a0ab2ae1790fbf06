package support

import "sync"

// Topic classifies a user's request.
type Topic string

const (
	// TopicQuestion marks a chat opened via the "ask a question" flow.
	TopicQuestion Topic = "question"
	// TopicOrder marks a chat opened via the "place an order" flow.
	TopicOrder Topic = "order"
)

// ActiveChat represents one open user-initiated conversation awaiting
// or under admin handling.
type ActiveChat struct {
	UserID    int64
	MessageID int
	Name      string
	Text      string
	Topic     Topic
}

// Registry tracks open user chats keyed by user id. At most one chat per
// user exists; a new message from the same user overwrites the entry.
// Telebot serves every update in its own goroutine, so access is guarded.
type Registry struct {
	mu    sync.RWMutex
	chats map[int64]ActiveChat
	order []int64
}

// NewRegistry creates an empty active chat registry.
func NewRegistry() *Registry {
	return &Registry{
		chats: make(map[int64]ActiveChat),
	}
}

// Upsert adds or overwrites the chat for its user id.
// An overwritten chat keeps its original listing position.
func (r *Registry) Upsert(chat ActiveChat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.chats[chat.UserID]; !exists {
		r.order = append(r.order, chat.UserID)
	}
	r.chats[chat.UserID] = chat
}

// Get returns the chat for a user id if present.
func (r *Registry) Get(userID int64) (ActiveChat, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chat, ok := r.chats[userID]
	return chat, ok
}

// Remove deletes the chat for a user id and reports whether it existed.
func (r *Registry) Remove(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.chats[userID]; !ok {
		return false
	}
	delete(r.chats, userID)
	for i, id := range r.order {
		if id == userID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns all open chats in insertion order.
func (r *Registry) List() []ActiveChat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ActiveChat, 0, len(r.order))
	for _, id := range r.order {
		if chat, ok := r.chats[id]; ok {
			out = append(out, chat)
		}
	}
	return out
}

// Len reports the number of open chats.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chats)
}
