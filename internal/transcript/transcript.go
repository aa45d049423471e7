// Package transcript holds the ordered chat history between the user and the
// workflow assistant.
package transcript

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who authored a message.
type Sender string

const (
	// SenderUser marks a message typed by the user.
	SenderUser Sender = "user"
	// SenderBot marks a reply or notice produced on behalf of the backend.
	SenderBot Sender = "bot"
)

// Message is one immutable entry of the transcript.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is an append-only, ordered list of messages. It is safe for
// concurrent use; each Append is atomic with respect to readers.
type Store struct {
	mu       sync.RWMutex
	messages []Message
	newID    func() string
	now      func() time.Time
}

// NewStore creates an empty transcript.
func NewStore() *Store {
	return &Store{
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// Append adds a message to the end of the transcript and returns it.
func (s *Store) Append(sender Sender, text string) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := Message{
		ID:        s.newID(),
		Sender:    sender,
		Text:      text,
		CreatedAt: s.now(),
	}
	s.messages = append(s.messages, m)
	return m
}

// Messages returns a copy of the full transcript in chronological order.
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the most recent message, if any.
func (s *Store) Last() (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}
