package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageStore is the in-memory conversation log, timestamp ascending by
// construction.
type MessageStore struct {
	mu       sync.RWMutex
	messages []*Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{}
}

func (s *MessageStore) Append(sender, content string) *Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	message := &Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now(),
	}
	s.messages = append(s.messages, message)
	return message
}

func (s *MessageStore) List() []*Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Message, len(s.messages))
	copy(out, s.messages)
	return out
}
