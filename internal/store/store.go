// Package store holds the in-memory ordered conversation log. Every mutating
// operation owns the mutex for its full duration, so a sync merge can safely
// interleave with optimistic appends.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"free-chat-client/internal/domain"
)

const defaultMatchWindow = 10 * time.Second

type Store struct {
	mu          sync.RWMutex
	messages    []domain.Message
	matchWindow time.Duration
}

func NewStore(matchWindow time.Duration) *Store {
	if matchWindow <= 0 {
		matchWindow = defaultMatchWindow
	}
	return &Store{matchWindow: matchWindow}
}

// AppendPending inserts a locally authored message at the end of the visible
// order and returns its local id.
func (s *Store) AppendPending(sender, content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	localID := uuid.NewString()
	s.messages = append(s.messages, domain.Message{
		ID:        localID,
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now(),
		Status:    domain.StatusPending,
	})
	return localID
}

// MarkFailed transitions a pending entry to failed. The entry stays visible
// until the server confirms a matching message or the caller removes it.
func (s *Store) MarkFailed(localID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == localID && s.messages[i].Status == domain.StatusPending {
			s.messages[i].Status = domain.StatusFailed
			return true
		}
	}
	return false
}

// Remove drops a local (pending or failed) entry by id.
func (s *Store) Remove(localID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == localID && s.messages[i].IsLocal() {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return true
		}
	}
	return false
}

// ReplaceAll merges server truth with any still-local entries. A local entry
// matched by a server record (same sender and content inside the timestamp
// window) is superseded and dropped; unmatched local entries survive. Server
// entries sharing a server-assigned id are deduplicated, first one wins.
func (s *Store) ReplaceAll(serverMessages []domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]domain.Message, 0, len(serverMessages)+4)
	seen := make(map[string]struct{}, len(serverMessages))
	for _, m := range serverMessages {
		if m.ID != "" {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
		}
		m.Status = domain.StatusConfirmed
		merged = append(merged, m)
	}

	for _, local := range s.messages {
		if !local.IsLocal() {
			continue
		}
		if s.matchesAny(local, merged) {
			continue
		}
		merged = append(merged, local)
	}

	// Stable keeps already-confirmed entries in server order when timestamps
	// collide.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	s.messages = merged
}

func (s *Store) matchesAny(local domain.Message, server []domain.Message) bool {
	for _, m := range server {
		if m.Sender != local.Sender || m.Content != local.Content {
			continue
		}
		diff := m.Timestamp.Sub(local.Timestamp)
		if diff < 0 {
			diff = -diff
		}
		if diff <= s.matchWindow {
			return true
		}
	}
	return false
}

// Messages returns a copy of the visible conversation.
func (s *Store) Messages() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len reports the number of visible entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Clear empties the conversation. Called on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}
