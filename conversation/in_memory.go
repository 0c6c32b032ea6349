package conversation

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/toolbridge/toolbridge/core"
	"github.com/toolbridge/toolbridge/logging"
)

// InMemoryStore is a volatile Store keeping conversations in a process local
// map. It is safe for concurrent access and suited for demo servers and
// tests. Get returns clones to prevent external mutation of internal state.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*core.Conversation
	logger        logging.Logger
}

// NewInMemoryStore constructs an empty in-memory conversation store.
func NewInMemoryStore(logger logging.Logger) *InMemoryStore {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &InMemoryStore{
		conversations: make(map[string]*core.Conversation),
		logger:        logger,
	}
}

// Create implements Store using a random UUID as the identifier.
func (s *InMemoryStore) Create() string {
	id := uuid.NewString()
	now := time.Now()
	s.mu.Lock()
	s.conversations[id] = &core.Conversation{ID: id, Created: now, Updated: now}
	s.mu.Unlock()
	s.logger.Info("conversation.created", "conversation_id", id)
	return id
}

// Get implements Store.
func (s *InMemoryStore) Get(id string) (*core.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, false
	}
	return conv.Clone(), true
}

// Append implements Store.
func (s *InMemoryStore) Append(id string, role core.Role, content string, metadata map[string]any) error {
	if !role.Valid() {
		return fmt.Errorf("conversation: invalid role %q", role)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	conv.Messages = append(conv.Messages, core.Message{
		Role:      role,
		Content:   content,
		Timestamp: now,
		Metadata:  metadata,
	})
	conv.Updated = now
	s.logger.Debug("conversation.appended", "conversation_id", id, "role", string(role))
	return nil
}

// Delete implements Store.
func (s *InMemoryStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[id]; !ok {
		return false
	}
	delete(s.conversations, id)
	s.logger.Info("conversation.deleted", "conversation_id", id)
	return true
}

// List implements Store. Output is sorted by creation time so repeated
// diagnostic listings are stable.
func (s *InMemoryStore) List() []core.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Summary, 0, len(s.conversations))
	for _, conv := range s.conversations {
		out = append(out, core.Summary{
			ID:           conv.ID,
			Created:      conv.Created,
			Updated:      conv.Updated,
			MessageCount: len(conv.Messages),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}
