package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/agentloom/core"
)

// InMemoryStore is a volatile SessionStore keeping messages in a process
// local map. It is safe for concurrent access and best suited for tests or
// ephemeral demo servers. Messages are deep-copied on the way in and out to
// prevent external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages map[string]*core.Message
	chats    map[string][]string
}

// NewInMemoryStore constructs an empty in‑memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		messages: make(map[string]*core.Message),
		chats:    make(map[string][]string),
	}
}

// Save stores a copy of msg. Saving an existing id replaces the message.
func (s *InMemoryStore) Save(ctx context.Context, msg *core.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cp, err := cloneMessage(msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[msg.ID]; !ok {
		s.chats[msg.ChatID] = append(s.chats[msg.ChatID], msg.ID)
	}
	s.messages[msg.ID] = cp

	return nil
}

// Get returns a copy of the message with id.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*core.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	msg, ok := s.messages[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrMessageNotFound, id)
	}

	return cloneMessage(msg)
}

// ListByChat returns copies of a chat's messages, oldest first.
func (s *InMemoryStore) ListByChat(ctx context.Context, chatID string) ([]*core.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	ids := s.chats[chatID]
	out := make([]*core.Message, 0, len(ids))
	for _, id := range ids {
		cp, err := cloneMessage(s.messages[id])
		if err != nil {
			s.mu.RUnlock()
			return nil, err
		}
		out = append(out, cp)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	return out, nil
}

// cloneMessage deep-copies msg through its JSON form, which is also the
// form persisted by durable stores.
func cloneMessage(msg *core.Message) (*core.Message, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode message %s: %w", msg.ID, err)
	}

	var cp core.Message
	if err := json.Unmarshal(b, &cp); err != nil {
		return nil, fmt.Errorf("decode message %s: %w", msg.ID, err)
	}

	return &cp, nil
}
