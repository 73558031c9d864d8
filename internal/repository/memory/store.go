// Package memory provides the default, process-local storage backend for
// the message log and the auto-reply configuration.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oggyb/wa-autoreply/internal/domain/botconfig"
	"github.com/oggyb/wa-autoreply/internal/domain/message"
)

// Store keeps messages and the bot configuration in memory. Nothing
// survives a restart. A single lock guards both collections.
type Store struct {
	mu       sync.RWMutex
	messages []*message.Message
	byID     map[string]*message.Message
	config   botconfig.Config

	now func() time.Time
}

// NewStore creates an empty store whose configuration starts from def.
func NewStore(def botconfig.Config) *Store {
	if def.ID == "" {
		def.ID = uuid.NewString()
	}
	return &Store{
		byID:   make(map[string]*message.Message),
		config: def,
		now:    time.Now,
	}
}

// Create stamps m with an id and timestamp and appends a copy to the log.
func (s *Store) Create(_ context.Context, m *message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.Stamp(s.now())

	stored := *m
	s.messages = append(s.messages, &stored)
	s.byID[stored.ID] = &stored
	return nil
}

// List returns copies of the newest messages first. Messages sharing a
// timestamp come out in reverse insertion order.
func (s *Store) List(_ context.Context, limit int) ([]*message.Message, error) {
	if limit <= 0 {
		limit = message.DefaultListLimit
	}

	s.mu.RLock()
	out := make([]*message.Message, 0, len(s.messages))
	for i := len(s.messages) - 1; i >= 0; i-- {
		c := *s.messages[i]
		out = append(out, &c)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get returns a copy of the message with the given id.
func (s *Store) Get(_ context.Context, id string) (*message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.byID[id]
	if !ok {
		return nil, message.ErrNotFound
	}
	c := *m
	return &c, nil
}

// Stats counts the stored messages against now under a single read lock.
func (s *Store) Stats(_ context.Context, now time.Time) (message.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return message.CountStats(s.messages, now), nil
}

// GetConfig returns the current configuration.
func (s *Store) GetConfig(_ context.Context) (botconfig.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config, nil
}

// UpdateConfig merges p into the configuration and returns the result.
func (s *Store) UpdateConfig(_ context.Context, p botconfig.Patch) (botconfig.Config, error) {
	if err := p.Validate(); err != nil {
		return botconfig.Config{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.config = p.Apply(s.config)
	return s.config, nil
}

var (
	_ message.Repository   = (*Store)(nil)
	_ botconfig.Repository = (*Store)(nil)
)
