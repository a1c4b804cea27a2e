// Package memory provides an in-process project store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agentgraph/agentgraph/internal/core/project"
	"github.com/agentgraph/agentgraph/pkg/serialization"
)

// Store implements project.Store on a map guarded by a RWMutex. Documents
// are kept encoded so callers never share state with the store.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	serializer *serialization.Serializer
	now        func() time.Time
}

type entry struct {
	meta project.Record // Document is always nil here
	data []byte
}

// Option configures a Store.
type Option func(*Store)

// WithSerializer overrides the document encoding.
func WithSerializer(s *serialization.Serializer) Option {
	return func(st *Store) { st.serializer = s }
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(st *Store) { st.now = now }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		entries:    make(map[string]*entry),
		serializer: serialization.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores r, assigning its revision and timestamps.
func (s *Store) Save(_ context.Context, r *project.Record) error {
	if r == nil {
		return project.ErrInvalidProjectID
	}
	if err := r.Validate(); err != nil {
		return err
	}
	data, err := s.serializer.Marshal(r.Document)
	if err != nil {
		return fmt.Errorf("%w: %v", project.ErrSaveFailed, err)
	}

	now := s.now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	meta := *r
	meta.Document = nil
	meta.Revision, meta.CreatedAt, meta.UpdatedAt = 1, now, now
	if old, ok := s.entries[r.ID]; ok {
		meta.Revision = old.meta.Revision + 1
		meta.CreatedAt = old.meta.CreatedAt
	}
	s.entries[r.ID] = &entry{meta: meta, data: data}

	r.Revision, r.CreatedAt, r.UpdatedAt = meta.Revision, meta.CreatedAt, meta.UpdatedAt
	return nil
}

// Load returns the record stored under id.
func (s *Store) Load(_ context.Context, id string) (*project.Record, error) {
	if id == "" {
		return nil, project.ErrInvalidProjectID
	}
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, project.ErrProjectNotFound
	}
	return s.decode(e)
}

// List returns matching records, most recently updated first.
func (s *Store) List(_ context.Context, filter project.Filter) ([]*project.Record, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		if filter.Matches(&e.meta) {
			matched = append(matched, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].meta, matched[j].meta
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})

	if filter.Offset >= len(matched) {
		return []*project.Record{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	out := make([]*project.Record, 0, len(matched))
	for _, e := range matched {
		r, err := s.decode(e)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Delete removes the record stored under id.
func (s *Store) Delete(_ context.Context, id string) error {
	if id == "" {
		return project.ErrInvalidProjectID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return project.ErrProjectNotFound
	}
	delete(s.entries, id)
	return nil
}

// Len returns the number of stored projects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close releases nothing.
func (s *Store) Close() error { return nil }

func (s *Store) decode(e *entry) (*project.Record, error) {
	var doc project.Document
	if err := s.serializer.Unmarshal(e.data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", project.ErrLoadFailed, err)
	}
	r := e.meta
	r.Document = &doc
	return &r, nil
}
