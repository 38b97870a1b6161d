package session

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/observability"
)

// Store is the interface for board-state storage backends.
type Store interface {
	// Load retrieves the checkpoint for a project.
	// Returns nil, nil if none has been saved.
	Load(ctx context.Context, project string) (*State, error)

	// Save stores the checkpoint for a project, replacing any previous one.
	Save(ctx context.Context, project string, st *State) error

	// Delete removes the checkpoint for a project. Deleting a missing
	// checkpoint is not an error.
	Delete(ctx context.Context, project string) error

	// Close releases backend resources.
	Close() error
}

// Open starts a session on p, restores its saved checkpoint from store and
// persists every later change back to it. A failed load is logged and the
// session starts fresh.
func Open(ctx context.Context, p *board.Project, store Store, cfg Config) (*Session, error) {
	if store != nil {
		cfg.OnCommit = func(ctx context.Context, st *State) error {
			return store.Save(ctx, st.Project, st)
		}
	}
	s, err := New(p, cfg)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return s, nil
	}
	st, err := store.Load(ctx, p.Name)
	if err != nil {
		s.logger.Warn("load board state", "project", p.Name, "err", err)
		return s, nil
	}
	if st != nil {
		s.Restore(st)
		s.logger.Debug("restored board state", "project", p.Name, "positions", len(st.Positions), "overrides", len(st.Overrides))
	}
	return s, nil
}

// =============================================================================
// Instrumentation
// =============================================================================

type instrumented struct {
	Store
	backend string
}

// Instrument reports every operation on store to the session hooks under
// the given backend name.
func Instrument(store Store, backend string) Store {
	return &instrumented{Store: store, backend: backend}
}

func (s *instrumented) Load(ctx context.Context, project string) (*State, error) {
	start := time.Now()
	st, err := s.Store.Load(ctx, project)
	observability.Session().OnStore(ctx, s.backend, "load", time.Since(start), err)
	return st, err
}

func (s *instrumented) Save(ctx context.Context, project string, st *State) error {
	start := time.Now()
	err := s.Store.Save(ctx, project, st)
	observability.Session().OnStore(ctx, s.backend, "save", time.Since(start), err)
	return err
}

func (s *instrumented) Delete(ctx context.Context, project string) error {
	start := time.Now()
	err := s.Store.Delete(ctx, project)
	observability.Session().OnStore(ctx, s.backend, "delete", time.Since(start), err)
	return err
}

// =============================================================================
// Memory
// =============================================================================

// MemoryStore keeps checkpoints in process memory. Stored states are copied
// through JSON so callers cannot alias them.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string][]byte)}
}

func (m *MemoryStore) Load(ctx context.Context, project string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.states[project]
	if !ok {
		return nil, nil
	}
	return UnmarshalState(data)
}

func (m *MemoryStore) Save(ctx context.Context, project string, st *State) error {
	if err := errors.ValidateProjectName(project); err != nil {
		return err
	}
	data, err := MarshalState(st)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[project] = data
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, project string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, project)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
