package memrecord

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Common store errors.
var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// ValidationHook runs during a record's validation pass. Hooks that
// attach validation errors to the record return nil; a non-nil return
// aborts the pass and propagates to the caller (fatal lock reactions
// and integration errors take this path).
type ValidationHook func(rec any) error

// Store is an in-memory record store with a validation phase. Hosts
// register the guard evaluator as a validation hook; Save refuses
// records whose validation pass attached errors or aborted.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record
	hooks   []ValidationHook
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{records: make(map[string]*Record)}
}

// RegisterValidationHook appends a hook to the validation phase. Hooks
// run in registration order on every Validate and Save.
func (s *Store) RegisterValidationHook(h ValidationHook) {
	if h == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// Validate runs the validation phase on a record. It returns the
// record's accumulated validation errors (the recoverable outcome), or
// the first hook error verbatim (the fatal outcome). A nil return means
// the record is valid.
func (s *Store) Validate(rec *Record) error {
	s.mu.RLock()
	hooks := make([]ValidationHook, len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.RUnlock()

	rec.ResetValidationErrors()
	for _, h := range hooks {
		if err := h(rec); err != nil {
			return err
		}
	}
	if errs := rec.ValidationErrors(); errs.Any() {
		return errs
	}
	return nil
}

// Save validates the record and, on success, snapshots its attributes
// as the new persisted state.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.Validate(rec); err != nil {
		return fmt.Errorf("save %s: %w", rec.id, err)
	}

	rec.markPersisted()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.id] = rec
	return nil
}

// Get returns a stored record by id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return rec, nil
}

// Delete removes a stored record by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	delete(s.records, id)
	return nil
}
