package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ft-tools/forest-atlas/pkg/models/domain"
	"github.com/ft-tools/forest-atlas/pkg/services/inventory"
)

// Pending holds an uploaded row set that did not pass validation and
// is awaiting correction in the editor.
type Pending struct {
	Name   string
	Rows   []inventory.EditableRow
	Issues []domain.ValidationIssue
}

type entry struct {
	inventory *domain.ForestInventory
	pending   *Pending
	expiresAt time.Time
}

// Store is an in-memory, TTL-evicting home for uploaded inventories
// and pending row sets. Entries expire TTL after their last write;
// reads never extend the deadline. The analysis engine itself stays
// state-free, this is web-session plumbing only.
type Store struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]entry
	ttl     time.Duration
}

// NewStore creates a store whose entries live for ttl after each write.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[uuid.UUID]entry),
		ttl:     ttl,
	}
}

// Put stores a ready inventory under a fresh id.
func (s *Store) Put(inv *domain.ForestInventory) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry{inventory: inv, expiresAt: time.Now().Add(s.ttl)}
	return id
}

// PutPending stores an invalid row set under a fresh id for later
// revalidation.
func (s *Store) PutPending(p *Pending) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry{pending: p, expiresAt: time.Now().Add(s.ttl)}
	return id
}

// Replace stores a ready inventory under an existing id, e.g. after a
// pending row set has been corrected.
func (s *Store) Replace(id uuid.UUID, inv *domain.ForestInventory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry{inventory: inv, expiresAt: time.Now().Add(s.ttl)}
}

// ReplacePending updates the pending row set under an existing id,
// keeping the editing session alive across resubmissions.
func (s *Store) ReplacePending(id uuid.UUID, p *Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry{pending: p, expiresAt: time.Now().Add(s.ttl)}
}

// Get returns the ready inventory stored under id, if any.
func (s *Store) Get(id uuid.UUID) (*domain.ForestInventory, bool) {
	e, ok := s.lookup(id)
	if !ok || e.inventory == nil {
		return nil, false
	}
	return e.inventory, true
}

// GetPending returns the pending row set stored under id, if any.
func (s *Store) GetPending(id uuid.UUID) (*Pending, bool) {
	e, ok := s.lookup(id)
	if !ok || e.pending == nil {
		return nil, false
	}
	return e.pending, true
}

// Delete removes an entry.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len reports the number of unexpired entries.
func (s *Store) Len() int {
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	for _, e := range s.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func (s *Store) lookup(id uuid.UUID) (entry, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return entry{}, false
	}
	if time.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return entry{}, false
	}
	return e, true
}

// StartJanitor sweeps expired entries every interval until ctx is
// cancelled. Expired entries are also dropped lazily on read, so the
// janitor only bounds memory held by abandoned sessions.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *Store) sweep() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
