// Package store fronts a forge runtime with an id-addressed surface:
// signals are created, read and written by opaque string ids, with
// per-entry version counters for cheap change detection by callers that
// poll rather than subscribe.
package store

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/signalforge/signalforge/forge"
)

var ErrNotFound = errors.New("signal not found")

type entryKind uint8

const (
	writeableEntry entryKind = iota
	computedEntry
)

// entry.version is atomic so pollers on other goroutines can read it
// while the owning goroutine writes the graph.
type entry struct {
	kind    entryKind
	w       *forge.WriteableSignal[Value]
	r       *forge.ReadonlySignal[Value]
	version atomic.Uint64
	unsub   func()
}

// Store maps external ids to graph nodes. The map is guarded by a
// RWMutex for callers that hold ids across goroutines; the graph
// underneath stays single-threaded, so all graph operations for one
// runtime must come from one goroutine at a time.
type Store struct {
	mu      sync.RWMutex
	rt      *forge.Runtime
	entries map[string]*entry
	nextID  uint64
}

func New(rt *forge.Runtime) *Store {
	return &Store{
		rt:      rt,
		entries: make(map[string]*entry),
	}
}

func (s *Store) generateID() string {
	id := fmt.Sprintf("sig_%d_%d", s.nextID, time.Now().UnixNano())
	s.nextID++
	return id
}

// CreateSignal registers a new writeable signal and returns its id.
func (s *Store) CreateSignal(initialValue Value) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.generateID()
	e := &entry{
		kind: writeableEntry,
		w:    forge.SignalWithEquals(s.rt, initialValue, Value.Equal),
	}
	e.unsub = e.w.Subscribe(func(Value) {
		e.version.Add(1)
	})
	s.entries[id] = e
	return id
}

// CreateComputed registers a derived cell. Reads of other store entries
// inside fn become tracked dependencies like any other graph read.
func (s *Store) CreateComputed(fn func() Value) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.generateID()
	e := &entry{
		kind: computedEntry,
		r: forge.ComputedWithEquals(s.rt, func(Value) Value {
			return fn()
		}, Value.Equal),
	}
	e.unsub = e.r.Subscribe(func(Value) {
		e.version.Add(1)
	})
	s.entries[id] = e
	return id
}

func (s *Store) Get(id string) (Value, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return Undefined(), fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if e.kind == computedEntry {
		return e.r.Value(), nil
	}
	return e.w.Value(), nil
}

// Set writes a new value. Writing a computed entry fails with
// forge.ErrWriteToComputed.
func (s *Store) Set(id string, v Value) error {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if e.kind == computedEntry {
		return fmt.Errorf("%s: %w", id, forge.ErrWriteToComputed)
	}
	e.w.SetValue(v)
	return nil
}

func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[id]
	return ok
}

// Delete destroys the backing node and forgets the id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.destroyEntry(e)
	delete(s.entries, id)
	return nil
}

func (s *Store) destroyEntry(e *entry) {
	e.unsub()
	if e.kind == computedEntry {
		e.r.Destroy()
	} else {
		e.w.Destroy()
	}
}

// Version returns the entry's change counter, bumped only when a write
// or recompute actually changed the value.
func (s *Store) Version(id string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.version.Load(), nil
}

// Subscribe attaches a listener to the entry, fired synchronously on
// every real value change.
func (s *Store) Subscribe(id string, fn func(Value)) (unsubscribe func(), err error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if e.kind == computedEntry {
		return e.r.Subscribe(fn), nil
	}
	return e.w.Subscribe(fn), nil
}

// Update is one element of a BatchUpdate.
type Update struct {
	ID    string
	Value Value
}

// BatchUpdate applies all writes inside a single batch scope, so a
// computed depending on several of them recomputes once. Unknown ids
// are skipped; the first write to a computed entry aborts the rest and
// is returned.
func (s *Store) BatchUpdate(updates []Update) error {
	var err error
	s.rt.Batch(func() {
		for _, u := range updates {
			s.mu.RLock()
			e, ok := s.entries[u.ID]
			s.mu.RUnlock()
			if !ok {
				continue
			}
			if e.kind == computedEntry {
				err = fmt.Errorf("%s: %w", u.ID, forge.ErrWriteToComputed)
				return
			}
			e.w.SetValue(u.Value)
		}
	})
	return err
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear destroys every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		s.destroyEntry(e)
		delete(s.entries, id)
	}
}

// IDs returns a snapshot of the registered ids, in no particular order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids
}
