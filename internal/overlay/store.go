package overlay

import (
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/meshcfg/internal/logging"
	"github.com/muurk/meshcfg/internal/moduleconfig"
)

// Listener is notified after a module's slice changed. patch is nil when the
// slice was cleared.
type Listener = func(module moduleconfig.Name, patch moduleconfig.Patch)

// Store is an in-memory edit overlay. It is safe for concurrent use; listeners
// are invoked synchronously on the goroutine that performed the write, after
// the store's lock has been released.
type Store struct {
	mu        sync.RWMutex
	sessionID string
	slices    map[moduleconfig.Name]moduleconfig.Patch
	listeners map[int]Listener
	nextID    int
}

// NewStore creates an empty overlay with a fresh session ID.
func NewStore() *Store {
	return &Store{
		sessionID: uuid.NewString(),
		slices:    make(map[moduleconfig.Name]moduleconfig.Patch),
		listeners: make(map[int]Listener),
	}
}

// SessionID identifies this edit session in logs.
func (s *Store) SessionID() string {
	return s.sessionID
}

// Get returns the pending patch for module, if any.
func (s *Store) Get(module moduleconfig.Name) (moduleconfig.Patch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.slices[module]
	return p, ok
}

// Set merges partial into module's slice, last write wins per field.
// partial must belong to module.
func (s *Store) Set(module moduleconfig.Name, partial moduleconfig.Patch) error {
	if partial == nil {
		return moduleconfig.NewUnknownModuleError("")
	}
	if partial.Module() != module {
		return moduleconfig.NewModuleMismatchError(module, partial.Module())
	}

	s.mu.Lock()
	current, exists := s.slices[module]

	var merged moduleconfig.Patch
	if exists {
		m, err := current.Merge(partial)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		merged = m
	} else {
		m, err := partial.Merge(nil)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		merged = m
	}

	if (exists && reflect.DeepEqual(current, merged)) || (!exists && merged.IsEmpty()) {
		s.mu.Unlock()
		logging.Debug("Overlay write deduplicated",
			zap.String("session", s.sessionID),
			zap.String("module", string(module)),
		)
		return nil
	}

	s.slices[module] = merged
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	logging.LogOverlayWrite(s.sessionID, string(module), merged)
	notify(listeners, module, merged)
	return nil
}

// Clear removes module's slice, signalling "no pending edits".
// Clearing an absent slice is a no-op.
func (s *Store) Clear(module moduleconfig.Name) {
	s.mu.Lock()
	if _, ok := s.slices[module]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.slices, module)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	logging.LogOverlayClear(s.sessionID, string(module))
	notify(listeners, module, nil)
}

// Subscribe registers fn for change notifications. The returned function
// unregisters it and may be called more than once.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Modules returns the modules that currently have pending edits, sorted.
func (s *Store) Modules() []moduleconfig.Name {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]moduleconfig.Name, 0, len(s.slices))
	for name := range s.slices {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Pending exports the overlay in its persistable form.
func (s *Store) Pending() moduleconfig.PendingEdits {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending moduleconfig.PendingEdits
	for _, p := range s.slices {
		// patches of unmodelled modules are not persisted
		_ = pending.Put(p)
	}
	return pending
}

// Restore loads previously persisted edits, replacing the affected slices.
func (s *Store) Restore(pending *moduleconfig.PendingEdits) {
	for _, p := range pending.Patches() {
		s.mu.Lock()
		s.slices[p.Module()] = p
		listeners := s.snapshotListeners()
		s.mu.Unlock()

		notify(listeners, p.Module(), p)
	}
}

func (s *Store) snapshotListeners() []Listener {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Listener, len(ids))
	for i, id := range ids {
		out[i] = s.listeners[id]
	}
	return out
}

func notify(listeners []Listener, module moduleconfig.Name, patch moduleconfig.Patch) {
	for _, fn := range listeners {
		fn(module, patch)
	}
}
