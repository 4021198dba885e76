package nota

import (
	"context"
	"fmt"
	"sync"
)

// Store is a mutex-guarded ordered collection keyed by id. Add, Update,
// Delete and Replace are the only mutation entry points; each notifies
// subscribers with a snapshot after the store lock is released.
type Store[T any] struct {
	mu    sync.RWMutex
	items []T
	key   func(T) string

	subMu  sync.Mutex
	subs   map[int]func([]T)
	nextID int
}

// NewStore creates an empty store using key to identify items.
func NewStore[T any](key func(T) string) *Store[T] {
	return &Store[T]{key: key, subs: make(map[int]func([]T))}
}

// List returns a snapshot of the items in order.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Len returns the number of items.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get returns the item with the given id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// Add appends an item. An item with the same id is replaced in place.
func (s *Store[T]) Add(item T) {
	s.notify(s.add(item))
}

func (s *Store[T]) add(item T) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(s.key(item)); i >= 0 {
		s.items[i] = item
	} else {
		s.items = append(s.items, item)
	}
	return s.snapshot()
}

// Update replaces the item with the same id and reports whether it existed.
func (s *Store[T]) Update(item T) bool {
	s.mu.Lock()
	i := s.index(s.key(item))
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.items[i] = item
	snap := s.snapshot()
	s.mu.Unlock()
	s.notify(snap)
	return true
}

// Delete removes the item with the given id and reports whether it existed.
func (s *Store[T]) Delete(id string) bool {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	snap := s.snapshot()
	s.mu.Unlock()
	s.notify(snap)
	return true
}

// Replace swaps the whole collection.
func (s *Store[T]) Replace(items []T) {
	s.notify(s.swap(items))
}

func (s *Store[T]) swap(items []T) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]T(nil), items...)
	return s.snapshot()
}

// Subscribe registers fn to receive a snapshot after every mutation. The
// returned func removes the subscription.
func (s *Store[T]) Subscribe(fn func([]T)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store[T]) index(id string) int {
	for i, item := range s.items {
		if s.key(item) == id {
			return i
		}
	}
	return -1
}

func (s *Store[T]) snapshot() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store[T]) notify(snap []T) {
	s.subMu.Lock()
	fns := make([]func([]T), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// SchemaRegistry holds the schemas known to a session.
type SchemaRegistry struct {
	*Store[Schema]
}

// NewSchemaRegistry creates an empty schema registry.
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{Store: NewStore(func(s Schema) string { return s.ID })}
}

// ByName returns the schema with the given routing name.
func (r *SchemaRegistry) ByName(name string) (Schema, bool) {
	for _, s := range r.List() {
		if s.Name == name {
			return s, true
		}
	}
	return Schema{}, false
}

// Refresh replaces the registry with the API's schema list. The registry is
// left untouched on failure.
func (r *SchemaRegistry) Refresh(ctx context.Context, api SchemaAPI) error {
	schemas, err := api.ListSchemas(ctx)
	if err != nil {
		return fmt.Errorf("failed to list schemas: %w", err)
	}
	r.Replace(schemas)
	return nil
}

// ContentRegistry holds the content records of one schema.
type ContentRegistry struct {
	*Store[Content]

	mu     sync.RWMutex
	schema string
}

// NewContentRegistry creates an empty content registry.
func NewContentRegistry() *ContentRegistry {
	return &ContentRegistry{Store: NewStore(func(c Content) string { return c.ID })}
}

// SchemaName returns the schema the records belong to.
func (r *ContentRegistry) SchemaName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schema
}

// ReplaceFor sets the owning schema name and swaps the records.
func (r *ContentRegistry) ReplaceFor(schemaName string, items []Content) {
	r.mu.Lock()
	r.schema = schemaName
	snap := r.swap(items)
	r.mu.Unlock()
	r.notify(snap)
}

// ReplaceIfOwner swaps the records only while schemaName owns the registry
// or no schema does, and reports whether it did.
func (r *ContentRegistry) ReplaceIfOwner(schemaName string, items []Content) bool {
	r.mu.Lock()
	if r.schema != "" && r.schema != schemaName {
		r.mu.Unlock()
		return false
	}
	r.schema = schemaName
	snap := r.swap(items)
	r.mu.Unlock()
	r.notify(snap)
	return true
}

// AddIfOwner adds c only while schemaName owns the registry or no schema
// does, and reports whether it did.
func (r *ContentRegistry) AddIfOwner(schemaName string, c Content) bool {
	r.mu.Lock()
	if r.schema != "" && r.schema != schemaName {
		r.mu.Unlock()
		return false
	}
	r.schema = schemaName
	snap := r.add(c)
	r.mu.Unlock()
	r.notify(snap)
	return true
}

// Refresh fetches and normalizes the records of a schema. A response that
// arrives after another schema took over the registry is dropped.
func (r *ContentRegistry) Refresh(ctx context.Context, api ContentAPI, schemaName string) error {
	raws, err := api.ListContent(ctx, schemaName, ListContentOptions{})
	if err != nil {
		return fmt.Errorf("failed to list content for %s: %w", schemaName, err)
	}
	r.ReplaceIfOwner(schemaName, NormalizeContents(raws))
	return nil
}
