package contract

import (
	"context"
	"fmt"
)

// State is the key/value surface every module reads and writes through.
type State interface {
	Set(key, value string)
	Get(key string) *string
	Delete(key string)
}

// Persister is a durable backend behind the committed state. Apply receives the
// write set of one successful call; a nil value means the key was deleted.
type Persister interface {
	Load(ctx context.Context) (map[string]string, error)
	Apply(ctx context.Context, changes map[string]*string) error
}

// Store holds the committed key/value map. Only the engine writes to it, once per
// successful call.
type Store struct {
	db      map[string]string
	persist Persister
}

// NewMemoryStore returns a store that lives and dies with the process.
func NewMemoryStore() *Store {
	return &Store{db: make(map[string]string)}
}

// OpenStore loads the full map from p and keeps p as the write-through target.
func OpenStore(ctx context.Context, p Persister) (*Store, error) {
	db, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if db == nil {
		db = make(map[string]string)
	}
	return &Store{db: db, persist: p}, nil
}

func (s *Store) Get(key string) *string {
	val, ok := s.db[key]
	if !ok {
		return nil
	}
	return &val
}

// Len is the number of committed keys.
func (s *Store) Len() int { return len(s.db) }

// commit persists first so a failing backend leaves memory untouched.
func (s *Store) commit(ctx context.Context, changes map[string]*string) error {
	if len(changes) == 0 {
		return nil
	}
	if s.persist != nil {
		if err := s.persist.Apply(ctx, changes); err != nil {
			return fmt.Errorf("persist state: %w", err)
		}
	}
	for k, v := range changes {
		if v == nil {
			delete(s.db, k)
		} else {
			s.db[k] = *v
		}
	}
	return nil
}

// overlay buffers the writes of one call on top of the committed store.
type overlay struct {
	base   *Store
	writes map[string]*string
}

func newOverlay(base *Store) *overlay {
	return &overlay{base: base, writes: make(map[string]*string)}
}

func (o *overlay) Set(key, value string) {
	o.writes[key] = &value
}

func (o *overlay) Get(key string) *string {
	if v, ok := o.writes[key]; ok {
		if v == nil {
			return nil
		}
		val := *v
		return &val
	}
	return o.base.Get(key)
}

func (o *overlay) Delete(key string) {
	o.writes[key] = nil
}

// readOnly wraps the committed store for queries; writes are a programming error.
type readOnly struct{ *Store }

func (readOnly) Set(key, _ string) { panic(fmt.Sprintf("contract: write to read-only state (key %x)", key)) }
func (readOnly) Delete(key string) { panic(fmt.Sprintf("contract: delete on read-only state (key %x)", key)) }
