package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/iliyamo/restaurant-booking/internal/attribute"
)

// MemoryStore keeps items in process memory.  Items are stored in their
// serialised form so callers never share maps with the store.
type MemoryStore struct {
	schema Schema

	mu     sync.RWMutex
	tables map[string]map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(schema Schema) *MemoryStore {
	return &MemoryStore{schema: schema, tables: make(map[string]map[string][]byte)}
}

func (s *MemoryStore) PutItem(ctx context.Context, table string, item attribute.Item) error {
	key, err := s.schema.keyOf(table, item)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode item: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[table]
	if !ok {
		t = make(map[string][]byte)
		s.tables[table] = t
	}
	t[key] = raw
	return nil
}

func (s *MemoryStore) GetItem(ctx context.Context, table string, key attribute.Item) (attribute.Item, error) {
	k, err := s.schema.keyOf(table, key)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	raw, ok := s.tables[table][k]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrItemNotFound
	}
	return decodeItem(raw)
}

// Scan returns items ordered by key for stable output.
func (s *MemoryStore) Scan(ctx context.Context, table string) ([]attribute.Item, error) {
	s.mu.RLock()
	keys := make([]string, 0, len(s.tables[table]))
	for k := range s.tables[table] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	raws := make([][]byte, 0, len(keys))
	for _, k := range keys {
		raws = append(raws, s.tables[table][k])
	}
	s.mu.RUnlock()

	items := make([]attribute.Item, 0, len(raws))
	for _, raw := range raws {
		item, err := decodeItem(raw)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Len reports how many items table holds.
func (s *MemoryStore) Len(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}

func decodeItem(raw []byte) (attribute.Item, error) {
	var item attribute.Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return item, nil
}

// MemoryLocker is a keyed mutex for single-process deployments.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewMemoryLocker returns a ready MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]chan struct{})}
}

// Lock blocks until name is free, the context ends or DefaultLockWait
// passes when the context has no deadline.
func (l *MemoryLocker) Lock(ctx context.Context, name string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, lockWait(ctx))
	defer cancel()
	for {
		l.mu.Lock()
		held, busy := l.locks[name]
		if !busy {
			ch := make(chan struct{})
			l.locks[name] = ch
			l.mu.Unlock()
			var once sync.Once
			return func() {
				once.Do(func() {
					l.mu.Lock()
					delete(l.locks, name)
					l.mu.Unlock()
					close(ch)
				})
			}, nil
		}
		l.mu.Unlock()
		select {
		case <-held:
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", name, ErrLockTimeout)
		}
	}
}
