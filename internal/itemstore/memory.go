package itemstore

import (
	"context"
	"sort"
	"sync"

	"todo-go/internal/todo"
)

// memoryTable holds the items of one emulated table.
type memoryTable struct {
	hashKey string
	items   map[string]item // hash key value -> item
}

// memoryBackend stores all tables in memory.
// This implementation is safe for concurrent use.
type memoryBackend struct {
	tables map[string]*memoryTable
	mu     sync.RWMutex
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{tables: make(map[string]*memoryTable)}
}

func (m *memoryBackend) createTable(_ context.Context, table, hashKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[table]; ok {
		return errTableExists
	}
	m.tables[table] = &memoryTable{hashKey: hashKey, items: make(map[string]item)}
	return nil
}

func (m *memoryBackend) hashKey(_ context.Context, table string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[table]
	if !ok {
		return "", errNoTable
	}
	return t.hashKey, nil
}

func (m *memoryBackend) scan(_ context.Context, table string, limit int) ([]item, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[table]
	if !ok {
		return nil, false, errNoTable
	}

	keys := make([]string, 0, len(t.items))
	for k := range t.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	more := false
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
		more = true
	}

	items := make([]item, 0, len(keys))
	for _, k := range keys {
		items = append(items, copyItem(t.items[k]))
	}
	return items, more, nil
}

func (m *memoryBackend) get(_ context.Context, table, key string) (item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[table]
	if !ok {
		return nil, errNoTable
	}
	return copyItem(t.items[key]), nil
}

func (m *memoryBackend) mutate(_ context.Context, table, key string, fn func(current item) (item, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[table]
	if !ok {
		return errNoTable
	}

	next, err := fn(copyItem(t.items[key]))
	if err != nil {
		return err
	}
	if next == nil {
		delete(t.items, key)
		return nil
	}
	t.items[key] = next
	return nil
}

// MemoryConnector hands out emulated item-store handles over one shared
// in-memory backend, so data outlives each handle but not the process.
type MemoryConnector struct {
	backend *memoryBackend
}

// NewMemoryConnector creates a connector with no tables.
func NewMemoryConnector() *MemoryConnector {
	return &MemoryConnector{backend: newMemoryBackend()}
}

// Connect returns a fresh handle on the shared in-memory tables.
func (c *MemoryConnector) Connect(context.Context) (todo.ItemStore, error) {
	return newEmulator(c.backend), nil
}

// Compile-time check that MemoryConnector implements todo.Connector interface
var _ todo.Connector = (*MemoryConnector)(nil)
