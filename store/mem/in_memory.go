package mem

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/warriorguo/oozie/store"
)

var (
	_ store.Store = &memStore{}
)

const sep = "|"

func NewMemStore() store.Store {
	return NewMemStoreWithErrHandler(defaultNoErr)
}

// NewMemStoreWithErrHandler returns a store whose every call also returns errHandler().
func NewMemStoreWithErrHandler(errHandler func() error) store.Store {
	return &memStore{
		m:              make(map[string][]byte),
		mockErrHandler: errHandler,
	}
}

func defaultNoErr() error {
	return nil
}

/**
 * memStore keeps job records for the life of the process only.
 * It is meant for tests and one-shot commands.
 */
type memStore struct {
	mu sync.Mutex

	mockErrHandler func() error

	m map[string][]byte
}

func (m *memStore) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("\n----------\n")
	for _, key := range m.sortedKeys("") {
		sb.WriteString(fmt.Sprintf("%s: %s\n", key, string(m.m[key])))
	}
	sb.WriteString("----------\n")
	return sb.String()
}

func (m *memStore) Get(ctx context.Context, prefix, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, exists := m.m[prefix+sep+key]
	if !exists {
		return nil, m.mockErrHandler()
	}
	// callers may modify what they get back
	return append([]byte(nil), value...), m.mockErrHandler()
}

func (m *memStore) Set(ctx context.Context, prefix, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.m[prefix+sep+key] = append([]byte(nil), value...)
	return m.mockErrHandler()
}

func (m *memStore) Remove(ctx context.Context, prefix, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.m, prefix+sep+key)
	return m.mockErrHandler()
}

func (m *memStore) List(ctx context.Context, prefix string, iterator func(key string) bool) error {
	m.mu.Lock()
	matchedKeys := m.sortedKeys(prefix + sep)
	m.mu.Unlock()

	for _, key := range matchedKeys {
		key, _ = strings.CutPrefix(key, prefix+sep)
		if !iterator(key) {
			break
		}
	}
	return m.mockErrHandler()
}

func (m *memStore) Close() error {
	return nil
}

func (m *memStore) sortedKeys(prefix string) []string {
	keys := make([]string, 0)
	for key := range m.m {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
