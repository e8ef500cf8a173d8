package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore keeps blobs in memory. Each operation can be made to fail,
// which is how tests exercise the compensating paths of the services.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	baseURL string

	putErr    error
	deleteErr error
	pingErr   error
	deletes   int
	onDelete  func(pathname string)
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}, baseURL: baseURL}
}

func (m *MemoryStore) Put(_ context.Context, pathname, _ string, body io.Reader, size int64) (*Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return nil, m.putErr
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if size <= 0 {
		size = n
	}
	m.objects[pathname] = buf.Bytes()
	return &Object{Pathname: pathname, URL: m.baseURL + "/" + pathname, Size: size}, nil
}

func (m *MemoryStore) Delete(_ context.Context, pathname string) error {
	m.mu.Lock()
	hook := m.onDelete
	m.mu.Unlock()
	if hook != nil {
		hook(pathname)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, pathname)
	return nil
}

func (m *MemoryStore) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingErr
}

// FailPuts, FailDeletes and FailPing set the error returned by the
// corresponding operation; nil restores normal behaviour.
func (m *MemoryStore) FailPuts(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putErr = err
}

func (m *MemoryStore) FailDeletes(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteErr = err
}

func (m *MemoryStore) FailPing(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

// OnDelete registers fn to run at the start of every Delete, before the
// store lock is taken.
func (m *MemoryStore) OnDelete(fn func(pathname string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDelete = fn
}

// Has reports whether pathname is stored.
func (m *MemoryStore) Has(pathname string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[pathname]
	return ok
}

// Len is the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// DeleteCalls counts Delete invocations, failed ones included.
func (m *MemoryStore) DeleteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deletes
}
