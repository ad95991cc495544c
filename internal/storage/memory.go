package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrInjected is returned by MemoryStore operations switched to fail.
var ErrInjected = errors.New("injected storage failure")

// MemoryStore is an in-process object store
type MemoryStore struct {
	mu          sync.Mutex
	baseURL     string
	objects     map[string][]byte
	failUploads bool
	failDeletes bool
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{baseURL: baseURL, objects: map[string][]byte{}}
}

func (m *MemoryStore) Upload(_ context.Context, key, _ string, body []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUploads {
		return "", ErrInjected
	}
	m.objects[key] = append([]byte(nil), body...)
	return m.baseURL + "/" + key, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDeletes {
		return ErrInjected
	}
	delete(m.objects, key)
	return nil
}

func (m *MemoryStore) KeyFromURL(rawURL string) (string, error) {
	return keyFromURL(m.baseURL, rawURL)
}

// FailUploads switches upload failures on or off
func (m *MemoryStore) FailUploads(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failUploads = fail
}

// FailDeletes switches delete failures on or off
func (m *MemoryStore) FailDeletes(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDeletes = fail
}

// Keys lists the stored object keys in order
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
