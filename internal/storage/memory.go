package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryUploader keeps uploads in memory. Used by tests.
type MemoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	Fail    bool
}

func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{objects: make(map[string][]byte)}
}

func (m *MemoryUploader) Upload(_ context.Context, kind Kind, filename, _ string, body io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return "", fmt.Errorf("upload failed")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%s", kind, filename)
	m.objects[key] = data
	return "memory://" + key, nil
}

// Object returns the stored bytes for a key, if present.
func (m *MemoryUploader) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}
