package blob

import (
	"context"
	"fmt"
	"sync"
)

// Memory keeps objects in process. Deleting a missing object is not an error,
// matching S3 semantics.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	deletes int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func key(bucket, path string) string { return bucket + "/" + path }

func (m *Memory) Upload(_ context.Context, obj Object) (string, error) {
	if obj.Bucket == "" || obj.Path == "" {
		return "", fmt.Errorf("upload: bucket and path are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(obj.Bucket, obj.Path)
	if _, ok := m.objects[k]; ok && !obj.Overwrite {
		return "", fmt.Errorf("upload %s: %w", k, ErrExists)
	}
	m.objects[k] = append([]byte(nil), obj.Data...)
	return obj.Path, nil
}

func (m *Memory) Delete(_ context.Context, bucket, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	delete(m.objects, key(bucket, path))
	return nil
}

// Get returns a copy of an object, for tests and tooling.
func (m *Memory) Get(bucket, path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key(bucket, path)]
	return append([]byte(nil), data...), ok
}

// Deletes reports how many delete calls were made.
func (m *Memory) Deletes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deletes
}
