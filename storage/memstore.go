package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemStore is an in-memory ObjectStore for tests and local runs
type MemStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

type memObject struct {
	body         []byte
	contentType  string
	lastModified time.Time
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{
		objects: make(map[string]memObject),
	}
}

// Head probes for an object's existence and returns its metadata
func (m *MemStore) Head(ctx context.Context, key string) (*ObjectMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("head %s: %w", key, ErrNotFound)
	}
	return &ObjectMeta{
		ContentType:   obj.contentType,
		ContentLength: int64(len(obj.body)),
	}, nil
}

// Get fetches an object's bytes
func (m *MemStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}
	body := make([]byte, len(obj.body))
	copy(body, obj.body)
	return body, nil
}

// Put writes an object with the current time as its modification time
func (m *MemStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	return m.PutAt(key, body, contentType, time.Now())
}

// PutAt writes an object with an explicit modification time, letting tests
// and local seeding control recency-based ordering
func (m *MemStore) PutAt(key string, body []byte, contentType string, lastModified time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(body))
	copy(stored, body)
	m.objects[key] = memObject{
		body:         stored,
		contentType:  contentType,
		lastModified: lastModified,
	}
	return nil
}

// List returns all objects under the given prefix in key order, matching the
// lexicographic ordering of S3 listings
func (m *MemStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var infos []ObjectInfo
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, ObjectInfo{Key: key, LastModified: obj.lastModified})
		}
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Key < infos[j].Key
	})
	return infos, nil
}

// Len returns the number of stored objects
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
