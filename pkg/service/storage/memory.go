package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/secmon-lab/shelfcheck/pkg/domain/interfaces"
)

// DefaultMemoryBaseURL is the URL prefix of the in-memory store
const DefaultMemoryBaseURL = "memory://blobs"

// Object is a blob held by the memory store
type Object struct {
	Data        []byte
	ContentType string
}

// Memory is an in-process blob store for development and tests
type Memory struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]Object
	puts    int
}

var _ interfaces.BlobStore = &Memory{}

// NewMemory creates an empty in-memory blob store
func NewMemory(bucket string) *Memory {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &Memory{
		bucket:  bucket,
		objects: make(map[string]Object),
	}
}

func (m *Memory) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := validatePut(m.bucket, name); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[name] = Object{Data: slices.Clone(data), ContentType: contentType}
	m.puts++
	return PublicURL(DefaultMemoryBaseURL, m.bucket, name), nil
}

// Get returns the stored object
func (m *Memory) Get(name string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[name]
	return obj, ok
}

// Len returns the number of distinct objects
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// PutCount returns the number of Put calls that succeeded, overwrites included
func (m *Memory) PutCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}
