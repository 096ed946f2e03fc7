package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps objects in process memory. It backs tests and local runs without MinIO.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	now     func() time.Time
}

type memoryObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
		now:     time.Now,
	}
}

// PutAt stores an object with an explicit modification time.
func (s *MemoryStore) PutAt(key string, data []byte, contentType string, modified time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = memoryObject{
		data:        append([]byte(nil), data...),
		contentType: contentType,
		modified:    modified,
	}
}

func (s *MemoryStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	s.PutAt(key, data, contentType, s.now())
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (io.ReadCloser, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, 0, ErrNotFound
	}

	return io.NopCloser(bytes.NewReader(obj.data)), int64(len(obj.data)), nil
}

func (s *MemoryStore) ContentType(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.objects[key].contentType
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) List(_ context.Context, prefix string) ([]Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var objects []Object
	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, Object{Key: key, Size: int64(len(obj.data)), LastModified: obj.modified})
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })

	return objects, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.objects)
}
