package testutil

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/locator"
	"voice-relay/internal/app/storage"
)

// MemoryStore is a storage.Store kept in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[locator.Ref]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[locator.Ref]memoryObject)}
}

func (m *MemoryStore) Put(ctx context.Context, ref locator.Ref, body io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[ref] = memoryObject{data: data, contentType: contentType, modified: time.Now()}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, ref locator.Ref) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[ref]
	if !ok {
		return nil, notFound(ref)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *MemoryStore) Copy(ctx context.Context, src, dst locator.Ref) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[src]
	if !ok {
		return notFound(src)
	}
	obj.modified = time.Now()
	m.objects[dst] = obj
	return nil
}

func (m *MemoryStore) List(ctx context.Context, bucket, prefix string) ([]storage.Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []storage.Object
	for ref, obj := range m.objects {
		if ref.Bucket == bucket && strings.HasPrefix(ref.Key, prefix) {
			out = append(out, storage.Object{Key: ref.Key, Size: int64(len(obj.data)), LastModified: obj.modified})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// ContentType returns the content type ref was written with.
func (m *MemoryStore) ContentType(ref locator.Ref) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[ref].contentType
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

func notFound(ref locator.Ref) error {
	return apperrors.Wrapf(apperrors.ErrObjectNotFound, "%s", ref)
}
