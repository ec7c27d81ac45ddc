// Package storagetest provides an in-memory ObjectStore for tests.
package storagetest

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"wav2hls/storage"
)

type object struct {
	data        []byte
	contentType string
	modified    time.Time
}

// MemoryStore keeps objects per bucket and records every call.
// FailPut makes PutFile fail for matching keys.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]map[string]object

	FailPut  func(key string) error
	ListErr  error
	Puts     []string // keys in upload order
	Removed  []string
	ListCall int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]map[string]object)}
}

var _ storage.ObjectStore = (*MemoryStore)(nil)

// Seed stores an object directly, bypassing call recording.
func (m *MemoryStore) Seed(bucket, key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bucket(bucket)[key] = object{data: data, modified: time.Now()}
}

// Keys returns the sorted keys in bucket.
func (m *MemoryStore) Keys(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.buckets[bucket]))
	for k := range m.buckets[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Object returns the stored bytes and content type for key.
func (m *MemoryStore) Object(bucket, key string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.buckets[bucket][key]
	return obj.data, obj.contentType, ok
}

func (m *MemoryStore) bucket(name string) map[string]object {
	b, ok := m.buckets[name]
	if !ok {
		b = make(map[string]object)
		m.buckets[name] = b
	}
	return b
}

func (m *MemoryStore) ListObjects(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCall++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []storage.ObjectInfo
	for key, obj := range m.buckets[bucket] {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{
				Key:          key,
				Size:         int64(len(obj.data)),
				LastModified: obj.modified,
				ContentType:  obj.contentType,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryStore) PutFile(ctx context.Context, bucket, key, localPath, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.FailPut != nil {
		if err := m.FailPut(key); err != nil {
			return err
		}
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", localPath, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bucket(bucket)[key] = object{data: data, contentType: contentType, modified: time.Now()}
	m.Puts = append(m.Puts, key)
	return nil
}

func (m *MemoryStore) RemoveObjects(ctx context.Context, bucket string, keys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.bucket(bucket), key)
		m.Removed = append(m.Removed, key)
	}
	return nil
}
