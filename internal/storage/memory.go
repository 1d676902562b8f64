package storage

import (
	"context"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a BlobStore held entirely in process memory. It backs
// tests and single-binary deployments where no external store exists.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (ms *MemoryStore) Put(ctx context.Context, r io.Reader, namespace, extension string) (PutResult, error) {
	if err := ctx.Err(); err != nil {
		return PutResult{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return PutResult{}, err
	}

	extension = strings.TrimPrefix(extension, ".")
	name := uuid.New().String()
	if extension != "" {
		name += "." + extension
	}
	id := path.Join(namespace, name)

	ms.mu.Lock()
	ms.objects[id] = data
	ms.mu.Unlock()

	return PutResult{ID: id, URL: ms.baseURL + "/" + id}, nil
}

func (ms *MemoryStore) ResolveSecureURL(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	if _, ok := ms.objects[id]; !ok {
		return "", ErrBlobNotFound
	}
	return ms.baseURL + "/" + id, nil
}

func (ms *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ms.mu.Lock()
	delete(ms.objects, id)
	ms.mu.Unlock()
	return nil
}

// Get returns a stored blob's bytes, for tests and direct serving.
func (ms *MemoryStore) Get(id string) ([]byte, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	data, ok := ms.objects[id]
	return data, ok
}

// Len reports how many blobs the store holds.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.objects)
}
