package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/tendant/ngo-content/pkg/ngocontent"
	"github.com/tendant/ngo-content/pkg/ngocontent/storage"
)

// DefaultBaseURL prefixes locators when none is configured.
const DefaultBaseURL = "https://memory.local/images"

type object struct {
	data        []byte
	contentType string
}

// Backend is an in-memory implementation of the ngocontent.BlobStore interface
type Backend struct {
	mu       sync.RWMutex
	objects  map[string]object
	locators storage.Locators
}

// New creates a new in-memory storage backend. An empty baseURL uses
// DefaultBaseURL.
func New(baseURL string) (*Backend, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	locators, err := storage.NewLocators(baseURL)
	if err != nil {
		return nil, err
	}
	return &Backend{
		objects:  make(map[string]object),
		locators: locators,
	}, nil
}

var _ ngocontent.BlobStore = (*Backend)(nil)

// Name identifies the backend in storage errors
func (b *Backend) Name() string { return "memory" }

// Save stores the content under name and returns its locator
func (b *Backend) Save(ctx context.Context, name string, reader io.Reader, contentType string) (string, error) {
	if name == "" {
		return "", errors.New("object name is required")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[name] = object{data: data, contentType: contentType}
	return b.locators.Locator(name), nil
}

// Delete removes the object behind locator. Absent objects report false.
func (b *Backend) Delete(ctx context.Context, locator string) (bool, error) {
	key, err := b.locators.Key(locator)
	if err != nil {
		return false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[key]; !exists {
		return false, nil
	}
	delete(b.objects, key)
	return true, nil
}

// Open returns the content and content type behind locator
func (b *Backend) Open(ctx context.Context, locator string) (io.ReadCloser, string, error) {
	key, err := b.locators.Key(locator)
	if err != nil {
		return nil, "", err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[key]
	if !exists {
		return nil, "", ngocontent.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.contentType, nil
}

// Len reports how many objects are stored
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
