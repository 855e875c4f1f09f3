package ngocontent_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/tendant/ngo-content/pkg/ngocontent"
)

var errInjected = errors.New("injected failure")

// recordingBlobs is a BlobStore that logs every call and can be told to fail.
type recordingBlobs struct {
	mu         sync.Mutex
	baseURL    string
	objects    map[string][]byte
	calls      []string
	failSave   bool
	failDelete bool
}

func newRecordingBlobs() *recordingBlobs {
	return &recordingBlobs{baseURL: "https://cdn.example.org/", objects: map[string][]byte{}}
}

func (b *recordingBlobs) Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "save")
	if b.failSave {
		return "", errInjected
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	locator := b.baseURL + name
	b.objects[locator] = data
	return locator, nil
}

func (b *recordingBlobs) Delete(ctx context.Context, locator string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, "delete")
	if b.failDelete {
		return false, errInjected
	}
	if _, ok := b.objects[locator]; !ok {
		return false, nil
	}
	delete(b.objects, locator)
	return true, nil
}

func (b *recordingBlobs) has(locator string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[locator]
	return ok
}

func (b *recordingBlobs) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

func (b *recordingBlobs) log() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.calls, ",")
}

func (b *recordingBlobs) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

// flakyStore wraps a Store and fails the commit of units of work on demand.
type flakyStore struct {
	ngocontent.Store
	failCommit bool
}

func (s *flakyStore) Begin(ctx context.Context) (ngocontent.UnitOfWork, error) {
	uow, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &flakyUnitOfWork{UnitOfWork: uow, store: s}, nil
}

type flakyUnitOfWork struct {
	ngocontent.UnitOfWork
	store *flakyStore
}

func (u *flakyUnitOfWork) SaveChanges(ctx context.Context) error {
	if u.store.failCommit {
		return errInjected
	}
	return u.UnitOfWork.SaveChanges(ctx)
}

func png(name string) *ngocontent.PendingAsset {
	return &ngocontent.PendingAsset{
		FileName:    name,
		ContentType: "image/png",
		Data:        []byte("\x89PNG\r\n\x1a\n" + name),
	}
}
