package ngocontent

import (
	"context"
	"io"
)

// BlobStore defines the interface for image storage backends
type BlobStore interface {
	// Save writes the named asset and returns a dereferenceable locator
	Save(ctx context.Context, name string, reader io.Reader, contentType string) (string, error)

	// Delete removes the asset behind locator. Deleting an absent locator
	// returns false without an error.
	Delete(ctx context.Context, locator string) (bool, error)
}

// NamedBlobStore is implemented by blob stores that report a backend name
// for error messages.
type NamedBlobStore interface {
	Name() string
}

// RecordRepository defines persistence for one entity kind. Mutations are
// staged on the owning UnitOfWork and become durable on SaveChanges.
type RecordRepository[E Entity] interface {
	// Insert stages a new record and assigns its ID
	Insert(ctx context.Context, entity E) error
	Update(ctx context.Context, entity E) error
	// GetByID returns ErrNotFound when no record has the given id
	GetByID(ctx context.Context, id int64) (E, error)
	// Delete stages removal and returns the removed record
	Delete(ctx context.Context, id int64) (E, error)
	Count(ctx context.Context) (int, error)
	GetPage(ctx context.Context, orderKey string, pageSize, pageNumber int) ([]E, error)
	List(ctx context.Context, orderKey string) ([]E, error)
	ExistsBy(ctx context.Context, field string, value any) (bool, error)
}

// UnitOfWork groups repository operations under a single commit boundary.
type UnitOfWork interface {
	Categories() RecordRepository[*Category]
	Testimonials() RecordRepository[*Testimonial]
	Members() RecordRepository[*Member]

	// SaveChanges flushes staged changes. It is the single point where
	// persistence becomes durable.
	SaveChanges(ctx context.Context) error

	// Rollback discards staged changes. It is safe to call after SaveChanges.
	Rollback(ctx context.Context) error
}

// Store opens units of work against a relational backend.
type Store interface {
	Begin(ctx context.Context) (UnitOfWork, error)
	Close() error
}

// LinkBuilder renders the previous/next links of a page.
type LinkBuilder interface {
	PageLink(path string, page int) string
}
