package ngocontent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tendant/ngo-content/pkg/ngocontent/objectkey"
)

// AttachmentState is the position of one coordinated operation.
type AttachmentState int

const (
	StateIdle AttachmentState = iota
	StateBlobStaged
	StateRecordPersisted
	StateCompensatingDelete
	StateFailed
)

func (s AttachmentState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBlobStaged:
		return "blob_staged"
	case StateRecordPersisted:
		return "record_persisted"
	case StateCompensatingDelete:
		return "compensating_delete"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome reports where a coordinated operation ended.
type Outcome struct {
	State AttachmentState
	// Locator is the blob written by this operation, if any. After a failure
	// it names the blob that compensation targeted.
	Locator  string
	Warnings []string
}

// LocatorPolicy rejects locators the site cannot serve.
type LocatorPolicy func(locator string) error

// RequireHTTPS accepts only https locators.
func RequireHTTPS(locator string) error {
	if !strings.HasPrefix(strings.ToLower(locator), "https://") {
		return fmt.Errorf("%w: %q is not an https url", ErrInsecureLocator, locator)
	}
	return nil
}

// AllowAnyLocator accepts every non-empty locator. Intended for development
// setups serving images over plain http.
func AllowAnyLocator(locator string) error {
	if locator == "" {
		return fmt.Errorf("%w: empty locator", ErrInsecureLocator)
	}
	return nil
}

// PersistFunc performs the record step of a coordinated operation, including
// the commit. It receives the locator the record must reference.
type PersistFunc func(ctx context.Context, locator string) error

// CoordinatorOption configures an AttachmentCoordinator.
type CoordinatorOption func(*AttachmentCoordinator)

// WithLocatorPolicy overrides the default https policy.
func WithLocatorPolicy(policy LocatorPolicy) CoordinatorOption {
	return func(c *AttachmentCoordinator) {
		if policy != nil {
			c.policy = policy
		}
	}
}

// WithKeyGenerator overrides how blob names are derived from file names.
func WithKeyGenerator(keys objectkey.Generator) CoordinatorOption {
	return func(c *AttachmentCoordinator) {
		if keys != nil {
			c.keys = keys
		}
	}
}

// WithCoordinatorLogger sets the logger used for compensation reports.
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *AttachmentCoordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// AttachmentCoordinator sequences blob and record steps so that a persisted
// record never references a missing blob. It holds no per-request state and
// is shared by all services.
//
// Ordering:
//   - create/replace: blob write happens before the record write; a failed
//     record write triggers exactly one compensating delete of the new blob.
//   - remove/delete: the record change is committed before the blob delete;
//     a failed blob delete only adds a warning.
type AttachmentCoordinator struct {
	blobs   BlobStore
	backend string
	policy  LocatorPolicy
	keys    objectkey.Generator
	logger  *slog.Logger
}

// NewAttachmentCoordinator creates a coordinator over blobs.
func NewAttachmentCoordinator(blobs BlobStore, opts ...CoordinatorOption) (*AttachmentCoordinator, error) {
	if blobs == nil {
		return nil, errors.New("blob store is required")
	}
	c := &AttachmentCoordinator{
		blobs:  blobs,
		policy: RequireHTTPS,
		keys:   objectkey.NewFlatGenerator(),
		logger: slog.Default(),
	}
	if named, ok := blobs.(NamedBlobStore); ok {
		c.backend = named.Name()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Create runs the create transitions. Without an asset the record is
// persisted with an empty reference.
func (c *AttachmentCoordinator) Create(ctx context.Context, asset *PendingAsset, persist PersistFunc) (Outcome, error) {
	if asset.IsEmpty() {
		if err := persist(ctx, ""); err != nil {
			return Outcome{State: StateFailed}, err
		}
		return Outcome{State: StateRecordPersisted}, nil
	}

	locator, err := c.stage(ctx, asset)
	if err != nil {
		return Outcome{State: StateFailed}, err
	}
	out := Outcome{State: StateBlobStaged, Locator: locator}

	if err := persist(ctx, locator); err != nil {
		out.State = StateCompensatingDelete
		c.compensate(ctx, locator)
		out.State = StateFailed
		return out, err
	}

	out.State = StateRecordPersisted
	return out, nil
}

// Replace writes asset, persists the record pointing at it and then releases
// oldLocator. If the new write or the record step fails, the previous image
// and reference stay untouched. An empty asset persists oldLocator unchanged.
func (c *AttachmentCoordinator) Replace(ctx context.Context, oldLocator string, asset *PendingAsset, persist PersistFunc) (Outcome, error) {
	if asset.IsEmpty() {
		if err := persist(ctx, oldLocator); err != nil {
			return Outcome{State: StateFailed}, err
		}
		return Outcome{State: StateRecordPersisted}, nil
	}

	out, err := c.Create(ctx, asset, persist)
	if err != nil {
		return out, err
	}

	if oldLocator != "" && oldLocator != out.Locator {
		if warning := c.discard(ctx, oldLocator); warning != "" {
			out.Warnings = append(out.Warnings, warning)
		}
	}
	return out, nil
}

// Remove persists the record with a cleared reference and then deletes
// oldLocator.
func (c *AttachmentCoordinator) Remove(ctx context.Context, oldLocator string, persist PersistFunc) (Outcome, error) {
	return c.afterRecord(ctx, oldLocator, func(ctx context.Context) error {
		return persist(ctx, "")
	})
}

// Delete removes the record through remove and, once that is committed,
// deletes locator.
func (c *AttachmentCoordinator) Delete(ctx context.Context, locator string, remove func(ctx context.Context) error) (Outcome, error) {
	return c.afterRecord(ctx, locator, remove)
}

func (c *AttachmentCoordinator) afterRecord(ctx context.Context, locator string, record func(ctx context.Context) error) (Outcome, error) {
	if err := record(ctx); err != nil {
		return Outcome{State: StateFailed}, err
	}

	out := Outcome{State: StateRecordPersisted}
	if locator != "" {
		if warning := c.discard(ctx, locator); warning != "" {
			out.Warnings = append(out.Warnings, warning)
		}
	}
	return out, nil
}

// stage writes the asset and checks the returned locator against the policy.
// A locator violating the policy is compensated like a failed record write.
func (c *AttachmentCoordinator) stage(ctx context.Context, asset *PendingAsset) (string, error) {
	name := c.keys.GenerateKey(asset.FileName)

	locator, err := c.blobs.Save(ctx, name, bytes.NewReader(asset.Data), asset.ContentType)
	if err != nil {
		return "", &StorageError{Backend: c.backend, Op: "save", Locator: name, Err: fmt.Errorf("%w: %w", ErrBlobWrite, err)}
	}

	if err := c.policy(locator); err != nil {
		c.compensate(ctx, locator)
		return "", &StorageError{Backend: c.backend, Op: "save", Locator: locator, Err: fmt.Errorf("%w: %w", ErrBlobWrite, err)}
	}

	return locator, nil
}

// compensate deletes a blob written earlier in a failed operation. Failures
// are logged, never returned.
func (c *AttachmentCoordinator) compensate(ctx context.Context, locator string) {
	deleted, err := c.blobs.Delete(ctx, locator)
	if err != nil {
		c.logger.Warn("compensating delete failed, blob orphaned", "locator", locator, "error", err)
		return
	}
	if !deleted {
		c.logger.Warn("compensating delete found no blob", "locator", locator)
		return
	}
	c.logger.Info("compensating delete succeeded", "locator", locator)
}

// discard deletes a blob no longer referenced by a committed record and
// returns a warning message when that fails.
func (c *AttachmentCoordinator) discard(ctx context.Context, locator string) string {
	deleted, err := c.blobs.Delete(ctx, locator)
	if err != nil {
		err = &StorageError{Backend: c.backend, Op: "delete", Locator: locator, Err: fmt.Errorf("%w: %w", ErrBlobDelete, err)}
		c.logger.Warn("previous image left orphaned", "locator", locator, "error", err)
		return fmt.Sprintf("previous image %s could not be deleted", locator)
	}
	if !deleted {
		c.logger.Debug("previous image already absent", "locator", locator)
	}
	return ""
}
