package ngocontent

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrNotFound indicates a record or page does not exist
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates caller input was rejected before any store was touched
	ErrValidation = errors.New("validation failed")

	// ErrBlobWrite indicates the blob store could not persist an asset
	ErrBlobWrite = errors.New("blob write failed")

	// ErrBlobDelete indicates the blob store could not delete an asset
	ErrBlobDelete = errors.New("blob delete failed")

	// ErrRecordWrite indicates a repository mutation or commit failed
	ErrRecordWrite = errors.New("record write failed")

	// ErrUnauthorized indicates the caller lacks the role for an operation
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInsecureLocator indicates a blob store returned a locator outside the access policy
	ErrInsecureLocator = errors.New("locator does not satisfy access policy")
)

// EntityError represents an error related to a record operation
type EntityError struct {
	Kind string
	ID   int64
	Op   string
	Err  error
}

func (e *EntityError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s operation %s failed: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s operation %s failed for id %d: %v", e.Kind, e.Op, e.ID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to blob storage operations
type StorageError struct {
	Backend string
	Locator string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Backend == "" {
		return fmt.Sprintf("storage operation %s failed for %s: %v", e.Op, e.Locator, e.Err)
	}
	return fmt.Sprintf("storage operation %s failed for %s on backend %s: %v", e.Op, e.Locator, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ValidationError carries the field level messages of a rejected request.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
