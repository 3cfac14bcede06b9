package store

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrDuplicateKey      = errors.New("already exists")
	ErrUnknownCollection = errors.New("unknown collection")
)

// NotFoundError is returned by repository lookups. errors.Is(err, ErrRecordNotFound) holds.
type NotFoundError struct {
	Collection Collection
	Key        string
}

func NewErrNotFound(c Collection, key string) *NotFoundError {
	return &NotFoundError{Collection: c, Key: key}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q: %s", c2entity(e.Collection), e.Key, ErrRecordNotFound)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrRecordNotFound
}

// ConflictError is returned when a natural key is already taken. errors.Is(err, ErrDuplicateKey) holds.
type ConflictError struct {
	Collection Collection
	Key        string
}

func NewErrConflict(c Collection, key string) *ConflictError {
	return &ConflictError{Collection: c, Key: key}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q %s", c2entity(e.Collection), e.Key, ErrDuplicateKey)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// PersistenceError wraps an I/O failure during a collection write.
// When it is returned the on-disk collection still holds its previous content.
type PersistenceError struct {
	Collection Collection
	Op         string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting collection %s: %s: %v", e.Collection, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func newErrUnknownCollection(c Collection) error {
	return fmt.Errorf("%w: %q", ErrUnknownCollection, string(c))
}

func c2entity(c Collection) string {
	if e, ok := collectionEntities[c]; ok {
		return e
	}
	return string(c)
}
