package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dcsim/rack-planner/internal/store"
	"github.com/dcsim/rack-planner/internal/validator"
)

// Kind classifies service errors for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindValidation
	KindUnauthorized
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindPersistence:
		return "persistence"
	default:
		return "internal"
	}
}

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(key string, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %s not found", resourceType, key)}
}

type ErrResourceConflict struct {
	error
}

func NewErrResourceConflict(format string, args ...any) *ErrResourceConflict {
	return &ErrResourceConflict{fmt.Errorf(format, args...)}
}

func NewErrAlreadyExists(resourceType, key string) *ErrResourceConflict {
	return NewErrResourceConflict("%s %s already exists", resourceType, key)
}

func NewErrResourceInUse(resourceType, key, usedBy string) *ErrResourceConflict {
	return NewErrResourceConflict("%s %s is still referenced by %s", resourceType, key, usedBy)
}

type ErrValidation struct {
	error
}

func NewErrValidation(format string, args ...any) *ErrValidation {
	return &ErrValidation{fmt.Errorf(format, args...)}
}

func NewErrMandatoryComponentMissing(componentType string) *ErrValidation {
	return NewErrValidation("mandatory component %s is missing", componentType)
}

func NewErrUnknownComponent(name string) *ErrValidation {
	return NewErrValidation("component %s does not exist", name)
}

func NewErrIncompatibleComponents(a, b string) *ErrValidation {
	return NewErrValidation("component %s is not compatible with %s", a, b)
}

func NewErrMandatoryComponentRemoval(name, componentType string) *ErrValidation {
	return NewErrValidation("component %s cannot be removed: %s is mandatory", name, componentType)
}

type ErrUnauthorized struct {
	error
}

func NewErrUnauthorized() *ErrUnauthorized {
	return &ErrUnauthorized{errors.New("invalid username or password")}
}

// ErrPersistence is returned when a write failed. The collection on disk is unchanged.
type ErrPersistence struct {
	error
}

func (e *ErrPersistence) Unwrap() error {
	return e.error
}

// KindOf classifies err. Store errors that escaped the service mapping are
// classified by their sentinel.
func KindOf(err error) Kind {
	var (
		notFound     *ErrResourceNotFound
		conflict     *ErrResourceConflict
		validation   *ErrValidation
		invalid      *validator.ErrInvalid
		unauthorized *ErrUnauthorized
		persistence  *ErrPersistence
		storeWrite   *store.PersistenceError
	)

	switch {
	case err == nil:
		return KindInternal
	case errors.As(err, &notFound), errors.Is(err, store.ErrRecordNotFound):
		return KindNotFound
	case errors.As(err, &conflict), errors.Is(err, store.ErrDuplicateKey):
		return KindConflict
	case errors.As(err, &validation), errors.As(err, &invalid):
		return KindValidation
	case errors.As(err, &unauthorized):
		return KindUnauthorized
	case errors.As(err, &persistence), errors.As(err, &storeWrite):
		return KindPersistence
	default:
		return KindInternal
	}
}

// StatusCode returns the HTTP status matching the kind of err.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// mapStoreError turns store errors into service errors. resourceType and key
// describe the record the caller was looking for.
func mapStoreError(err error, resourceType, key string) error {
	if err == nil {
		return nil
	}
	var storeWrite *store.PersistenceError
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		return NewErrResourceNotFound(key, resourceType)
	case errors.Is(err, store.ErrDuplicateKey):
		return NewErrAlreadyExists(resourceType, key)
	case errors.As(err, &storeWrite):
		return &ErrPersistence{err}
	default:
		return err
	}
}
