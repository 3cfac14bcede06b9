package validator

import (
	"fmt"
)

// ErrInvalid carries the message of the first violated rule.
type ErrInvalid struct {
	error
	Field string
	Tag   string
}

func NewErrInvalid(field, tag string, format string, args ...any) *ErrInvalid {
	return &ErrInvalid{error: fmt.Errorf(format, args...), Field: field, Tag: tag}
}
