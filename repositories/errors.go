package repositories

import (
	"errors"
	"fmt"
)

// ErrDuplicate is matched by every unique-index violation.
var ErrDuplicate = errors.New("duplicate key")

type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	if e.Field == "" {
		return ErrDuplicate.Error()
	}
	return fmt.Sprintf("duplicate key: %s", e.Field)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}
