package parking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDuration = errors.New("duration is not one of the allowed values")
	ErrSpotNotFound    = errors.New("spot not found")
	ErrSpotUnavailable = errors.New("spot is not available")
	ErrNoState         = errors.New("no saved state")
)

// MissingFieldError is returned when one or more required reservation
// fields are empty.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("all fields are required: missing %s", strings.Join(e.Fields, ", "))
}

// StorageParseError wraps a snapshot that could not be decoded.
type StorageParseError struct {
	Err error
}

func (e *StorageParseError) Error() string {
	return fmt.Sprintf("parse saved state: %v", e.Err)
}

func (e *StorageParseError) Unwrap() error {
	return e.Err
}
