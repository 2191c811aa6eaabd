package service

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCollection is returned when studying or exporting with no cards
	ErrEmptyCollection = errors.New("no flashcards in collection")

	// ErrEmptyFilterResult is returned when a category filter matches no cards
	ErrEmptyFilterResult = errors.New("no cards found for this category")

	// ErrNoActiveSession is returned by session operations while idle
	ErrNoActiveSession = errors.New("no active study session")

	// ErrStorageUnreadable is returned by Load when the stored record is malformed.
	// The store is left empty and usable.
	ErrStorageUnreadable = errors.New("stored flashcards are unreadable")

	// ErrImportFormat matches every ImportFormatError via errors.Is
	ErrImportFormat = errors.New("invalid import format")
)

// Reasons carried by ImportFormatError for whole-payload failures
const (
	ImportReasonInvalidJSON = "not valid JSON"
	ImportReasonNotList     = "top level is not a list"
)

// ImportFormatError reports an import payload that is not a JSON list of cards
type ImportFormatError struct {
	Reason string
	Err    error
}

func (e *ImportFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrImportFormat, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrImportFormat, e.Reason)
}

func (e *ImportFormatError) Unwrap() error {
	return e.Err
}

func (e *ImportFormatError) Is(target error) bool {
	return target == ErrImportFormat
}
