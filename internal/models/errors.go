package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is matched by every NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a missing snapshot or account. Records owned by a
// different user are reported the same way.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFound builds a NotFoundError.
func NewNotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// MalformedRowError reports a row whose numeric or identifier cells could not be parsed.
// Row is 1-based and counts data rows (the header is row 0).
type MalformedRowError struct {
	Row     int
	Columns []string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("row %d: malformed value in column(s) %s", e.Row, strings.Join(e.Columns, ", "))
}

// MissingColumnsError reports a file header that matches no known source format.
type MissingColumnsError struct {
	Format  string
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	if e.Format == "" {
		return "unrecognised file format: header matches no supported brokerage export"
	}
	return fmt.Sprintf("unrecognised file format: closest match %q is missing column(s) %s", e.Format, strings.Join(e.Missing, ", "))
}

// PersistenceError wraps a storage backend failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps err, or returns nil when err is nil.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// ValidationError reports bad caller input outside the import path.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}
