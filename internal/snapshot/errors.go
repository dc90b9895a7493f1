package snapshot

import (
	"errors"
	"fmt"
)

// ErrMalformedDocument is returned when a document cannot be read as a
// tree snapshot at all.
var ErrMalformedDocument = errors.New("malformed document")

// MalformedError locates the part of a document that could not be read.
type MalformedError struct {
	// Path is a JSONPath-like location, e.g. "$.root.children[2]".
	Path   string
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed document: %s", e.Reason)
	}
	return fmt.Sprintf("malformed document at %s: %s", e.Path, e.Reason)
}

func (e *MalformedError) Unwrap() error { return ErrMalformedDocument }
