package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNoSession is returned when an operation needs a session but the
	// lifecycle is in the Setup phase.
	ErrNoSession = errors.New("no active sales session")
	// ErrReadOnly is returned for mutations attempted during Summary.
	ErrReadOnly          = errors.New("sales session is read-only during summary")
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrPersistenceCorrupt marks persisted data that failed structural validation.
	ErrPersistenceCorrupt = errors.New("persisted session is corrupt")
	ErrPersistenceWrite   = errors.New("failed to persist session")
)

// ValidationError lists the problems found in a setup submission, keyed by field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

// PersistenceWriteError wraps a failed save or clear. The in-memory session is
// left as it was before the operation.
type PersistenceWriteError struct {
	Op  string
	Err error
}

func (e *PersistenceWriteError) Error() string {
	return fmt.Sprintf("%s session: %v", e.Op, e.Err)
}

func (e *PersistenceWriteError) Unwrap() error {
	return e.Err
}

func (e *PersistenceWriteError) Is(target error) bool {
	return target == ErrPersistenceWrite
}
