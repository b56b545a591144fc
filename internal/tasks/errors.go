package tasks

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"task-tracker-api/internal/ordering"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrBucketFull   = errors.New("status bucket is full")
)

// ValidationError carries one message per offending field. Nothing reaches the
// ordering engine or the store when it is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func fieldError(field, msg string) error {
	v := &ValidationError{}
	v.add(field, msg)
	return v
}

// fromOrdering translates engine errors into the workflow's vocabulary
func fromOrdering(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ordering.ErrMissingTask):
		return fmt.Errorf("%w: %v", ErrTaskNotFound, err)
	case errors.Is(err, ordering.ErrPositionOutOfRange):
		return fmt.Errorf("%w: %v", ErrBucketFull, err)
	case errors.Is(err, ordering.ErrUnknownStatus):
		return fieldError("status", "Status must be one of to-do, inprogress, completed")
	}
	return err
}
