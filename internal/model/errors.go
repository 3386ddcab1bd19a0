package model

import (
	"errors"
	"fmt"
)

var (
	ErrNilTask          = errors.New("nil task")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrInvalidIndex     = errors.New("invalid index")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrCycle            = errors.New("task cannot be moved under itself or its subtasks")
	ErrAttached         = errors.New("task is already attached")
	ErrCompleted        = errors.New("task is completed")
	ErrUnsupportedValue = errors.New("unsupported value")
)

// NotFoundError reports a task (or parent) that is not part of the model.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func notFound(kind string, t *Task) error {
	id := "<nil>"
	if t != nil {
		id = t.id
		if id == "" {
			id = fmt.Sprintf("%q", t.title)
		}
	}
	return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFound reports whether err (or anything it wraps) is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
