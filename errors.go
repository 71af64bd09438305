package blame

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned for zero-length or inverted line ranges.
	ErrInvalidRange = errors.New("invalid line range")
	// ErrWholeFileRange is returned when adding a range to a whole-file set.
	ErrWholeFileRange = errors.New("cannot add a range to a whole-file range set")
	// ErrRangeOutOfBounds is returned when a range ends past the end of the file.
	ErrRangeOutOfBounds = errors.New("line range is out of bounds")
	// ErrNotFound is wrapped by repositories when an object does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrPathNotFound is returned when the blamed path is absent from the start commit.
	ErrPathNotFound = errors.New("path not found in commit")
)

// ObjectError reports a failed collaborator call, tagged with the operation
// and the object it was performed on.
type ObjectError struct {
	Op  string
	ID  ObjectID
	Err error
}

func (e *ObjectError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *ObjectError) Unwrap() error {
	return e.Err
}

func objectError(op string, id ObjectID, err error) error {
	return &ObjectError{Op: op, ID: id, Err: err}
}
