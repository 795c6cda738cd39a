package content

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned (possibly wrapped) by a Client when no document
// matches a lookup.
var ErrNotFound = errors.New("content: document not found")

// NotFoundError reports that an identifier has no corresponding document.
type NotFoundError struct {
	Type string
	UID  string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Type, e.UID)
}

// Is lets errors.Is(err, ErrNotFound) match a NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// FetchError reports a transport or API failure while talking to the
// content store.
type FetchError struct {
	Op  string
	UID string
	Err error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.UID != "" {
		return fmt.Sprintf("content: %s %s: %v", e.Op, e.UID, e.Err)
	}
	return fmt.Sprintf("content: %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsFetch checks if an error is a FetchError
func IsFetch(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}
