package retrier

import "errors"

// Temporary indicates if an error condition is temporary and may succeed if retried.
type Temporary interface {
	Temporary() bool
}

// IsTemporary checks if the provided error implements the Temporary interface and returns true if it does.
func IsTemporary(err error) bool {
	var temp Temporary
	if errors.As(err, &temp) {
		return temp.Temporary()
	}
	return false
}

type temporaryError struct {
	err error
}

func (e *temporaryError) Error() string   { return e.err.Error() }
func (e *temporaryError) Unwrap() error   { return e.err }
func (e *temporaryError) Temporary() bool { return true }

// MarkTemporary wraps err so IsTemporary reports true for it. errors.Is and
// errors.As still reach err. A nil err stays nil.
func MarkTemporary(err error) error {
	if err == nil {
		return nil
	}
	return &temporaryError{err: err}
}
