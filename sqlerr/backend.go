package sqlerr

import "fmt"

// BackendError wraps a failure reported by the database engine while
// preparing, binding, stepping or executing a statement.
type BackendError struct {
	Op      string // prepare, bind, step, exec, begin, commit
	SQL     string
	Code    int // engine-specific result code, 0 when unknown
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != 0 {
		return fmt.Sprintf("backend error: %s failed (code %d): %s", e.Op, e.Code, msg)
	}
	return fmt.Sprintf("backend error: %s failed: %s", e.Op, msg)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is reports a match against ErrBackend.
func (e *BackendError) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return t.Code == CodeBackend
	}
	return false
}

// Backend wraps err as a *BackendError. A nil err yields nil.
func Backend(op, query string, err error) error {
	if err == nil {
		return nil
	}
	if be, ok := err.(*BackendError); ok {
		return be
	}
	return &BackendError{Op: op, SQL: query, Err: err}
}
