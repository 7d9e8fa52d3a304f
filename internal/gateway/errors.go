package gateway

import (
	"errors"
	"fmt"

	"github.com/hkfi/insight-notes/internal/bridge"
)

// BackendError reports a failed command. Transport failures, undecodable
// results and backend rejections all surface as BackendError; the cause is
// available through errors.Unwrap.
type BackendError struct {
	Command string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Command, e.Message)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Rejected reports whether the backend answered and refused the command, as
// opposed to the request never completing.
func (e *BackendError) Rejected() bool {
	return e != nil && bridge.AsRemoteError(e.Err) != nil
}

func wrap(command string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if remote := bridge.AsRemoteError(err); remote != nil {
		msg = remote.Message
	}
	return &BackendError{Command: command, Message: msg, Err: err}
}

// AsBackendError extracts a *BackendError from err's chain.
func AsBackendError(err error) *BackendError {
	var be *BackendError
	if errors.As(err, &be) {
		return be
	}
	return nil
}
