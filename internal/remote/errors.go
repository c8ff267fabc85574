package remote

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned while the circuit to the ordering service is open.
var ErrUnavailable = errors.New("ordering service unavailable")

// TransportError covers network failures and non 2xx answers. Message carries whatever the
// service said in its error body, if anything.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("request failed: %v", e.Err)
	default:
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerMessage returns the message the service put in an error body, or "".
func ServerMessage(err error) string {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Message
	}
	return ""
}
