package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable covers transport failures and 5xx answers.
	ErrUnavailable = errors.New("tournament backend unavailable")
	// ErrMalformedPayload means the response did not match the expected schema.
	ErrMalformedPayload = errors.New("malformed backend payload")
	// ErrRequestFailed is matched by every *RequestError.
	ErrRequestFailed = errors.New("backend rejected the request")
)

// RequestError is a request the backend answered with success=false or a 4xx status.
type RequestError struct {
	Path    string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "no message"
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", ErrRequestFailed, e.Path, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s: %s", ErrRequestFailed, e.Path, msg)
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}
