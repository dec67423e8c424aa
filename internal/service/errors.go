package service

import (
	"errors"
	"fmt"
)

// Operation names used in errors
const (
	OpPlay  = "play"
	OpReset = "reset"
)

// TransportError means the exchange with the server did not complete:
// the request could not be sent or no complete reply was received.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError means the server replied but reported a failure, or the
// reply could not be understood.
type ServiceError struct {
	Op      string
	Status  int // HTTP status, 0 for WebSocket replies
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: server error (status %d): %s", e.Op, e.Status, msg)
	}
	return fmt.Sprintf("%s: server error: %s", e.Op, msg)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is, or wraps, a TransportError
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsService reports whether err is, or wraps, a ServiceError
func IsService(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

// Kind classifies err as "transport", "service" or "other"
func Kind(err error) string {
	switch {
	case IsTransport(err):
		return "transport"
	case IsService(err):
		return "service"
	default:
		return "other"
	}
}

func malformed(op string, status int, err error) *ServiceError {
	return &ServiceError{Op: op, Status: status, Message: "malformed reply: " + err.Error(), Err: err}
}
