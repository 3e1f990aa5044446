package plesk

import (
	"errors"
	"fmt"
)

// Error classes.  Every typed error below matches exactly one of these with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrTransport  = errors.New("transport failure")
	ErrParse      = errors.New("unparseable response")
	ErrRemote     = errors.New("panel reported failure")
)

// ValidationError is returned before anything is sent when a required field is missing.
type ValidationError struct {
	Operation string
	Field     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing required parameter %s", e.Operation, e.Field)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// TransportError wraps network and HTTP level failures.  The core never retries them.
type TransportError struct {
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport: http status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ProtocolParseError means the response was not a packet of the expected shape.
type ProtocolParseError struct {
	Reason string
	Raw    []byte
	Err    error
}

func (e *ProtocolParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot parse panel response: %s: %v", e.Reason, e.Err)
	}
	return "cannot parse panel response: " + e.Reason
}

func (e *ProtocolParseError) Unwrap() error { return e.Err }

func (e *ProtocolParseError) Is(target error) bool { return target == ErrParse }

// RemoteError is a failure reported by the panel itself.  Code and Text are surfaced exactly as
// received.
type RemoteError struct {
	Code int
	Text string
}

// Error keeps the panel's "Error #<code> <text>" wording, remediation patterns match against it.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("Error #%d %s", e.Code, e.Text)
}

func (e *RemoteError) Is(target error) bool { return target == ErrRemote }

// Description is the documented meaning of Code, empty for undocumented codes.
func (e *RemoteError) Description() string {
	return ErrorCodes[e.Code]
}

// OperationError attaches step context to any failure of a panel call.
type OperationError struct {
	Operation string
	Entity    string
	Verb      string
	Err       error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("plesk %s (%s/%s): %v", e.Operation, e.Entity, e.Verb, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// AsRemote extracts the panel error from err, if there is one.
func AsRemote(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
