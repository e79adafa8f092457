package protocol

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of protocol failure
type ErrorType int

const (
	// ErrTypeUnknownCommand indicates a command name missing from the catalog
	ErrTypeUnknownCommand ErrorType = iota
	// ErrTypeInvalidResponse indicates a response for a different command
	ErrTypeInvalidResponse
	// ErrTypeInvalidChecksum indicates a corrupted response frame
	ErrTypeInvalidChecksum
	// ErrTypeMalformedPayload indicates a payload that cannot be walked
	ErrTypeMalformedPayload
)

// Sentinels for errors.Is. A *ProtocolError matches the sentinel of its Type.
var (
	ErrUnknownCommand     = errors.New("unknown command")
	ErrInvalidAPIResponse = errors.New("invalid API response")
	ErrInvalidChecksum    = errors.New("invalid checksum")
	ErrMalformedPayload   = errors.New("malformed payload")
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeUnknownCommand:
		return "Unknown Command"
	case ErrTypeInvalidResponse:
		return "Invalid API Response"
	case ErrTypeInvalidChecksum:
		return "Invalid Checksum"
	case ErrTypeMalformedPayload:
		return "Malformed Payload"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

func (et ErrorType) sentinel() error {
	switch et {
	case ErrTypeUnknownCommand:
		return ErrUnknownCommand
	case ErrTypeInvalidResponse:
		return ErrInvalidAPIResponse
	case ErrTypeInvalidChecksum:
		return ErrInvalidChecksum
	case ErrTypeMalformedPayload:
		return ErrMalformedPayload
	default:
		return nil
	}
}

// ProtocolError describes a failure scoped to a single request/response exchange
type ProtocolError struct {
	Type      ErrorType // Category of error
	Command   string    // Command name or code involved, if known
	Message   string    // Human-readable detail
	Retryable bool      // Whether re-sending the same request may succeed
}

// Error implements the error interface
func (e *ProtocolError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Command)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Is reports whether target is the sentinel for this error's type
func (e *ProtocolError) Is(target error) bool {
	return target != nil && target == e.Type.sentinel()
}

// IsRetryable reports whether err is a protocol error worth re-requesting.
// Corrupted or mismatched frames are; unknown commands and payloads the
// table cannot walk are not.
func IsRetryable(err error) bool {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

func newUnknownCommand(name string) *ProtocolError {
	return &ProtocolError{
		Type:    ErrTypeUnknownCommand,
		Command: name,
		Message: "command not in catalog",
	}
}

func newInvalidResponse(code CommandCode, msg string) *ProtocolError {
	return &ProtocolError{
		Type:      ErrTypeInvalidResponse,
		Command:   code.String(),
		Message:   msg,
		Retryable: true,
	}
}

func newInvalidChecksum(code CommandCode, got, want byte) *ProtocolError {
	return &ProtocolError{
		Type:      ErrTypeInvalidChecksum,
		Command:   code.String(),
		Message:   fmt.Sprintf("checksum 0x%02X, computed 0x%02X", got, want),
		Retryable: true,
	}
}

func newMalformedPayload(msg string) *ProtocolError {
	return &ProtocolError{
		Type:    ErrTypeMalformedPayload,
		Command: CmdLiveData.String(),
		Message: msg,
	}
}
