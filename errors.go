package vkvideo

import (
	"errors"
)

// ErrorKind classifies every failure the transcoder can surface.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrBadInput
	ErrNoDevice
	ErrNoVideoQueue
	ErrMissingExtension
	ErrDeviceCreationFailed
	ErrOutOfMemory
	ErrVideoAPIFailed
	ErrBitstreamParse
	ErrDeviceLost
	ErrIO
)

func (k ErrorKind) String() string {
	switch k {
	case ErrBadInput:
		return "BadInput"
	case ErrNoDevice:
		return "NoDevice"
	case ErrNoVideoQueue:
		return "NoVideoQueue"
	case ErrMissingExtension:
		return "MissingExtension"
	case ErrDeviceCreationFailed:
		return "DeviceCreationFailed"
	case ErrOutOfMemory:
		return "OutOfMemory"
	case ErrVideoAPIFailed:
		return "VideoApiFailed"
	case ErrBitstreamParse:
		return "BitstreamParse"
	case ErrDeviceLost:
		return "DeviceLost"
	case ErrIO:
		return "IoError"
	default:
		return "Unknown"
	}
}

// Error is the tagged error value propagated to the pipeline driver, the
// single catch site. Op identifies the failing operation for VideoApiFailed
// and friends; Err optionally wraps an underlying cause.
type Error struct {
	Kind   ErrorKind
	Op     string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so callers can match with errors.Is on a bare
// &Error{Kind: ...} sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Kind extracts the ErrorKind from any error in the chain, ErrUnknown if none.
func Kind(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrUnknown
}

func badInput(detail string) error {
	return &Error{Kind: ErrBadInput, Detail: detail}
}

func parseErr(detail string, err error) error {
	return &Error{Kind: ErrBitstreamParse, Detail: detail, Err: err}
}

func ioErr(op string, err error) error {
	return &Error{Kind: ErrIO, Op: op, Err: err}
}

// vkErr classifies a non-success VkResult, promoting the out-of-memory and
// device-lost codes to their dedicated kinds.
func vkErr(op string, res Result) error {
	switch res {
	case ErrorOutOfHostMemory, ErrorOutOfDeviceMemory:
		return &Error{Kind: ErrOutOfMemory, Op: op, Detail: res.String()}
	case ErrorDeviceLost:
		return &Error{Kind: ErrDeviceLost, Op: op, Detail: res.String()}
	default:
		return &Error{Kind: ErrVideoAPIFailed, Op: op, Detail: res.String()}
	}
}
