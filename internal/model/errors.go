package model

import "errors"

// Error kinds reported by quicknote operations. Callers match them with errors.Is.
var (
	// ErrIO covers directory and file create, read and write failures.
	ErrIO = errors.New("io error")
	// ErrSerialization covers malformed or unencodable note payloads.
	ErrSerialization = errors.New("serialization error")
	// ErrPlatform covers failures of the desktop platform (window, shortcuts, notifications).
	ErrPlatform = errors.New("platform error")
)

// ErrorKind names the kind of an error for the invoke boundary.
type ErrorKind string

const (
	KindIO            ErrorKind = "io"
	KindSerialization ErrorKind = "serialization"
	KindPlatform      ErrorKind = "platform"
	KindOther         ErrorKind = "other"
)

// KindOf returns the kind of err, or KindOther if it wraps none of the sentinels.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSerialization):
		return KindSerialization
	case errors.Is(err, ErrIO):
		return KindIO
	case errors.Is(err, ErrPlatform):
		return KindPlatform
	default:
		return KindOther
	}
}
