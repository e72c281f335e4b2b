package decode

import "fmt"

// ErrorKind represents the category of a decode failure
type ErrorKind int

const (
	// ErrKindWidthMismatch indicates a field whose length differs from the type width
	ErrKindWidthMismatch ErrorKind = iota
	// ErrKindUnsupportedType indicates a data type outside the closed set
	ErrKindUnsupportedType
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case ErrKindWidthMismatch:
		return "BitWidthMismatch"
	case ErrKindUnsupportedType:
		return "UnsupportedDataType"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is returned by the decoders in this package
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsWidthMismatch checks if an error is a bit width mismatch
func IsWidthMismatch(err error) bool {
	if decErr, ok := err.(*Error); ok {
		return decErr.Kind == ErrKindWidthMismatch
	}
	return false
}

// IsUnsupportedType checks if an error is an unsupported data type error
func IsUnsupportedType(err error) bool {
	if decErr, ok := err.(*Error); ok {
		return decErr.Kind == ErrKindUnsupportedType
	}
	return false
}
