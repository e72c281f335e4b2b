package bits

import "fmt"

// ErrorKind represents the category of a bit-level failure
type ErrorKind int

const (
	// ErrKindInvalidHex indicates a payload character that is not a hex digit
	ErrKindInvalidHex ErrorKind = iota
	// ErrKindOutOfRange indicates a field that does not fit in the payload
	ErrKindOutOfRange
	// ErrKindNotByteAligned indicates a byte operation on a non-multiple of 8 bits
	ErrKindNotByteAligned
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case ErrKindInvalidHex:
		return "InvalidHexDigit"
	case ErrKindOutOfRange:
		return "OutOfRange"
	case ErrKindNotByteAligned:
		return "NotByteAligned"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is returned by every operation in this package
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

func isKind(err error, kind ErrorKind) bool {
	if bitErr, ok := err.(*Error); ok {
		return bitErr.Kind == kind
	}
	return false
}

// IsInvalidHex checks if an error is an invalid hex digit error
func IsInvalidHex(err error) bool {
	return isKind(err, ErrKindInvalidHex)
}

// IsOutOfRange checks if an error is a bit range error
func IsOutOfRange(err error) bool {
	return isKind(err, ErrKindOutOfRange)
}

// IsNotByteAligned checks if an error is a byte alignment error
func IsNotByteAligned(err error) bool {
	return isKind(err, ErrKindNotByteAligned)
}
