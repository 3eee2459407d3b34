package javaser

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind names the fatal failure categories a decode can hit. All are
// terminal: the first one encountered aborts the whole parse.
type ErrorKind int

const (
	ErrPrematureEndOfInput ErrorKind = iota
	ErrBadMagic
	ErrUnsupportedVersion
	ErrUnknownTypeCode
	ErrDisallowedContent
	ErrUnsupported
	ErrExternalizableUnsupported
	ErrUnknownClassFlags
	ErrUnknownFieldType
	ErrLongStringOverflow
	ErrInvalidHandle
)

func (k ErrorKind) String() string {
	switch k {
	case ErrPrematureEndOfInput:
		return "PrematureEndOfInput"
	case ErrBadMagic:
		return "BadMagic"
	case ErrUnsupportedVersion:
		return "UnsupportedVersion"
	case ErrUnknownTypeCode:
		return "UnknownTypeCode"
	case ErrDisallowedContent:
		return "DisallowedContent"
	case ErrUnsupported:
		return "Unsupported"
	case ErrExternalizableUnsupported:
		return "ExternalizableUnsupported"
	case ErrUnknownClassFlags:
		return "UnknownClassFlags"
	case ErrUnknownFieldType:
		return "UnknownFieldType"
	case ErrLongStringOverflow:
		return "LongStringOverflow"
	case ErrInvalidHandle:
		return "InvalidHandle"
	default:
		return "Unknown"
	}
}

// DecodeError is the structured, fatal error surface described by the
// protocol: a kind, the cursor offset at which it was raised, and a
// reference to the buffer being parsed so callers can build diagnostics.
type DecodeError struct {
	Kind   ErrorKind
	Offset int
	Buffer []byte
	cause  error
}

func (e *DecodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("javaser: %s at offset %d: %s", e.Kind, e.Offset, e.cause)
	}
	return fmt.Sprintf("javaser: %s at offset %d", e.Kind, e.Offset)
}

func (e *DecodeError) Unwrap() error { return e.cause }

// newDecodeError builds a DecodeError anchored at the cursor's current
// position, wrapping cause with msg via pkg/errors the way the rest of
// this module wraps failures.
func (p *Parser) newDecodeError(kind ErrorKind, msg string, cause error) error {
	offset := p.cur.pos
	var wrapped error
	if cause != nil {
		wrapped = errors.Wrap(cause, msg)
	} else {
		wrapped = errors.New(msg)
	}
	return &DecodeError{Kind: kind, Offset: offset, Buffer: p.cur.buf, cause: wrapped}
}
