// Package errkind classifies the errors returned by the core packages.
//
// Every core failure carries one Kind so front ends can decide how to present
// it without inspecting cryptographic details. Sentinels created with New can
// be matched both individually and by kind:
//
//	errors.Is(err, mnemonic.ErrUnknownWord) // the specific failure
//	errors.Is(err, errkind.Format)          // any format failure
package errkind

import (
	"errors"
)

// Kind is the category of a core error.
type Kind int

const (
	Unknown Kind = iota
	// Format covers malformed input: word counts, unknown words, truncated blobs.
	Format
	// Checksum is a mnemonic whose embedded checksum does not match.
	Checksum
	// Crypto is an AEAD authentication failure.
	Crypto
	// Value covers out-of-range or inconsistent arguments.
	Value
	// Serialization is malformed structured store text.
	Serialization
	// IO is a filesystem failure.
	IO
)

func (k Kind) String() string {
	switch k {
	case Format:
		return "format error"
	case Checksum:
		return "checksum mismatch"
	case Crypto:
		return "crypto error"
	case Value:
		return "value error"
	case Serialization:
		return "serialization error"
	case IO:
		return "io error"
	default:
		return "error"
	}
}

// Error implements error so a Kind can be used directly as an errors.Is target.
func (k Kind) Error() string {
	return k.String()
}

// Error is a classified error with an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New returns a classified error without a cause. It is mostly used for
// package-level sentinels.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap classifies err under kind, prefixing msg.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
