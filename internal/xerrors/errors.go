// Package xerrors defines the sync failure taxonomy. Pure computation
// steps never produce these: only the I/O steps (fetch, upload, attest)
// and serialization/encryption can fail a pipeline.
package xerrors

import (
	"errors"
)

type Kind string

const (
	// KindSourceUnavailable: the sample source cannot be reached or
	// authorization was revoked. Fatal to the current sync.
	KindSourceUnavailable Kind = "source_unavailable"
	// KindEncoding: serialization or encryption failed, typically a
	// missing or malformed encryption key. The key capability must be
	// reconnected before a retry can succeed.
	KindEncoding Kind = "encoding_failure"
	// KindNetwork: upload or attestation failed. Transient; recovery is a
	// user-triggered retry of the full pipeline.
	KindNetwork Kind = "network_failure"
	// KindInternal: anything else.
	KindInternal Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func SourceUnavailable(opts ...Option) *Error { return newErr(KindSourceUnavailable, opts) }
func Encoding(opts ...Option) *Error          { return newErr(KindEncoding, opts) }
func Network(opts ...Option) *Error           { return newErr(KindNetwork, opts) }
func Internal(opts ...Option) *Error          { return newErr(KindInternal, opts) }

var messages = map[Kind]string{
	KindSourceUnavailable: "health data source unavailable",
	KindEncoding:          "failed to encode export payload",
	KindNetwork:           "network request failed",
	KindInternal:          "internal error",
}

func newErr(kind Kind, opts []Option) *Error {
	e := &Error{Kind: kind, Message: messages[kind]}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type Option func(*Error)

func WithMessage(msg string) Option { return func(e *Error) { e.Message = msg } }
func WithCause(err error) Option    { return func(e *Error) { e.Cause = err } }

func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// IsKind reports whether err carries the given failure kind.
func IsKind(err error, kind Kind) bool {
	e := As(err)
	return e != nil && e.Kind == kind
}

// UserMessage returns the single-line message shown to the user: never a
// stack trace, never a protocol error code.
func UserMessage(err error) string {
	if e := As(err); e != nil {
		return e.Message
	}
	return "sync failed"
}
