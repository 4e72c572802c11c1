package errcode

import "errors"

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK             Code = "ok"
	Unsupported    Code = "unsupported"
	InvalidParams  Code = "invalid_params"
	InvalidPayload Code = "invalid_payload"
	InvalidTopic   Code = "invalid_topic"
	Timeout        Code = "timeout"

	// Variant selection / configuration.
	NoVariant        Code = "no_variant"
	AmbiguousVariant Code = "ambiguous_variant"
	UnknownVariant   Code = "unknown_variant"
	InvalidConfig    Code = "invalid_config"
	OutOfRange       Code = "out_of_range"

	// Debug sinks.
	SinkUnavailable Code = "sink_unavailable"

	Error Code = "error" // generic fallback
)

// E wraps a Code with the operation, a message and an optional cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

// Unwrap exposes the cause, or the code itself so errors.Is(err, code) works.
func (e *E) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.C
}

func (e *E) Code() Code { return e.C }

// New builds an *E with no cause.
func New(c Code, op, msg string) *E { return &E{C: c, Op: op, Msg: msg} }

// Wrap builds an *E around err.
func Wrap(c Code, op string, err error) *E {
	e := &E{C: c, Op: op, Err: err}
	if err != nil {
		e.Msg = err.Error()
	}
	return e
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return Error
}
