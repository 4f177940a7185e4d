package core

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by this package wraps exactly one of
// these, so callers can branch with errors.Is.
var (
	ErrMalformedInput    = errors.New("malformed input")
	ErrEmptyResult       = errors.New("empty result")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrNotImplemented    = errors.New("not implemented")
	ErrColumnNotFound    = errors.New("column not found")
)

var errorKinds = []error{
	ErrMalformedInput,
	ErrEmptyResult,
	ErrUnsupportedFormat,
	ErrNotImplemented,
	ErrColumnNotFound,
}

// FormatError reports a failure while parsing or serializing one format.
type FormatError struct {
	Kind   error  // one of the Err* kinds
	Format Format // format being processed, may be empty
	Op     string // "parse" or "serialize"
	Msg    string // human-readable detail
	Err    error  // underlying cause, may be nil
}

func (e *FormatError) Error() string {
	var b strings.Builder
	if e.Format != "" {
		b.WriteString(string(e.Format))
		if e.Op != "" {
			b.WriteByte(' ')
			b.WriteString(e.Op)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func malformed(f Format, msg string, err error) error {
	return &FormatError{Kind: ErrMalformedInput, Format: f, Op: "parse", Msg: msg, Err: err}
}

func emptyResult(f Format, msg string) error {
	return &FormatError{Kind: ErrEmptyResult, Format: f, Op: "parse", Msg: msg}
}

func notImplemented(f Format, op, msg string) error {
	return &FormatError{Kind: ErrNotImplemented, Format: f, Op: op, Msg: msg}
}

// UnsupportedFormatError names an identifier no codec is registered for.
type UnsupportedFormatError struct {
	Name string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %q", e.Name)
}

func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// ColumnNotFoundError lists every requested column missing from the input.
type ColumnNotFoundError struct {
	Missing []string
}

func (e *ColumnNotFoundError) Error() string {
	return "column not found: " + strings.Join(e.Missing, ", ")
}

func (e *ColumnNotFoundError) Unwrap() error { return ErrColumnNotFound }

// Kind returns the sentinel kind wrapped by err, or nil if err did not
// originate in this package.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range errorKinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
