// Package core provides the data-format conversion engine.
//
// This package holds every parser and serializer together with the router
// that connects them. It has no transport or storage dependencies and can be
// used by the web server, the CLI, or tests without modification. Every call
// is a pure function of its input text: there is no shared mutable state, so
// conversions may run concurrently.
//
// # Architecture
//
// The package is organized around a star topology:
//
//   - Table: the canonical model. Ordered headers plus rows of untyped
//     string cells.
//   - Codecs: one parser/serializer pair per format, registered at init time
//     via [Register]. Aliases (table, ndjson, lines, ...) resolve to a
//     canonical [Format] through [ParseFormat].
//   - Router: [Convert] parses the source into a Table (the CSV hub) and
//     serializes that Table into the target.
//   - Extraction: [ExtractColumns] projects and filters CSV directly.
//
// # Conversion
//
//	out, err := core.Convert(data, "json", "yaml")
//
// When the source and target identifiers are equal the input is returned
// byte-for-byte without validation. [ConvertWithReport] additionally returns
// row/column counts and non-fatal warnings, such as keys dropped from
// heterogeneous JSON objects.
//
// # Error Handling
//
// Every failure wraps one of five sentinel kinds, testable with errors.Is:
//
//   - [ErrMalformedInput]: text does not match its declared format
//   - [ErrEmptyResult]: parsed structurally but produced no usable rows
//   - [ErrUnsupportedFormat]: unknown format identifier
//   - [ErrNotImplemented]: recognized format, unsupported direction
//   - [ErrColumnNotFound]: extraction requested unknown columns
//
// [MapError] turns any of them into a [UserMessage] with a support code.
package core
