package core

// Error Codes Reference
//
// User-facing messages carry a short code that can be quoted to support:
//
//	CNV001 - Malformed input: the data does not match the selected source format
//	CNV002 - Empty result: the input parsed but contained no usable rows
//	CNV003 - Unsupported format: the format name is not recognized
//	CNV004 - Not implemented: the format is recognized but not in this direction
//	CNV005 - Column not found: extraction named a column the CSV does not have
//	REQ001 - Input too large: the request body exceeded the configured limit
//	REQ002 - Bad request: a required parameter was missing or invalid
//	REQ003 - Request cancelled
//	REQ004 - Request timed out
//	REQ005 - Server busy: every conversion slot stayed occupied
//	REQ006 - Rate limited: too many requests from one client
//	ERR000 - Unknown error, check the server logs
//
// Kinds are matched first with errors.Is; remaining errors fall back to a
// case-insensitive substring table where the first match wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type kindMessage struct {
	kind error
	msg  UserMessage
}

var kindMessages = []kindMessage{
	{
		kind: ErrMalformedInput,
		msg: UserMessage{
			Message: "The input does not match the selected source format",
			Action:  "Check the source format or fix the syntax error shown in the details",
			Code:    "CNV001",
		},
	},
	{
		kind: ErrEmptyResult,
		msg: UserMessage{
			Message: "No rows could be read from the input",
			Action:  "Make sure the input contains at least one record",
			Code:    "CNV002",
		},
	},
	{
		kind: ErrUnsupportedFormat,
		msg: UserMessage{
			Message: "The requested format is not supported",
			Action:  "Choose one of the formats listed by /api/formats",
			Code:    "CNV003",
		},
	},
	{
		kind: ErrNotImplemented,
		msg: UserMessage{
			Message: "This conversion is not available",
			Action:  "Export the data to CSV or TSV first and convert that instead",
			Code:    "CNV004",
		},
	},
	{
		kind: ErrColumnNotFound,
		msg: UserMessage{
			Message: "A requested column was not found in the CSV",
			Action:  "Verify the column names match the header row exactly",
			Code:    "CNV005",
		},
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns covers errors raised outside this package.
var errorPatterns = []errorPattern{
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The input exceeds the maximum allowed size",
			Action:  "Split the data into smaller pieces",
			Code:    "REQ001",
		},
	},
	{
		pattern: "missing parameter",
		msg: UserMessage{
			Message: "A required parameter is missing",
			Action:  "Provide both a source and a target format",
			Code:    "REQ002",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the request body and try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller input or try again later",
			Code:    "REQ004",
		},
	},
	{
		pattern: "too many conversions",
		msg: UserMessage{
			Message: "The server is busy with other conversions",
			Action:  "Wait a few seconds and retry",
			Code:    "REQ005",
		},
	},
	{
		pattern: "rate limit exceeded",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Slow down and retry after a minute",
			Code:    "REQ006",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Conversion kinds are checked first; other errors are matched against
// known substrings. Unknown errors map to ERR000.
//
// Example:
//
//	_, err := Convert("{", "json", "csv")
//	msg := MapError(err)
//	// msg.Code == "CNV001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, km := range kindMessages {
		if errors.Is(err, km.kind) {
			return km.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
