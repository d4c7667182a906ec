package domain

import "fmt"

// FetchErrorKind classifies why a feed request produced no body.
type FetchErrorKind int

const (
	// InvalidURL means the request URL could not be parsed; no connection was attempted.
	InvalidURL FetchErrorKind = iota + 1
	// Transport covers timeouts, DNS failures, and broken connections.
	Transport
	// BadStatus means the server answered with a status other than 200.
	BadStatus
)

func (k FetchErrorKind) String() string {
	switch k {
	case InvalidURL:
		return "invalid_url"
	case Transport:
		return "transport"
	case BadStatus:
		return "bad_status"
	default:
		return "unknown"
	}
}

// FetchError describes a failed feed request.
type FetchError struct {
	Kind  FetchErrorKind
	URL   string
	Code  int // HTTP status, set for BadStatus
	Cause error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case BadStatus:
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Code)
	default:
		if e.Cause != nil {
			return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Cause)
		}
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	}
}

func (e *FetchError) Unwrap() error { return e.Cause }

// ParseErrorKind classifies why feed parsing stopped.
type ParseErrorKind int

const (
	// MalformedJSON means the body or a feature is structurally unusable.
	MalformedJSON ParseErrorKind = iota + 1
	// MissingField means a required property is absent, null, or of the wrong type.
	MissingField
)

func (k ParseErrorKind) String() string {
	switch k {
	case MalformedJSON:
		return "malformed_json"
	case MissingField:
		return "missing_field"
	default:
		return "unknown"
	}
}

// ParseError reports where feed parsing stopped. Index is the position of the
// failing feature, or -1 when the document itself is unusable.
type ParseError struct {
	Kind  ParseErrorKind
	Index int
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	msg := "parse feed: " + e.Kind.String()
	if e.Index >= 0 {
		msg += fmt.Sprintf(" at feature %d", e.Index)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" (%s)", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }
