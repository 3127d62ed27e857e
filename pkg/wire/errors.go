package wire

import (
	"fmt"
	"strings"
)

// ErrorKind classifies failures at the wire boundary
type ErrorKind int

const (
	// MissingRequiredKey means recordName or recordType is absent.
	MissingRequiredKey ErrorKind = iota + 1
	// MalformedWireValue means a value cannot be read under its declared type.
	MalformedWireValue
	// UnsupportedFieldType means a composite or list fragment carries an unknown tag.
	UnsupportedFieldType
	// HeterogeneousList means list elements do not share one primitive kind.
	HeterogeneousList
	// ServerReportedError means the server answered with an error payload.
	ServerReportedError
)

func (k ErrorKind) String() string {
	switch k {
	case MissingRequiredKey:
		return "missing required key"
	case MalformedWireValue:
		return "malformed wire value"
	case UnsupportedFieldType:
		return "unsupported field type"
	case HeterogeneousList:
		return "heterogeneous list"
	case ServerReportedError:
		return "server reported error"
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// Errors
var (
	ErrMissingRequiredKey   = &Error{Kind: MissingRequiredKey}
	ErrMalformedWireValue   = &Error{Kind: MalformedWireValue}
	ErrUnsupportedFieldType = &Error{Kind: UnsupportedFieldType}
	ErrHeterogeneousList    = &Error{Kind: HeterogeneousList}
	ErrServerReported       = &Error{Kind: ServerReportedError}
)

// Error is a typed failure raised while reading or classifying wire data.
// Two Errors match under errors.Is when their kinds are equal.
type Error struct {
	Kind    ErrorKind
	Field   string // record field or dictionary key involved, if any
	Tag     Tag    // declared type tag, if any
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %q", e.Field)
		if e.Tag != TagNone {
			fmt.Fprintf(&b, ", type %s", e.Tag)
		}
		b.WriteString(")")
	} else if e.Tag != TagNone {
		fmt.Fprintf(&b, " (type %s)", e.Tag)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an *Error of the given kind.
func Errorf(kind ErrorKind, tag Tag, format string, args ...any) *Error {
	return &Error{Kind: kind, Tag: tag, Message: fmt.Sprintf(format, args...)}
}

// WithField returns a copy of e attributed to the named field. Errors that
// already name a field keep it.
func (e *Error) WithField(field string) *Error {
	if e.Field != "" {
		return e
	}
	c := *e
	c.Field = field
	return &c
}
