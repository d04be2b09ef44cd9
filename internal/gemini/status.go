package gemini

import (
	"errors"
	"fmt"
	"strings"
)

// StatusClass is selected by the first digit of a status code.
type StatusClass int

const (
	ClassSuccess          StatusClass = 2
	ClassRedirect         StatusClass = 3
	ClassTemporaryFailure StatusClass = 4
	ClassPermanentFailure StatusClass = 5
)

func (c StatusClass) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassRedirect:
		return "redirect"
	case ClassTemporaryFailure:
		return "temporary failure"
	case ClassPermanentFailure:
		return "permanent failure"
	default:
		return fmt.Sprintf("StatusClass(%d)", int(c))
	}
}

// Status is a parsed response header.
// Meta is the media type for Success, the target for Redirect and the
// human-readable message for the failure classes. It may be empty.
type Status struct {
	Class StatusClass
	Code  string
	Meta  string
}

func (s Status) String() string {
	if s.Meta == "" {
		return s.Code
	}
	return s.Code + " " + s.Meta
}

// ParseStatus parses a response header line of the form
// "<2 digits><space><meta>\r\n". The trailing line terminator is optional.
func ParseStatus(header string) (Status, error) {
	line := strings.TrimRight(header, "\r\n")

	if len(line) < 2 {
		return Status{}, statusParseError(header, "header too short")
	}

	var class StatusClass
	switch line[0] {
	case '2':
		class = ClassSuccess
	case '3':
		class = ClassRedirect
	case '4':
		class = ClassTemporaryFailure
	case '5':
		class = ClassPermanentFailure
	default:
		return Status{}, statusParseError(header, "unknown status class")
	}

	if line[1] < '0' || line[1] > '9' {
		return Status{}, statusParseError(header, "status code is not two digits")
	}

	status := Status{Class: class, Code: line[:2]}

	rest := line[2:]
	if rest == "" {
		return status, nil
	}
	if rest[0] != ' ' {
		return Status{}, statusParseError(header, "missing space after status code")
	}
	status.Meta = strings.TrimSpace(rest[1:])

	return status, nil
}

func statusParseError(header, reason string) *Error {
	return &Error{
		Kind: ErrStatusParse.Kind,
		Meta: header,
		Err:  errors.New(reason),
	}
}
