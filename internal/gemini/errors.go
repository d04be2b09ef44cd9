package gemini

import (
	"fmt"
)

// ErrorKind classifies a failed transaction.
type ErrorKind int

const (
	KindNoHost ErrorKind = iota + 1
	KindInvalidHostName
	KindInvalidURL
	KindIO
	KindStatusParse
	KindUnsupportedContentType
	KindTemporaryFailure
	KindPermanentFailure
	KindRedirectLoop
	KindCertificateMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case KindNoHost:
		return "no host"
	case KindInvalidHostName:
		return "invalid host name"
	case KindInvalidURL:
		return "invalid url"
	case KindIO:
		return "i/o error"
	case KindStatusParse:
		return "malformed status line"
	case KindUnsupportedContentType:
		return "unsupported content type"
	case KindTemporaryFailure:
		return "temporary failure"
	case KindPermanentFailure:
		return "permanent failure"
	case KindRedirectLoop:
		return "too many redirects"
	case KindCertificateMismatch:
		return "certificate mismatch"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is returned for every failed transaction. Code and Meta carry the
// server's status for failure kinds, the declared media type for
// KindUnsupportedContentType and the raw header for KindStatusParse.
type Error struct {
	Kind ErrorKind
	Code string
	Meta string
	URL  string
	Err  error
}

// Sentinels for errors.Is. Matching compares Kind only.
var (
	ErrNoHost                 = &Error{Kind: KindNoHost}
	ErrInvalidHostName        = &Error{Kind: KindInvalidHostName}
	ErrInvalidURL             = &Error{Kind: KindInvalidURL}
	ErrIO                     = &Error{Kind: KindIO}
	ErrStatusParse            = &Error{Kind: KindStatusParse}
	ErrUnsupportedContentType = &Error{Kind: KindUnsupportedContentType}
	ErrTemporaryFailure       = &Error{Kind: KindTemporaryFailure}
	ErrPermanentFailure       = &Error{Kind: KindPermanentFailure}
	ErrRedirectLoop           = &Error{Kind: KindRedirectLoop}
	ErrCertificateMismatch    = &Error{Kind: KindCertificateMismatch}
)

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindTemporaryFailure, KindPermanentFailure:
		msg = fmt.Sprintf("%s %s", e.Code, e.Meta)
		if e.Meta == "" {
			msg = fmt.Sprintf("%s %s", e.Code, e.Kind)
		}
	case KindUnsupportedContentType:
		msg = fmt.Sprintf("%s: %s", e.Kind, e.Meta)
	case KindStatusParse:
		msg = fmt.Sprintf("%s %q", e.Kind, e.Meta)
	default:
		msg = e.Kind.String()
	}

	if e.URL != "" {
		msg = e.URL + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}
