package gemini

import (
	"fmt"
	"net/url"
	"strings"
)

// Scheme is the only scheme the client speaks.
const Scheme = "gemini"

// Qualify turns candidate into an absolute URL. A candidate with a scheme
// is returned as parsed. Anything else is resolved against base after the
// base's query and fragment are cleared, so relative links never inherit
// them.
func Qualify(base *url.URL, candidate string) (*url.URL, error) {
	candidate = strings.TrimSpace(candidate)

	ref, err := url.Parse(candidate)
	if err != nil {
		return nil, &Error{Kind: KindInvalidURL, URL: candidate, Err: err}
	}
	if ref.IsAbs() {
		return ref, nil
	}

	if base == nil {
		return nil, &Error{
			Kind: KindInvalidURL,
			URL:  candidate,
			Err:  fmt.Errorf("relative reference without a current document"),
		}
	}

	cleaned := *base
	cleaned.RawQuery = ""
	cleaned.ForceQuery = false
	cleaned.Fragment = ""
	cleaned.RawFragment = ""

	return cleaned.ResolveReference(ref), nil
}

// ParseURL parses a user supplied address. A bare host such as
// "example.org/page" is given the gemini scheme.
func ParseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &Error{Kind: KindInvalidURL, Err: fmt.Errorf("empty address")}
	}
	if !strings.Contains(raw, "://") {
		raw = Scheme + "://" + raw
	}
	return Qualify(nil, raw)
}
