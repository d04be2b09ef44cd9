// Package gemtext parses line-oriented hypertext documents.
//
// A document is a sequence of lines. Lines starting with "=>" are links,
// everything else is literal text.
package gemtext

import (
	"strings"
	"unicode"
)

// LinkPrefix marks a link line
const LinkPrefix = "=>"

// Kind identifies the variant of a parsed line
type Kind int

const (
	KindNormal Kind = iota
	KindLink
	KindInvalidLink
)

func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindLink:
		return "link"
	case KindInvalidLink:
		return "invalid_link"
	default:
		return "unknown"
	}
}

// Line is one parsed document line.
// Text is set for KindNormal, URL and Name for KindLink. Name may be empty.
type Line struct {
	Kind Kind
	Text string
	URL  string
	Name string
}

// Normal builds a plain text line
func Normal(text string) Line {
	return Line{Kind: KindNormal, Text: text}
}

// Link builds a link line
func Link(url, name string) Line {
	return Line{Kind: KindLink, URL: url, Name: name}
}

// InvalidLink builds a link line that carried no URL
func InvalidLink() Line {
	return Line{Kind: KindInvalidLink}
}

// IsLink reports whether the line can be followed
func (l Line) IsLink() bool {
	return l.Kind == KindLink
}

// Label returns the text shown for a link: its name, or the URL when unnamed
func (l Line) Label() string {
	if l.Name != "" {
		return l.Name
	}
	return l.URL
}

// Parse classifies a single line. The line must not contain its trailing newline.
//
//	=>[<whitespace>]<URL>[<whitespace><NAME>]
func Parse(line string) Line {
	rest, ok := strings.CutPrefix(line, LinkPrefix)
	if !ok {
		return Normal(line)
	}

	fields := strings.FieldsFunc(rest, unicode.IsSpace)
	if len(fields) == 0 {
		return InvalidLink()
	}

	return Link(fields[0], strings.Join(fields[1:], " "))
}

// ParseDocument splits raw document text into lines and parses each one.
// CRLF and LF line endings are both accepted. An empty document yields a
// single empty line so there is always a line to select.
func ParseDocument(text string) []Line {
	raw := SplitLines(text)
	if len(raw) == 0 {
		return []Line{Normal("")}
	}

	lines := make([]Line, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, Parse(l))
	}
	return lines
}

// SplitLines splits text on newlines, dropping a single trailing newline
// and the carriage return of CRLF endings.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")

	parts := strings.Split(text, "\n")
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\r")
	}
	return parts
}
