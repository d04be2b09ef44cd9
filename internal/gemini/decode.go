package gemini

import (
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

const (
	// MediaTypeGemtext is the only media type the client decodes.
	MediaTypeGemtext = "text/gemini"
	defaultCharset   = "utf-8"
)

// MediaType is the parsed meta field of a success header.
type MediaType struct {
	Type    string
	Charset string
}

// ParseMediaType parses a success meta field. An empty or malformed value
// yields text/gemini with a utf-8 charset.
func ParseMediaType(meta string) MediaType {
	mt := MediaType{Type: MediaTypeGemtext, Charset: defaultCharset}
	if strings.TrimSpace(meta) == "" {
		return mt
	}

	typ, params, err := mime.ParseMediaType(meta)
	if err != nil {
		return mt
	}
	mt.Type = typ
	if cs, ok := params["charset"]; ok && cs != "" {
		mt.Charset = strings.ToLower(cs)
	}
	return mt
}

// DecodeBody converts body from the declared charset to a string. Unknown
// charsets are read as UTF-8 and invalid sequences become U+FFFD.
func DecodeBody(body []byte, charset string) string {
	enc := lookupEncoding(charset)

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		decoded = body
	}
	if !utf8.Valid(decoded) {
		return strings.ToValidUTF8(string(decoded), string(utf8.RuneError))
	}
	return string(decoded)
}

func lookupEncoding(charset string) encoding.Encoding {
	if charset == "" {
		return unicode.UTF8
	}
	enc, err := htmlindex.Get(charset)
	if err != nil || enc == nil {
		return unicode.UTF8
	}
	return enc
}
