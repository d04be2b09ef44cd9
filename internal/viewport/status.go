package viewport

import (
	"github.com/charmbracelet/x/ansi"
)

const (
	// NoStatusPlaceholder stands in for the status code before the first
	// response.
	NoStatusPlaceholder = "--"
	cursor              = "█"
)

// StatusLine is what the bottom row shows. Loading replaces everything
// else. Otherwise Prompt and Input win over Error, which wins over URL.
type StatusLine struct {
	Code    string
	URL     string
	Error   string
	Prompt  string
	Input   string
	Loading bool
	Spinner string
}

// Text returns the status row without styles.
func (s StatusLine) Text(width int) string {
	code, body := s.parts()
	if s.Loading {
		return truncate(body, width)
	}
	return truncate(code+" "+body, width)
}

func (s StatusLine) parts() (code, body string) {
	if s.Loading {
		body = "Loading"
		if s.Spinner != "" {
			body = s.Spinner + " " + body
		}
		if s.URL != "" {
			body += " " + s.URL
		}
		return "", body
	}

	code = s.Code
	if code == "" {
		code = NoStatusPlaceholder
	}

	switch {
	case s.Prompt != "":
		body = s.Prompt + s.Input + cursor
	case s.Error != "":
		body = s.Error
	default:
		body = s.URL
	}
	return code, body
}

func (s StatusLine) paint(scr Screen, theme Theme, width, row int) {
	scr.MoveTo(0, row)

	code, body := s.parts()
	if s.Loading {
		scr.Write(truncate(body, width), theme.StatusLoad)
		return
	}

	scr.Write(code+" ", theme.StatusCode)

	style := theme.StatusURL
	switch {
	case s.Prompt != "":
		style = theme.StatusPrompt
	case s.Error != "":
		style = theme.StatusError
	}
	remaining := width - ansi.StringWidth(code) - 1
	if s.Prompt != "" && ansi.StringWidth(body) > remaining && remaining > 0 {
		// keep the cursor end of a long input in view
		body = ansi.TruncateLeft(body, ansi.StringWidth(body)-remaining, "")
	}
	scr.Write(truncate(body, remaining), style)
}
