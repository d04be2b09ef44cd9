package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/gemcli/internal/gemini"
	"github.com/studiowebux/gemcli/internal/gemtext"
	"github.com/studiowebux/gemcli/internal/viewport"
)

// Output formats accepted by fetch
const (
	OutputText = "text"
	OutputRaw  = "raw"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

type outputOptions struct {
	format string
	width  int
	color  bool
	theme  string
	out    io.Writer
}

// document is the json and yaml shape of a response.
type document struct {
	URL       string         `json:"url" yaml:"url"`
	Status    string         `json:"status" yaml:"status"`
	Meta      string         `json:"meta" yaml:"meta"`
	Charset   string         `json:"charset" yaml:"charset"`
	Redirects int            `json:"redirects" yaml:"redirects"`
	Lines     []documentLine `json:"lines" yaml:"lines"`
}

type documentLine struct {
	Kind string `json:"kind" yaml:"kind"`
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

func newDocument(resp *gemini.Response) document {
	doc := document{
		Status:    resp.Status.Code,
		Meta:      resp.Status.Meta,
		Charset:   resp.MediaType.Charset,
		Redirects: resp.Redirects,
	}
	if resp.URL != nil {
		doc.URL = resp.URL.String()
	}
	for _, line := range resp.Lines() {
		doc.Lines = append(doc.Lines, documentLine{
			Kind: line.Kind.String(),
			Text: line.Text,
			URL:  line.URL,
			Name: line.Name,
		})
	}
	return doc
}

// formatOutput formats the response based on the output format
func formatOutput(resp *gemini.Response, opts outputOptions) (string, error) {
	switch strings.ToLower(opts.format) {
	case OutputJSON:
		data, err := json.MarshalIndent(newDocument(resp), "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case OutputYAML:
		data, err := yaml.Marshal(newDocument(resp))
		if err != nil {
			return "", err
		}
		return string(data), nil

	case OutputRaw:
		return resp.Body, nil

	case OutputText, "":
		return renderText(resp.Lines(), opts), nil

	default:
		return "", fmt.Errorf("unknown output format %q (want text, raw, json or yaml)", opts.format)
	}
}

// renderText paints the document on an off-screen canvas tall enough to
// hold every row, exactly as the browser would show it.
func renderText(lines []gemtext.Line, opts outputOptions) string {
	rows := 0
	for _, line := range lines {
		rows += viewport.RowCount(line, opts.width)
	}

	renderer := lipgloss.NewRenderer(opts.out)
	if !opts.color {
		renderer.SetColorProfile(termenv.Ascii)
	}
	theme := viewport.NewRendererTheme(renderer, opts.theme)

	canvas := viewport.NewCanvas(opts.width, rows+1)
	viewport.Render(canvas, theme, lines, -1, 0, viewport.StatusLine{})

	var sb strings.Builder
	if opts.color {
		frame := strings.Split(canvas.Frame(), "\n")
		for _, row := range frame[:rows] {
			sb.WriteString(row)
			sb.WriteByte('\n')
		}
		return sb.String()
	}

	for _, row := range canvas.PlainRows()[:rows] {
		sb.WriteString(strings.TrimRight(row, " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
