// Package cli implements the non-interactive commands: one-shot fetch and
// known hosts management.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/studiowebux/gemcli/internal/browser"
	"github.com/studiowebux/gemcli/internal/gemini"
)

const defaultWidth = 80

// FetchOptions contains options for fetching one page in CLI mode
type FetchOptions struct {
	URL string
	// Output is text, raw, json or yaml. Empty means text.
	Output string
	// Width wraps text output. Zero uses the terminal width.
	Width    int
	NoColor  bool
	Theme    string
	Transact browser.TransactFunc
	Stdout   io.Writer
}

// Fetch performs one transaction and prints the document. Protocol
// failures are returned so the caller can exit non-zero.
func Fetch(ctx context.Context, opts FetchOptions) error {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}

	u, err := gemini.ParseURL(opts.URL)
	if err != nil {
		return err
	}

	resp, err := opts.Transact(ctx, u)
	if err != nil {
		return err
	}

	output, err := formatOutput(resp, outputOptions{
		format: opts.Output,
		width:  resolveWidth(opts.Width, out),
		color:  !opts.NoColor && isTerminal(out),
		theme:  opts.Theme,
		out:    out,
	})
	if err != nil {
		return err
	}

	if _, err := io.WriteString(out, output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// isTerminal checks if w is a terminal (not piped or redirected)
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func resolveWidth(width int, w io.Writer) int {
	if width > 0 {
		return width
	}
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			return cols
		}
	}
	return defaultWidth
}
