// Package history keeps the commands typed in a session and the durable
// log they are appended to on exit.
package history

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/studiowebux/gemcli/internal/config"
)

// History is the durable log read at startup plus the entries committed in
// this session. Traversal walks both, most recent first. It is not safe for
// concurrent use.
type History struct {
	durable []string
	session []string
	// index into Entries(); -1 when not traversing
	index int
}

func New(durable []string) *History {
	return &History{durable: durable, index: -1}
}

// Load reads the durable log at path. A missing file is an empty history.
func Load(path string) (*History, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()

	var durable []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
			durable = append(durable, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	return New(durable), nil
}

// Push commits entry to the session and resets traversal.
func (h *History) Push(entry string) {
	h.index = -1
	if entry == "" {
		return
	}
	h.session = append(h.session, entry)
}

// Entries returns durable and session entries, most recent first.
func (h *History) Entries() []string {
	entries := make([]string, 0, len(h.durable)+len(h.session))
	for i := len(h.session) - 1; i >= 0; i-- {
		entries = append(entries, h.session[i])
	}
	for i := len(h.durable) - 1; i >= 0; i-- {
		entries = append(entries, h.durable[i])
	}
	return entries
}

func (h *History) Len() int {
	return len(h.durable) + len(h.session)
}

// Previous steps to the next older entry. It stays on the oldest entry
// once reached and reports false only when there is no history.
func (h *History) Previous() (string, bool) {
	n := h.Len()
	if n == 0 {
		return "", false
	}
	if h.index < n-1 {
		h.index++
	}
	return h.at(h.index), true
}

// Next steps to the next newer entry. Stepping past the newest entry ends
// traversal and reports false.
func (h *History) Next() (string, bool) {
	if h.index <= 0 {
		h.index = -1
		return "", false
	}
	h.index--
	return h.at(h.index), true
}

// Reset ends traversal.
func (h *History) Reset() {
	h.index = -1
}

func (h *History) at(i int) string {
	if i < len(h.session) {
		return h.session[len(h.session)-1-i]
	}
	i -= len(h.session)
	return h.durable[len(h.durable)-1-i]
}

// Drain moves the session entries to the durable part and returns them
// for Append.
func (h *History) Drain() []string {
	entries := h.session
	h.durable = append(h.durable, entries...)
	h.session = nil
	h.index = -1
	return entries
}

// Append adds entries to the log at path, one per line.
func Append(path string, entries []string) error {
	if len(entries) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), config.DirPermissions); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, config.FilePermissions)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, entry := range entries {
		w.WriteString(entry)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close history: %w", err)
	}
	return nil
}
