package viewport

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Screen is the terminal capability the renderer needs.
type Screen interface {
	Size() (width, height int)
	Clear()
	MoveTo(col, row int)
	Write(text string, style lipgloss.Style)
	Flush() error
}

type span struct {
	text  string
	style lipgloss.Style
}

// Canvas is an in-memory Screen. Writes are buffered until Flush, which
// publishes the buffer as the frame returned by Frame.
type Canvas struct {
	mu      sync.Mutex
	width   int
	height  int
	rows    [][]span
	widths  []int
	col     int
	row     int
	frame   string
	plain   []string
	onFlush func()
}

func NewCanvas(width, height int) *Canvas {
	c := &Canvas{}
	c.Resize(width, height)
	return c
}

// OnFlush registers fn to run after every Flush, outside the canvas lock.
func (c *Canvas) OnFlush(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFlush = fn
}

// Resize changes the size and clears the buffer. The published frame is
// kept until the next Flush.
func (c *Canvas) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = max(width, 0)
	c.height = max(height, 0)
	c.clearLocked()
}

func (c *Canvas) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

func (c *Canvas) clearLocked() {
	c.rows = make([][]span, c.height)
	c.widths = make([]int, c.height)
	c.col, c.row = 0, 0
}

func (c *Canvas) MoveTo(col, row int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.col, c.row = max(col, 0), max(row, 0)
}

// Write puts text at the cursor and advances it. Text is clipped at the
// right edge. Writing left of existing content drops the rest of the row.
func (c *Canvas) Write(text string, style lipgloss.Style) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.row >= c.height || c.col >= c.width {
		return
	}

	if c.col < c.widths[c.row] {
		c.truncateRow(c.row, c.col)
	}
	if gap := c.col - c.widths[c.row]; gap > 0 {
		c.rows[c.row] = append(c.rows[c.row], span{text: strings.Repeat(" ", gap)})
		c.widths[c.row] += gap
	}

	text = runewidth.Truncate(text, c.width-c.col, "")
	w := runewidth.StringWidth(text)
	if w == 0 {
		return
	}
	c.rows[c.row] = append(c.rows[c.row], span{text: text, style: style})
	c.widths[c.row] += w
	c.col += w
}

func (c *Canvas) truncateRow(row, col int) {
	var kept []span
	width := 0
	for _, s := range c.rows[row] {
		sw := runewidth.StringWidth(s.text)
		if width+sw <= col {
			kept = append(kept, s)
			width += sw
			continue
		}
		if rest := runewidth.Truncate(s.text, col-width, ""); rest != "" {
			kept = append(kept, span{text: rest, style: s.style})
			width += runewidth.StringWidth(rest)
		}
		break
	}
	c.rows[row] = kept
	c.widths[row] = width
}

// Flush renders the buffer into the published frame.
func (c *Canvas) Flush() error {
	c.mu.Lock()
	var frame strings.Builder
	plain := make([]string, len(c.rows))
	for i, row := range c.rows {
		if i > 0 {
			frame.WriteByte('\n')
		}
		var p strings.Builder
		for _, s := range row {
			frame.WriteString(s.style.Render(s.text))
			p.WriteString(s.text)
		}
		plain[i] = p.String()
	}
	c.frame = frame.String()
	c.plain = plain
	onFlush := c.onFlush
	c.mu.Unlock()

	if onFlush != nil {
		onFlush()
	}
	return nil
}

// Frame returns the last flushed frame with styles applied.
func (c *Canvas) Frame() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// PlainRows returns the last flushed frame without styles, one entry per
// screen row.
func (c *Canvas) PlainRows() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.plain...)
}
