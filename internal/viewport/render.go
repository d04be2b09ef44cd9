package viewport

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/studiowebux/gemcli/internal/gemtext"
)

const (
	// InvalidLinkMarker replaces a link line that has no URL.
	InvalidLinkMarker = "=> (invalid link)"

	linkIndicator = "=> "
	ellipsis      = "…"
)

// LineRows returns the physical rows line occupies at width. Normal lines
// wrap, everything else is one row. The result is never empty so that an
// active blank line stays visible.
func LineRows(line gemtext.Line, width int) []string {
	switch line.Kind {
	case gemtext.KindLink:
		row := linkIndicator + line.Label()
		if line.Name != "" {
			row += " " + line.URL
		}
		return []string{truncate(row, width)}

	case gemtext.KindInvalidLink:
		return []string{truncate(InvalidLinkMarker, width)}

	default:
		rows := WrapText(line.Text, width)
		if len(rows) == 0 {
			return []string{" "}
		}
		return rows
	}
}

// RowCount is len(LineRows(line, width)) without building the rows for
// link lines.
func RowCount(line gemtext.Line, width int) int {
	if line.Kind != gemtext.KindNormal {
		return 1
	}
	return len(LineRows(line, width))
}

// LineStart returns the absolute row index at which lines[index] begins.
func LineStart(lines []gemtext.Line, index, width int) int {
	row := 0
	for i := 0; i < index && i < len(lines); i++ {
		row += RowCount(lines[i], width)
	}
	return row
}

// KeepVisible returns the scroll offset closest to offset that shows the
// start of lines[active] within contentRows rows, and as much of the line
// as fits.
func KeepVisible(lines []gemtext.Line, active, offset, width, contentRows int) int {
	if active < 0 || active >= len(lines) || contentRows <= 0 {
		return max(offset, 0)
	}

	start := LineStart(lines, active, width)
	rows := RowCount(lines[active], width)

	if start < offset {
		return start
	}
	if start+rows > offset+contentRows {
		offset = start + rows - contentRows
		if offset > start {
			offset = start
		}
	}
	return max(offset, 0)
}

// Render paints lines starting at scrollOffset and the status line on the
// last row, then flushes the screen. It returns the row of the active
// line relative to the top of the window, or -1 if active is not a line
// index. The returned row may lie outside the window.
func Render(scr Screen, theme Theme, lines []gemtext.Line, active, scrollOffset int, status StatusLine) int {
	width, height := scr.Size()
	contentRows := height - 1

	scr.Clear()

	activeRow := -1
	found := false
	row := 0
	for i, line := range lines {
		if i == active {
			activeRow = row - scrollOffset
			found = true
		}

		visible := row - scrollOffset
		if visible >= contentRows {
			if found || active < i {
				break
			}
			row += RowCount(line, width)
			continue
		}

		rows := LineRows(line, width)
		for _, text := range rows {
			visible := row - scrollOffset
			row++
			if visible < 0 {
				continue
			}
			if visible >= contentRows {
				break
			}
			paintRow(scr, theme, line, text, i == active, visible, width)
		}
	}

	if height > 0 {
		status.paint(scr, theme, width, height-1)
	}
	scr.Flush()

	return activeRow
}

func paintRow(scr Screen, theme Theme, line gemtext.Line, text string, active bool, row, width int) {
	scr.MoveTo(0, row)

	if line.Kind == gemtext.KindLink {
		link, url := theme.Link, theme.LinkURL
		if active {
			link, url = theme.highlight(link), theme.highlight(url)
		}
		label := linkIndicator + line.Label()
		if rest, ok := strings.CutPrefix(text, label); ok {
			scr.Write(label, link)
			scr.Write(rest, url)
		} else {
			scr.Write(text, link)
		}
		return
	}

	style := theme.Text
	if line.Kind == gemtext.KindInvalidLink {
		style = theme.InvalidLink
	}
	if active {
		style = theme.highlight(style)
	}
	scr.Write(text, style)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, ellipsis)
}
