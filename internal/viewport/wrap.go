package viewport

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// tabWidth is the number of spaces a tab expands to.
const tabWidth = 4

// word is a run of non-space text and the whitespace that follows it.
type word struct {
	text  string
	space string
}

// splitWords splits text into words, keeping the whitespace after each.
// Leading whitespace becomes a word with empty text.
func splitWords(text string) []word {
	var words []word
	i := 0
	for i < len(text) {
		start := i
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}
		end := i
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(r) {
				break
			}
			i += size
		}
		words = append(words, word{text: text[start:end], space: text[end:i]})
	}
	return words
}

// WrapText word-wraps text to width display columns. Indentation and the
// whitespace between words on one row are kept. Whitespace at a break is
// dropped, tabs expand to spaces and words wider than width are broken.
// Text that is empty or blank yields no rows.
func WrapText(text string, width int) []string {
	if width <= 0 {
		return nil
	}

	words := splitWords(strings.ReplaceAll(text, "\t", strings.Repeat(" ", tabWidth)))

	var rows []string
	var current strings.Builder
	currentWidth := 0
	started := false
	pending := ""

	flush := func() {
		if current.Len() > 0 {
			rows = append(rows, current.String())
		}
		current.Reset()
		currentWidth = 0
		started = false
	}

	for _, w := range words {
		wordWidth := runewidth.StringWidth(w.text)

		if started {
			spaceWidth := runewidth.StringWidth(pending)
			if currentWidth+spaceWidth+wordWidth <= width {
				current.WriteString(pending)
				current.WriteString(w.text)
				currentWidth += spaceWidth + wordWidth
				pending = w.space
				continue
			}
			flush()
		}

		started = true
		pending = w.space
		if wordWidth <= width {
			current.WriteString(w.text)
			currentWidth = wordWidth
			continue
		}

		pieces := breakWord(w.text, width)
		rows = append(rows, pieces[:len(pieces)-1]...)
		last := pieces[len(pieces)-1]
		current.WriteString(last)
		currentWidth = runewidth.StringWidth(last)
	}

	flush()
	return rows
}

// breakWord splits word into pieces no wider than maxWidth. A rune wider
// than maxWidth gets a piece of its own.
func breakWord(word string, maxWidth int) []string {
	var pieces []string
	var piece strings.Builder
	pieceWidth := 0

	for _, r := range word {
		w := runewidth.RuneWidth(r)
		if pieceWidth > 0 && pieceWidth+w > maxWidth {
			pieces = append(pieces, piece.String())
			piece.Reset()
			pieceWidth = 0
		}
		piece.WriteRune(r)
		pieceWidth += w
	}
	if piece.Len() > 0 {
		pieces = append(pieces, piece.String())
	}
	return pieces
}
