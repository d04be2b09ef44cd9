package browser

import (
	"strings"
)

// CommandKind is the result of parsing a line typed after ':'.
type CommandKind int

const (
	CommandInvalid CommandKind = iota
	CommandGo
	CommandQuit
)

type Command struct {
	Kind CommandKind
	// Arg is the URL or path of a go command.
	Arg string
}

// ParseCommand parses "go <url-or-path>", "quit" and "q".
func ParseCommand(input string) Command {
	trimmed := strings.TrimSpace(input)

	if target, ok := strings.CutPrefix(trimmed, "go "); ok {
		if target = strings.TrimSpace(target); target != "" {
			return Command{Kind: CommandGo, Arg: target}
		}
	}

	switch trimmed {
	case "quit", "q":
		return Command{Kind: CommandQuit}
	}

	return Command{Kind: CommandInvalid}
}

// deleteWord removes the last word of s together with the separator that
// ends it. A word is a run of ASCII letters, digits and underscores.
func deleteWord(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}

	for i := len(runes) - 2; i >= 0; i-- {
		if isSeparator(runes[i]) {
			return string(runes[:i+1])
		}
	}
	return ""
}

func isSeparator(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return false
	}
	return true
}

// deleteChar removes the last rune of s.
func deleteChar(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return string(runes[:len(runes)-1])
}
