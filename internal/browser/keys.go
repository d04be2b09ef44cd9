package browser

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/studiowebux/gemcli/internal/keybinds"
	"github.com/studiowebux/gemcli/internal/viewport"
)

// Key is one decoded terminal key. Runes is set for text insertion.
type Key struct {
	Action keybinds.Action
	Runes  []rune
}

// effect is work HandleKey does after releasing the lock.
type effect struct {
	quit bool
	yank string
}

// HandleKey applies one key and renders. It reports whether the session
// was asked to quit, in which case Terminate has already been called.
func (s *Session) HandleKey(k Key) bool {
	s.mu.Lock()
	eff := s.handleKeyLocked(k)
	s.renderLocked()
	s.mu.Unlock()

	if eff.yank != "" {
		s.copy(eff.yank)
	}
	if eff.quit {
		s.Terminate()
	}
	return eff.quit
}

func (s *Session) handleKeyLocked(k Key) effect {
	if k.Action == keybinds.ActionQuitForce {
		return effect{quit: true}
	}

	switch s.state.Mode {
	case ModeNormal:
		return s.handleNormalLocked(k)
	case ModeInput, ModeSearch:
		return s.handleLineLocked(k)
	}
	return effect{}
}

func (s *Session) handleNormalLocked(k Key) effect {
	switch k.Action {
	case keybinds.ActionQuit:
		return effect{quit: true}

	case keybinds.ActionNavigateDown:
		s.state.Err = ""
		s.moveDownLocked()

	case keybinds.ActionNavigateUp:
		s.state.Err = ""
		s.moveUpLocked()

	case keybinds.ActionGoToTop:
		s.state.Err = ""
		s.state.ActiveLine = 0
		s.state.ScrollOffset = 0

	case keybinds.ActionGoToBottom:
		s.state.Err = ""
		s.goToBottomLocked()

	case keybinds.ActionFollowLink:
		s.state.Err = ""
		if s.state.Loading {
			break
		}
		lines := s.state.Lines()
		if s.state.ActiveLine < len(lines) && lines[s.state.ActiveLine].IsLink() {
			s.requestLocked(lines[s.state.ActiveLine].URL)
		}

	case keybinds.ActionBeginInput:
		s.beginLineLocked(ModeInput)

	case keybinds.ActionBeginSearch:
		s.beginLineLocked(ModeSearch)

	case keybinds.ActionReload:
		s.state.Err = ""
		if s.state.URL != nil && !s.state.Loading {
			s.requestLocked(s.state.URL.String())
		}

	case keybinds.ActionYank:
		s.state.Err = ""
		target := s.yankTargetLocked()
		if target == "" {
			s.state.Err = "Nothing to copy"
			break
		}
		return effect{yank: target}
	}
	return effect{}
}

func (s *Session) beginLineLocked(mode Mode) {
	s.state.Err = ""
	s.state.Mode = mode
	s.state.Input = ""
	s.history.Reset()
}

func (s *Session) handleLineLocked(k Key) effect {
	switch k.Action {
	case keybinds.ActionTextInsertChar:
		s.state.Input += string(k.Runes)

	case keybinds.ActionTextBackspace:
		s.state.Input = deleteChar(s.state.Input)

	case keybinds.ActionTextDeleteWord:
		s.state.Input = deleteWord(s.state.Input)

	case keybinds.ActionTextClear:
		s.state.Input = ""

	case keybinds.ActionTextCancel:
		s.state.Mode = ModeNormal
		s.state.Input = ""
		s.history.Reset()

	case keybinds.ActionHistoryPrevious:
		if entry, ok := s.history.Previous(); ok {
			s.state.Input = entry
		}

	case keybinds.ActionHistoryNext:
		entry, _ := s.history.Next()
		s.state.Input = entry

	case keybinds.ActionComplete:
		s.completeLocked()

	case keybinds.ActionTextSubmit:
		return s.submitLocked()
	}
	return effect{}
}

func (s *Session) submitLocked() effect {
	input := s.state.Input
	mode := s.state.Mode

	s.state.Input = ""
	s.state.Mode = ModeNormal

	if strings.TrimSpace(input) == "" {
		s.history.Reset()
		return effect{}
	}
	s.history.Push(input)

	if mode == ModeSearch {
		return effect{}
	}

	cmd := ParseCommand(input)
	switch cmd.Kind {
	case CommandGo:
		s.requestLocked(cmd.Arg)
	case CommandQuit:
		return effect{quit: true}
	default:
		s.state.Err = fmt.Sprintf("Invalid command: %s", input)
	}
	return effect{}
}

// completeLocked replaces the input with the best fuzzy match from
// history. Ties go to the most recent entry.
func (s *Session) completeLocked() {
	if s.state.Input == "" {
		return
	}
	matches := fuzzy.Find(s.state.Input, s.history.Entries())
	if len(matches) == 0 {
		return
	}
	s.state.Input = matches[0].Str
}

func (s *Session) yankTargetLocked() string {
	lines := s.state.Lines()
	if s.state.ActiveLine < len(lines) && lines[s.state.ActiveLine].IsLink() {
		if u, err := s.qualifyLocked(lines[s.state.ActiveLine].URL); err == nil {
			return u.String()
		}
	}
	return urlString(s.state.URL)
}

func (s *Session) copy(text string) {
	var err error
	if s.clipboard == nil {
		err = fmt.Errorf("clipboard unavailable")
	} else {
		err = s.clipboard(text)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Warn("copy to clipboard failed", "error", err)
		s.state.Err = fmt.Sprintf("Copy failed: %v", err)
	} else {
		s.logger.Debug("copied to clipboard", "text", text)
	}
	s.renderLocked()
}

// moveDownLocked activates the next line, scrolling by the rows of that
// line when it would fall below the window.
func (s *Session) moveDownLocked() {
	lines := s.state.Lines()
	if s.state.ActiveLine+1 >= len(lines) {
		return
	}

	width, height := s.screen.Size()
	contentRows := height - 1

	current := viewport.RowCount(lines[s.state.ActiveLine], width)
	next := viewport.RowCount(lines[s.state.ActiveLine+1], width)
	start := s.state.ActiveRow + current

	s.state.ActiveLine++

	if start+next > contentRows {
		delta := next
		if start-delta+next > contentRows {
			delta = start + next - contentRows
		}
		if delta > start {
			delta = start
		}
		s.state.ScrollOffset += delta
	}
}

// moveUpLocked activates the previous line, scrolling up when it would
// start above the window.
func (s *Session) moveUpLocked() {
	if s.state.ActiveLine == 0 {
		return
	}
	lines := s.state.Lines()
	width, _ := s.screen.Size()

	previous := viewport.RowCount(lines[s.state.ActiveLine-1], width)
	start := s.state.ActiveRow - previous

	s.state.ActiveLine--

	if start < 0 {
		s.state.ScrollOffset = max(s.state.ScrollOffset+start, 0)
	}
}

func (s *Session) goToBottomLocked() {
	lines := s.state.Lines()
	width, height := s.screen.Size()
	s.state.ActiveLine = len(lines) - 1
	s.state.ScrollOffset = viewport.KeepVisible(lines, s.state.ActiveLine, s.state.ScrollOffset, width, height-1)
}
