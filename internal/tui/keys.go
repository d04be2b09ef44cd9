package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/gemcli/internal/browser"
	"github.com/studiowebux/gemcli/internal/keybinds"
)

// contextFor returns the keybinds context of a browser mode.
func contextFor(mode browser.Mode) keybinds.Context {
	switch mode {
	case browser.ModeInput:
		return keybinds.ContextInput
	case browser.ModeSearch:
		return keybinds.ContextSearch
	default:
		return keybinds.ContextNormal
	}
}

// handleKeyPress decodes msg in the current mode and hands it to the
// session.
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	key, ok := m.decodeKey(msg)
	if !ok {
		return nil
	}

	if m.session.HandleKey(key) {
		m.logger.Debug("quit requested", "action", string(key.Action))
		return tea.Quit
	}
	return nil
}

func (m *Model) decodeKey(msg tea.KeyMsg) (browser.Key, bool) {
	mode := m.session.Mode()
	context := contextFor(mode)

	if mode != m.lastMode {
		m.keys.ClearMultiKeyState(contextFor(m.lastMode))
		m.lastMode = mode
	}

	if mode == browser.ModeNormal {
		action, ok, partial := m.keys.MatchMultiKey(context, msg.String())
		if partial || !ok {
			return browser.Key{}, false
		}
		// "g" alone only arms the gg sequence
		if action == keybinds.ActionGoToTopPrepare {
			return browser.Key{}, false
		}
		return browser.Key{Action: action}, true
	}

	if action, ok := m.keys.Match(context, msg.String()); ok {
		return browser.Key{Action: action}, true
	}

	switch msg.Type {
	case tea.KeyRunes:
		if msg.Alt {
			return browser.Key{}, false
		}
		return browser.Key{Action: keybinds.ActionTextInsertChar, Runes: msg.Runes}, true
	case tea.KeySpace:
		return browser.Key{Action: keybinds.ActionTextInsertChar, Runes: []rune{' '}}, true
	}
	return browser.Key{}, false
}
