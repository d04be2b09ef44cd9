/*
Package tui runs the interactive browser in the terminal.

# Architecture

The TUI follows the Bubble Tea Model-Update-View pattern, but the state it
shows lives in browser.Session:
  - Model: decodes keys, forwards them to the session, tracks the spinner
  - Update: routes tea messages to the session
  - View: returns the last frame the session painted on its canvas

# Key Components

  - model.go: Model, Init, Update and View
  - keys.go: translation from tea.KeyMsg to browser.Key via the keybinds registry
  - init.go: wiring of the session, canvas and program, and Run

# Threading Model

Bubble Tea owns the input loop. browser.Session.Run is the worker loop and
runs in its own goroutine next to the program, both in one errgroup.
Transactions run in goroutines spawned by the session.

Whenever the session repaints, the canvas flush hook pokes a one-slot
channel. waitForRepaint blocks on that channel and re-arms after every
message, so frames painted by the worker loop reach the terminal without
the program polling.
*/
package tui
