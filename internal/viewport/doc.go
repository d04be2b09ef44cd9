// Package viewport lays a gemtext document out on a fixed-size screen.
//
// Normal lines are word-wrapped to the screen width; link and invalid-link
// lines take exactly one row. Rows above the scroll offset are counted but
// not painted, and the bottom row is reserved for the status line. Render
// reports where the active line begins so the caller can decide when to
// move the scroll offset.
package viewport
