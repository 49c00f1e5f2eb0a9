// Package viz renders a billiard table in the terminal.
//
// The live view is a Bubble Tea program:
//
//   - [Model]: steps a table from the frame clock and draws it
//   - [Canvas]: Braille pixel canvas with per-cell ink
//   - [Picker]: preset menu that launches a Model
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single step while paused
//	R     - Reset to the initial layout
//	+/-   - Faster/slower playback
//	W     - Toggle trails
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// # Recording
//
// G starts capturing frames; pressing it again writes billiard.gif to the
// current directory.
package viz
