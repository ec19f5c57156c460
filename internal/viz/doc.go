// Package viz renders a running chain in the terminal.
//
// The live view is a Bubble Tea program:
//
//   - [Model]: steps a simulator from wall-clock ticks, maps mouse events
//     onto the chain's viewport and draws it on a [Canvas]
//   - [Picker]: preset menu that opens a [Model]
//   - [Canvas]: Braille-based pixel canvas, 2x4 sub-pixels per cell
//
// The program must be started with mouse motion reporting on, for example
// tea.WithMouseAllMotion, or dragging will not reach the chain.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	S     - Single step while paused
//	R     - Reset to initial layout
//	T     - Cycle color themes
//	?     - Show help
package viz
