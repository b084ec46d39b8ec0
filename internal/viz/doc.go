// Package viz provides terminal back-ends for curve families.
//
//   - [Terminal]: a static ASCII chart built with asciigraph
//   - [Canvas]: Braille-based pixel canvas with per-cell colour
//   - [Model]: interactive Bubble Tea view that animates a family
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart the pass
//	M     - Switch between frames and scene mode
//	+/-   - Double or halve the stride
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	Q     - Quit
//
// # Recording
//
// Recordings are written as GIF animations when G is pressed a second
// time or the view quits while recording.
package viz
