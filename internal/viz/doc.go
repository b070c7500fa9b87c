// Package viz draws polycrystal state in the terminal.
//
// The package implements a live view using the Bubble Tea framework:
//
//   - [Model]: steps an engine and shows the stress-strain curve, the grain
//     count and a pole figure
//   - [Canvas]: Braille-based pixel canvas used for pole figures
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Restart with a fresh population
//	F     - Cycle pole figure family ({100}, {110}, {111})
//	T     - Cycle color themes
//	+/-   - Steps per frame
//	?     - Show help overlay
package viz
