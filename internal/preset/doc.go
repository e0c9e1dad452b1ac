// Package preset resolves named presets into the timing and nudge budget of
// a session.
//
// Three presets are built in (standard, high_pressure, no_assistance).
// Additional catalogs are written in CUE and compiled with Compile:
//
//	presets: {
//		marathon: {
//			prep:   "10m"
//			coding: "60m"
//			silent: "10m"
//			nudges: 5
//		}
//	}
//
// The CUE document is unified with a closed schema before it is read, so
// typos and out-of-range budgets are reported with file positions.
package preset
