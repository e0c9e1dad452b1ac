package engine

import "time"

// Clock returns the current time in milliseconds.
//
// The engine never reads wall time directly; every timestamp, elapsed figure
// and expiry decision derives from the Clock supplied at creation.
type Clock func() int64

// SystemClock reads wall time in Unix milliseconds.
func SystemClock() int64 {
	return time.Now().UnixMilli()
}
