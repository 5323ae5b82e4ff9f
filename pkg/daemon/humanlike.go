package daemon

import (
	"math/rand"
	"time"
)

// humanDelayLo and humanDelayHi bracket navigation and click actions when
// human-like mode is on.
const (
	humanDelayLo = 100 * time.Millisecond
	humanDelayHi = 400 * time.Millisecond
)

// maybeDelay sleeps for a random duration in [lo, hi) when enabled is
// true, and is a no-op otherwise. It is the single point through which
// human-like mode's timing effects flow -- delay before/after goto, delay
// before click, and per-character delay during type -- rather than having
// randomness sprinkled through each call site.
func maybeDelay(lo, hi time.Duration, enabled bool) {
	if !enabled || hi <= lo {
		if enabled {
			time.Sleep(lo)
		}
		return
	}
	d := lo + time.Duration(rand.Int63n(int64(hi-lo)))
	time.Sleep(d)
}
