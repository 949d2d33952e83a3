package model

import "time"

// IsActive reports whether a bus whose newest fix carries lastFix is
// still considered live under the given threshold. Activity is always
// recomputed from the current time, never cached. The admin and public
// views call this with different configured thresholds.
func IsActive(lastFix, now time.Time, threshold time.Duration) bool {
	if lastFix.IsZero() {
		return false
	}
	return now.Sub(lastFix) < threshold
}
