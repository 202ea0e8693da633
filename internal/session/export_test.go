package session

import "time"

// SetClock replaces the registry clock in tests.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}
