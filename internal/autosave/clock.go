package autosave

import "time"

// Clock abstracts time retrieval so freshness checks are deterministic in
// tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Scheduler abstracts the periodic timer driving autosave writes, so the
// coordinator can be tested by firing ticks manually instead of waiting on
// wall-clock time.
type Scheduler interface {
	// Schedule invokes fn every interval until the returned cancel func is
	// called. Invocations never overlap.
	Schedule(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler drives callbacks from a time.Ticker. Each tick's callback
// runs to completion before the next tick is handled, so writes for one form
// instance are strictly ordered.
type TickerScheduler struct{}

func (TickerScheduler) Schedule(interval time.Duration, fn func()) (cancel func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}
