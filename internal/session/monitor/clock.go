package monitor

import "time"

// Clock abstracts timer creation so tests can drive the watchdog
// deterministically instead of sleeping through real intervals.
type Clock interface {
	NewTicker(d time.Duration) Ticker
	NewTimer(d time.Duration) Timer
}

// Ticker is the recurring-timer half of Clock.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Timer is the one-shot half of Clock.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

type realClock struct{}

// NewRealClock returns a Clock backed by the time package.
func NewRealClock() Clock {
	return realClock{}
}

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

func (realClock) NewTimer(d time.Duration) Timer {
	return &realTimer{t: time.NewTimer(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

type realTimer struct {
	t *time.Timer
}

func (r *realTimer) C() <-chan time.Time { return r.t.C }
func (r *realTimer) Stop() bool          { return r.t.Stop() }
