package ports

import "time"

// Clock abstracts time so the challenge poll loop can be driven
// deterministically in tests.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers repeated ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}
