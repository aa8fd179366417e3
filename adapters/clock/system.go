// Package clock provides the real time.Ticker-backed Clock adapter.
package clock

import (
	"time"

	"github.com/neoidea/outlet/ports"
)

// System is the wall-clock implementation of ports.Clock.
type System struct{}

var _ ports.Clock = System{}

func (System) Now() time.Time {
	return time.Now()
}

func (System) NewTicker(d time.Duration) ports.Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time {
	return s.t.C
}

func (s systemTicker) Stop() {
	s.t.Stop()
}
