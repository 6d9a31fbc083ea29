package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock provides the current time. Production code uses the system clock;
// tests inject a FakeClock to drive time-dependent paths deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func NewSystemClock() Clock { return systemClock{} }

var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)
