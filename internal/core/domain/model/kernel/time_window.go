package kernel

import (
	"fmt"
	"time"

	"dispatch/internal/pkg/errs"
)

// ErrTimeWindowIsNotConstructed is returned when attempting to use an
// improperly initialized TimeWindow.
var ErrTimeWindowIsNotConstructed = errs.NewValueIsRequiredError(
	"time window must be created via NewTimeWindow constructor")

// TimeWindow is an immutable half-open interval [From, To) used for delivery
// windows, driver shifts, and break periods.
type TimeWindow struct {
	from  time.Time
	to    time.Time
	guard ConstructorGuard
}

// NewTimeWindow creates a validated TimeWindow. From must precede To.
func NewTimeWindow(from, to time.Time) (TimeWindow, error) {
	if from.IsZero() {
		return TimeWindow{}, errs.NewValueIsRequiredError("from")
	}
	if to.IsZero() {
		return TimeWindow{}, errs.NewValueIsRequiredError("to")
	}
	if !from.Before(to) {
		return TimeWindow{}, errs.NewValueIsInvalidErrorWithCause("time window",
			fmt.Errorf("from %s is not before to %s", from, to))
	}

	return TimeWindow{from: from, to: to, guard: NewConstructorGuard()}, nil
}

// From returns the window start.
func (w TimeWindow) From() time.Time {
	return w.from
}

// To returns the window end.
func (w TimeWindow) To() time.Time {
	return w.to
}

// Duration returns the window length.
func (w TimeWindow) Duration() time.Duration {
	return w.to.Sub(w.from)
}

// Contains reports whether t falls inside [From, To).
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.from) && t.Before(w.to)
}

// Validate ensures the window was built via NewTimeWindow.
func (w TimeWindow) Validate() error {
	return w.guard.Validate(ErrTimeWindowIsNotConstructed)
}
