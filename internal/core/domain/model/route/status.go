package route

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an optimized route.
//
// State transitions:
//
//	Planned ──> Active ──> Finalized
//
// A Finalized route has been consumed by analytics and is read-only.
type Status int

const (
	// Planned is the initial state after RouteBuilder produces the route.
	Planned Status = iota + 1
	// Active means the driver is executing the route; adjustments apply here.
	Active
	// Finalized routes are historical records and reject all mutation.
	Finalized
)

// Activate transitions Planned to Active.
func (s Status) Activate() (Status, error) {
	if s != Planned {
		return s, errs.NewValueIsInvalidErrorWithCause("route status",
			fmt.Errorf("cannot activate route in status %s", s))
	}
	return Active, nil
}

// Finalize transitions Active to Finalized.
func (s Status) Finalize() (Status, error) {
	if s != Active {
		return s, errs.NewValueIsInvalidErrorWithCause("route status",
			fmt.Errorf("cannot finalize route in status %s", s))
	}
	return Finalized, nil
}

func (s Status) String() string {
	switch s {
	case Planned:
		return "Planned"
	case Active:
		return "Active"
	case Finalized:
		return "Finalized"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}
