package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	Pending ──┬──> Assigned ──> Completed
//	          │        │
//	          └────────┘
//	     (reassignment allowed)
type Status int

const (
	// Pending is the initial state: created, not yet on any route.
	Pending Status = iota + 1
	// Assigned means the order is linked to exactly one active route.
	Assigned
	// Completed is the final state after delivery.
	Completed
)

// Assign transitions the status to Assigned. Allowed from Pending and from
// Assigned (reassignment during route adjustments).
func (s Status) Assign() (Status, error) {
	switch s {
	case Pending, Assigned:
		return Assigned, nil
	default:
		return s, errs.NewValueIsInvalidErrorWithCause("order status",
			fmt.Errorf("cannot assign order in status %s", s))
	}
}

// Unassign returns the order to Pending. Allowed only from Assigned; used
// when a stop is cancelled or its route is torn down.
func (s Status) Unassign() (Status, error) {
	if s != Assigned {
		return s, errs.NewValueIsInvalidErrorWithCause("order status",
			fmt.Errorf("cannot unassign order in status %s", s))
	}
	return Pending, nil
}

// Complete transitions the status to Completed. Allowed only from Assigned.
func (s Status) Complete() (Status, error) {
	if s != Assigned {
		return s, errs.NewValueIsInvalidErrorWithCause("order status",
			fmt.Errorf("cannot complete order in status %s", s))
	}
	return Completed, nil
}

func (s Status) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Assigned:
		return "Assigned"
	case Completed:
		return "Completed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}
