package adjustment

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Type is the closed set of real-time adjustment kinds the engine accepts.
// Every handler switch over Type must match all variants explicitly.
type Type string

const (
	UrgentOrder          Type = "URGENT_ORDER"
	TrafficUpdate        Type = "TRAFFIC_UPDATE"
	DriverUnavailable    Type = "DRIVER_UNAVAILABLE"
	CustomerCancellation Type = "CUSTOMER_CANCELLATION"
	TimeWindowChange     Type = "TIME_WINDOW_CHANGE"
	VehicleBreakdown     Type = "VEHICLE_BREAKDOWN"
)

// AllTypes lists every adjustment type in declaration order.
func AllTypes() []Type {
	return []Type{
		UrgentOrder,
		TrafficUpdate,
		DriverUnavailable,
		CustomerCancellation,
		TimeWindowChange,
		VehicleBreakdown,
	}
}

// ParseType converts a wire string into a Type, rejecting unknown values.
func ParseType(s string) (Type, error) {
	for _, t := range AllTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", errs.NewValueIsInvalidErrorWithCause("adjustment type",
		fmt.Errorf("unknown adjustment type %q", s))
}

func (t Type) String() string {
	return string(t)
}
