package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var ErrGetDailySummaryQueryIsNotConstructed = errors.New(
	"GetDailySummaryQuery must be created via NewGetDailySummaryQuery constructor",
)

// GetDailySummaryQuery requests the delivery analytics for one date.
type GetDailySummaryQuery struct {
	date time.Time

	guard kernel.ConstructorGuard
}

// NewGetDailySummaryQuery creates a validated query for the given date.
func NewGetDailySummaryQuery(date time.Time) (GetDailySummaryQuery, error) {
	if date.IsZero() {
		return GetDailySummaryQuery{}, errs.NewValueIsRequiredError("date")
	}
	return GetDailySummaryQuery{date: date, guard: kernel.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDailySummaryQuery) Validate() error {
	return q.guard.Validate(ErrGetDailySummaryQueryIsNotConstructed)
}

// Date returns the date being summarized.
func (q GetDailySummaryQuery) Date() time.Time {
	return q.date
}

// DriverStanding is one leaderboard row in the daily summary.
type DriverStanding struct {
	VehicleID      kernel.UUID
	DriverName     string
	StopsCompleted int
	OnTimeRate     float64
	DistanceKm     float64
}

// GetDailySummaryQueryResponse aggregates one day of dispatch activity.
// Savings are computed against the per-order baseline: the distance a naive
// one-trip-per-order dispatch would have driven.
type GetDailySummaryQueryResponse struct {
	Date time.Time

	TotalRoutes    int
	TotalStops     int
	StopsCompleted int

	TotalDistanceKm    float64
	BaselineDistanceKm float64
	FuelSavedLiters    float64
	CostSaved          float64

	// OnTimeRate is the fraction of completed stops whose actual arrival
	// was no later than the estimate. 0 when nothing was completed.
	OnTimeRate   float64
	AverageDelay time.Duration

	// DeliveriesByHour counts completed stops per hour of day (0..23).
	DeliveriesByHour [24]int

	// TopDrivers holds up to five drivers ranked by on-time rate, with
	// completed stops breaking ties.
	TopDrivers []DriverStanding
}
