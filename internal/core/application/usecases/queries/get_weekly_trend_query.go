package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var ErrGetWeeklyTrendQueryIsNotConstructed = errors.New(
	"GetWeeklyTrendQuery must be created via NewGetWeeklyTrendQuery constructor",
)

// GetWeeklyTrendQuery requests the seven-day performance trend ending on
// the given date.
type GetWeeklyTrendQuery struct {
	endDate time.Time

	guard kernel.ConstructorGuard
}

// NewGetWeeklyTrendQuery creates a validated query for the week ending on
// endDate inclusive.
func NewGetWeeklyTrendQuery(endDate time.Time) (GetWeeklyTrendQuery, error) {
	if endDate.IsZero() {
		return GetWeeklyTrendQuery{}, errs.NewValueIsRequiredError("endDate")
	}
	return GetWeeklyTrendQuery{endDate: endDate, guard: kernel.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetWeeklyTrendQuery) Validate() error {
	return q.guard.Validate(ErrGetWeeklyTrendQueryIsNotConstructed)
}

// EndDate returns the last day of the week being analyzed.
func (q GetWeeklyTrendQuery) EndDate() time.Time {
	return q.endDate
}

// DailyTrendPoint is one day in the weekly series.
type DailyTrendPoint struct {
	Date           time.Time
	StopsCompleted int
	DistanceKm     float64

	// OnTimePercent is the share of completed stops delivered no later
	// than their estimate, 0..100. Days without deliveries read as 0.
	OnTimePercent float64
}

// GetWeeklyTrendQueryResponse carries the seven daily points plus the
// fitted direction of the on-time series.
type GetWeeklyTrendQueryResponse struct {
	Days  []DailyTrendPoint
	Slope float64
	Trend Trend
}
