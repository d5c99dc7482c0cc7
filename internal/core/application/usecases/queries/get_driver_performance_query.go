package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var ErrGetDriverPerformanceQueryIsNotConstructed = errors.New(
	"GetDriverPerformanceQuery must be created via NewGetDriverPerformanceQuery constructor",
)

// Period selects how far back a driver performance query reaches.
type Period string

const (
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
)

// ParsePeriod maps a request string onto a known period.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodQuarter:
		return Period(s), nil
	case "":
		return PeriodWeek, nil
	default:
		return "", errs.NewValueIsInvalidError("period")
	}
}

// Bounds returns the half-open time range [from, to) the period covers,
// ending after the given date.
func (p Period) Bounds(endDate time.Time) (time.Time, time.Time) {
	dayStart, dayEnd := dayBounds(endDate)
	switch p {
	case PeriodDay:
		return dayStart, dayEnd
	case PeriodMonth:
		return dayStart.AddDate(0, -1, 1), dayEnd
	case PeriodQuarter:
		return dayStart.AddDate(0, -3, 1), dayEnd
	default:
		return dayStart.AddDate(0, 0, -6), dayEnd
	}
}

// GetDriverPerformanceQuery requests one driver's performance over a
// period ending on the given date.
type GetDriverPerformanceQuery struct {
	vehicleID kernel.UUID
	period    Period
	endDate   time.Time

	guard kernel.ConstructorGuard
}

// NewGetDriverPerformanceQuery creates a validated query.
func NewGetDriverPerformanceQuery(
	vehicleID kernel.UUID,
	period Period,
	endDate time.Time,
) (GetDriverPerformanceQuery, error) {
	var err error
	if idErr := vehicleID.Validate(); idErr != nil {
		err = errors.Join(err, errs.NewValueIsRequiredErrorWithCause("vehicleID", idErr))
	}
	if endDate.IsZero() {
		err = errors.Join(err, errs.NewValueIsRequiredError("endDate"))
	}
	if _, parseErr := ParsePeriod(string(period)); parseErr != nil {
		err = errors.Join(err, parseErr)
	}
	if err != nil {
		return GetDriverPerformanceQuery{}, err
	}

	return GetDriverPerformanceQuery{
		vehicleID: vehicleID,
		period:    period,
		endDate:   endDate,
		guard:     kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDriverPerformanceQuery) Validate() error {
	return q.guard.Validate(ErrGetDriverPerformanceQueryIsNotConstructed)
}

// VehicleID returns the vehicle whose driver is being evaluated.
func (q GetDriverPerformanceQuery) VehicleID() kernel.UUID {
	return q.vehicleID
}

// Period returns the reporting period.
func (q GetDriverPerformanceQuery) Period() Period {
	return q.period
}

// EndDate returns the last day of the reporting period.
func (q GetDriverPerformanceQuery) EndDate() time.Time {
	return q.endDate
}

// GetDriverPerformanceQueryResponse carries one driver's aggregates, the
// fleet references they were normalized against and the composite score.
type GetDriverPerformanceQueryResponse struct {
	VehicleID  kernel.UUID
	DriverName string
	Period     Period

	RoutesDriven   int
	StopsCompleted int
	DistanceKm     float64

	OnTimeRate   float64
	AverageDelay time.Duration
	KmPerStop    float64

	FleetKmPerStop float64
	FleetMaxStops  int

	// Score is the 0..100 composite built from punctuality, delay, fuel
	// efficiency and delivered volume.
	Score int
}
