package queries

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// GetWeeklyTrendQueryHandler fits the week's on-time series to a line and
// classifies its direction.
type GetWeeklyTrendQueryHandler struct {
	db *gorm.DB
}

// NewGetWeeklyTrendQueryHandler creates a handler bound to the database.
func NewGetWeeklyTrendQueryHandler(db *gorm.DB) GetWeeklyTrendQueryHandler {
	return GetWeeklyTrendQueryHandler{db: db}
}

// Handle executes the weekly trend computation. The series always holds
// seven points, oldest first; days without routes contribute zeros so the
// fit stays aligned to calendar days.
func (h GetWeeklyTrendQueryHandler) Handle(
	ctx context.Context,
	query GetWeeklyTrendQuery,
) (GetWeeklyTrendQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetWeeklyTrendQueryResponse{}, err
	}

	endStart, weekEnd := dayBounds(query.EndDate())
	weekStart := endStart.AddDate(0, 0, -6)

	days := make([]DailyTrendPoint, 7)
	for i := range days {
		days[i].Date = weekStart.AddDate(0, 0, i)
	}

	if err := h.collectDailyDistance(ctx, days, weekStart, weekEnd); err != nil {
		return GetWeeklyTrendQueryResponse{}, err
	}
	if err := h.collectDailyPunctuality(ctx, days, weekStart, weekEnd); err != nil {
		return GetWeeklyTrendQueryResponse{}, err
	}

	series := make([]float64, len(days))
	for i, d := range days {
		series[i] = d.OnTimePercent
	}

	slope := LeastSquaresSlope(series)
	return GetWeeklyTrendQueryResponse{
		Days:  days,
		Slope: slope,
		Trend: TrendOf(slope),
	}, nil
}

func (h GetWeeklyTrendQueryHandler) collectDailyDistance(
	ctx context.Context,
	days []DailyTrendPoint,
	weekStart, weekEnd time.Time,
) error {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT date, COALESCE(SUM(distance_km), 0)
		FROM routes
		WHERE date >= ? AND date < ?
		GROUP BY date
	`, weekStart, weekEnd).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var date time.Time
		var distanceKm float64
		if err = rows.Scan(&date, &distanceKm); err != nil {
			return err
		}
		if i, ok := dayIndex(days, date); ok {
			days[i].DistanceKm += distanceKm
		}
	}
	return rows.Err()
}

func (h GetWeeklyTrendQueryHandler) collectDailyPunctuality(
	ctx context.Context,
	days []DailyTrendPoint,
	weekStart, weekEnd time.Time,
) error {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT r.date, s.eta, s.actual_arrival
		FROM route_stops s
		JOIN routes r ON r.id = s.route_id
		WHERE r.date >= ? AND r.date < ? AND s.completed
	`, weekStart, weekEnd).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	onTime := make([]int, len(days))
	for rows.Next() {
		var date, eta time.Time
		var actualArrival *time.Time
		if err = rows.Scan(&date, &eta, &actualArrival); err != nil {
			return err
		}
		if actualArrival == nil {
			continue
		}
		if i, ok := dayIndex(days, date); ok {
			days[i].StopsCompleted++
			if !actualArrival.After(eta) {
				onTime[i]++
			}
		}
	}
	if err = rows.Err(); err != nil {
		return err
	}

	for i := range days {
		days[i].OnTimePercent = Ratio(float64(onTime[i]), float64(days[i].StopsCompleted)) * 100
	}
	return nil
}

func dayIndex(days []DailyTrendPoint, date time.Time) (int, bool) {
	y, m, d := date.UTC().Date()
	for i := range days {
		dy, dm, dd := days[i].Date.UTC().Date()
		if y == dy && m == dm && d == dd {
			return i, true
		}
	}
	return 0, false
}
