package queries

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dispatch/internal/core/domain/model/kernel"
)

// GetDailySummaryQueryHandler computes the daily analytics straight from
// the database.
type GetDailySummaryQueryHandler struct {
	db *gorm.DB
}

// NewGetDailySummaryQueryHandler creates a handler bound to the database.
func NewGetDailySummaryQueryHandler(db *gorm.DB) GetDailySummaryQueryHandler {
	return GetDailySummaryQueryHandler{db: db}
}

// Handle executes the daily summary computation.
func (h GetDailySummaryQueryHandler) Handle(
	ctx context.Context,
	query GetDailySummaryQuery,
) (GetDailySummaryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDailySummaryQueryResponse{}, err
	}

	dayStart, dayEnd := dayBounds(query.Date())
	response := GetDailySummaryQueryResponse{Date: dayStart}

	err := h.db.WithContext(ctx).Raw(`
		SELECT COUNT(*), COALESCE(SUM(distance_km), 0)
		FROM routes
		WHERE date >= ? AND date < ?
	`, dayStart, dayEnd).Row().Scan(&response.TotalRoutes, &response.TotalDistanceKm)
	if err != nil {
		return GetDailySummaryQueryResponse{}, err
	}

	if err = h.collectStopFigures(ctx, &response, dayStart, dayEnd); err != nil {
		return GetDailySummaryQueryResponse{}, err
	}

	response.BaselineDistanceKm = response.TotalDistanceKm * baselineDistanceFactor
	_, response.FuelSavedLiters, response.CostSaved = FuelSavings(response.TotalDistanceKm)

	response.TopDrivers, err = h.collectTopDrivers(ctx, dayStart, dayEnd)
	if err != nil {
		return GetDailySummaryQueryResponse{}, err
	}

	return response, nil
}

// collectStopFigures walks the day's stops once to derive counts, the
// on-time rate, the average delay over late arrivals and the hourly
// delivery histogram.
func (h GetDailySummaryQueryHandler) collectStopFigures(
	ctx context.Context,
	response *GetDailySummaryQueryResponse,
	dayStart, dayEnd time.Time,
) error {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT s.eta, s.completed, s.actual_arrival
		FROM route_stops s
		JOIN routes r ON r.id = s.route_id
		WHERE r.date >= ? AND r.date < ?
	`, dayStart, dayEnd).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	onTime := 0
	var delayTotal time.Duration
	lateCount := 0

	for rows.Next() {
		var eta time.Time
		var completed bool
		var actualArrival *time.Time

		if err = rows.Scan(&eta, &completed, &actualArrival); err != nil {
			return err
		}

		response.TotalStops++
		if !completed || actualArrival == nil {
			continue
		}

		response.StopsCompleted++
		response.DeliveriesByHour[actualArrival.Hour()]++

		if actualArrival.After(eta) {
			delayTotal += actualArrival.Sub(eta)
			lateCount++
		} else {
			onTime++
		}
	}
	if err = rows.Err(); err != nil {
		return err
	}

	response.OnTimeRate = Ratio(float64(onTime), float64(response.StopsCompleted))
	if lateCount > 0 {
		response.AverageDelay = delayTotal / time.Duration(lateCount)
	}
	return nil
}

// collectTopDrivers builds the driver leaderboard, ranked by on-time rate
// with completed stops breaking ties.
func (h GetDailySummaryQueryHandler) collectTopDrivers(
	ctx context.Context,
	dayStart, dayEnd time.Time,
) ([]DriverStanding, error) {
	type driverTally struct {
		name      string
		completed int
		onTime    int
	}
	tallies := make(map[uuid.UUID]*driverTally)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT r.vehicle_id, v.driver_name, s.eta, s.actual_arrival
		FROM route_stops s
		JOIN routes r ON r.id = s.route_id
		JOIN vehicles v ON v.id = r.vehicle_id
		WHERE r.date >= ? AND r.date < ? AND s.completed
	`, dayStart, dayEnd).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var name string
		var eta time.Time
		var actualArrival *time.Time

		if err = rows.Scan(&id, &name, &eta, &actualArrival); err != nil {
			return nil, err
		}
		if actualArrival == nil {
			continue
		}

		tally, ok := tallies[id]
		if !ok {
			tally = &driverTally{name: name}
			tallies[id] = tally
		}
		tally.completed++
		if !actualArrival.After(eta) {
			tally.onTime++
		}
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	distances, err := h.collectDriverDistances(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	standings := make([]DriverStanding, 0, len(tallies))
	for id, tally := range tallies {
		vehicleID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		standings = append(standings, DriverStanding{
			VehicleID:      vehicleID,
			DriverName:     tally.name,
			StopsCompleted: tally.completed,
			OnTimeRate:     Ratio(float64(tally.onTime), float64(tally.completed)),
			DistanceKm:     distances[id],
		})
	}

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].OnTimeRate != standings[j].OnTimeRate {
			return standings[i].OnTimeRate > standings[j].OnTimeRate
		}
		if standings[i].StopsCompleted != standings[j].StopsCompleted {
			return standings[i].StopsCompleted > standings[j].StopsCompleted
		}
		return standings[i].DriverName < standings[j].DriverName
	})
	if len(standings) > 5 {
		standings = standings[:5]
	}
	return standings, nil
}

func (h GetDailySummaryQueryHandler) collectDriverDistances(
	ctx context.Context,
	dayStart, dayEnd time.Time,
) (map[uuid.UUID]float64, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT vehicle_id, COALESCE(SUM(distance_km), 0)
		FROM routes
		WHERE date >= ? AND date < ?
		GROUP BY vehicle_id
	`, dayStart, dayEnd).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	distances := make(map[uuid.UUID]float64)
	for rows.Next() {
		var id uuid.UUID
		var distanceKm float64
		if err = rows.Scan(&id, &distanceKm); err != nil {
			return nil, err
		}
		distances[id] = distanceKm
	}
	return distances, rows.Err()
}

func dayBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.Add(24 * time.Hour)
}
