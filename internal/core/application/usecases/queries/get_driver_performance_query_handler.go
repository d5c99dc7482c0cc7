package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"dispatch/internal/pkg/errs"
)

// GetDriverPerformanceQueryHandler aggregates one driver's deliveries over
// a period and scores them against the fleet.
type GetDriverPerformanceQueryHandler struct {
	db *gorm.DB
}

// NewGetDriverPerformanceQueryHandler creates a handler bound to the
// database.
func NewGetDriverPerformanceQueryHandler(db *gorm.DB) GetDriverPerformanceQueryHandler {
	return GetDriverPerformanceQueryHandler{db: db}
}

// Handle executes the driver performance computation.
func (h GetDriverPerformanceQueryHandler) Handle(
	ctx context.Context,
	query GetDriverPerformanceQuery,
) (GetDriverPerformanceQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetDriverPerformanceQueryResponse{}, err
	}

	from, to := query.Period().Bounds(query.EndDate())

	response := GetDriverPerformanceQueryResponse{
		VehicleID: query.VehicleID(),
		Period:    query.Period(),
	}

	err := h.db.WithContext(ctx).Raw(`
		SELECT driver_name FROM vehicles WHERE id = ?
	`, query.VehicleID().Bytes()).Row().Scan(&response.DriverName)
	if errors.Is(err, sql.ErrNoRows) {
		return GetDriverPerformanceQueryResponse{},
			errs.NewObjectNotFoundError("vehicleID", query.VehicleID())
	}
	if err != nil {
		return GetDriverPerformanceQueryResponse{}, err
	}

	if err = h.collectDriverFigures(ctx, &response, from, to); err != nil {
		return GetDriverPerformanceQueryResponse{}, err
	}
	if err = h.collectFleetReferences(ctx, &response, from, to); err != nil {
		return GetDriverPerformanceQueryResponse{}, err
	}

	response.KmPerStop = Ratio(response.DistanceKm, float64(response.StopsCompleted))
	response.Score = ComputeDriverScore(DriverScoreInput{
		OnTimeRate:     response.OnTimeRate,
		AverageDelay:   response.AverageDelay,
		KmPerStop:      response.KmPerStop,
		FleetKmPerStop: response.FleetKmPerStop,
		StopsCompleted: response.StopsCompleted,
		FleetMaxStops:  response.FleetMaxStops,
	})

	return response, nil
}

func (h GetDriverPerformanceQueryHandler) collectDriverFigures(
	ctx context.Context,
	response *GetDriverPerformanceQueryResponse,
	from, to time.Time,
) error {
	err := h.db.WithContext(ctx).Raw(`
		SELECT COUNT(*), COALESCE(SUM(distance_km), 0)
		FROM routes
		WHERE vehicle_id = ? AND date >= ? AND date < ?
	`, response.VehicleID.Bytes(), from, to).Row().
		Scan(&response.RoutesDriven, &response.DistanceKm)
	if err != nil {
		return err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT s.eta, s.actual_arrival
		FROM route_stops s
		JOIN routes r ON r.id = s.route_id
		WHERE r.vehicle_id = ? AND r.date >= ? AND r.date < ? AND s.completed
	`, response.VehicleID.Bytes(), from, to).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	onTime := 0
	var delayTotal time.Duration
	lateCount := 0

	for rows.Next() {
		var eta time.Time
		var actualArrival *time.Time
		if err = rows.Scan(&eta, &actualArrival); err != nil {
			return err
		}
		if actualArrival == nil {
			continue
		}

		response.StopsCompleted++
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

// collectFleetReferences derives the fleet-wide km per delivered stop and
// the best per-vehicle stop count over the same period.
func (h GetDriverPerformanceQueryHandler) collectFleetReferences(
	ctx context.Context,
	response *GetDriverPerformanceQueryResponse,
	from, to time.Time,
) error {
	var fleetDistanceKm float64
	var fleetStops int

	err := h.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(r.distance_km), 0),
		       COALESCE(SUM(sc.completed), 0)
		FROM routes r
		LEFT JOIN (
			SELECT route_id, COUNT(*) AS completed
			FROM route_stops
			WHERE completed
			GROUP BY route_id
		) sc ON sc.route_id = r.id
		WHERE r.date >= ? AND r.date < ?
	`, from, to).Row().Scan(&fleetDistanceKm, &fleetStops)
	if err != nil {
		return err
	}
	response.FleetKmPerStop = Ratio(fleetDistanceKm, float64(fleetStops))

	return h.db.WithContext(ctx).Raw(`
		SELECT COALESCE(MAX(per_vehicle.completed), 0)
		FROM (
			SELECT r.vehicle_id, COUNT(*) AS completed
			FROM route_stops s
			JOIN routes r ON r.id = s.route_id
			WHERE r.date >= ? AND r.date < ? AND s.completed
			GROUP BY r.vehicle_id
		) per_vehicle
	`, from, to).Row().Scan(&response.FleetMaxStops)
}
