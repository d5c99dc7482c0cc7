// Package http exposes the dispatch engine over a REST API.
package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/adjustment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/jobs"
	"dispatch/internal/pkg/errs"
)

// dateLayout is the wire format for date-only parameters.
const dateLayout = "2006-01-02"

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	createOrderHandler   commands.CreateOrderCommandHandler
	createVehicleHandler commands.CreateVehicleCommandHandler
	optimizeHandler      commands.OptimizeRoutesCommandHandler

	adjustmentEngine *jobs.AdjustmentEngine

	dailySummaryHandler      queries.GetDailySummaryQueryHandler
	weeklyTrendHandler       queries.GetWeeklyTrendQueryHandler
	driverPerformanceHandler queries.GetDriverPerformanceQueryHandler
}

// NewServer creates the HTTP server around the use case handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	createVehicleHandler commands.CreateVehicleCommandHandler,
	optimizeHandler commands.OptimizeRoutesCommandHandler,
	adjustmentEngine *jobs.AdjustmentEngine,
	dailySummaryHandler queries.GetDailySummaryQueryHandler,
	weeklyTrendHandler queries.GetWeeklyTrendQueryHandler,
	driverPerformanceHandler queries.GetDriverPerformanceQueryHandler,
) *Server {
	return &Server{
		createOrderHandler:       createOrderHandler,
		createVehicleHandler:     createVehicleHandler,
		optimizeHandler:          optimizeHandler,
		adjustmentEngine:         adjustmentEngine,
		dailySummaryHandler:      dailySummaryHandler,
		weeklyTrendHandler:       weeklyTrendHandler,
		driverPerformanceHandler: driverPerformanceHandler,
	}
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var body NewOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	demand, err := demandFromWire(body.Demand)
	if err != nil {
		return badRequest(ctx, "invalid demand: "+err.Error())
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, body.Area, body.Address,
		demand, body.Urgent, body.WindowFrom, body.WindowTo)
	if err != nil {
		return badRequest(ctx, "invalid order data: "+err.Error())
	}

	if err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return internalError(ctx, "failed to create order")
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: orderID.String()})
}

// CreateVehicle handles POST /api/v1/vehicles.
func (s *Server) CreateVehicle(ctx echo.Context) error {
	var body NewVehicleRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	cmd, err := vehicleCommandFromWire(body)
	if err != nil {
		return badRequest(ctx, "invalid vehicle data: "+err.Error())
	}

	if err := s.createVehicleHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return internalError(ctx, "failed to create vehicle")
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: cmd.VehicleID().String()})
}

// OptimizeRoutes handles POST /api/v1/routes/optimize.
func (s *Server) OptimizeRoutes(ctx echo.Context) error {
	var body OptimizeRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	date, err := time.Parse(dateLayout, body.Date)
	if err != nil {
		return badRequest(ctx, "date must be formatted as "+dateLayout)
	}

	cmd, err := commands.NewOptimizeRoutesCommand(date)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	result, err := s.optimizeHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return internalError(ctx, "optimization failed")
	}

	response := OptimizeResponse{
		RouteIDs:      uuidStrings(result.RouteIDs),
		AssignedCount: result.AssignedCount,
		UnassignedIDs: uuidStrings(result.UnassignedIDs),
		Warnings:      result.Warnings,
	}
	return ctx.JSON(http.StatusOK, response)
}

// SubmitAdjustment handles POST /api/v1/adjustments. The request is queued
// and processed asynchronously in submission order; the response carries
// the id to poll for the outcome.
func (s *Server) SubmitAdjustment(ctx echo.Context) error {
	var body AdjustmentRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	routeID, err := optionalUUID(body.RouteID)
	if err != nil {
		return badRequest(ctx, "invalid route_id")
	}
	orderID, err := optionalUUID(body.OrderID)
	if err != nil {
		return badRequest(ctx, "invalid order_id")
	}

	req, err := adjustment.NewRequest(kernel.NewUUID(), adjustment.Type(body.Type),
		routeID, orderID, body.Priority, time.Now())
	if err != nil {
		return badRequest(ctx, "invalid adjustment: "+err.Error())
	}

	if err := s.adjustmentEngine.Submit(req); err != nil {
		return internalError(ctx, "failed to queue adjustment")
	}
	return ctx.JSON(http.StatusAccepted, AdjustmentAccepted{RequestID: req.ID().String()})
}

// GetAdjustmentResult handles GET /api/v1/adjustments/:id.
func (s *Server) GetAdjustmentResult(ctx echo.Context) error {
	requestID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid adjustment id")
	}

	result, ok := s.adjustmentEngine.Result(requestID)
	if !ok {
		return ctx.JSON(http.StatusNotFound, Error{
			Code:    http.StatusNotFound,
			Message: "adjustment result not available, still queued or expired",
		})
	}
	return ctx.JSON(http.StatusOK, adjustmentResultToWire(result))
}

// GetDailySummary handles GET /api/v1/analytics/daily.
func (s *Server) GetDailySummary(ctx echo.Context) error {
	date, err := dateParam(ctx, "date")
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	query, err := queries.NewGetDailySummaryQuery(date)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	summary, err := s.dailySummaryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return internalError(ctx, "failed to compute daily summary")
	}

	response := DailySummaryResponse{
		Date:               summary.Date.Format(dateLayout),
		TotalRoutes:        summary.TotalRoutes,
		TotalStops:         summary.TotalStops,
		StopsCompleted:     summary.StopsCompleted,
		TotalDistanceKm:    summary.TotalDistanceKm,
		BaselineDistanceKm: summary.BaselineDistanceKm,
		FuelSavedLiters:    summary.FuelSavedLiters,
		CostSaved:          summary.CostSaved,
		OnTimeRate:         summary.OnTimeRate,
		AverageDelaySec:    int64(summary.AverageDelay / time.Second),
		DeliveriesByHour:   summary.DeliveriesByHour,
	}
	for _, standing := range summary.TopDrivers {
		response.TopDrivers = append(response.TopDrivers, DriverStandingResponse{
			VehicleID:      standing.VehicleID.String(),
			DriverName:     standing.DriverName,
			StopsCompleted: standing.StopsCompleted,
			OnTimeRate:     standing.OnTimeRate,
			DistanceKm:     standing.DistanceKm,
		})
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetWeeklyTrend handles GET /api/v1/analytics/weekly.
func (s *Server) GetWeeklyTrend(ctx echo.Context) error {
	endDate, err := dateParam(ctx, "end_date")
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	query, err := queries.NewGetWeeklyTrendQuery(endDate)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	trend, err := s.weeklyTrendHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return internalError(ctx, "failed to compute weekly trend")
	}

	response := WeeklyTrendResponse{
		Slope: trend.Slope,
		Trend: string(trend.Trend),
	}
	for _, day := range trend.Days {
		response.Days = append(response.Days, TrendPointResponse{
			Date:           day.Date.Format(dateLayout),
			StopsCompleted: day.StopsCompleted,
			DistanceKm:     day.DistanceKm,
			OnTimePercent:  day.OnTimePercent,
		})
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetDriverPerformance handles GET /api/v1/analytics/drivers/:id.
func (s *Server) GetDriverPerformance(ctx echo.Context) error {
	vehicleID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid vehicle id")
	}

	period, err := queries.ParsePeriod(ctx.QueryParam("period"))
	if err != nil {
		return badRequest(ctx, "period must be one of day, week, month, quarter")
	}

	endDate, err := dateParam(ctx, "end_date")
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	query, err := queries.NewGetDriverPerformanceQuery(vehicleID, period, endDate)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	performance, err := s.driverPerformanceHandler.Handle(ctx.Request().Context(), query)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return ctx.JSON(http.StatusNotFound, Error{
			Code:    http.StatusNotFound,
			Message: "vehicle not found",
		})
	}
	if err != nil {
		return internalError(ctx, "failed to compute driver performance")
	}

	return ctx.JSON(http.StatusOK, DriverPerformanceResponse{
		VehicleID:       performance.VehicleID.String(),
		DriverName:      performance.DriverName,
		Period:          string(performance.Period),
		RoutesDriven:    performance.RoutesDriven,
		StopsCompleted:  performance.StopsCompleted,
		DistanceKm:      performance.DistanceKm,
		OnTimeRate:      performance.OnTimeRate,
		AverageDelaySec: int64(performance.AverageDelay / time.Second),
		KmPerStop:       performance.KmPerStop,
		Score:           performance.Score,
	})
}

func demandFromWire(wire map[string]int) (order.Demand, error) {
	demand := order.Demand{}
	for name, units := range wire {
		category := order.CylinderCategory(name)
		if err := category.Validate(); err != nil {
			return nil, err
		}
		demand[category] = units
	}
	if err := demand.Validate(); err != nil {
		return nil, err
	}
	return demand, nil
}

func vehicleCommandFromWire(body NewVehicleRequest) (commands.CreateVehicleCommand, error) {
	start, err := kernel.NewGeoPoint(body.StartLat, body.StartLng)
	if err != nil {
		return commands.CreateVehicleCommand{}, err
	}

	end := start
	if body.EndLat != nil && body.EndLng != nil {
		end, err = kernel.NewGeoPoint(*body.EndLat, *body.EndLng)
		if err != nil {
			return commands.CreateVehicleCommand{}, err
		}
	}

	work, err := kernel.NewTimeWindow(body.WorkFrom, body.WorkTo)
	if err != nil {
		return commands.CreateVehicleCommand{}, err
	}

	var brk *kernel.TimeWindow
	if body.BreakFrom != nil && body.BreakTo != nil {
		w, brkErr := kernel.NewTimeWindow(*body.BreakFrom, *body.BreakTo)
		if brkErr != nil {
			return commands.CreateVehicleCommand{}, brkErr
		}
		brk = &w
	}

	maxUnits, err := demandFromWire(body.MaxUnits)
	if err != nil {
		return commands.CreateVehicleCommand{}, err
	}
	capacity, err := vehicle.NewCapacity(body.MaxWeightKg, maxUnits)
	if err != nil {
		return commands.CreateVehicleCommand{}, err
	}

	return commands.NewCreateVehicleCommand(kernel.NewUUID(), body.DriverName,
		start, end, work, brk, capacity)
}

func adjustmentResultToWire(result adjustment.Result) AdjustmentResultResponse {
	response := AdjustmentResultResponse{
		RequestID:        result.RequestID.String(),
		Success:          result.Success,
		AffectedRouteIDs: uuidStrings(result.AffectedRouteID),
		Message:          result.Message,
	}
	for _, change := range result.Changes {
		wire := AdjustmentChange{
			Kind:     string(change.Kind),
			RouteID:  change.RouteID.String(),
			Position: change.Position,
		}
		if change.OrderID != nil {
			id := change.OrderID.String()
			wire.OrderID = &id
		}
		response.Changes = append(response.Changes, wire)
	}
	for _, totals := range result.NewTotals {
		response.NewTotals = append(response.NewTotals, AdjustmentRouteTotals{
			RouteID:         totals.RouteID.String(),
			DistanceKm:      totals.DistanceKm,
			DurationSeconds: int64(totals.Duration / time.Second),
			StopCount:       totals.StopCount,
		})
	}
	return response
}

func uuidStrings(ids []kernel.UUID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func optionalUUID(s *string) (*kernel.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := kernel.UUIDFromString(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func dateParam(ctx echo.Context, name string) (time.Time, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return time.Now(), nil
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, errors.New(name + " must be formatted as " + dateLayout)
	}
	return date, nil
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

func internalError(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusInternalServerError, Error{
		Code:    http.StatusInternalServerError,
		Message: message,
	})
}
