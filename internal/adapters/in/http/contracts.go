package http

import "time"

// Error is the uniform error body of the API.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewOrderRequest is the body of POST /api/v1/orders. Demand maps cylinder
// category names to unit counts, e.g. {"12kg": 2}.
type NewOrderRequest struct {
	Area       string         `json:"area"`
	Address    string         `json:"address"`
	Demand     map[string]int `json:"demand"`
	Urgent     bool           `json:"urgent"`
	WindowFrom time.Time      `json:"window_from"`
	WindowTo   time.Time      `json:"window_to"`
}

// CreatedResponse returns the identifier of a newly created resource.
type CreatedResponse struct {
	ID string `json:"id"`
}

// NewVehicleRequest is the body of POST /api/v1/vehicles. The end location
// defaults to the start location and the break window is optional.
type NewVehicleRequest struct {
	DriverName   string         `json:"driver_name"`
	StartLat     float64        `json:"start_lat"`
	StartLng     float64        `json:"start_lng"`
	EndLat       *float64       `json:"end_lat,omitempty"`
	EndLng       *float64       `json:"end_lng,omitempty"`
	WorkFrom     time.Time      `json:"work_from"`
	WorkTo       time.Time      `json:"work_to"`
	BreakFrom    *time.Time     `json:"break_from,omitempty"`
	BreakTo      *time.Time     `json:"break_to,omitempty"`
	MaxWeightKg  float64        `json:"max_weight_kg"`
	MaxUnits     map[string]int `json:"max_units"`
}

// OptimizeRequest is the body of POST /api/v1/routes/optimize.
type OptimizeRequest struct {
	Date string `json:"date"`
}

// OptimizeResponse reports the outcome of a batch optimization run.
type OptimizeResponse struct {
	RouteIDs      []string `json:"route_ids"`
	AssignedCount int      `json:"assigned_count"`
	UnassignedIDs []string `json:"unassigned_ids"`
	Warnings      []string `json:"warnings,omitempty"`
}

// AdjustmentRequest is the body of POST /api/v1/adjustments.
type AdjustmentRequest struct {
	Type     string  `json:"type"`
	RouteID  *string `json:"route_id,omitempty"`
	OrderID  *string `json:"order_id,omitempty"`
	Priority int     `json:"priority"`
}

// AdjustmentAccepted acknowledges a queued adjustment request.
type AdjustmentAccepted struct {
	RequestID string `json:"request_id"`
}

// AdjustmentChange describes one modification an adjustment made.
type AdjustmentChange struct {
	Kind     string  `json:"kind"`
	RouteID  string  `json:"route_id"`
	OrderID  *string `json:"order_id,omitempty"`
	Position int     `json:"position,omitempty"`
}

// AdjustmentRouteTotals carries the post-adjustment totals of a route.
type AdjustmentRouteTotals struct {
	RouteID         string  `json:"route_id"`
	DistanceKm      float64 `json:"distance_km"`
	DurationSeconds int64   `json:"duration_seconds"`
	StopCount       int     `json:"stop_count"`
}

// AdjustmentResultResponse is the processed outcome of an adjustment.
type AdjustmentResultResponse struct {
	RequestID        string                  `json:"request_id"`
	Success          bool                    `json:"success"`
	AffectedRouteIDs []string                `json:"affected_route_ids,omitempty"`
	Changes          []AdjustmentChange      `json:"changes,omitempty"`
	NewTotals        []AdjustmentRouteTotals `json:"new_totals,omitempty"`
	Message          string                  `json:"message"`
}

// DriverStandingResponse is one leaderboard row in the daily summary.
type DriverStandingResponse struct {
	VehicleID      string  `json:"vehicle_id"`
	DriverName     string  `json:"driver_name"`
	StopsCompleted int     `json:"stops_completed"`
	OnTimeRate     float64 `json:"on_time_rate"`
	DistanceKm     float64 `json:"distance_km"`
}

// DailySummaryResponse is the body of GET /api/v1/analytics/daily.
type DailySummaryResponse struct {
	Date               string                   `json:"date"`
	TotalRoutes        int                      `json:"total_routes"`
	TotalStops         int                      `json:"total_stops"`
	StopsCompleted     int                      `json:"stops_completed"`
	TotalDistanceKm    float64                  `json:"total_distance_km"`
	BaselineDistanceKm float64                  `json:"baseline_distance_km"`
	FuelSavedLiters    float64                  `json:"fuel_saved_liters"`
	CostSaved          float64                  `json:"cost_saved"`
	OnTimeRate         float64                  `json:"on_time_rate"`
	AverageDelaySec    int64                    `json:"average_delay_seconds"`
	DeliveriesByHour   [24]int                  `json:"deliveries_by_hour"`
	TopDrivers         []DriverStandingResponse `json:"top_drivers"`
}

// TrendPointResponse is one day in the weekly trend.
type TrendPointResponse struct {
	Date           string  `json:"date"`
	StopsCompleted int     `json:"stops_completed"`
	DistanceKm     float64 `json:"distance_km"`
	OnTimePercent  float64 `json:"on_time_percent"`
}

// WeeklyTrendResponse is the body of GET /api/v1/analytics/weekly.
type WeeklyTrendResponse struct {
	Days  []TrendPointResponse `json:"days"`
	Slope float64              `json:"slope"`
	Trend string               `json:"trend"`
}

// DriverPerformanceResponse is the body of
// GET /api/v1/analytics/drivers/:id.
type DriverPerformanceResponse struct {
	VehicleID       string  `json:"vehicle_id"`
	DriverName      string  `json:"driver_name"`
	Period          string  `json:"period"`
	RoutesDriven    int     `json:"routes_driven"`
	StopsCompleted  int     `json:"stops_completed"`
	DistanceKm      float64 `json:"distance_km"`
	OnTimeRate      float64 `json:"on_time_rate"`
	AverageDelaySec int64   `json:"average_delay_seconds"`
	KmPerStop       float64 `json:"km_per_stop"`
	Score           int     `json:"score"`
}
