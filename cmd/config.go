package cmd

// Config carries the runtime configuration of the dispatch service, read
// from environment variables at startup.
type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RoutingBaseURL string
	RoutingAPIKey  string
	RoutingLocale  string

	KafkaHost             string
	KafkaRouteEventsTopic string

	// OptimizationSchedule is a six-field cron expression. Empty picks the
	// default pre-dawn run.
	OptimizationSchedule string

	// TrafficDegradationFactor is the multiplier over a route's stored
	// duration above which a traffic refresh attempts a re-optimization.
	// Zero picks the 1.2 default.
	TrafficDegradationFactor float64

	// ClusterGridEdgeKm is the edge length of a clustering grid cell in
	// kilometers. Zero picks the 2 km default.
	ClusterGridEdgeKm float64
}
