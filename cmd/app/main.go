package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"dispatch/cmd"
	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/postgres/routerepo"
	"dispatch/internal/adapters/out/postgres/vehiclerepo"
	"dispatch/internal/jobs"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config := getConfig(logger)

	gormDB, err := openDatabase(config)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err = migrate(gormDB); err != nil {
		logger.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	root := cmd.NewCompositionRoot(config, gormDB, logger)
	defer func() {
		if closeErr := root.Close(); closeErr != nil {
			logger.Error("adapter shutdown failed", "error", closeErr)
		}
	}()

	adjustmentEngine := root.CreateAdjustmentEngine()
	jobManager := jobs.NewJobManager(
		adjustmentEngine,
		jobs.NewDailyOptimizationJob(root.CreateOptimizeRoutesCommandHandler(),
			config.OptimizationSchedule, logger),
		jobs.NewGatewayMaintenanceJob(root.Gateway(), logger),
		logger,
	)
	if err = jobManager.StartAll(); err != nil {
		logger.Error("background jobs failed to start", "error", err)
		os.Exit(1)
	}
	defer jobManager.StopAll()

	server := httpin.NewServer(
		root.CreateCreateOrderCommandHandler(),
		root.CreateCreateVehicleCommandHandler(),
		root.CreateOptimizeRoutesCommandHandler(),
		adjustmentEngine,
		root.CreateGetDailySummaryQueryHandler(),
		root.CreateGetWeeklyTrendQueryHandler(),
		root.CreateGetDriverPerformanceQueryHandler(),
	)
	router := httpin.NewRouter(server, root.Metrics())

	go func() {
		if startErr := router.Start("0.0.0.0:" + config.HTTPPort); startErr != nil {
			logger.Info("http server stopped", "reason", startErr)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = router.Shutdown(ctx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
}

func getConfig(logger *slog.Logger) cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		logger.Info("no .env file, relying on process environment")
	}

	return cmd.Config{
		HTTPPort:              envOrDefault("HTTP_PORT", "8080"),
		DBHost:                envOrDefault("DB_HOST", "localhost"),
		DBPort:                envOrDefault("DB_PORT", "5432"),
		DBUser:                os.Getenv("DB_USER"),
		DBPassword:            os.Getenv("DB_PASSWORD"),
		DBName:                os.Getenv("DB_NAME"),
		DBSslMode:             envOrDefault("DB_SSLMODE", "disable"),
		RoutingBaseURL:        os.Getenv("ROUTING_BASE_URL"),
		RoutingAPIKey:         os.Getenv("ROUTING_API_KEY"),
		RoutingLocale:         envOrDefault("ROUTING_LOCALE", "MY"),
		KafkaHost:             os.Getenv("KAFKA_HOST"),
		KafkaRouteEventsTopic: os.Getenv("KAFKA_ROUTE_EVENTS_TOPIC"),
		OptimizationSchedule:  os.Getenv("OPTIMIZATION_SCHEDULE"),

		TrafficDegradationFactor: envFloat(logger, "TRAFFIC_DEGRADATION_FACTOR"),
		ClusterGridEdgeKm:        envFloat(logger, "CLUSTER_GRID_EDGE_KM"),
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// envFloat reads a numeric tuning value. Unset or unparsable values return
// zero, which the consumers map to their defaults.
func envFloat(logger *slog.Logger, key string) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warn("ignoring invalid numeric setting", "key", key, "value", raw)
		return 0
	}
	return value
}

func openDatabase(config cmd.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword,
		config.DBName, config.DBSslMode)
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&vehiclerepo.VehicleDTO{},
		&routerepo.RouteDTO{},
		&routerepo.StopDTO{},
	)
}
