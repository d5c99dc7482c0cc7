package cmd

import (
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"dispatch/internal/adapters/out/geocoding"
	"dispatch/internal/adapters/out/kafka"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/routing"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"
	"dispatch/internal/pkg/metrics"
)

// CompositionRoot wires adapters, services and use case handlers together.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory

	metrics  *metrics.Metrics
	logger   *slog.Logger
	gateway  *routing.Gateway
	geocoder *geocoding.TableGeocoder

	publisher *kafka.RouteEventPublisher
}

// NewCompositionRoot builds the object graph from the configuration.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) *CompositionRoot {
	if logger == nil {
		logger = slog.Default()
	}

	m := metrics.New()
	provider := routing.NewHTTPProvider(config.RoutingBaseURL, config.RoutingAPIKey, config.RoutingLocale)
	gateway := routing.NewGateway(provider, routing.DefaultConfig(), m, logger)

	root := &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		metrics:    m,
		logger:     logger,
		gateway:    gateway,
		geocoder:   geocoding.NewTableGeocoder(),
	}

	if config.KafkaHost != "" {
		root.publisher = kafka.NewRouteEventPublisher(kafka.Config{
			Brokers: strings.Split(config.KafkaHost, ","),
			Topic:   config.KafkaRouteEventsTopic,
		}, logger)
	}

	return root
}

// Metrics returns the shared metrics instance.
func (c *CompositionRoot) Metrics() *metrics.Metrics {
	return c.metrics
}

// Gateway returns the routing gateway.
func (c *CompositionRoot) Gateway() *routing.Gateway {
	return c.gateway
}

// Close releases external resources held by the adapters.
func (c *CompositionRoot) Close() error {
	if c.publisher != nil {
		return c.publisher.Close()
	}
	return nil
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.geocoder, c.logger)
}

func (c *CompositionRoot) CreateCreateVehicleCommandHandler() commands.CreateVehicleCommandHandler {
	var f commands.VehicleUoWFactory = FuncVehicleUoWFactory(func() commands.VehicleUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateVehicleCommandHandler(f)
}

func (c *CompositionRoot) CreateOptimizeRoutesCommandHandler() commands.OptimizeRoutesCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewOptimizeRoutesCommandHandler(f,
		services.NewGeoClusterer(c.config.ClusterGridEdgeKm, c.logger),
		services.NewClusterAssigner(),
		services.NewRouteBuilder(c.gateway, c.logger),
		0, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateApplyAdjustmentCommandHandler() commands.ApplyAdjustmentCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})

	var publisher ports.RouteEventPublisher
	if c.publisher != nil {
		publisher = c.publisher
	}
	return commands.NewApplyAdjustmentCommandHandler(f, c.gateway, publisher,
		commands.AdjustmentConfig{TrafficDegradationFactor: c.config.TrafficDegradationFactor},
		c.logger)
}

func (c *CompositionRoot) CreateAdjustmentEngine() *jobs.AdjustmentEngine {
	return jobs.NewAdjustmentEngine(c.CreateApplyAdjustmentCommandHandler(), c.metrics, c.logger)
}

func (c *CompositionRoot) CreateGetDailySummaryQueryHandler() queries.GetDailySummaryQueryHandler {
	return queries.NewGetDailySummaryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetWeeklyTrendQueryHandler() queries.GetWeeklyTrendQueryHandler {
	return queries.NewGetWeeklyTrendQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetDriverPerformanceQueryHandler() queries.GetDriverPerformanceQueryHandler {
	return queries.NewGetDriverPerformanceQueryHandler(c.gormDB)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncVehicleUoWFactory func() commands.VehicleUoW

func (f FuncVehicleUoWFactory) Create() commands.VehicleUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
