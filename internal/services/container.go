package services

import (
	"context"
	"database/sql"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"firewatch-backend/internal/config"
	"firewatch-backend/internal/repository"
	"firewatch-backend/internal/services/admission"
	"firewatch-backend/internal/services/alerts"
	"firewatch-backend/internal/services/events"
	"firewatch-backend/internal/services/facematch"
	"firewatch-backend/internal/services/faces"
	"firewatch-backend/internal/services/floors"
	"firewatch-backend/internal/services/gateway"
	"firewatch-backend/internal/services/occupancy"
	"firewatch-backend/internal/services/pipeline"
	"firewatch-backend/internal/services/severity"
)

// ServiceContainer holds all services
type ServiceContainer struct {
	Config *config.Config

	DB    *sql.DB
	Redis *redis.Client
	Nats  *events.NatsPublisher

	AlertsRepo    *repository.AlertsRepository
	FloorsRepo    *repository.FloorsRepository
	OccupancyRepo *repository.OccupancyRepository
	EmployeesRepo *repository.EmployeesRepository

	Gateway     *gateway.Service
	Broadcaster *events.Broadcaster
	FaceMatcher *facematch.Service
	Occupancy   *occupancy.Service
	Alerts      *alerts.Service
	Faces       *faces.Service
	Pipeline    *pipeline.Service

	cancelWorkers context.CancelFunc
}

// NewServiceContainer creates a new service container
func NewServiceContainer(cfg *config.Config) (*ServiceContainer, error) {
	db, err := repository.NewPostgresDB(cfg)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		// Redis only backs circuit-breaker state; the gateway degrades to
		// uncounted calls when it is down, so startup proceeds
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable, circuit breaker state unavailable")
	}

	natsPublisher, err := events.NewNatsPublisher(cfg)
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, err
	}

	alertsRepo := repository.NewAlertsRepository(db)
	floorsRepo := repository.NewFloorsRepository(db)
	occupancyRepo := repository.NewOccupancyRepository(db)
	employeesRepo := repository.NewEmployeesRepository(db)

	gatewaySvc := gateway.NewService(cfg, gateway.NewRedisCircuitStore(redisClient), map[string]string{
		gateway.ServiceFace: cfg.FaceServiceURL,
		gateway.ServiceFire: cfg.FireServiceURL,
	})

	broadcaster := events.NewBroadcaster(cfg, natsPublisher)
	faceMatcher := facematch.NewService(cfg, employeesRepo)
	occupancySvc := occupancy.NewService(occupancyRepo, employeesRepo, floorsRepo, broadcaster)
	alertsSvc := alerts.NewService(alertsRepo, broadcaster)
	facesSvc := faces.NewService(gatewaySvc, faceMatcher, employeesRepo)
	pipelineSvc := pipeline.NewService(
		admission.NewService(cfg),
		floors.NewResolver(floorsRepo),
		occupancySvc,
		severity.NewClassifier(cfg),
		alertsSvc,
		floorsRepo,
	)

	return &ServiceContainer{
		Config:        cfg,
		DB:            db,
		Redis:         redisClient,
		Nats:          natsPublisher,
		AlertsRepo:    alertsRepo,
		FloorsRepo:    floorsRepo,
		OccupancyRepo: occupancyRepo,
		EmployeesRepo: employeesRepo,
		Gateway:       gatewaySvc,
		Broadcaster:   broadcaster,
		FaceMatcher:   faceMatcher,
		Occupancy:     occupancySvc,
		Alerts:        alertsSvc,
		Faces:         facesSvc,
		Pipeline:      pipelineSvc,
	}, nil
}

// Start launches the background workers: the event broadcast drain loop and
// the embedding cache refresh loop
func (sc *ServiceContainer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	sc.cancelWorkers = cancel

	go sc.Broadcaster.Run(ctx)
	go sc.FaceMatcher.Run(ctx)
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	if sc.cancelWorkers != nil {
		sc.cancelWorkers()
		select {
		case <-sc.Broadcaster.Done():
		case <-ctx.Done():
			log.Warn().Msg("Timed out waiting for event queue to drain")
		}
	}

	if sc.Nats != nil {
		if err := sc.Nats.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("NATS shutdown failed")
		}
	}

	if sc.Redis != nil {
		if err := sc.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Redis close failed")
		}
	}

	if sc.DB != nil {
		if err := sc.DB.Close(); err != nil {
			return err
		}
	}

	return nil
}
