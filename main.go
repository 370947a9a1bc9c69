package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsgo_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/bwmarrin/snowflake"
	"golang.org/x/sync/errgroup"

	"github.com/emmoscript/AutoSlot/internal/api"
	"github.com/emmoscript/AutoSlot/internal/api/handler"
	"github.com/emmoscript/AutoSlot/internal/config"
	"github.com/emmoscript/AutoSlot/internal/influxdb"
	"github.com/emmoscript/AutoSlot/internal/iot"
	"github.com/emmoscript/AutoSlot/internal/pricing"
	"github.com/emmoscript/AutoSlot/internal/repository"
	"github.com/emmoscript/AutoSlot/internal/repository/memory"
	"github.com/emmoscript/AutoSlot/internal/repository/postgresql"
	"github.com/emmoscript/AutoSlot/internal/service"
	"github.com/emmoscript/AutoSlot/internal/stream"
)

const (
	shutdownTimeout    = 10 * time.Second
	eventPruneInterval = time.Hour
)

type repositories struct {
	lots     repository.ParkingLotRepository
	spaces   repository.ParkingSpaceRepository
	eventLog repository.SpaceEventLogRepository
	db       *sql.DB
}

func main() {
	// 1. Load configuration
	cfg := config.Load()
	log.Println("Configuration loaded.")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Storage
	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatalf("Could not open storage: %v", err)
	}
	if repos.db != nil {
		defer repos.db.Close()
	}

	// 3. Live feed and sinks
	webSocketManager := handler.NewWebSocketManager()
	notifier := service.NewNotifier(webSocketManager)

	var awsCfg *aws.Config
	if cfg.SQSSensorQueueURL != "" || cfg.IoTMQTTEndpoint != "" {
		loaded, err := awsgo_config.LoadDefaultConfig(ctx, awsgo_config.WithRegion(cfg.AWSRegion))
		if err != nil {
			log.Fatalf("Could not load AWS SDK config: %v", err)
		}
		awsCfg = &loaded
		log.Println("AWS SDK config loaded for region:", cfg.AWSRegion)
	}

	if awsCfg != nil && cfg.IoTMQTTEndpoint != "" {
		iotDataPlaneClient := iotdataplane.NewFromConfig(*awsCfg, func(o *iotdataplane.Options) {
			endpoint := cfg.IoTMQTTEndpoint
			if !strings.HasPrefix(endpoint, "https://") && !strings.HasPrefix(endpoint, "http://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
		})
		notifier.AddSpaceEventPublisher(iot.NewStatusPublisher(iotDataPlaneClient))
		log.Println("IoT status publisher enabled.")
	}

	if cfg.Kafka.Enabled() {
		kafkaPublisher, err := stream.NewKafkaPublisher(cfg.Kafka)
		if err != nil {
			log.Printf("WARNING: Kafka disabled: %v", err)
		} else {
			defer kafkaPublisher.Close()
			notifier.AddSpaceEventPublisher(kafkaPublisher)
			notifier.AddSettlementPublisher(kafkaPublisher)
			log.Printf("Kafka publisher enabled (brokers %v).", cfg.Kafka.Brokers)
		}
	}

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled() {
		influxClient, err = influxdb.NewClient(ctx, cfg.InfluxDB)
		if err != nil {
			log.Printf("WARNING: InfluxDB disabled: %v", err)
			influxClient = nil
		} else {
			defer influxClient.Close()
			notifier.AddSpaceEventPublisher(influxClient)
			notifier.AddSettlementPublisher(influxClient)
		}
	}

	// 4. Services
	ids, err := snowflake.NewNode(cfg.Simulation.NodeID)
	if err != nil {
		log.Fatalf("Invalid NODE_ID: %v", err)
	}
	factors, err := pricing.NewStore(pricing.DefaultFactors())
	if err != nil {
		log.Fatalf("Invalid default pricing factors: %v", err)
	}
	authService, err := service.NewAuthService(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret, cfg.JWTExpirationHours)
	if err != nil {
		log.Fatalf("Could not initialize auth: %v", err)
	}

	strict := cfg.Simulation.StrictGuard()
	simulator := service.NewSimulatorService(repos.lots, repos.spaces, repos.eventLog, notifier, strict, service.NewRandomizer(0))
	sessions := service.NewSessionService(simulator, repos.spaces, notifier, ids, service.NewRandomizer(0), service.SessionConfig{
		StrictGuard:  strict,
		MinimumFare:  cfg.Simulation.MinimumFare,
		HourlyRate:   cfg.Simulation.HourlyRate,
		HistoryLimit: cfg.Simulation.HistoryLimit,
	})
	simulator.AddListener(sessions)
	simulator.AddResetListener(sessions)
	parkingService := service.NewParkingService(repos.lots, repos.spaces)
	pricingService := service.NewPricingService(repos.lots, repos.spaces, factors)
	log.Printf("Services initialized (occupancy guard: %s).", cfg.Simulation.OccupancyGuard)

	// 5. HTTP server
	router := api.SetupRouter(api.Services{
		Auth:      authService,
		Parking:   parkingService,
		Pricing:   pricingService,
		Simulator: simulator,
		Sessions:  sessions,
		WebSocket: webSocketManager,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 6. Background workers
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		webSocketManager.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.Printf("Server listening on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		simulator.StopAutoMode()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if awsCfg != nil && cfg.SQSSensorQueueURL != "" {
		consumer := iot.NewSQSConsumer(sqs.NewFromConfig(*awsCfg), cfg.SQSSensorQueueURL, simulator)
		g.Go(func() error { return consumer.Start(gctx) })
	} else {
		log.Println("WARNING: SQS_SENSOR_QUEUE_URL is not set. SQS consumer will not run.")
	}

	if influxClient != nil {
		g.Go(func() error {
			return influxClient.RunOccupancyReporter(gctx, parkingService, cfg.InfluxDB.ReportInterval)
		})
	}

	g.Go(func() error {
		runEventLogPruneJob(gctx, simulator, cfg.Simulation.EventLogRetention)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
	log.Println("Server stopped.")
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := postgresql.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		if err := postgresql.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		if cfg.DBSeed {
			if err := postgresql.Seed(ctx, db, repository.DemoLots()); err != nil {
				db.Close()
				return nil, err
			}
		}
		log.Println("Connected to PostgreSQL.")
		return &repositories{
			lots:     postgresql.NewPgParkingLotRepository(db),
			spaces:   postgresql.NewPgParkingSpaceRepository(db),
			eventLog: postgresql.NewPgSpaceEventLogRepository(db),
			db:       db,
		}, nil

	case config.StorageMemory:
		store := memory.NewSeededStore(repository.DemoLots())
		log.Println("Using in-memory storage seeded with demo lots.")
		return &repositories{
			lots:     memory.NewParkingLotRepository(store),
			spaces:   memory.NewParkingSpaceRepository(store),
			eventLog: memory.NewSpaceEventLogRepository(cfg.Simulation.HistoryLimit),
		}, nil
	}
	return nil, errors.New("unknown STORAGE_DRIVER " + cfg.StorageDriver)
}

func runEventLogPruneJob(ctx context.Context, simulator *service.SimulatorService, retention time.Duration) {
	if retention <= 0 {
		return
	}
	ticker := time.NewTicker(eventPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			count, err := simulator.PruneEventLog(pruneCtx, retention)
			cancel()
			if err != nil {
				log.Printf("Error pruning space event log: %v", err)
			} else if count > 0 {
				log.Printf("Pruned %d space events older than %s", count, retention)
			}
		}
	}
}
