package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/client"
	memoryadapter "github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/memory"
	mongoadapter "github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/mongo"
	natsadapter "github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/nats"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/notifier"
	redisadapter "github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/redis"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/tracer"
	grpcserver "github.com/Abdurahmanit/GroupProject/cart-service/internal/port/grpc"
	httpserver "github.com/Abdurahmanit/GroupProject/cart-service/internal/port/http"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/service"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type App struct {
	cfg            *config.Config
	log            logger.Logger
	kv             repository.KVStore
	httpServer     *httpserver.Server
	grpcServer     *grpcserver.Server
	metricsServer  *metrics.Server
	tracerProvider *sdktrace.TracerProvider
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	natsConn       *nats.Conn
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	logCfg := logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	}
	appLogger, err := logger.NewZapLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Info("Logger initialized")
	appLogger.Infof("Configuration loaded: Env=%s, HTTP Port: %s, GRPC Port: %s, Storage: %s",
		cfg.Env, cfg.HTTPServer.Port, cfg.GRPCServer.Port, cfg.Storage.Driver)

	tp, err := tracer.InitTracer(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	if tp != nil {
		appLogger.Infof("Tracing enabled, exporting to %s", cfg.Tracing.Endpoint)
	}

	metricsManager := metrics.NewMetricsManager("cart_service")

	application := &App{
		cfg:            cfg,
		log:            appLogger,
		tracerProvider: tp,
	}

	storefront, err := client.NewStorefrontClient(client.StorefrontClientConfig{
		BaseURL: cfg.Storefront.BaseURL,
		Timeout: cfg.Storefront.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storefront client: %w", err)
	}
	appLogger.Infof("Storefront client initialized for %s", cfg.Storefront.BaseURL)

	var catalog repository.Catalog = storefront
	switch cfg.Storage.Driver {
	case config.StorageDriverRedis:
		appLogger.Info("Initializing Redis client...")
		redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
		if err != nil {
			appLogger.Errorf("Failed to initialize Redis client: %v", err)
			return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
		}
		application.redisClient = redisClient
		application.kv = redisadapter.NewKVStore(redisClient)
		catalog = service.NewCachedCatalog(storefront, redisadapter.NewProductDetailCacheRepository(redisClient), cfg.ProductCache.TTL, appLogger)
		appLogger.Info("Redis cart store and product cache initialized")
	case config.StorageDriverMongo:
		appLogger.Info("Initializing MongoDB client...")
		mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
		if err != nil {
			appLogger.Errorf("Failed to initialize MongoDB client: %v", err)
			return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
		}
		application.mongoClient = mongoClient
		application.kv = mongoadapter.NewKVStore(mongoClient, cfg.MongoDB.Database, cfg.MongoDB.Collection)
		appLogger.Info("MongoDB cart store initialized")
	default:
		application.kv = memoryadapter.NewKVStore()
		appLogger.Warn("Using in-memory cart store, carts will not survive a restart")
	}

	logNotifier := notifier.NewLogNotifier(appLogger)
	notifierFor := func(sessionID string) repository.Notifier { return logNotifier }
	if cfg.NATS.URL != "" {
		natsConn, err := natsadapter.NewConnection(cfg.NATS, appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		application.natsConn = natsConn
		notifierFor = func(sessionID string) repository.Notifier {
			return notifier.Multi(logNotifier, natsadapter.NewNotifier(natsConn, cfg.NATS.Subject, sessionID, appLogger))
		}
		appLogger.Infof("Cart notifications published to NATS subject %s", cfg.NATS.Subject)
	}

	sessions := service.NewSessionRegistry(cfg.Storage.Namespace, service.CartStoreDeps{
		KV:      application.kv,
		Stock:   storefront,
		Catalog: catalog,
		Log:     appLogger,
		Metrics: metricsManager,
	}, notifierFor)
	appLogger.Info("Cart session registry initialized")

	cartHandler := httpserver.NewCartHandler(sessions, application.kv, appLogger)
	application.httpServer = httpserver.NewServer(
		cfg.HTTPServer.Port,
		cfg.HTTPServer.ReadTimeout,
		cfg.HTTPServer.WriteTimeout,
		httpserver.NewRouter(cartHandler, appLogger),
		appLogger,
	)
	application.grpcServer = grpcserver.NewServer(
		appLogger,
		cfg.GRPCServer.Port,
		cfg.GRPCServer.TimeoutGraceful,
		cfg.GRPCServer.MaxConnectionIdle,
	)
	application.metricsServer = metrics.NewServer(cfg.Metrics.Port, appLogger, metricsManager.Registry)
	appLogger.Info("Servers created")

	return application, nil
}

func (a *App) Run() {
	a.log.Info("Starting application components...")

	healthCtx, stopHealth := context.WithCancel(context.Background())
	defer stopHealth()
	go a.grpcServer.WatchHealth(healthCtx, a.kv, a.cfg.GRPCServer.HealthInterval)

	go func() {
		if err := a.httpServer.Start(); err != nil {
			a.log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()
	go func() {
		if err := a.grpcServer.Start(); err != nil {
			a.log.Fatalf("Failed to start gRPC server: %v", err)
		}
	}()
	if a.metricsServer != nil {
		go func() {
			if err := a.metricsServer.Start(); err != nil {
				a.log.Errorf("Metrics server failed: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down application...", receivedSignal)
	stopHealth()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.TimeoutGraceful+5*time.Second)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Errorf("Error during HTTP server graceful shutdown: %v", err)
	}
	if err := a.grpcServer.Stop(shutdownCtx); err != nil {
		a.log.Errorf("Error during gRPC server graceful shutdown: %v", err)
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Stop(shutdownCtx); err != nil {
			a.log.Errorf("Error stopping metrics server: %v", err)
		}
	}

	a.log.Info("Closing connections...")

	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.log.Errorf("Error draining NATS connection: %v", err)
		}
	}

	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		} else {
			a.log.Info("MongoDB connection closed successfully")
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		} else {
			a.log.Info("Redis client closed successfully")
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
			a.log.Errorf("Error shutting down tracer provider: %v", err)
		}
	}

	a.log.Info("Application shut down successfully")
	_ = a.log.Sync()
}
