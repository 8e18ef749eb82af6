package main

import (
	"context"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/adapters/client"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/adapters/credstore"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/adapters/handler"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/adapters/messaging"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/adapters/middleware"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/config"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/ports"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/services"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/logger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat, "intake-dashboard")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	var redisClient *redis.Client
	if cfg.RedisAddress != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		zlog.Info("connected to redis, sessions will survive restarts")
	} else {
		zlog.Info("no redis configured, sessions are in-memory only")
	}

	var publisher ports.DecisionPublisher
	if cfg.RabbitMQURL != "" {
		broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.DecisionQueueName, zlog)
		if err != nil {
			zlog.Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
		defer broker.Close()
		publisher = broker
		zlog.Info("decision events enabled", zap.String("queue", cfg.DecisionQueueName))
	}

	buildSession := func(sessionID string) *services.Dashboard {
		var store ports.CredentialStore
		if redisClient != nil {
			store = credstore.NewRedisStore(redisClient, sessionID)
		} else {
			store = credstore.NewMemoryStore()
		}
		coord := client.NewCoordinator(cfg.ClinicAPIURL, store, zlog)
		api := client.NewIntakeClient(coord, zlog)
		return services.NewDashboard(api, store, publisher, zlog)
	}

	registry := services.NewSessionRegistry(buildSession, zlog)
	sessionMiddleware := middleware.NewSessionMiddleware(registry, zlog)

	sessionHandler := handler.NewSessionHandler(registry, zlog)
	dashboardHandler := handler.NewDashboardHandler(registry, zlog)
	healthHandler := handler.NewHealthHandler(cfg.ClinicAPIURL, redisClient, zlog)

	mux := http.NewServeMux()

	// Health endpoints (OpenShift compatible)
	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/health/ready", healthHandler.Ready)
	mux.HandleFunc("/health/live", healthHandler.Live)

	mux.Handle("/metrics", promhttp.Handler())

	// API endpoints
	mux.HandleFunc("POST /api/session/login", sessionHandler.Login)
	mux.Handle("POST /api/session/logout",
		sessionMiddleware.RequireSession(sessionHandler.Logout),
	)

	mux.Handle("GET /api/dashboard/requests",
		sessionMiddleware.RequireSession(dashboardHandler.ListRequests),
	)
	mux.Handle("POST /api/dashboard/requests/{id}/approve",
		sessionMiddleware.RequireSession(dashboardHandler.Approve),
	)
	mux.Handle("POST /api/dashboard/requests/{id}/reject",
		sessionMiddleware.RequireSession(dashboardHandler.Reject),
	)
	mux.Handle("POST /api/dashboard/requests/{id}/notify",
		sessionMiddleware.RequireSession(dashboardHandler.Notify),
	)

	corsWrapped := middleware.CORSMiddleware(cfg.CORSAllowedOrigins)(mux)

	zlog.Info("starting dashboard service", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, corsWrapped); err != nil {
		zlog.Fatal("could not start server", zap.Error(err))
	}
}
