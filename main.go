package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"santas-pos/internal/catalog"
	"santas-pos/internal/config"
	"santas-pos/internal/events"
	"santas-pos/internal/events/event_api"
	"santas-pos/internal/kafka"
	"santas-pos/internal/logger"
	"santas-pos/internal/presale"
	"santas-pos/internal/presale/presale_api"
	"santas-pos/internal/printer"
	"santas-pos/internal/quota"
	"santas-pos/internal/quota/quota_api"
	"santas-pos/internal/sales"
	"santas-pos/internal/sales/sales_api"
)

func connectDatabase(cfg *config.Config, log *logger.Logger) *bun.DB {
	if cfg.Database.DSN == "" {
		log.Fatal("CONFIG", "POSTGRES_DSN not set")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN)))
	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	var err error
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		if err = sqldb.Ping(); err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("REDIS", fmt.Sprintf("Redis unavailable, catalog cache disabled: %v", err))
		return nil
	}
	log.Info("REDIS", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))
	return client
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting back-office service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	location, err := time.LoadLocation(cfg.Venue.Timezone)
	if err != nil {
		log.Fatal("CONFIG", fmt.Sprintf("Invalid venue timezone %q: %v", cfg.Venue.Timezone, err))
	}

	bunDB := connectDatabase(cfg, log)
	defer bunDB.Close()

	if err := ensureSchema(ctx, bunDB); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Schema bootstrap failed: %v", err))
	}
	log.Info("DATABASE", "Schema ensured")

	redisClient := connectRedis(ctx, cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// The audit sink is wired as interfaces so a disabled Kafka stays a
	// plain nil inside the services.
	var presaleAudit presale.Publisher
	var salesAudit sales.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, kafka.AllTopics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
		presaleAudit = producer
		salesAudit = producer
	} else {
		log.Warn("KAFKA", "Kafka disabled, audit events will not be published")
	}

	ticketPrinter := printer.NewNetworkPrinter(cfg.Printer.Addr, cfg.Printer.Timeout)

	catalogService := catalog.NewService(
		&catalog.DB{Bun: bunDB},
		catalog.NewTicketTypeCache(redisClient, cfg.Redis.CatalogTTL),
	)

	quotaDB := &quota.DB{Bun: bunDB, DefaultTotal: cfg.Venue.DefaultQuota}

	eventService := events.NewService(
		&events.DB{Bun: bunDB},
		location,
		cfg.Venue.SaturdayCount,
		cfg.Venue.DefaultCapacity,
	)

	presaleService := presale.NewService(
		&presale.DB{
			Bun:                  bunDB,
			DefaultQuota:         cfg.Venue.DefaultQuota,
			ReleaseQuotaOnDelete: cfg.Venue.ReleaseQuotaOnDelete,
		},
		catalogService,
		ticketPrinter,
		presaleAudit,
		log,
	)

	salesService := sales.NewService(
		&sales.DB{Bun: bunDB},
		catalogService,
		eventService,
		ticketPrinter,
		salesAudit,
		log,
	)

	presaleHandler := &presale_api.Handler{Service: presaleService, Logger: log}
	quotaHandler := &quota_api.Handler{DB: quotaDB, Logger: log}
	salesHandler := &sales_api.Handler{
		Service: salesService,
		Events:  &events.DB{Bun: bunDB},
		Catalog: &catalog.DB{Bun: bunDB},
		Logger:  log,
	}
	eventHandler := &event_api.Handler{Service: eventService, Logger: log}

	// The calendar is tidied on boot so the first request already sees the
	// provisioned Saturdays.
	if err := eventService.DeactivatePastEvents(ctx); err != nil {
		log.Error("EVENTS", fmt.Sprintf("Failed to deactivate past events: %v", err))
	}
	if _, err := eventService.EnsureUpcomingSaturdays(ctx); err != nil {
		log.Error("EVENTS", fmt.Sprintf("Failed to provision upcoming Saturdays: %v", err))
	}

	log.Info("HTTP", "Setting up router")
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Route("/anticipadas", func(r chi.Router) {
			r.Get("/", presaleHandler.List)
			r.Post("/", presaleHandler.Handle)
		})
		log.Info("ROUTER", "Pre-sale routes registered under /api/anticipadas")

		r.Route("/promotores_cupos", func(r chi.Router) {
			r.Get("/", quotaHandler.List)
			r.Post("/", quotaHandler.Upsert)
		})
		log.Info("ROUTER", "Quota routes registered under /api/promotores_cupos")

		r.Route("/venta_entradas", func(r chi.Router) {
			r.Get("/", salesHandler.Board)
			r.Post("/", salesHandler.Sell)
		})
		log.Info("ROUTER", "Sales routes registered under /api/venta_entradas")

		r.Route("/eventos", func(r chi.Router) {
			r.Get("/", eventHandler.List)
			r.Post("/", eventHandler.Create)
			r.Put("/{id}", eventHandler.Update)
			r.Delete("/{id}", eventHandler.Delete)
		})
		log.Info("ROUTER", "Event routes registered under /api/eventos")
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Back-office service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Back-office service shutdown complete")
	}
}
