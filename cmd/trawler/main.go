package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"stoik.com/trawler/internal/client"
	"stoik.com/trawler/internal/config"
	"stoik.com/trawler/internal/core/port"
	"stoik.com/trawler/internal/core/service"
	"stoik.com/trawler/internal/infrastructure/amqp"
	"stoik.com/trawler/internal/server"
	"stoik.com/trawler/internal/storage"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Invalid log level %q: %v", cfg.Logging.Level, err)
	}
	log.SetLevel(level)

	// The schema is compiled once; a broken schema file must stop the service.
	schemaValidator, err := service.LoadSchemaValidator(cfg.Schema.Path)
	if err != nil {
		log.Fatalf("Failed to load report schema: %v", err)
	}

	ctx := context.Background()

	var reportsStorage port.ReportsStorage
	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Warn("Using in-memory storage, reports are lost on restart")
		reportsStorage = storage.NewMemoryStorage()
	default:
		db, err := storage.NewPostgresDB(ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if cfg.Database.EnsureSchema {
			if err := db.EnsureSchema(ctx); err != nil {
				log.Fatalf("Failed to create database schema: %v", err)
			}
		}
		reportsStorage = storage.NewReportsStorage(db)
	}

	validate := validator.New()

	var notifier port.NotifierClient = client.NewLogNotifier()
	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQP.URL, "trawler")
		if err != nil {
			log.Fatalf("Failed to create AMQP client: %v", err)
		}
		defer amqpClient.Close()

		topologyManager := amqp.NewTopologyManager(amqpClient)
		if err := topologyManager.Setup(amqp.ReportBindings...); err != nil {
			log.Fatalf("Failed to setup AMQP topology: %v", err)
		}
		notifier = client.NewAMQPNotifier(amqp.NewPublisher(amqpClient, "trawler"), validate)
	}

	reportService := service.NewReportService(reportsStorage, notifier, schemaValidator, validate)

	httpServer := server.NewHTTPServer(reportService)

	go func() {
		if err := httpServer.Start(cfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	log.Info("Report intake service started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down report intake service...")

	// In-flight submissions finish their transaction before we close the pool
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Error shutting down HTTP server: %v", err)
	}
}

func loadConfig() (*config.Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
