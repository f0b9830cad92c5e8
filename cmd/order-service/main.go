package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aibeh/order-management/internal/api"
	"github.com/aibeh/order-management/internal/config"
	"github.com/aibeh/order-management/internal/events"
	"github.com/aibeh/order-management/internal/orders"
	"github.com/aibeh/order-management/internal/store"
	"github.com/aibeh/order-management/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	st, err := store.OpenPostgres(ctx, cfg.Database.DSN())
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("Failed to open record store")
	}
	defer st.Close()
	logger.Info("Record store ready")

	var producer *events.KafkaProducer
	if cfg.Kafka.Enabled {
		producer, err = events.NewKafkaProducer(cfg.Kafka.Brokers, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create Kafka producer")
		}
		defer producer.Close()
	}

	hub := ws.NewHub(logger)
	go hub.Run()

	var sinks []orders.EventSink
	if producer != nil {
		sinks = append(sinks, producer)
	}
	sinks = append(sinks, hub)

	service := orders.NewService(st, orders.MultiSink(sinks...), logger)
	handler := api.NewHandler(service, logger)
	router := api.NewRouter(handler, hub, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
		IdleTimeout:  cfg.Server.IdleTimeout.Std(),
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting order service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server gracefully stopped")
}
