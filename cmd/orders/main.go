package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/aweb-sistemas/vendas-orders-service/internal/clients"
	"github.com/aweb-sistemas/vendas-orders-service/internal/config"
	"github.com/aweb-sistemas/vendas-orders-service/internal/events"
	"github.com/aweb-sistemas/vendas-orders-service/internal/handlers"
	"github.com/aweb-sistemas/vendas-orders-service/internal/logging"
	"github.com/aweb-sistemas/vendas-orders-service/internal/metrics"
	"github.com/aweb-sistemas/vendas-orders-service/internal/repository"
	"github.com/aweb-sistemas/vendas-orders-service/internal/server"
	"github.com/aweb-sistemas/vendas-orders-service/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()

	logger := logging.MustNewLogger("vendas-orders-service", envName())
	defer logger.Sync()

	logger.Info("starting service", zap.Int("port", cfg.Server.Port))

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	tx := repository.NewSQLTxManager(db, logger)
	productRepo := repository.NewPostgresProductRepository(db, logger)
	customerRepo := repository.NewPostgresCustomerRepository(db, logger)
	orderRepo := repository.NewPostgresOrderRepository(db, logger)
	paymentRepo := repository.NewPostgresPaymentRepository(db, logger)
	orderCache := repository.NewRedisOrderCache(cfg.Redis, logger)

	eventPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
	defer eventPublisher.Close()

	gateway := clients.NewPaymentGatewayClient(cfg.Gateway, logger)

	paymentService := service.NewPaymentService(tx, orderRepo, paymentRepo, orderCache, eventPublisher, cfg, logger)
	orderService := service.NewOrderService(tx, orderRepo, productRepo, customerRepo, orderCache, paymentService, eventPublisher, cfg, logger)
	productService := service.NewProductService(tx, productRepo, logger)
	customerService := service.NewCustomerService(tx, customerRepo, logger)

	h := handlers.NewHandlers(productService, customerService, orderService, paymentService, gateway, cfg, logger)

	m := metrics.NewServerMetrics("orders")

	srv := server.NewServer(cfg, h, m, logger)

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	consumer := events.NewKafkaConsumer(cfg.Kafka, paymentService, logger)
	go func() {
		if err := consumer.Start(context.Background()); err != nil && err != context.Canceled {
			logger.Error("event consumer stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	consumer.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}

	logger.Info("service exited")
}

func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func envName() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return "development"
}
