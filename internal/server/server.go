package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aweb-sistemas/vendas-orders-service/internal/config"
	"github.com/aweb-sistemas/vendas-orders-service/internal/handlers"
	"github.com/aweb-sistemas/vendas-orders-service/internal/metrics"
	"github.com/aweb-sistemas/vendas-orders-service/internal/middleware"
)

// Server wraps the gin engine and the HTTP listener.
type Server struct {
	config   *config.Config
	router   *gin.Engine
	handlers *handlers.Handlers
	http     *http.Server
	logger   *zap.Logger
}

// NewServer builds the router with all routes and middleware attached.
func NewServer(cfg *config.Config, h *handlers.Handlers, m *metrics.ServerMetrics, logger *zap.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if m != nil {
		router.Use(m.Middleware())
	}

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		logger:   logger.Named("server"),
	}

	s.setupRoutes()

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/version", s.handlers.Version)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/products", s.handlers.CreateProduct)
		v1.GET("/products", s.handlers.ListProducts)
		v1.GET("/products/:id", s.handlers.GetProduct)
		v1.PUT("/products/:id", s.handlers.UpdateProduct)
		v1.DELETE("/products/:id", s.handlers.DeleteProduct)
		v1.POST("/products/:id/stock", s.handlers.AdjustStock)

		v1.POST("/customers", s.handlers.CreateCustomer)
		v1.GET("/customers", s.handlers.ListCustomers)
		v1.GET("/customers/:id", s.handlers.GetCustomer)

		v1.POST("/orders", s.handlers.CreateOrder)
		v1.GET("/orders", s.handlers.ListOrders)
		v1.GET("/orders/:id", s.handlers.GetOrder)
		v1.POST("/orders/:id/items", s.handlers.AddItem)
		v1.PUT("/orders/:id/items/:itemId", s.handlers.UpdateItem)
		v1.DELETE("/orders/:id/items/:itemId", s.handlers.RemoveItem)
		v1.PUT("/orders/:id/charges", s.handlers.ApplyCharges)
		v1.GET("/orders/:id/quote", s.handlers.QuotePricing)
		v1.POST("/orders/:id/cancel", s.handlers.CancelOrder)

		v1.POST("/orders/:id/payments", s.handlers.InitiatePayment)
		v1.GET("/orders/:id/payments", s.handlers.GetPayment)
		v1.POST("/orders/:id/payments/confirm", s.handlers.ConfirmPayment)
		v1.DELETE("/orders/:id/payments", s.handlers.CancelPayment)
		v1.PUT("/orders/:id/payments/details", s.handlers.UpdatePaymentDetails)
	}
}

// Router exposes the underlying engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts serving and blocks until the listener stops.
func (s *Server) Run() error {
	s.logger.Info("starting http server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.http.Shutdown(ctx)
}
