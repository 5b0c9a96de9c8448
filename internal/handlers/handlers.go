package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aweb-sistemas/vendas-orders-service/internal/clients"
	"github.com/aweb-sistemas/vendas-orders-service/internal/config"
	"github.com/aweb-sistemas/vendas-orders-service/internal/errs"
	"github.com/aweb-sistemas/vendas-orders-service/internal/models"
	"github.com/aweb-sistemas/vendas-orders-service/internal/service"
)

// CardAuthorizer captures card payments through the external gateway.
type CardAuthorizer interface {
	Authorize(ctx context.Context, orderID int64, amount models.Money, method models.PaymentMethod) (*clients.AuthorizationResult, error)
}

// Handlers holds all HTTP handlers for the orders service.
type Handlers struct {
	productService  *service.ProductService
	customerService *service.CustomerService
	orderService    *service.OrderService
	paymentService  *service.PaymentService
	gateway         CardAuthorizer
	config          *config.Config
	logger          *zap.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	productService *service.ProductService,
	customerService *service.CustomerService,
	orderService *service.OrderService,
	paymentService *service.PaymentService,
	gateway CardAuthorizer,
	cfg *config.Config,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		productService:  productService,
		customerService: customerService,
		orderService:    orderService,
		paymentService:  paymentService,
		gateway:         gateway,
		config:          cfg,
		logger:          logger.Named("handlers"),
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	if errors.Is(err, errs.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var validationErr *errs.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return
	}

	var stateErr *errs.StateError
	if errors.As(err, &stateErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  stateErr.Message,
			"entity": stateErr.Entity,
			"status": stateErr.Status,
		})
		return
	}

	var stockErr *errs.InsufficientStockError
	if errors.As(err, &stockErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":      stockErr.Error(),
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
		return
	}

	if errors.Is(err, errs.ErrEmptyOrder) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "order has no items"})
		return
	}

	if errors.Is(err, errs.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "concurrent update conflict",
			"retryable": errs.IsRetryable(err),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
