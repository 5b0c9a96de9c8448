package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aweb-sistemas/vendas-orders-service/internal/models"
)

type initiatePaymentRequest struct {
	Method  models.PaymentMethod `json:"method"`
	Details string               `json:"details"`
}

// InitiatePayment handles POST /api/v1/orders/:id/payments. Card payments are
// captured synchronously through the gateway when auto-capture is on; other
// methods stay pending until a gateway event or an explicit confirmation.
func (h *Handlers) InitiatePayment(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()

	payment, err := h.paymentService.InitiatePayment(ctx, orderID, req.Method)
	if err != nil {
		handleError(c, err)
		return
	}

	if req.Details != "" {
		payment, err = h.paymentService.UpdateDetails(ctx, orderID, req.Details)
		if err != nil {
			handleError(c, err)
			return
		}
	}

	if h.autoCapture(payment) {
		result, err := h.gateway.Authorize(ctx, orderID, payment.FinalValue, payment.Method)
		if err != nil {
			// The payment stays pending; the async gateway event settles it.
			h.logger.Warn("auto_capture_unavailable",
				zap.Int64("order_id", orderID),
				zap.Error(err))
			c.JSON(http.StatusCreated, payment)
			return
		}

		payment, err = h.paymentService.ConfirmPayment(ctx, orderID, result.Authorized, result.ExternalReference, result.Reason)
		if err != nil {
			handleError(c, err)
			return
		}
	}

	c.JSON(http.StatusCreated, payment)
}

func (h *Handlers) autoCapture(payment *models.Payment) bool {
	return h.config.Features.EnableAutoCapture &&
		payment.Status == models.PaymentStatusPending &&
		payment.Method == models.PaymentMethodCreditCard
}

// GetPayment handles GET /api/v1/orders/:id/payments
func (h *Handlers) GetPayment(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), orderID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

type confirmPaymentRequest struct {
	Authorized        bool   `json:"authorized"`
	ExternalReference string `json:"external_reference"`
	Details           string `json:"details"`
}

// ConfirmPayment handles POST /api/v1/orders/:id/payments/confirm
func (h *Handlers) ConfirmPayment(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	payment, err := h.paymentService.ConfirmPayment(c.Request.Context(), orderID, req.Authorized, req.ExternalReference, req.Details)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// CancelPayment handles DELETE /api/v1/orders/:id/payments
func (h *Handlers) CancelPayment(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.paymentService.CancelPayment(c.Request.Context(), orderID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type paymentDetailsRequest struct {
	Details string `json:"details"`
}

// UpdatePaymentDetails handles PUT /api/v1/orders/:id/payments/details
func (h *Handlers) UpdatePaymentDetails(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req paymentDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	payment, err := h.paymentService.UpdateDetails(c.Request.Context(), orderID, req.Details)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}
