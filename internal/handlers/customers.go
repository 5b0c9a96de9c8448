package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aweb-sistemas/vendas-orders-service/internal/models"
)

// CreateCustomer handles POST /api/v1/customers
func (h *Handlers) CreateCustomer(c *gin.Context) {
	var req models.Customer
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.ID = 0

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// GetCustomer handles GET /api/v1/customers/:id
func (h *Handlers) GetCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

// ListCustomers handles GET /api/v1/customers. An optional ?email= filter
// looks up a single customer by email.
func (h *Handlers) ListCustomers(c *gin.Context) {
	if email := c.Query("email"); email != "" {
		customer, err := h.customerService.GetCustomerByEmail(c.Request.Context(), email)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, []*models.Customer{customer})
		return
	}

	customers, err := h.customerService.ListCustomers(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, customers)
}
