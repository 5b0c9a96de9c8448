package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/aweb-sistemas/vendas-orders-service/internal/config"
	"github.com/aweb-sistemas/vendas-orders-service/internal/models"
)

// AuthorizationResult is the gateway's answer to a card authorization.
type AuthorizationResult struct {
	Authorized        bool   `json:"authorized"`
	ExternalReference string `json:"external_reference"`
	Reason            string `json:"reason,omitempty"`
}

// PaymentGatewayClient calls the external card-authorization gateway over
// HTTP.
type PaymentGatewayClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPaymentGatewayClient creates a new gateway client.
func NewPaymentGatewayClient(cfg config.GatewayConfig, logger *zap.Logger) *PaymentGatewayClient {
	return &PaymentGatewayClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("payment-gateway"),
	}
}

type authorizeRequest struct {
	OrderID int64  `json:"order_id"`
	Amount  string `json:"amount"`
	Method  string `json:"method"`
}

// Authorize asks the gateway to capture the given amount for the order. A
// declined authorization is not an error; transport and non-2xx failures are.
func (c *PaymentGatewayClient) Authorize(ctx context.Context, orderID int64, amount models.Money, method models.PaymentMethod) (*AuthorizationResult, error) {
	payload := authorizeRequest{
		OrderID: orderID,
		Amount:  amount.String(),
		Method:  string(method),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/api/v1/authorizations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("gateway_request_failed", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var result AuthorizationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	c.logger.Info("authorization_completed",
		zap.Int64("order_id", orderID),
		zap.Bool("authorized", result.Authorized),
		zap.String("external_reference", result.ExternalReference))
	return &result, nil
}
