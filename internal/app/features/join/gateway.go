// internal/app/features/join/gateway.go
package join

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ChargeRequest is the payment gateway's charge call. Amounts are cents.
type ChargeRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	Email       string `json:"email"`
	Reference   string `json:"reference"`
}

// ChargeResult is the gateway's answer.
type ChargeResult struct {
	Status        string `json:"status"` // "succeeded" or "declined"
	TransactionID string `json:"transactionId"`
	Message       string `json:"message,omitempty"`
}

// Gateway charges cards. Declared as an interface so tests can stub the
// external processor.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// HTTPGateway calls the card processor over its REST API.
type HTTPGateway struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewHTTPGateway(baseURL, apiKey string, logger *zap.Logger) *HTTPGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(20 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(apiKey)

	return &HTTPGateway{httpClient: client, logger: logger}
}

func (g *HTTPGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	g.logger.Info("charging card",
		zap.Int64("amount", req.Amount),
		zap.String("reference", req.Reference))

	var result ChargeResult
	resp, err := g.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/v1/charges")
	if err != nil {
		g.logger.Error("gateway call failed", zap.Error(err))
		return ChargeResult{}, fmt.Errorf("failed to call payment gateway: %w", err)
	}
	if resp.IsError() {
		g.logger.Error("gateway returned error",
			zap.Int("status_code", resp.StatusCode()))
		return ChargeResult{}, fmt.Errorf("payment gateway error: %s", resp.Status())
	}

	return result, nil
}
