package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"condovia/internal/config"
	"condovia/internal/core/domain"
)

// GatewayService charges card payments through the external payment
// gateway. The charge happens before any local write, so a gateway
// failure never leaves a half-recorded payment behind.
//
// Without a configured endpoint the service runs in simulated mode and
// approves every charge with a generated reference.
type GatewayService struct {
	gatewayConfig config.GatewayConfig
	httpClient    *http.Client
}

type chargeRequest struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Reference string  `json:"reference"`
}

type chargeResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// NewGatewayService creates a new gateway service
func NewGatewayService(gatewayConfig config.GatewayConfig) *GatewayService {
	if gatewayConfig.Endpoint == "" {
		log.Println("⚠️ GATEWAY_ENDPOINT not set, card charges will be simulated")
	}
	return &GatewayService{
		gatewayConfig: gatewayConfig,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Charge submits a charge and returns the gateway transaction reference.
// Any transport or gateway-side failure maps to ErrGatewayUnavailable.
func (s *GatewayService) Charge(ctx context.Context, amount float64, reference string) (string, error) {
	if s.gatewayConfig.Endpoint == "" {
		ref := "SIM-" + uuid.New().String()
		log.Printf("💳 Simulated gateway charge of %.2f (ref %s)", amount, ref)
		return ref, nil
	}

	payload, err := json.Marshal(chargeRequest{
		Amount:    amount,
		Currency:  "USD",
		Reference: reference,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayConfig.Endpoint+"/charges", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.gatewayConfig.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ Gateway request failed: %v", err)
		return "", domain.ErrGatewayUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("❌ Gateway returned status %d", resp.StatusCode)
		return "", domain.ErrGatewayUnavailable
	}

	var charge chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&charge); err != nil {
		return "", domain.ErrGatewayUnavailable
	}
	if charge.TransactionID == "" {
		return "", fmt.Errorf("gateway approved charge without a transaction id")
	}
	return charge.TransactionID, nil
}
