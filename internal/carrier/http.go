package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"smsrelay/internal/config"
	"smsrelay/internal/constants"
	"smsrelay/internal/logger"
	"smsrelay/pkg/metrics"
)

type httpCarrier struct {
	client *http.Client
	url    string
	apiKey string
	logger logger.Logger
}

func newHTTPCarrier(cfg config.CarrierConfig, log logger.Logger) *httpCarrier {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if cfg.TimeoutSeconds <= 0 {
		timeout = constants.DefaultCarrierTimeout
	}

	return &httpCarrier{
		client: &http.Client{Timeout: timeout},
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		logger: log,
	}
}

type sendRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
}

func (c *httpCarrier) Send(ctx context.Context, phoneNumber, message string) error {
	body, err := json.Marshal(sendRequest{
		PhoneNumber: phoneNumber,
		Message:     message,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal carrier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build carrier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.CarrierSendTotal.WithLabelValues("error").Inc()
		metrics.ObserveCarrierDuration(duration, "error")
		return fmt.Errorf("carrier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.CarrierSendTotal.WithLabelValues("rejected").Inc()
		metrics.ObserveCarrierDuration(duration, "rejected")
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("carrier rejected send: status %d: %s", resp.StatusCode, string(respBody))
	}

	metrics.CarrierSendTotal.WithLabelValues("ok").Inc()
	metrics.ObserveCarrierDuration(duration, "ok")
	c.logger.DebugwCtx(ctx, "Carrier accepted message",
		"phone_number", phoneNumber,
		"duration_ms", duration.Milliseconds(),
	)
	return nil
}
