package carrier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smsrelay/internal/config"
	"smsrelay/internal/logger"
)

func TestHTTPCarrier_Send(t *testing.T) {
	var received sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newHTTPCarrier(config.CarrierConfig{
		Type:   "http",
		URL:    server.URL,
		APIKey: "test-key",
	}, logger.NopLogger())

	err := c.Send(context.Background(), "+15551234567", "hello")
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", received.PhoneNumber)
	assert.Equal(t, "hello", received.Message)
}

func TestHTTPCarrier_Send_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid recipient", http.StatusBadRequest)
	}))
	defer server.Close()

	c := newHTTPCarrier(config.CarrierConfig{Type: "http", URL: server.URL}, logger.NopLogger())

	err := c.Send(context.Background(), "+15551234567", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestHTTPCarrier_Send_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := newHTTPCarrier(config.CarrierConfig{Type: "http", URL: server.URL}, logger.NopLogger())
	c.client.Timeout = 50 * time.Millisecond

	err := c.Send(context.Background(), "+15551234567", "hello")
	require.Error(t, err)
}

func TestNoopCarrier_Send(t *testing.T) {
	c := &noopCarrier{logger: logger.NopLogger()}
	assert.NoError(t, c.Send(context.Background(), "+15551234567", "hello"))
}

func TestNew_CarrierTypes(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.CarrierConfig
		wantError bool
	}{
		{
			name: "noop carrier",
			cfg:  config.CarrierConfig{Type: "noop"},
		},
		{
			name: "default is noop",
			cfg:  config.CarrierConfig{},
		},
		{
			name: "http carrier",
			cfg:  config.CarrierConfig{Type: "http", URL: "http://localhost:9999/send"},
		},
		{
			name:      "http carrier requires url",
			cfg:       config.CarrierConfig{Type: "http"},
			wantError: true,
		},
		{
			name:      "unknown type",
			cfg:       config.CarrierConfig{Type: "smtp"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg, config.CircuitBreakerConfig{}, logger.NopLogger())
			if tt.wantError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, c)
			}
		})
	}
}

func TestBreakerCarrier_OpensAfterFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	c, err := New(
		config.CarrierConfig{Type: "http", URL: server.URL},
		config.CircuitBreakerConfig{
			Enabled:      true,
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      time.Minute,
			FailureRatio: 0.5,
			MinRequests:  3,
		},
		logger.NopLogger(),
	)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		assert.Error(t, c.Send(context.Background(), "+15551234567", "hello"))
	}

	bc, ok := c.(*breakerCarrier)
	require.True(t, ok)
	assert.True(t, bc.cb.IsOpen())
}
