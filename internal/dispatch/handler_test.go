package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smsrelay/internal/logger"
)

func setupRouter(f *dispatchFixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(f.service, logger.NopLogger()).RegisterRoutes(router)
	return router
}

func postSend(t *testing.T, router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/sms/send", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSendEndpoint_Delivered(t *testing.T) {
	f := newDispatchFixture()
	router := setupRouter(f)

	w := postSend(t, router, map[string]string{
		"phoneNumber": "+15551234567",
		"message":     "hello",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "SMS sent to +15551234567", resp["result"])
}

func TestSendEndpoint_Blocked(t *testing.T) {
	f := newDispatchFixture()
	require.NoError(t, f.repo.Set(context.Background(), "+15551234567"))
	router := setupRouter(f)

	w := postSend(t, router, map[string]string{
		"phoneNumber": "+15551234567",
		"message":     "hello",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Failed: phone number is blocked", resp["result"])
}

func TestSendEndpoint_Validation(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
	}{
		{
			name: "missing phone number",
			body: map[string]string{"message": "hello"},
		},
		{
			name: "missing message",
			body: map[string]string{"phoneNumber": "+15551234567"},
		},
		{
			name: "whitespace only",
			body: map[string]string{"phoneNumber": "   ", "message": "  "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDispatchFixture()
			router := setupRouter(f)

			w := postSend(t, router, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, 0, f.carrier.calls)
		})
	}
}

func TestSendEndpoint_GateUnavailable(t *testing.T) {
	f := newDispatchFixture()
	f.repo.err = assert.AnError
	router := setupRouter(f)

	w := postSend(t, router, map[string]string{
		"phoneNumber": "+15551234567",
		"message":     "hello",
	})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
