package erapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seonhu82/Dollar-Invest/src/clients/erapi"
	"github.com/seonhu82/Dollar-Invest/src/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *erapi.ERAPIServiceClient {
	cfg := &config.Config{}
	cfg.ExternalClients.ERAPI.BaseURL = baseURL
	return erapi.NewClient(cfg)
}

func TestGetLatest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v6/latest/USD", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"result": "success",
			"base_code": "USD",
			"time_last_update_unix": 1741000000,
			"rates": {"USD": 1, "KRW": 1350.25, "EUR": 0.92}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	latest, err := client.GetLatest(context.Background(), "USD")
	require.NoError(t, err)

	assert.Equal(t, "USD", latest.BaseCode)
	assert.Equal(t, 1350.25, latest.Rates["KRW"])
	assert.Equal(t, 0.92, latest.Rates["EUR"])
}

func TestGetLatestErrorResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result": "error", "error-type": "unsupported-code"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetLatest(context.Background(), "USD")
	assert.ErrorContains(t, err, `result "error"`)
}

func TestGetLatestHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetLatest(context.Background(), "USD")
	assert.ErrorContains(t, err, "status 429")
}
