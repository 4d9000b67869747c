package upstox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/contracts"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/config"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/logger"
)

const candlePayload = `{
	"status": "success",
	"data": {
		"candles": [
			["2026-01-07T00:00:00+05:30", 102.5, 104.0, 101.0, 103.2, 250000, 0],
			["2026-01-06T00:00:00+05:30", 101.0, 103.0, 100.5, 102.5, 120000, 0],
			["2026-01-05T00:00:00+05:30", 100.0, 102.0, 99.5, 101.0, 110000, 0]
		]
	}
}`

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "json",
		Upstox: config.UpstoxConfig{
			BaseURL:     serverURL,
			APIVersion:  "v2",
			AccessToken: "test-token",
		},
	}
	return New(cfg, logger.New(cfg))
}

func TestGetBars(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Contains(t, r.URL.Path, "/v2/historical-candle/")
		assert.Contains(t, r.URL.Path, "/day/")
		w.Write([]byte(candlePayload))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	series, err := client.GetBars(context.Background(), "NSE_EQ|INE002A01018", "day", contracts.LastNDays(10))

	require.NoError(t, err)
	require.Equal(t, 3, series.Len())

	// Provider sends newest-first; contract requires ascending order
	require.NoError(t, series.Validate())
	assert.Equal(t, 101.0, series[0].Close)
	assert.Equal(t, 103.2, series.Latest().Close)
	assert.Equal(t, int64(250000), series.Latest().Volume)
	assert.Equal(t, 104.0, series.Latest().High)
}

func TestGetBarsRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.GetBars(context.Background(), "NSE_EQ|INE002A01018", "day", contracts.LastNDays(10))

	assert.ErrorIs(t, err, contracts.ErrRateLimited)
}

func TestGetBarsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.GetBars(context.Background(), "NSE_EQ|BOGUS", "day", contracts.LastNDays(10))

	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestGetBarsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.GetBars(context.Background(), "NSE_EQ|INE002A01018", "day", contracts.LastNDays(10))

	require.Error(t, err)
	assert.NotErrorIs(t, err, contracts.ErrRateLimited)
	assert.NotErrorIs(t, err, contracts.ErrNotFound)
}

func TestParseCandlesErrorStatus(t *testing.T) {
	_, err := parseCandles([]byte(`{"status":"error","data":{"candles":[]}}`))
	assert.Error(t, err)
}

func TestParseCandlesShortRow(t *testing.T) {
	_, err := parseCandles([]byte(`{
		"status":"success",
		"data":{"candles":[["2026-01-05T00:00:00+05:30", 100.0]]}
	}`))
	assert.Error(t, err)
}

func TestParseCandlesEmpty(t *testing.T) {
	series, err := parseCandles([]byte(`{"status":"success","data":{"candles":[]}}`))
	require.NoError(t, err)
	assert.Equal(t, 0, series.Len())
}
