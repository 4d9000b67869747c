package upstox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/JittoJoseph/ZT3-Stock-Screener/internal/contracts"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/httputil"
)

// candleResponse is the wire shape of the historical-candle endpoint.
// Each candle row is [timestamp, open, high, low, close, volume, open_interest].
type candleResponse struct {
	Status string `json:"status"`
	Data   struct {
		Candles [][]interface{} `json:"candles"`
	} `json:"data"`
}

// GetBars fetches historical daily candles for one instrument key.
// Upstox returns candles newest-first; the series is re-sorted ascending to
// satisfy the BarSource contract.
func (c *Client) GetBars(ctx context.Context, instrumentKey string, interval string, dateRange contracts.DateRange) (contracts.Series, error) {
	endpoint := fmt.Sprintf("%s/%s/historical-candle/%s/%s/%s/%s",
		c.baseURL,
		c.apiVersion,
		url.PathEscape(instrumentKey),
		interval,
		dateRange.To.Format("2006-01-02"),
		dateRange.From.Format("2006-01-02"),
	)

	resp, err := c.httpClient.Get(ctx, endpoint, c.headers())
	if err != nil {
		return nil, fmt.Errorf("candle request failed: %w", err)
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read candle response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to parsing
	case http.StatusTooManyRequests:
		return nil, contracts.ErrRateLimited
	case http.StatusNotFound, http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", contracts.ErrNotFound, instrumentKey)
	default:
		return nil, fmt.Errorf("unexpected status %d from candle endpoint", resp.StatusCode)
	}

	series, err := parseCandles(body)
	if err != nil {
		return nil, fmt.Errorf("parse candles for %s: %w", instrumentKey, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"instrument": instrumentKey,
		"bars":       series.Len(),
	}).Debug("Fetched candles")

	return series, nil
}

// parseCandles decodes the candle array payload into an ascending series.
func parseCandles(body []byte) (contracts.Series, error) {
	var cr candleResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if cr.Status != "success" {
		return nil, fmt.Errorf("provider status %q", cr.Status)
	}

	series := make(contracts.Series, 0, len(cr.Data.Candles))
	for i, row := range cr.Data.Candles {
		if len(row) < 6 {
			return nil, fmt.Errorf("candle row %d has %d fields, want at least 6", i, len(row))
		}

		tsStr, ok := row[0].(string)
		if !ok {
			return nil, fmt.Errorf("candle row %d has non-string timestamp", i)
		}

		ts, err := time.Parse(time.RFC3339, tsStr)
		if err != nil {
			return nil, fmt.Errorf("candle row %d timestamp: %w", i, err)
		}

		series = append(series, contracts.Bar{
			Timestamp: ts,
			Open:      toFloat(row[1]),
			High:      toFloat(row[2]),
			Low:       toFloat(row[3]),
			Close:     toFloat(row[4]),
			Volume:    toInt64(row[5]),
		})
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Timestamp.Before(series[j].Timestamp)
	})

	return series, nil
}

func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case json.Number:
		f, _ := val.Float64()
		return f
	default:
		return 0
	}
}

func toInt64(v interface{}) int64 {
	switch val := v.(type) {
	case float64:
		return int64(val)
	case int64:
		return val
	case json.Number:
		n, _ := val.Int64()
		return n
	default:
		return 0
	}
}
