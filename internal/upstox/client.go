package upstox

import (
	"time"

	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/config"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/httputil"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/logger"
)

// Client talks to the Upstox v2 REST API. It assumes a ready access token;
// the daily OAuth login that produces the token happens outside this
// process.
//
// Client-level retry is disabled: rate-limit backoff for candle fetches is
// owned by internal/fetch.
type Client struct {
	baseURL    string
	apiVersion string
	token      string
	httpClient *httputil.Client
	logger     *logger.Logger
}

// New creates an Upstox API client
func New(cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		baseURL:    cfg.Upstox.BaseURL,
		apiVersion: cfg.Upstox.APIVersion,
		token:      cfg.Upstox.AccessToken,
		httpClient: httputil.New(log, 15*time.Second).DisableRetry(),
		logger:     log.WithField("module", "upstox"),
	}
}

// headers returns the auth headers for API calls
func (c *Client) headers() map[string]string {
	return map[string]string{
		"accept":        "application/json",
		"Authorization": "Bearer " + c.token,
	}
}
