// Package llm talks to a remote decision-agent service over HTTP. The
// service runs the full analyst pipeline server-side and returns the
// decision JSON, which the decision client normalizes.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"quantfund/pkg/decision"
)

// HTTPError carries the status of a failed agent call.
type HTTPError struct {
	StatusCode int
	Status     string
	Err        error
}

func NewHTTPError(statusCode int, err error) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Err:        err,
	}
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Status
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Config locates and authenticates the agent service.
type Config struct {
	ApiUrl  string
	ApiKey  string
	Timeout time.Duration
}

// Client is a decision.Agent backed by the remote service.
type Client struct {
	Config *Config
	Client *http.Client
	Logger *zap.Logger
}

// NewClient builds a Client. The default timeout is generous because the
// service fans out to language-model agents.
func NewClient(config *Config, logger *zap.Logger) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 300 * time.Second
	}
	return &Client{
		Config: config,
		Client: &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

type decideRequest struct {
	Ticker    string                     `json:"ticker"`
	StartDate string                     `json:"start_date"`
	EndDate   string                     `json:"end_date"`
	Portfolio decision.PortfolioSnapshot `json:"portfolio"`
	NumOfNews int                        `json:"num_of_news"`
}

type decideResponse struct {
	Response string `json:"response"`
}

// Decide posts the decision request and returns the raw response string. A
// 429 from the service maps to decision.ErrRateLimited so the caller
// applies its cooldown instead of burning a retry attempt.
func (c *Client) Decide(ctx context.Context, req decision.Request) (string, error) {
	body, err := json.Marshal(decideRequest{
		Ticker:    req.Ticker,
		StartDate: req.StartDate.Format("2006-01-02"),
		EndDate:   req.EndDate.Format("2006-01-02"),
		Portfolio: req.Portfolio,
		NumOfNews: req.NewsCount,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling decide request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Config.ApiUrl+"/v1/decide", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building decide request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.Config.ApiKey)

	res, err := c.Client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling decision agent: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		c.Logger.Warn("decision agent rate limited the call")
		return "", fmt.Errorf("agent returned 429: %w", decision.ErrRateLimited)
	}
	if res.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		c.Logger.Warn("decision agent call failed",
			zap.Int("status", res.StatusCode),
			zap.ByteString("body", payload))
		return "", NewHTTPError(res.StatusCode, nil)
	}

	var resp decideResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("decoding agent response: %w", err)
	}
	return resp.Response, nil
}
