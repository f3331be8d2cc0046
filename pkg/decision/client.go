package decision

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Config bounds how hard the client is allowed to hit the agent.
type Config struct {
	MaxCallsPerWindow int           // sliding-window call cap
	Window            time.Duration // sliding-window size
	MinSpacing        time.Duration // minimum gap between consecutive calls
	MaxAttempts       int           // attempts before degrading to hold
	BaseDelay         time.Duration // first retry backoff, doubled per attempt
	Cooldown          time.Duration // fixed wait after a rate-limit signal
}

// DefaultConfig matches the reference limits: 8 calls per rolling minute,
// 6 seconds between calls, 3 attempts with 1s/2s backoff, 60s cooldown.
func DefaultConfig() Config {
	return Config{
		MaxCallsPerWindow: 8,
		Window:            60 * time.Second,
		MinSpacing:        6 * time.Second,
		MaxAttempts:       3,
		BaseDelay:         time.Second,
		Cooldown:          60 * time.Second,
	}
}

// Client invokes the decision agent under the configured rate limits and
// normalizes whatever comes back. All waits are cooperative sleeps through
// the injected clock; the client owns its window counters and is not safe
// for concurrent use, matching the single-threaded simulation it serves.
type Client struct {
	agent  Agent
	cfg    Config
	clock  Clock
	logger *zap.Logger

	callCount   int
	windowStart time.Time
	lastCall    time.Time
}

// NewClient builds a Client. A nil clock means the system clock.
func NewClient(agent Agent, cfg Config, clock Clock, logger *zap.Logger) *Client {
	if clock == nil {
		clock = SystemClock()
	}
	return &Client{
		agent:       agent,
		cfg:         cfg,
		clock:       clock,
		logger:      logger,
		windowStart: clock.Now(),
	}
}

// GetDecision calls the agent and returns the normalized decision. It never
// returns an error: rate limits block, transient failures are retried with
// backoff, and exhausted retries degrade to SafeDefault.
func (c *Client) GetDecision(ctx context.Context, req Request) Record {
	attempt := 0
	for attempt < c.cfg.MaxAttempts {
		if ctx.Err() != nil {
			c.logger.Warn("decision call cancelled", zap.Error(ctx.Err()))
			return SafeDefault()
		}

		// Retried attempts count against the window too, so the cap is
		// re-checked before every call, not once per decision.
		c.waitForWindow()
		c.waitForSpacing()
		c.lastCall = c.clock.Now()
		c.callCount++

		raw, err := c.agent.Decide(ctx, req)
		if err == nil {
			return Normalize(raw, c.logger)
		}

		if errors.Is(err, ErrRateLimited) {
			// A rate-limit signal costs a cooldown, not an attempt.
			c.logger.Warn("agent rate limit hit, cooling down",
				zap.Duration("cooldown", c.cfg.Cooldown))
			c.clock.Sleep(c.cfg.Cooldown)
			c.callCount = 0
			c.windowStart = c.clock.Now()
			continue
		}

		attempt++
		c.logger.Warn("decision call failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.cfg.MaxAttempts),
			zap.Error(err))
		if attempt < c.cfg.MaxAttempts {
			c.clock.Sleep(c.cfg.BaseDelay << (attempt - 1))
		}
	}

	c.logger.Warn("decision retries exhausted, falling back to hold",
		zap.String("ticker", req.Ticker))
	return SafeDefault()
}

// waitForWindow blocks until the sliding window admits another call.
func (c *Client) waitForWindow() {
	now := c.clock.Now()
	if now.Sub(c.windowStart) >= c.cfg.Window {
		c.callCount = 0
		c.windowStart = now
		return
	}
	if c.callCount >= c.cfg.MaxCallsPerWindow {
		wait := c.cfg.Window - now.Sub(c.windowStart)
		if wait > 0 {
			c.logger.Info("call window cap reached, waiting",
				zap.Duration("wait", wait))
			c.clock.Sleep(wait)
		}
		c.callCount = 0
		c.windowStart = c.clock.Now()
	}
}

// waitForSpacing enforces the minimum gap between consecutive calls.
func (c *Client) waitForSpacing() {
	if c.lastCall.IsZero() {
		return
	}
	since := c.clock.Now().Sub(c.lastCall)
	if since < c.cfg.MinSpacing {
		c.clock.Sleep(c.cfg.MinSpacing - since)
	}
}
