// Package decision wraps an external trading-decision agent behind a
// rate-limited client and normalizes its raw responses into structured
// decision records.
package decision

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrRateLimited signals that the agent rejected a call for rate-limit
// reasons. Agent implementations wrap it so the client can apply the fixed
// cooldown instead of the normal retry backoff.
var ErrRateLimited = errors.New("agent rate limited")

// Action is the stock-side instruction of a decision.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Signal is a single analyst agent's vote.
type Signal struct {
	Signal     string  `json:"signal"`
	Confidence float64 `json:"confidence"`
}

// Record is the normalized output of the decision agent. The degraded path
// (parse failure, exhausted retries) returns SafeDefault rather than an
// error so a backtest day never crashes on a bad response.
type Record struct {
	Action          Action
	Quantity        int
	OptionsStrategy *Strategy
	AgentSignals    map[string]Signal
}

// SafeDefault is the fallback decision: hold, zero quantity, no signals.
func SafeDefault() Record {
	return Record{
		Action:       ActionHold,
		Quantity:     0,
		AgentSignals: map[string]Signal{},
	}
}

// StrategyKind tags the shape of an options recommendation. It is decided
// once when the response is normalized, not re-inferred at each consumer.
type StrategyKind int

const (
	KindNone StrategyKind = iota
	KindSingleLeg
	KindSpread
)

// Strategy is an options strategy recommendation as emitted by the agent.
type Strategy struct {
	Name           string         `json:"strategy"`
	Rationale      string         `json:"rationale,omitempty"`
	Implementation Implementation `json:"implementation"`
}

// Implementation carries the strike/expiration/premium details. Spread
// strategies populate BuyLeg and SellLeg; single-leg strategies populate the
// top-level strike and expiration fields.
type Implementation struct {
	BuyLeg                *Leg               `json:"buy_leg,omitempty"`
	SellLeg               *Leg               `json:"sell_leg,omitempty"`
	Strikes               map[string]float64 `json:"strikes,omitempty"`
	RecommendedStrike     float64            `json:"recommended_strike,omitempty"`
	RecommendedExpiration string             `json:"recommended_expiration,omitempty"`
	Premium               *Premium           `json:"premium,omitempty"`
	MaxProfit             float64            `json:"max_profit,omitempty"`
	MaxLoss               float64            `json:"max_loss,omitempty"`
	BreakEven             float64            `json:"break_even,omitempty"`
}

// Leg is one side of a spread.
type Leg struct {
	Type                  string             `json:"type"`
	Strikes               map[string]float64 `json:"strikes,omitempty"`
	RecommendedStrike     float64            `json:"recommended_strike"`
	RecommendedExpiration string             `json:"recommended_expiration"`
	Premium               *Premium           `json:"premium,omitempty"`
}

// Premium holds the agent's premium guidance per 100-share contract.
type Premium struct {
	TargetPremium float64 `json:"target_premium"`
	MaxPremium    float64 `json:"max_premium,omitempty"`
}

// Kind classifies the strategy shape. Sentinel "No strategy recommended"
// names and empty implementations classify as KindNone.
func (s *Strategy) Kind() StrategyKind {
	if s == nil || s.Name == "" || strings.HasPrefix(strings.ToLower(s.Name), "no ") {
		return KindNone
	}
	impl := s.Implementation
	if impl.BuyLeg != nil && impl.SellLeg != nil {
		return KindSpread
	}
	if len(impl.Strikes) > 0 || impl.RecommendedStrike > 0 {
		return KindSingleLeg
	}
	return KindNone
}

// PortfolioSnapshot is the read-only view of the portfolio handed to the
// agent on every call.
type PortfolioSnapshot struct {
	Cash    float64         `json:"cash"`
	Shares  int             `json:"stock"`
	Options []OptionSummary `json:"options"`
}

// OptionSummary summarizes one open option position for the agent.
type OptionSummary struct {
	Type       string  `json:"type"`
	Strike     float64 `json:"strike"`
	Contracts  int     `json:"contracts"`
	ExpiryDate string  `json:"expiry_date"`
}

// Request carries everything the agent needs for one decision.
type Request struct {
	Ticker    string
	StartDate time.Time
	EndDate   time.Time
	Portfolio PortfolioSnapshot
	NewsCount int
}

// Agent is the external decision-making collaborator. It returns the raw
// response, which may be a JSON object string, optionally fenced in markdown
// code blocks.
type Agent interface {
	Decide(ctx context.Context, req Request) (string, error)
}

// AgentFunc adapts a function to the Agent interface.
type AgentFunc func(ctx context.Context, req Request) (string, error)

func (f AgentFunc) Decide(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
