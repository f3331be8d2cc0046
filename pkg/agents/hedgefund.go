package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"quantfund/pkg/decision"
	"quantfund/pkg/news"
	"quantfund/pkg/prices"
)

// FundamentalsSource supplies fundamental metrics and financial line items
// for a ticker. Optional; without one the fundamentals and valuation
// analysts vote neutral.
type FundamentalsSource interface {
	Fundamentals(ctx context.Context, ticker string) (Metrics, Financials, error)
}

// HedgeFund runs the full analyst pipeline locally and synthesizes the
// votes into one decision, so backtests can run without a remote agent.
// It satisfies the decision agent contract: the response is the decision
// JSON as a raw string, normalized downstream like any remote response.
type HedgeFund struct {
	Prices       prices.Provider
	News         news.Fetcher       // optional
	Fundamentals FundamentalsSource // optional
	Logger       *zap.Logger
}

func NewHedgeFund(provider prices.Provider, logger *zap.Logger) *HedgeFund {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HedgeFund{Prices: provider, Logger: logger}
}

type agentSignal struct {
	Agent      string `json:"agent"`
	Signal     string `json:"signal"`
	Confidence string `json:"confidence"`
}

type hedgeFundDecision struct {
	Action          string             `json:"action"`
	Quantity        int                `json:"quantity"`
	Confidence      float64            `json:"confidence"`
	OptionsStrategy *decision.Strategy `json:"options_strategy,omitempty"`
	AgentSignals    []agentSignal      `json:"agent_signals"`
	PriceTargets    map[string]string  `json:"price_targets"`
	Reasoning       map[string]string  `json:"reasoning"`
}

// Decide analyzes the ticker over [StartDate, EndDate] and returns the
// decision JSON. Only a missing price history is an error; every analyst
// degrades to a neutral vote on its own bad inputs.
func (h *HedgeFund) Decide(ctx context.Context, req decision.Request) (string, error) {
	bars, err := h.Prices.History(ctx, req.Ticker, req.StartDate, req.EndDate)
	if err != nil {
		return "", fmt.Errorf("price history for %s: %w", req.Ticker, err)
	}
	if len(bars) == 0 {
		return "", fmt.Errorf("price history for %s: %w", req.Ticker, prices.ErrNoData)
	}
	price := bars[len(bars)-1].Close

	technical := Technicals(bars)
	sentiment := h.scoreSentiment(ctx, req)

	fundamental := neutralVerdict("no fundamentals source configured")
	var financials Financials
	if h.Fundamentals != nil {
		metrics, fin, err := h.Fundamentals.Fundamentals(ctx, req.Ticker)
		if err != nil {
			h.Logger.Warn("fundamentals unavailable", zap.String("ticker", req.Ticker), zap.Error(err))
		} else {
			fundamental = Fundamentals(metrics)
			financials = fin
		}
	}
	valuation, targets := Valuation(financials, price)

	votes := map[string]Verdict{
		"technical_analyst_agent": technical,
		"sentiment_agent":         sentiment,
		"fundamentals_agent":      fundamental,
		"valuation_agent":         valuation,
	}

	risk := AssessRisk(bars, req.Portfolio, votes)
	strategy := AdviseOptions(price, targets, technical, annualizedVolatility(closingPrices(bars)))

	out := h.synthesize(price, targets, votes, risk, req.Portfolio)
	out.OptionsStrategy = strategy

	raw, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal decision: %w", err)
	}
	return string(raw), nil
}

func (h *HedgeFund) scoreSentiment(ctx context.Context, req decision.Request) Verdict {
	if h.News == nil {
		return neutralVerdict("no news source configured")
	}
	headlines, err := h.News.Headlines(ctx, req.Ticker, req.NewsCount)
	if err != nil {
		h.Logger.Warn("news fetch failed", zap.String("ticker", req.Ticker), zap.Error(err))
		headlines = nil
	}
	return Sentiment(headlines)
}

// synthesize applies the portfolio-manager rules: the price level relative
// to the valuation targets decides the action, the analyst consensus gates
// entries and sets confidence, and the risk manager's position limit caps
// the buy quantity.
func (h *HedgeFund) synthesize(price float64, targets PriceTargets, votes map[string]Verdict, risk RiskAssessment, port decision.PortfolioSnapshot) hedgeFundDecision {
	signals := make([]agentSignal, 0, len(votes)+2)
	for name, v := range votes {
		signals = append(signals, agentSignal{
			Agent:      name,
			Signal:     v.Signal,
			Confidence: fmt.Sprintf("%.0f%%", v.Confidence*100),
		})
	}

	riskSignal := SignalNeutral
	if risk.Action == "reduce" {
		riskSignal = SignalBearish
	}
	signals = append(signals, agentSignal{
		Agent:      "risk_management_agent",
		Signal:     riskSignal,
		Confidence: fmt.Sprintf("%.0f%%", risk.Confidence*100),
	})

	// The price targets themselves cast a vote, weighted by the gap to
	// fair value.
	gap := 0.0
	if price > 0 {
		gap = (targets.FairValue - price) / price * 100
	}
	valuationVote := agentSignal{Agent: "valuation_analysis", Signal: SignalNeutral, Confidence: "50%"}
	switch {
	case price < targets.BuyTarget:
		valuationVote.Signal = SignalBullish
		valuationVote.Confidence = fmt.Sprintf("%.0f%%", math.Min(math.Abs(gap), 50))
	case price > targets.SellTarget:
		valuationVote.Signal = SignalBearish
		valuationVote.Confidence = fmt.Sprintf("%.0f%%", math.Min(math.Abs(gap), 50))
	}
	signals = append(signals, valuationVote)

	bullish, bearish, neutral := 0, 0, 0
	for _, s := range signals {
		switch s.Signal {
		case SignalBullish:
			bullish++
		case SignalBearish:
			bearish++
		default:
			neutral++
		}
	}

	out := hedgeFundDecision{
		Action:       string(decision.ActionHold),
		AgentSignals: signals,
		PriceTargets: map[string]string{
			"current_price": fmt.Sprintf("$%.2f", price),
			"fair_value":    fmt.Sprintf("$%.2f", targets.FairValue),
			"buy_target":    fmt.Sprintf("$%.2f", targets.BuyTarget),
			"sell_target":   fmt.Sprintf("$%.2f", targets.SellTarget),
		},
		Reasoning: map[string]string{},
	}

	switch {
	case price > targets.SellTarget:
		if port.Shares > 0 {
			out.Action = string(decision.ActionSell)
			out.Quantity = port.Shares
			out.Confidence = clamp(0.7+float64(bearish)*0.1, 0, 1)
			out.Reasoning["summary"] = fmt.Sprintf("price ($%.2f) above sell target ($%.2f)", price, targets.SellTarget)
		} else {
			out.Confidence = 0.6
			out.Reasoning["summary"] = "no position to sell, price above sell target - avoid new entries"
		}
	case price < targets.BuyTarget:
		if bullish >= bearish && port.Cash > 0 && price > 0 {
			out.Action = string(decision.ActionBuy)
			out.Quantity = h.buyQuantity(price, port, risk)
			out.Confidence = clamp(0.6+float64(bullish)*0.1, 0, 1)
			out.Reasoning["summary"] = fmt.Sprintf("price ($%.2f) below buy target ($%.2f) with bullish signals", price, targets.BuyTarget)
		} else {
			out.Confidence = 0.5
			out.Reasoning["summary"] = fmt.Sprintf("price attractive but mixed signals (%d bearish vs %d bullish)", bearish, bullish)
		}
	default:
		out.Confidence = clamp(0.5+float64(maxInt(bullish, bearish))*0.1, 0, 1)
		out.Reasoning["summary"] = fmt.Sprintf("price ($%.2f) within fair value range ($%.2f - $%.2f)",
			price, targets.BuyTarget, targets.SellTarget)
	}

	out.Reasoning["technical_context"] = fmt.Sprintf("%d bullish, %d bearish, %d neutral signals", bullish, bearish, neutral)
	out.Reasoning["risk_factors"] = risk.Reasoning
	if out.Action == string(decision.ActionHold) {
		out.Quantity = 0
	}
	return out
}

// buyQuantity spends available cash, capped by the risk manager's maximum
// position value.
func (h *HedgeFund) buyQuantity(price float64, port decision.PortfolioSnapshot, risk RiskAssessment) int {
	qty := int(port.Cash / price)

	maxShares := risk.MaxPositionValue.Div(decimal.NewFromFloat(price)).IntPart()
	headroom := int(maxShares) - port.Shares
	if headroom < 0 {
		headroom = 0
	}
	if qty > headroom {
		qty = headroom
	}
	return qty
}
