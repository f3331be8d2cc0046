package agents

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"quantfund/pkg/decision"
	"quantfund/pkg/news"
	"quantfund/pkg/prices"
)

type fakeNews struct{ headlines []news.Headline }

func (f *fakeNews) Headlines(_ context.Context, _ string, limit int) ([]news.Headline, error) {
	if limit < len(f.headlines) {
		return f.headlines[:limit], nil
	}
	return f.headlines, nil
}

type fakeFundamentals struct {
	metrics    Metrics
	financials Financials
}

func (f *fakeFundamentals) Fundamentals(_ context.Context, _ string) (Metrics, Financials, error) {
	return f.metrics, f.financials, nil
}

func testRequest(start, end time.Time) decision.Request {
	return decision.Request{
		Ticker:    "ACME",
		StartDate: start,
		EndDate:   end,
		Portfolio: decision.PortfolioSnapshot{Cash: 100_000},
		NewsCount: 5,
	}
}

// 80 mostly-flat bars with a pop over the final week, closing at 100.
func momentumCloses() []float64 {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 96
	}
	for i := 74; i < 80; i++ {
		closes[i] = 96 + float64(i-73)*(4.0/6.0)
	}
	closes[79] = 100
	return closes
}

func TestHedgeFundDecisionRoundTrips(t *testing.T) {
	bars := barsFromCloses(momentumCloses())
	hf := NewHedgeFund(prices.NewStaticProvider(bars), zap.NewNop())
	hf.News = &fakeNews{headlines: headlines("Acme beats estimates, shares surge")}

	start := bars[0].Date
	end := bars[len(bars)-1].Date
	raw, err := hf.Decide(context.Background(), testRequest(start, end))
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}

	rec := decision.Normalize(raw, zap.NewNop())
	if rec.Action != decision.ActionBuy && rec.Action != decision.ActionSell && rec.Action != decision.ActionHold {
		t.Fatalf("action = %q", rec.Action)
	}
	if len(rec.AgentSignals) < 5 {
		t.Fatalf("got %d agent signals, want at least 5", len(rec.AgentSignals))
	}
	for name, sig := range rec.AgentSignals {
		if sig.Confidence < 0 || sig.Confidence > 1 {
			t.Fatalf("agent %s confidence = %v, want [0,1]", name, sig.Confidence)
		}
	}
	if rec.OptionsStrategy == nil {
		t.Fatal("missing options strategy")
	}
}

func TestHedgeFundBuysWhenUndervaluedAndBullish(t *testing.T) {
	bars := barsFromCloses(momentumCloses())
	hf := NewHedgeFund(prices.NewStaticProvider(bars), zap.NewNop())
	hf.News = &fakeNews{headlines: headlines("Acme beats estimates, shares surge")}
	hf.Fundamentals = &fakeFundamentals{
		metrics: Metrics{
			ReturnOnEquity: 0.25, NetMargin: 0.25, OperatingMargin: 0.20,
			RevenueGrowth: 0.15, EarningsGrowth: 0.12,
			CurrentRatio: 2.0, DebtToEquity: 0.3,
			FreeCashFlowPerShare: 5, EarningsPerShare: 5.5,
			PriceToEarnings: 18, PriceToBook: 2.5, PriceToSales: 3,
		},
		// Deep undervaluation versus the 80k market cap at price 100.
		financials: Financials{
			NetIncome: 13_300, Depreciation: 1_000, CapEx: 1_500,
			FreeCashFlow: 7_000, EarningsGrowth: 0.10, MarketCap: 80_000,
		},
	}

	start := bars[0].Date
	end := bars[len(bars)-1].Date
	raw, err := hf.Decide(context.Background(), testRequest(start, end))
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}

	rec := decision.Normalize(raw, zap.NewNop())
	if rec.Action != decision.ActionBuy {
		t.Fatalf("action = %q, want buy\nraw: %s", rec.Action, raw)
	}
	if rec.Quantity <= 0 {
		t.Fatalf("quantity = %d, want > 0", rec.Quantity)
	}
	// The risk manager caps the position well below an all-in buy.
	if rec.Quantity > 1000 {
		t.Fatalf("quantity = %d, exceeds cash/price", rec.Quantity)
	}
}

func TestHedgeFundNoHistoryIsAnError(t *testing.T) {
	hf := NewHedgeFund(prices.NewStaticProvider(nil), zap.NewNop())
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if _, err := hf.Decide(context.Background(), testRequest(start, start.AddDate(0, 0, 30))); err == nil {
		t.Fatal("expected error for empty price history")
	}
}
