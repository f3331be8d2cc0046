package agents

import (
	"testing"
	"time"

	"quantfund/pkg/prices"
)

func barsFromCloses(closes []float64) []prices.Bar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]prices.Bar, len(closes))
	for i, c := range closes {
		bars[i] = prices.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return bars
}

func TestTechnicalsBullishOnStrongRally(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)*2 // ~10% over the last 5 days
	}
	v := Technicals(barsFromCloses(closes))
	if v.Signal != SignalBullish {
		t.Fatalf("signal = %q, want bullish (reasoning: %s)", v.Signal, v.Reasoning)
	}
	if v.Confidence <= 0 || v.Confidence > 1 {
		t.Fatalf("confidence = %v, want in (0,1]", v.Confidence)
	}
}

func TestTechnicalsBearishOnSelloff(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 200 - float64(i)*3
	}
	v := Technicals(barsFromCloses(closes))
	if v.Signal != SignalBearish {
		t.Fatalf("signal = %q, want bearish (reasoning: %s)", v.Signal, v.Reasoning)
	}
}

func TestTechnicalsNeutralOnFlatPrices(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 150
	}
	v := Technicals(barsFromCloses(closes))
	if v.Signal != SignalNeutral {
		t.Fatalf("signal = %q, want neutral", v.Signal)
	}
	if v.Confidence != 0.5 {
		t.Fatalf("confidence = %v, want 0.5", v.Confidence)
	}
}

func TestTechnicalsShortHistory(t *testing.T) {
	v := Technicals(barsFromCloses([]float64{100, 101, 102}))
	if v.Signal != SignalNeutral || v.Confidence != 0 {
		t.Fatalf("got %q/%v, want neutral with zero confidence", v.Signal, v.Confidence)
	}
}

func TestRSIBounds(t *testing.T) {
	up := make([]float64, 20)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	if got := rsi(up, 14); got != 100 {
		t.Fatalf("rsi of monotonic gains = %v, want 100", got)
	}
	if got := rsi([]float64{100, 101}, 14); got != 50 {
		t.Fatalf("rsi with short history = %v, want 50", got)
	}
}
