package agents

import (
	"testing"

	"github.com/shopspring/decimal"

	"quantfund/pkg/decision"
)

func TestAssessRiskCalmMarketAllowsFullLimit(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + float64(i%2)*0.1 // near-zero volatility
	}
	port := decision.PortfolioSnapshot{Cash: 100_000}
	votes := map[string]Verdict{
		"a": {Signal: SignalBullish, Confidence: 0.9},
		"b": {Signal: SignalBullish, Confidence: 0.8},
	}

	r := AssessRisk(barsFromCloses(closes), port, votes)
	if r.Score >= 5 {
		t.Fatalf("score = %v, want < 5 for a calm market (reasoning: %s)", r.Score, r.Reasoning)
	}
	if r.Action != "normal" {
		t.Fatalf("action = %q, want normal", r.Action)
	}
	// No position, low score: the full 25% limit applies.
	want := decimal.NewFromInt(25_000)
	if !r.MaxPositionValue.Equal(want) {
		t.Fatalf("max position = %s, want %s", r.MaxPositionValue, want)
	}
}

func TestAssessRiskConcentratedPositionReduces(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		// Volatile tape with a deep drawdown midway.
		switch {
		case i < 40:
			closes[i] = 100 + float64(i)*2
		default:
			closes[i] = 180 - float64(i-40)*3
		}
	}
	// Nearly everything in the stock.
	port := decision.PortfolioSnapshot{Cash: 1_000, Shares: 2_000}
	votes := map[string]Verdict{
		"a": {Signal: SignalBullish, Confidence: 0.2},
		"b": {Signal: SignalBearish, Confidence: 0.3},
		"c": {Signal: SignalNeutral, Confidence: 0.4},
	}

	r := AssessRisk(barsFromCloses(closes), port, votes)
	if r.Action != "reduce" {
		t.Fatalf("action = %q (score %v, reasoning: %s), want reduce", r.Action, r.Score, r.Reasoning)
	}
}

func TestAssessRiskNoHistory(t *testing.T) {
	r := AssessRisk(nil, decision.PortfolioSnapshot{Cash: 100_000}, nil)
	if r.Action != "hold" {
		t.Fatalf("action = %q, want hold when blind", r.Action)
	}
	if !r.MaxPositionValue.IsZero() {
		t.Fatalf("max position = %s, want 0", r.MaxPositionValue)
	}
}

func TestSignalRiskScoreDisagreement(t *testing.T) {
	agree := signalRiskScore(map[string]Verdict{
		"a": {Signal: SignalBullish, Confidence: 0.9},
		"b": {Signal: SignalBullish, Confidence: 0.9},
	})
	split := signalRiskScore(map[string]Verdict{
		"a": {Signal: SignalBullish, Confidence: 0.9},
		"b": {Signal: SignalBearish, Confidence: 0.9},
		"c": {Signal: SignalNeutral, Confidence: 0.9},
	})
	if agree >= split {
		t.Fatalf("agreement scored %v, disagreement %v; want disagreement riskier", agree, split)
	}
}
