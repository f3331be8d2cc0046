package backtest

import (
	"context"
	"os"
	"strings"
	"testing"

	"quantfund/pkg/decision"
	"quantfund/pkg/portfolio"
)

func TestRunLogLifecycle(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Ticker:         "TEST",
		StartDate:      day(2025, 1, 6),
		EndDate:        day(2025, 1, 10),
		InitialCapital: 100_000,
	}

	l, err := NewRunLog(dir, cfg)
	if err != nil {
		t.Fatalf("NewRunLog: %v", err)
	}
	if l.ID == "" {
		t.Fatal("missing run ID")
	}

	wrapped := l.WrapAgent(holdAgent())
	req := decision.Request{Ticker: "TEST", EndDate: day(2025, 1, 6)}
	if _, err := wrapped.Decide(context.Background(), req); err != nil {
		t.Fatalf("Decide: %v", err)
	}

	summary, err := Analyze(cfg.InitialCapital, sampleSnapshots())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	l.WriteSummary(summary, []portfolio.TradeRecord{{
		ID: "trade-1", Date: day(2025, 1, 6), Strategy: "long put",
		Contracts: 5, Price: 100, Cost: 1000, ExpiryDate: day(2025, 2, 5),
	}})
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"ticker:          TEST",
		"initial capital: 100000.00",
		`"action"`, // pretty-printed raw decision
		"Backtest summary",
		"long put",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("log missing %q:\n%s", want, content)
		}
	}

	if !strings.Contains(l.Path, "backtest_TEST_") || !strings.HasSuffix(l.Path, "_20250106-20250110.log") {
		t.Fatalf("unexpected log file name %q", l.Path)
	}
}
