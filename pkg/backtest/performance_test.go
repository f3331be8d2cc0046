package backtest

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleSnapshots() []Snapshot {
	return []Snapshot{
		{Date: day(2025, 1, 6), Cash: 100_000, TotalValue: 100_000, DailyReturn: 0},
		{Date: day(2025, 1, 7), Cash: 0, StockValue: 110_000, TotalValue: 110_000, DailyReturn: 10},
		{Date: day(2025, 1, 8), Cash: 0, StockValue: 104_500, OptionsValue: 500, TotalValue: 105_000, DailyReturn: (105_000.0/110_000.0 - 1) * 100},
	}
}

func TestAnalyze(t *testing.T) {
	s, err := Analyze(100_000, sampleSnapshots())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if s.TradingDays != 3 {
		t.Fatalf("trading days = %d, want 3", s.TradingDays)
	}
	if math.Abs(s.TotalReturnPct-5) > 1e-9 {
		t.Fatalf("total return = %v, want 5", s.TotalReturnPct)
	}
	if math.Abs(s.StockSharePct-104.5) > 1e-9 {
		t.Fatalf("stock share = %v, want 104.5", s.StockSharePct)
	}
	if math.Abs(s.OptionsSharePct-0.5) > 1e-9 {
		t.Fatalf("options share = %v, want 0.5", s.OptionsSharePct)
	}
	if s.BestDayReturn != 10 {
		t.Fatalf("best day = %v, want 10", s.BestDayReturn)
	}
	if s.WorstDayReturn >= 0 {
		t.Fatalf("worst day = %v, want negative", s.WorstDayReturn)
	}
	if !strings.Contains(s.String(), "Initial capital") {
		t.Fatalf("summary text missing header:\n%s", s.String())
	}
}

func TestAnalyzeEmptySeries(t *testing.T) {
	if _, err := Analyze(100_000, nil); err == nil {
		t.Fatal("expected an error for an empty snapshot series")
	}
}

func TestRenderChartWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backtest_results.png")
	if err := RenderChart(sampleSnapshots(), path); err != nil {
		t.Fatalf("RenderChart: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Fatalf("output is not a PNG (%d bytes)", len(data))
	}
}

func TestRenderChartNeedsTwoPoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")
	if err := RenderChart(sampleSnapshots()[:1], path); err == nil {
		t.Fatal("expected an error for a single snapshot")
	}
}
