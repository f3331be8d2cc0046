package backtest

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
)

// Summary is the cumulative result of a run, all returns relative to the
// initial capital.
type Summary struct {
	InitialCapital    float64
	FinalTotalValue   float64
	FinalCash         float64
	FinalStockValue   float64
	FinalOptionsValue float64

	TotalReturnPct   float64
	StockSharePct    float64 // final stock value as a share of initial capital
	OptionsSharePct  float64 // final options value as a share of initial capital
	TradingDays      int
	BestDayReturn    float64
	WorstDayReturn   float64
}

// Analyze reduces the snapshot series to a Summary. It never touches the
// portfolio; an empty series is an error the caller reports, not a crash.
func Analyze(initialCapital float64, snapshots []Snapshot) (Summary, error) {
	if len(snapshots) == 0 {
		return Summary{}, errors.New("no snapshots to analyze")
	}
	if initialCapital <= 0 {
		return Summary{}, fmt.Errorf("invalid initial capital %v", initialCapital)
	}

	last := snapshots[len(snapshots)-1]
	s := Summary{
		InitialCapital:    initialCapital,
		FinalTotalValue:   last.TotalValue,
		FinalCash:         last.Cash,
		FinalStockValue:   last.StockValue,
		FinalOptionsValue: last.OptionsValue,
		TotalReturnPct:    (last.TotalValue/initialCapital - 1) * 100,
		StockSharePct:     last.StockValue / initialCapital * 100,
		OptionsSharePct:   last.OptionsValue / initialCapital * 100,
		TradingDays:       len(snapshots),
	}

	s.BestDayReturn = snapshots[0].DailyReturn
	s.WorstDayReturn = snapshots[0].DailyReturn
	for _, snap := range snapshots[1:] {
		if snap.DailyReturn > s.BestDayReturn {
			s.BestDayReturn = snap.DailyReturn
		}
		if snap.DailyReturn < s.WorstDayReturn {
			s.WorstDayReturn = snap.DailyReturn
		}
	}
	return s, nil
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Backtest summary (%d trading days)\n", s.TradingDays)
	fmt.Fprintf(&b, "  Initial capital:  %14.2f\n", s.InitialCapital)
	fmt.Fprintf(&b, "  Final total:      %14.2f (%+.2f%%)\n", s.FinalTotalValue, s.TotalReturnPct)
	fmt.Fprintf(&b, "  Final cash:       %14.2f\n", s.FinalCash)
	fmt.Fprintf(&b, "  Final stock:      %14.2f (%.2f%% of initial)\n", s.FinalStockValue, s.StockSharePct)
	fmt.Fprintf(&b, "  Final options:    %14.2f (%.2f%% of initial)\n", s.FinalOptionsValue, s.OptionsSharePct)
	fmt.Fprintf(&b, "  Best day:         %+14.2f%%\n", s.BestDayReturn)
	fmt.Fprintf(&b, "  Worst day:        %+14.2f%%", s.WorstDayReturn)
	return b.String()
}

// RenderChart writes the portfolio value series as a PNG. The file is
// overwritten on every run.
func RenderChart(snapshots []Snapshot, path string) error {
	if len(snapshots) < 2 {
		return errors.New("need at least two snapshots to chart")
	}

	dates := make([]time.Time, len(snapshots))
	totals := make([]float64, len(snapshots))
	stocks := make([]float64, len(snapshots))
	options := make([]float64, len(snapshots))
	for i, s := range snapshots {
		dates[i] = s.Date
		totals[i] = s.TotalValue
		stocks[i] = s.StockValue
		options[i] = s.OptionsValue
	}

	graph := chart.Chart{
		Title:  "Backtest Results",
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{Name: "Total Value", XValues: dates, YValues: totals},
			chart.TimeSeries{Name: "Stock Value", XValues: dates, YValues: stocks},
			chart.TimeSeries{Name: "Options Value", XValues: dates, YValues: options},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
