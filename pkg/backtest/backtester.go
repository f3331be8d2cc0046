// Package backtest replays the decision pipeline day by day over historical
// prices, mutating a single portfolio and recording daily snapshots.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"quantfund/pkg/calendar"
	"quantfund/pkg/decision"
	"quantfund/pkg/portfolio"
	"quantfund/pkg/prices"
)

// lookbackDays is the analysis window handed to the decision agent,
// ending at the decision date.
const lookbackDays = 365

// Config is validated eagerly in New; a bad config is the only error that
// aborts a run outright.
type Config struct {
	Ticker         string
	StartDate      time.Time
	EndDate        time.Time
	InitialCapital float64
	NewsCount      int
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Ticker) == "" {
		return errors.New("ticker is required")
	}
	if !c.StartDate.Before(c.EndDate) {
		return fmt.Errorf("start date %s must be before end date %s",
			c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02"))
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive, got %v", c.InitialCapital)
	}
	return nil
}

// Snapshot is one simulated day's closing state.
type Snapshot struct {
	Date         time.Time
	Cash         float64
	Shares       int
	StockValue   float64
	OptionsValue float64
	TotalValue   float64
	DailyReturn  float64 // percent vs the previous snapshot; 0 for the first
}

// Result is a completed run: the snapshot series plus the final portfolio,
// which still carries the trade history for reporting.
type Result struct {
	Snapshots []Snapshot
	Portfolio *portfolio.Portfolio
}

// Backtester owns the day loop. It is single-threaded: each day's state
// depends on the previous day's portfolio, so days are never simulated
// concurrently.
type Backtester struct {
	cfg       Config
	decisions *decision.Client
	prices    prices.Provider
	cal       *calendar.Calendar
	logger    *zap.Logger

	// Output receives the trade-by-trade table. Defaults to stdout.
	Output io.Writer
}

// New validates the config and wires the collaborators. Validation failures
// are the only hard errors in the backtest lifecycle.
func New(cfg Config, decisions *decision.Client, provider prices.Provider, cal *calendar.Calendar, logger *zap.Logger) (*Backtester, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("backtest config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backtester{
		cfg:       cfg,
		decisions: decisions,
		prices:    provider,
		cal:       cal,
		logger:    logger,
		Output:    os.Stdout,
	}, nil
}

// Run walks every calendar date in [StartDate, EndDate]. A day that fails
// at any step — not a trading day, no previous session, missing price —
// is skipped without a snapshot and the loop continues; gaps in the series
// are expected, not terminal.
func (b *Backtester) Run(ctx context.Context) (*Result, error) {
	port := portfolio.New(b.cfg.InitialCapital)
	var snapshots []Snapshot

	b.printTableHeader()

	for d := b.cfg.StartDate; !d.After(b.cfg.EndDate); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return &Result{Snapshots: snapshots, Portfolio: port}, err
		}
		if !b.cal.IsTradingDay(d) {
			continue
		}
		decisionDate, ok := b.cal.PreviousTradingDay(d)
		if !ok {
			b.logger.Debug("no previous trading day", zap.Time("date", d))
			continue
		}

		price, err := b.prices.OpeningPrice(ctx, b.cfg.Ticker, d)
		if err != nil {
			b.logger.Warn("no price data, skipping day",
				zap.Time("date", d), zap.Error(err))
			continue
		}

		rec := b.decisions.GetDecision(ctx, decision.Request{
			Ticker:    b.cfg.Ticker,
			StartDate: decisionDate.AddDate(0, 0, -lookbackDays),
			EndDate:   decisionDate,
			Portfolio: port.Snapshot(),
			NewsCount: b.cfg.NewsCount,
		})

		executed := port.ExecuteTrade(rec.Action, rec.Quantity, price)
		port.OpenStrategy(rec.OptionsStrategy, price, d, b.logger)
		optionsValue := port.RevalueAndSettle(price, d, b.logger)

		stockValue := float64(port.Shares) * price
		total := port.Cash + stockValue + optionsValue

		snap := Snapshot{
			Date:         d,
			Cash:         port.Cash,
			Shares:       port.Shares,
			StockValue:   stockValue,
			OptionsValue: optionsValue,
			TotalValue:   total,
		}
		if n := len(snapshots); n > 0 && snapshots[n-1].TotalValue != 0 {
			snap.DailyReturn = (total/snapshots[n-1].TotalValue - 1) * 100
		}
		snapshots = append(snapshots, snap)

		b.printTableRow(snap, rec.Action, executed, price)
	}

	return &Result{Snapshots: snapshots, Portfolio: port}, nil
}

func (b *Backtester) printTableHeader() {
	fmt.Fprintf(b.Output, "%-12s %-6s %8s %10s %14s %8s %14s %14s %9s\n",
		"Date", "Action", "Qty", "Price", "Cash", "Shares", "Options Value", "Total Value", "Return %")
	fmt.Fprintln(b.Output, strings.Repeat("-", 102))
}

func (b *Backtester) printTableRow(s Snapshot, action decision.Action, executed int, price float64) {
	fmt.Fprintf(b.Output, "%-12s %-6s %8d %10.2f %14.2f %8d %14.2f %14.2f %9.2f\n",
		s.Date.Format("2006-01-02"), action, executed, price,
		s.Cash, s.Shares, s.OptionsValue, s.TotalValue, s.DailyReturn)
}
