package backtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/pretty"

	"quantfund/pkg/decision"
	"quantfund/pkg/portfolio"
)

// RunLog is the per-run audit file: one file per backtest, named by ticker
// and period, carrying a header, every raw agent response, and a closing
// summary with the options trade list.
type RunLog struct {
	ID   string
	Path string

	f *os.File
}

// NewRunLog creates logs/backtest_<ticker>_<yyyymmdd>_<start>-<end>.log
// under dir and writes the run header.
func NewRunLog(dir string, cfg Config) (*RunLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	name := fmt.Sprintf("backtest_%s_%s_%s-%s.log",
		cfg.Ticker,
		time.Now().Format("20060102"),
		cfg.StartDate.Format("20060102"),
		cfg.EndDate.Format("20060102"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create run log: %w", err)
	}

	l := &RunLog{ID: uuid.NewString(), Path: path, f: f}
	fmt.Fprintf(f, "run %s\n", l.ID)
	fmt.Fprintf(f, "ticker:          %s\n", cfg.Ticker)
	fmt.Fprintf(f, "period:          %s to %s\n",
		cfg.StartDate.Format("2006-01-02"), cfg.EndDate.Format("2006-01-02"))
	fmt.Fprintf(f, "initial capital: %.2f\n\n", cfg.InitialCapital)
	return l, nil
}

// WrapAgent returns an agent that records every raw response before handing
// it back, so the log keeps the unnormalized JSON.
func (l *RunLog) WrapAgent(agent decision.Agent) decision.Agent {
	return decision.AgentFunc(func(ctx context.Context, req decision.Request) (string, error) {
		raw, err := agent.Decide(ctx, req)
		if err != nil {
			fmt.Fprintf(l.f, "--- %s: agent error: %v\n\n", req.EndDate.Format("2006-01-02"), err)
			return raw, err
		}
		fmt.Fprintf(l.f, "--- %s\n%s\n", req.EndDate.Format("2006-01-02"), pretty.Pretty([]byte(raw)))
		return raw, nil
	})
}

// WriteSummary appends the closing summary and the options trade list.
func (l *RunLog) WriteSummary(summary Summary, trades []portfolio.TradeRecord) {
	fmt.Fprintf(l.f, "\n%s\n", summary.String())

	if len(trades) == 0 {
		fmt.Fprintln(l.f, "\nno options trades")
		return
	}
	fmt.Fprintf(l.f, "\noptions trades (%d):\n", len(trades))
	for _, t := range trades {
		fmt.Fprintf(l.f, "  %s  %s  %-22s contracts=%d price=%.2f cost=%.2f expiry=%s\n",
			t.ID, t.Date.Format("2006-01-02"), t.Strategy,
			t.Contracts, t.Price, t.Cost, t.ExpiryDate.Format("2006-01-02"))
	}
}

func (l *RunLog) Close() error {
	return l.f.Close()
}
