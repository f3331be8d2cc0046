// Package prices abstracts the daily price-data provider used by the
// backtest loop and the analyst agents.
package prices

import (
	"context"
	"errors"
	"time"
)

// ErrNoData reports that the provider has no bar for the requested date.
// The backtest loop treats it as "skip this day", not a failure.
var ErrNoData = errors.New("no price data")

// Bar is one daily OHLCV bar.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Provider serves daily bars for a ticker.
type Provider interface {
	// OpeningPrice returns the session's opening price for the date, or
	// ErrNoData when the provider has nothing for it.
	OpeningPrice(ctx context.Context, ticker string, date time.Time) (float64, error)

	// History returns the daily bars in [start, end], oldest first.
	History(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error)
}
