// Package calendar answers market-calendar questions for the backtest:
// whether a date is a trading session and which session precedes it.
package calendar

import (
	"time"

	"go.uber.org/zap"
)

// Lookback window for resolving the previous trading day.
const previousLookbackDays = 10

// Source provides the ordered trading sessions inside a date range. An
// empty result is a valid answer (holiday stretch, start of history), not
// an error.
type Source interface {
	TradingDays(start, end time.Time) ([]time.Time, error)
}

// Calendar wraps a Source with the lookups the backtest loop needs.
type Calendar struct {
	src    Source
	logger *zap.Logger
}

// New creates a Calendar over the given source.
func New(src Source, logger *zap.Logger) *Calendar {
	return &Calendar{src: src, logger: logger}
}

// IsTradingDay reports whether the market holds a session on date. Source
// failures are logged and reported as "not a trading day" so the caller
// skips the date.
func (c *Calendar) IsTradingDay(date time.Time) bool {
	days, err := c.src.TradingDays(date, date)
	if err != nil {
		c.logger.Warn("calendar lookup failed",
			zap.String("date", date.Format("2006-01-02")), zap.Error(err))
		return false
	}
	return len(days) > 0
}

// PreviousTradingDay returns the trading session strictly before date,
// looking back over a bounded window. The second return is false when the
// window yields no prior session.
func (c *Calendar) PreviousTradingDay(date time.Time) (time.Time, bool) {
	days, err := c.src.TradingDays(date.AddDate(0, 0, -previousLookbackDays), date)
	if err != nil {
		c.logger.Warn("calendar lookup failed",
			zap.String("date", date.Format("2006-01-02")), zap.Error(err))
		return time.Time{}, false
	}
	if len(days) < 2 {
		return time.Time{}, false
	}
	return days[len(days)-2], true
}

// TradingDays returns the ordered sessions in [start, end]. Source failures
// are logged and yield an empty schedule.
func (c *Calendar) TradingDays(start, end time.Time) []time.Time {
	days, err := c.src.TradingDays(start, end)
	if err != nil {
		c.logger.Warn("calendar range lookup failed",
			zap.String("start", start.Format("2006-01-02")),
			zap.String("end", end.Format("2006-01-02")),
			zap.Error(err))
		return nil
	}
	return days
}
