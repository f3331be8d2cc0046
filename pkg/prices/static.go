package prices

import (
	"context"
	"time"
)

// StaticProvider serves bars from memory, keyed by date. It backs tests and
// replay runs from pre-fetched data.
type StaticProvider struct {
	bars map[string]Bar // keyed by "2006-01-02"
}

// NewStaticProvider indexes the given bars by date.
func NewStaticProvider(bars []Bar) *StaticProvider {
	m := make(map[string]Bar, len(bars))
	for _, b := range bars {
		m[b.Date.Format("2006-01-02")] = b
	}
	return &StaticProvider{bars: m}
}

// OpeningPrice returns the open for the date, or ErrNoData.
func (p *StaticProvider) OpeningPrice(_ context.Context, _ string, date time.Time) (float64, error) {
	b, ok := p.bars[date.Format("2006-01-02")]
	if !ok {
		return 0, ErrNoData
	}
	return b.Open, nil
}

// History returns the bars in [start, end], oldest first.
func (p *StaticProvider) History(_ context.Context, _ string, start, end time.Time) ([]Bar, error) {
	var out []Bar
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if b, ok := p.bars[d.Format("2006-01-02")]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}
