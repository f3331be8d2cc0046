package calendar

import (
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
)

// AlpacaSource reads the NYSE trading calendar from the Alpaca trading API.
type AlpacaSource struct {
	client *alpaca.Client
}

// NewAlpacaSource builds a source from API credentials. baseURL may be
// empty for the default endpoint.
func NewAlpacaSource(apiKey, apiSecret, baseURL string) *AlpacaSource {
	return &AlpacaSource{
		client: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
	}
}

// TradingDays returns the trading sessions in [start, end].
func (s *AlpacaSource) TradingDays(start, end time.Time) ([]time.Time, error) {
	cal, err := s.client.GetCalendar(alpaca.GetCalendarRequest{Start: start, End: end})
	if err != nil {
		return nil, fmt.Errorf("GetCalendar: %w", err)
	}
	days := make([]time.Time, 0, len(cal))
	for _, d := range cal {
		t, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			continue
		}
		days = append(days, t)
	}
	return days, nil
}
