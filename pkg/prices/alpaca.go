package prices

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// AlpacaProvider serves daily bars from the Alpaca market-data API.
type AlpacaProvider struct {
	client *marketdata.Client
}

// NewAlpacaProvider builds a provider from API credentials.
func NewAlpacaProvider(apiKey, apiSecret string) *AlpacaProvider {
	return &AlpacaProvider{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
	}
}

// OpeningPrice returns the daily bar's open for the date.
func (p *AlpacaProvider) OpeningPrice(ctx context.Context, ticker string, date time.Time) (float64, error) {
	bars, err := p.History(ctx, ticker, date, date)
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, ErrNoData
	}
	return bars[0].Open, nil
}

// History returns the daily bars in [start, end].
func (p *AlpacaProvider) History(_ context.Context, ticker string, start, end time.Time) ([]Bar, error) {
	raw, err := p.client.GetBars(ticker, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("GetBars %s: %w", ticker, err)
	}
	bars := make([]Bar, 0, len(raw))
	for _, b := range raw {
		bars = append(bars, Bar{
			Date:   b.Timestamp,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}
	return bars, nil
}
