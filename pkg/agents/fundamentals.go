package agents

import "fmt"

// Metrics holds the fundamental ratios the fundamentals analyst scores.
// A zero value means the metric is unavailable and is skipped.
type Metrics struct {
	ReturnOnEquity  float64
	NetMargin       float64
	OperatingMargin float64

	RevenueGrowth   float64
	EarningsGrowth  float64
	BookValueGrowth float64

	CurrentRatio         float64
	DebtToEquity         float64
	FreeCashFlowPerShare float64
	EarningsPerShare     float64

	PriceToEarnings float64
	PriceToBook     float64
	PriceToSales    float64
}

// Fundamentals scores four aspects (profitability, growth, financial
// health, price ratios) against fixed thresholds and votes with the
// majority. Confidence is the winning share of the four aspect signals.
func Fundamentals(m Metrics) Verdict {
	var aspects []string

	profitability := 0
	if m.ReturnOnEquity > 0.15 {
		profitability++
	}
	if m.NetMargin > 0.20 {
		profitability++
	}
	if m.OperatingMargin > 0.15 {
		profitability++
	}
	aspects = append(aspects, scoreToSignal(profitability))

	growth := 0
	if m.RevenueGrowth > 0.10 {
		growth++
	}
	if m.EarningsGrowth > 0.10 {
		growth++
	}
	if m.BookValueGrowth > 0.10 {
		growth++
	}
	aspects = append(aspects, scoreToSignal(growth))

	health := 0
	if m.CurrentRatio > 1.5 {
		health++
	}
	if m.DebtToEquity != 0 && m.DebtToEquity < 0.5 {
		health++
	}
	if m.FreeCashFlowPerShare != 0 && m.EarningsPerShare != 0 &&
		m.FreeCashFlowPerShare > m.EarningsPerShare*0.8 {
		health++
	}
	aspects = append(aspects, scoreToSignal(health))

	// Cheap multiples count toward the bullish side.
	ratios := 0
	if m.PriceToEarnings != 0 && m.PriceToEarnings < 25 {
		ratios++
	}
	if m.PriceToBook != 0 && m.PriceToBook < 3 {
		ratios++
	}
	if m.PriceToSales != 0 && m.PriceToSales < 5 {
		ratios++
	}
	aspects = append(aspects, scoreToSignal(ratios))

	bullish, bearish := 0, 0
	for _, s := range aspects {
		switch s {
		case SignalBullish:
			bullish++
		case SignalBearish:
			bearish++
		}
	}

	signal := SignalNeutral
	if bullish > bearish {
		signal = SignalBullish
	} else if bearish > bullish {
		signal = SignalBearish
	}

	confidence := float64(maxInt(bullish, bearish)) / float64(len(aspects))
	return Verdict{
		Signal:     signal,
		Confidence: confidence,
		Reasoning: fmt.Sprintf("profitability %s, growth %s, health %s, price ratios %s",
			aspects[0], aspects[1], aspects[2], aspects[3]),
	}
}

func scoreToSignal(score int) string {
	switch {
	case score >= 2:
		return SignalBullish
	case score == 0:
		return SignalBearish
	default:
		return SignalNeutral
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
