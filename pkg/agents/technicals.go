package agents

import (
	"fmt"

	"quantfund/pkg/prices"
)

const (
	rocPeriod       = 5
	rsiPeriod       = 14
	volumeEMASpan   = 5
	rocThreshold    = 3.0  // percent move considered strong momentum
	volumeThreshold = 10.0 // percent above/below the volume EMA
)

// Technicals scores short-term momentum: 5-day rate of change for direction,
// volume versus its 5-period EMA for participation, RSI(14) for context.
func Technicals(bars []prices.Bar) Verdict {
	if len(bars) < rsiPeriod {
		return Verdict{Signal: SignalNeutral, Confidence: 0, Reasoning: "not enough price history for momentum"}
	}

	closes := closingPrices(bars)
	roc := rateOfChange(closes, rocPeriod)

	volumes := make([]float64, len(bars))
	for i, b := range bars {
		volumes[i] = b.Volume
	}
	volEMA := emaLast(volumes, volumeEMASpan)
	var volMomentum float64
	if volEMA > 0 {
		volMomentum = (volumes[len(volumes)-1] - volEMA) / volEMA * 100
	}

	currentRSI := rsi(closes, rsiPeriod)

	signal := SignalNeutral
	strength := 0.5
	switch {
	case roc > rocThreshold:
		signal = SignalBullish
		strength = clamp(roc/10, 0, 1)
	case roc < -rocThreshold:
		signal = SignalBearish
		strength = clamp(-roc/10, 0, 1)
	}

	volSignal := SignalNeutral
	switch {
	case volMomentum > volumeThreshold:
		volSignal = SignalBullish
	case volMomentum < -volumeThreshold:
		volSignal = SignalBearish
	}

	rsiState := "neutral"
	switch {
	case currentRSI < 30:
		rsiState = "oversold"
	case currentRSI > 70:
		rsiState = "overbought"
	}

	return Verdict{
		Signal:     signal,
		Confidence: strength,
		Reasoning: fmt.Sprintf("price momentum %.2f%% (%s), volume %s (%.2f%% vs EMA), RSI %.1f (%s)",
			roc, signal, volSignal, volMomentum, currentRSI, rsiState),
	}
}
