// Package agents implements the local analyst pipeline: technical,
// sentiment, fundamental, valuation and risk scoring plus an options
// advisor, synthesized by HedgeFund into a single trading decision.
package agents

import (
	"math"

	"quantfund/pkg/prices"
)

const tradingDaysPerYear = 252

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdDev uses the n-1 denominator.
func sampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sq float64
	for _, x := range xs {
		d := x - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)-1))
}

func closingPrices(bars []prices.Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

func dailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	rets := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		rets = append(rets, (closes[i]-closes[i-1])/closes[i-1])
	}
	return rets
}

// annualizedVolatility needs at least 30 closes to say anything; below
// that it returns 0 and callers treat volatility as unknown.
func annualizedVolatility(closes []float64) float64 {
	if len(closes) < 30 {
		return 0
	}
	return sampleStdDev(dailyReturns(closes)) * math.Sqrt(tradingDaysPerYear)
}

// rollingVolatility annualizes the stddev of the last window daily returns.
func rollingVolatility(closes []float64, window int) float64 {
	rets := dailyReturns(closes)
	if len(rets) < window {
		return 0
	}
	return sampleStdDev(rets[len(rets)-window:]) * math.Sqrt(tradingDaysPerYear)
}

// rateOfChange is the percent change of the last close versus lag closes ago.
func rateOfChange(closes []float64, lag int) float64 {
	if len(closes) <= lag {
		return 0
	}
	base := closes[len(closes)-1-lag]
	if base == 0 {
		return 0
	}
	return (closes[len(closes)-1] - base) / base * 100
}

// rsi computes the simple-average RSI over the trailing period. Returns 50
// (neutral) when there is not enough history.
func rsi(closes []float64, period int) float64 {
	if len(closes) <= period {
		return 50
	}
	var gains, losses float64
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	if losses == 0 {
		return 100
	}
	rs := gains / losses
	return 100 - 100/(1+rs)
}

// emaLast returns the final value of an exponential moving average with the
// given span, seeded from the first element.
func emaLast(xs []float64, span int) float64 {
	if len(xs) == 0 {
		return 0
	}
	alpha := 2.0 / (float64(span) + 1)
	ema := xs[0]
	for _, x := range xs[1:] {
		ema = alpha*x + (1-alpha)*ema
	}
	return ema
}

// maxDrawdown is the worst peak-to-trough decline across the closes,
// expressed as a negative fraction.
func maxDrawdown(closes []float64) float64 {
	var peak, worst float64
	for _, c := range closes {
		if c > peak {
			peak = c
		}
		if peak > 0 {
			dd := c/peak - 1
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}
