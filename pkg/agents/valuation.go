package agents

import (
	"fmt"
	"math"
)

// Financials is the line-item data the valuation analyst works from.
type Financials struct {
	NetIncome            float64
	Depreciation         float64
	CapEx                float64
	WorkingCapitalChange float64
	FreeCashFlow         float64
	EarningsGrowth       float64
	MarketCap            float64
}

// PriceTargets frame the portfolio manager's buy/sell decision around the
// blended fair value.
type PriceTargets struct {
	FairValue  float64
	BuyTarget  float64
	SellTarget float64
}

const (
	valuationYears        = 5
	ownerEarningsReturn   = 0.12
	ownerEarningsSafety   = 0.15
	dcfDiscountRate       = 0.10
	dcfTerminalGrowth     = 0.02
	significantMispricing = 0.15
)

// OwnerEarningsValue projects owner earnings (net income + depreciation -
// capex - working capital change) over num years, discounts them at the
// required return, adds a discounted terminal value and applies the margin
// of safety. Non-positive owner earnings value at 0.
func OwnerEarningsValue(netIncome, depreciation, capex, workingCapitalChange, growthRate, requiredReturn, marginOfSafety float64, years int) float64 {
	ownerEarnings := netIncome + depreciation - capex - workingCapitalChange
	if ownerEarnings <= 0 {
		return 0
	}

	var total, last float64
	for year := 1; year <= years; year++ {
		future := ownerEarnings * math.Pow(1+growthRate, float64(year))
		last = future / math.Pow(1+requiredReturn, float64(year))
		total += last
	}

	terminalGrowth := math.Min(growthRate/2, 0.03)
	terminal := last * (1 + terminalGrowth) / (requiredReturn - terminalGrowth)
	total += terminal / math.Pow(1+requiredReturn, float64(years))

	return total * (1 - marginOfSafety)
}

// IntrinsicValue is a plain DCF on free cash flow with a conservative
// terminal growth rate.
func IntrinsicValue(freeCashFlow, growthRate, discountRate, terminalGrowthRate float64, years int) float64 {
	if freeCashFlow <= 0 {
		return 0
	}
	growth := clamp(growthRate, 0.02, 0.25)

	var total, lastFlow float64
	for i := 0; i < years; i++ {
		lastFlow = freeCashFlow * math.Pow(1+growth, float64(i))
		total += lastFlow / math.Pow(1+discountRate, float64(i+1))
	}

	terminalGrowth := math.Min(growth/2, terminalGrowthRate)
	terminal := lastFlow * (1 + terminalGrowth) / (discountRate - terminalGrowth)
	total += terminal / math.Pow(1+discountRate, float64(years))

	return total
}

// Valuation compares owner-earnings and DCF values against the market cap
// and derives buy/sell price targets around the blended fair value. Gaps
// beyond ±15% vote bullish/bearish; confidence is the size of the gap.
func Valuation(f Financials, currentPrice float64) (Verdict, PriceTargets) {
	targets := fallbackTargets(currentPrice)
	if f.MarketCap <= 0 || currentPrice <= 0 {
		return neutralVerdict("no market cap or price for valuation"), targets
	}

	growth := f.EarningsGrowth
	if growth == 0 {
		growth = 0.10
	}
	growth = clamp(growth, 0.02, 0.20)

	ownerValue := OwnerEarningsValue(f.NetIncome, f.Depreciation, f.CapEx, f.WorkingCapitalChange,
		growth, ownerEarningsReturn, ownerEarningsSafety, valuationYears)
	dcfValue := IntrinsicValue(f.FreeCashFlow, growth, dcfDiscountRate, dcfTerminalGrowth, valuationYears)

	shares := f.MarketCap / currentPrice
	ownerTarget := ownerValue / shares
	dcfTarget := dcfValue / shares

	var dcfGap, ownerGap float64
	if dcfTarget > 0 {
		dcfGap = (dcfTarget - currentPrice) / currentPrice
	}
	if ownerTarget > 0 {
		ownerGap = (ownerTarget - currentPrice) / currentPrice
	}

	// Extreme gaps usually mean bad inputs, not a 10x mispricing.
	var validGaps []float64
	for _, g := range []float64{dcfGap, ownerGap} {
		if g != 0 && math.Abs(g) <= 0.5 {
			validGaps = append(validGaps, g)
		}
	}
	var valuationGap float64
	if len(validGaps) > 0 {
		valuationGap = mean(validGaps)
	}

	fair := blendFairValue(currentPrice, dcfTarget, ownerTarget)
	targets = spreadTargets(currentPrice, fair, valuationGap)

	signal := SignalNeutral
	switch {
	case valuationGap > significantMispricing:
		signal = SignalBullish
	case valuationGap < -significantMispricing:
		signal = SignalBearish
	}

	return Verdict{
		Signal:     signal,
		Confidence: clamp(math.Abs(valuationGap), 0, 1),
		Reasoning: fmt.Sprintf("owner earnings target $%.2f, DCF target $%.2f, gap %.1f%%",
			ownerTarget, dcfTarget, valuationGap*100),
	}, targets
}

func fallbackTargets(price float64) PriceTargets {
	return PriceTargets{
		FairValue:  price,
		BuyTarget:  price * 0.9,
		SellTarget: price * 1.1,
	}
}

// blendFairValue weights the model targets that land within 50%-150% of the
// current price; the current price itself anchors the blend.
func blendFairValue(currentPrice, dcfTarget, ownerTarget float64) float64 {
	reasonable := func(v float64) bool {
		return v > 0 && v/currentPrice >= 0.5 && v/currentPrice <= 1.5
	}

	weightedSum := currentPrice * 0.2
	totalWeight := 0.2
	if reasonable(dcfTarget) {
		weightedSum += dcfTarget * 0.4
		totalWeight += 0.4
	}
	if reasonable(ownerTarget) {
		weightedSum += ownerTarget * 0.4
		totalWeight += 0.4
	}
	// Both models filtered out: fall back to current price.
	if totalWeight <= 0.2 {
		return currentPrice
	}
	return weightedSum / totalWeight
}

// spreadTargets sets buy/sell targets around fair value; wider spreads when
// the mispricing is significant, and never more than 25% from the current
// price in either direction.
func spreadTargets(currentPrice, fair, valuationGap float64) PriceTargets {
	spread := 0.10
	if math.Abs(valuationGap) > significantMispricing {
		spread = 0.20
	}

	buy := fair * (1 - spread)
	sell := fair * (1 + spread)
	if math.Abs(valuationGap) > significantMispricing {
		if valuationGap > 0 {
			buy = math.Min(buy, currentPrice*1.05)
		} else {
			sell = math.Max(sell, currentPrice*0.95)
		}
	}

	if minSpread := currentPrice * 0.10; sell-buy < minSpread {
		mid := (buy + sell) / 2
		buy = mid - minSpread/2
		sell = mid + minSpread/2
	}

	buy = math.Max(buy, currentPrice*0.75)
	sell = math.Min(sell, currentPrice*1.25)

	return PriceTargets{FairValue: round2(fair), BuyTarget: round2(buy), SellTarget: round2(sell)}
}
