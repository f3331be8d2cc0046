package agents

import "quantfund/pkg/decision"

const (
	highVolThreshold = 0.30
	shortTermExpiry  = "30-45 DTE"
	mediumTermExpiry = "60-90 DTE"
)

// AdviseOptions picks an options strategy from the price level relative to
// the valuation targets, the technical signal and historical volatility
// (0 when unknown). High volatility favors spreads over naked long options
// and premium selling over directional bets.
func AdviseOptions(price float64, targets PriceTargets, technical Verdict, impliedVol float64) *decision.Strategy {
	highVol := impliedVol > highVolThreshold

	switch {
	case price < targets.BuyTarget && technical.Signal == SignalBullish:
		if highVol {
			return bullCallSpread(price, targets.SellTarget)
		}
		return longCall(price)
	case price > targets.SellTarget && technical.Signal == SignalBearish:
		if highVol {
			return bearPutSpread(price, targets.BuyTarget)
		}
		return longPut(price)
	case highVol:
		return ironCondor(price, targets)
	case technical.Signal == SignalNeutral:
		return coveredCall(price)
	default:
		return cashSecuredPut(price)
	}
}

// strikeLadder offers conservative/moderate/aggressive strikes around a
// center price.
func strikeLadder(center float64) map[string]float64 {
	return map[string]float64{
		"conservative": round2(center * 0.95),
		"moderate":     round2(center),
		"aggressive":   round2(center * 1.05),
	}
}

func basePremium(price float64) *decision.Premium {
	return &decision.Premium{
		TargetPremium: round2(price * 0.05),
		MaxPremium:    round2(price * 0.07),
	}
}

func bullCallSpread(price, sellTarget float64) *decision.Strategy {
	premium := basePremium(price)
	return &decision.Strategy{
		Name:      "bull call spread",
		Rationale: "Bullish outlook with high volatility - spread reduces cost and limits risk",
		Implementation: decision.Implementation{
			BuyLeg: &decision.Leg{
				Type:                  "call",
				Strikes:               strikeLadder(price),
				RecommendedStrike:     round2(price),
				RecommendedExpiration: mediumTermExpiry,
			},
			SellLeg: &decision.Leg{
				Type:                  "call",
				Strikes:               strikeLadder(sellTarget),
				RecommendedStrike:     round2(sellTarget),
				RecommendedExpiration: mediumTermExpiry,
			},
			Premium:   premium,
			MaxProfit: round2(sellTarget - price - premium.TargetPremium),
			MaxLoss:   premium.TargetPremium,
		},
	}
}

func longCall(price float64) *decision.Strategy {
	premium := basePremium(price)
	strike := round2(price)
	return &decision.Strategy{
		Name:      "long call",
		Rationale: "Strong bullish outlook with moderate volatility",
		Implementation: decision.Implementation{
			Strikes:               strikeLadder(price),
			RecommendedStrike:     strike,
			RecommendedExpiration: mediumTermExpiry,
			Premium:               premium,
			MaxLoss:               premium.TargetPremium,
			BreakEven:             round2(strike + premium.TargetPremium),
		},
	}
}

func bearPutSpread(price, buyTarget float64) *decision.Strategy {
	premium := basePremium(price)
	return &decision.Strategy{
		Name:      "bear put spread",
		Rationale: "Bearish outlook with high volatility - spread reduces cost and limits risk",
		Implementation: decision.Implementation{
			BuyLeg: &decision.Leg{
				Type:                  "put",
				Strikes:               strikeLadder(price),
				RecommendedStrike:     round2(price),
				RecommendedExpiration: mediumTermExpiry,
			},
			SellLeg: &decision.Leg{
				Type:                  "put",
				Strikes:               strikeLadder(buyTarget * 0.9),
				RecommendedStrike:     round2(buyTarget),
				RecommendedExpiration: mediumTermExpiry,
			},
			Premium:   premium,
			MaxProfit: round2(price - buyTarget - premium.TargetPremium),
			MaxLoss:   premium.TargetPremium,
		},
	}
}

func longPut(price float64) *decision.Strategy {
	premium := basePremium(price)
	strike := round2(price)
	return &decision.Strategy{
		Name:      "long put",
		Rationale: "Strong bearish outlook with moderate volatility",
		Implementation: decision.Implementation{
			Strikes:               strikeLadder(price),
			RecommendedStrike:     strike,
			RecommendedExpiration: mediumTermExpiry,
			Premium:               premium,
			MaxLoss:               premium.TargetPremium,
			BreakEven:             round2(strike - premium.TargetPremium),
		},
	}
}

// ironCondor carries no executable strikes in this engine; it is reported
// for context but opens no position.
func ironCondor(price float64, targets PriceTargets) *decision.Strategy {
	premium := basePremium(price)
	wingWidth := targets.SellTarget*1.05 - targets.SellTarget*0.95
	return &decision.Strategy{
		Name:      "iron condor",
		Rationale: "Neutral outlook with high volatility - profit from time decay",
		Implementation: decision.Implementation{
			RecommendedExpiration: shortTermExpiry,
			Premium:               premium,
			MaxProfit:             premium.TargetPremium,
			MaxLoss:               round2(wingWidth - premium.TargetPremium),
		},
	}
}

func coveredCall(price float64) *decision.Strategy {
	premium := basePremium(price)
	strikes := strikeLadder(price)
	strike := strikes["conservative"]
	return &decision.Strategy{
		Name:      "covered call",
		Rationale: "Neutral to slightly bullish outlook - generate income",
		Implementation: decision.Implementation{
			Strikes:               strikes,
			RecommendedStrike:     strike,
			RecommendedExpiration: shortTermExpiry,
			Premium:               premium,
			MaxProfit:             round2(strike - price + premium.TargetPremium),
			MaxLoss:               round2(price - premium.TargetPremium),
		},
	}
}

func cashSecuredPut(price float64) *decision.Strategy {
	premium := &decision.Premium{
		TargetPremium: round2(price * 0.05),
		MaxPremium:    round2(price * 0.05 * 1.4),
	}
	strikes := strikeLadder(price)
	strike := strikes["conservative"]
	return &decision.Strategy{
		Name:      "cash-secured put",
		Rationale: "Neutral to slightly bearish outlook - generate income while waiting for better entry",
		Implementation: decision.Implementation{
			Strikes:               strikes,
			RecommendedStrike:     strike,
			RecommendedExpiration: shortTermExpiry,
			Premium:               premium,
			MaxProfit:             premium.TargetPremium,
			MaxLoss:               round2(strike - premium.TargetPremium),
		},
	}
}
