package portfolio

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quantfund/pkg/decision"
)

// Fixed risk limit on contracts per options trade.
const maxContractsPerTrade = 5

// OpenStrategy executes an options strategy recommendation against the
// portfolio and returns the net cash debit. Unparseable or missing fields
// degrade to a no-op cost of 0; the error is logged, never propagated.
func (p *Portfolio) OpenStrategy(strat *decision.Strategy, price float64, date time.Time, logger *zap.Logger) float64 {
	switch strat.Kind() {
	case decision.KindSpread:
		return p.openSpread(strat, price, date, logger)
	case decision.KindSingleLeg:
		return p.openSingleLeg(strat, price, date, logger)
	default:
		return 0
	}
}

func (p *Portfolio) openSpread(strat *decision.Strategy, price float64, date time.Time, logger *zap.Logger) float64 {
	impl := strat.Implementation
	if impl.BuyLeg.RecommendedStrike <= 0 || impl.SellLeg.RecommendedStrike <= 0 {
		logger.Warn("spread recommendation missing leg strike",
			zap.String("strategy", strat.Name),
			zap.Float64("buy_strike", impl.BuyLeg.RecommendedStrike),
			zap.Float64("sell_strike", impl.SellLeg.RecommendedStrike))
		return 0
	}
	buyPremium := legPremium(impl.BuyLeg, impl.Premium)
	sellPremium := legPremium(impl.SellLeg, impl.Premium)
	if buyPremium <= 0 {
		logger.Warn("spread recommendation missing buy premium", zap.String("strategy", strat.Name))
		return 0
	}

	contracts := contractsFor(p.Cash, buyPremium)
	if contracts <= 0 {
		return 0
	}

	holdingDays, err := parseHoldingDays(impl.BuyLeg.RecommendedExpiration)
	if err != nil {
		logger.Warn("unparseable spread expiration",
			zap.String("strategy", strat.Name),
			zap.String("expiration", impl.BuyLeg.RecommendedExpiration),
			zap.Error(err))
		return 0
	}
	expiry := date.AddDate(0, 0, holdingDays)

	p.Options = append(p.Options, OptionPosition{
		Type:        optionType(impl.BuyLeg.Type),
		Strike:      impl.BuyLeg.RecommendedStrike,
		Contracts:   contracts,
		PremiumPaid: buyPremium * 100 * float64(contracts),
		ExpiryDate:  expiry,
	})
	p.Options = append(p.Options, OptionPosition{
		Type:            optionType(impl.SellLeg.Type),
		Strike:          impl.SellLeg.RecommendedStrike,
		Contracts:       -contracts,
		PremiumReceived: sellPremium * 100 * float64(contracts),
		ExpiryDate:      expiry,
	})

	cost := (buyPremium - sellPremium) * 100 * float64(contracts)
	p.Cash -= cost

	p.Trades = append(p.Trades, TradeRecord{
		ID:         uuid.NewString(),
		Date:       date,
		Strategy:   strat.Name,
		Price:      price,
		Kind:       LegSpread,
		Contracts:  contracts,
		Cost:       cost,
		ExpiryDate: expiry,
	})
	return cost
}

func (p *Portfolio) openSingleLeg(strat *decision.Strategy, price float64, date time.Time, logger *zap.Logger) float64 {
	impl := strat.Implementation
	if impl.RecommendedStrike <= 0 {
		logger.Warn("single-leg recommendation missing strike", zap.String("strategy", strat.Name))
		return 0
	}
	if impl.Premium == nil || impl.Premium.TargetPremium <= 0 {
		logger.Warn("single-leg recommendation missing premium", zap.String("strategy", strat.Name))
		return 0
	}
	premium := impl.Premium.TargetPremium

	contracts := contractsFor(p.Cash, premium)
	if contracts <= 0 {
		return 0
	}

	holdingDays, err := parseHoldingDays(impl.RecommendedExpiration)
	if err != nil {
		logger.Warn("unparseable expiration",
			zap.String("strategy", strat.Name),
			zap.String("expiration", impl.RecommendedExpiration),
			zap.Error(err))
		return 0
	}
	expiry := date.AddDate(0, 0, holdingDays)

	// The leg type comes from the strategy name; anything that isn't a
	// call trades as a put.
	posType := Put
	if strings.Contains(strings.ToLower(strat.Name), "call") {
		posType = Call
	}

	cost := premium * 100 * float64(contracts)
	p.Options = append(p.Options, OptionPosition{
		Type:        posType,
		Strike:      impl.RecommendedStrike,
		Contracts:   contracts,
		PremiumPaid: cost,
		ExpiryDate:  expiry,
	})
	p.Cash -= cost

	p.Trades = append(p.Trades, TradeRecord{
		ID:         uuid.NewString(),
		Date:       date,
		Strategy:   strat.Name,
		Price:      price,
		Kind:       LegSingle,
		Contracts:  contracts,
		Cost:       cost,
		ExpiryDate: expiry,
	})
	return cost
}

// RevalueAndSettle values every open position by intrinsic value at the
// current price and returns the total. Positions whose expiry has been
// reached are removed and their exercise value credited to cash exactly
// once. The settled value is both reported in the day's total and added to
// cash, preserving the reference reconciliation.
func (p *Portfolio) RevalueAndSettle(price float64, date time.Time, logger *zap.Logger) float64 {
	total := 0.0
	kept := p.Options[:0]
	for _, pos := range p.Options {
		value := pos.IntrinsicValue(price)
		total += value
		if !pos.ExpiryDate.After(date) {
			p.Cash += value
			logger.Info("option settled at expiry",
				zap.String("type", string(pos.Type)),
				zap.Float64("strike", pos.Strike),
				zap.Int("contracts", pos.Contracts),
				zap.Float64("value", value),
				zap.String("expiry", pos.ExpiryDate.Format("2006-01-02")))
			continue
		}
		kept = append(kept, pos)
	}
	p.Options = kept
	return total
}

// legPremium prefers a per-leg premium and falls back to the shared
// implementation premium when the agent only quotes one figure.
func legPremium(leg *decision.Leg, shared *decision.Premium) float64 {
	if leg != nil && leg.Premium != nil && leg.Premium.TargetPremium > 0 {
		return leg.Premium.TargetPremium
	}
	if shared != nil {
		return shared.TargetPremium
	}
	return 0
}

// contractsFor applies the per-trade risk cap and the cash constraint.
func contractsFor(cash, premium float64) int {
	if premium <= 0 {
		return 0
	}
	n := int(cash / (premium * 100))
	if n > maxContractsPerTrade {
		n = maxContractsPerTrade
	}
	return n
}

// parseHoldingDays extracts the lower bound of an expiration day range like
// "30-45 DTE" or "60-90 DTE".
func parseHoldingDays(expiration string) (int, error) {
	fields := strings.Fields(strings.TrimSpace(expiration))
	if len(fields) == 0 {
		return 0, strconv.ErrSyntax
	}
	lower := strings.SplitN(fields[0], "-", 2)[0]
	days, err := strconv.Atoi(lower)
	if err != nil {
		return 0, err
	}
	if days <= 0 {
		return 0, strconv.ErrRange
	}
	return days, nil
}

func optionType(s string) OptionType {
	if strings.EqualFold(s, string(Call)) {
		return Call
	}
	return Put
}
