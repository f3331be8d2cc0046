package portfolio

import "quantfund/pkg/decision"

// ExecuteTrade applies a stock buy/sell instruction under cash and share
// constraints and returns the quantity actually executed. It never fails on
// insufficient funds or shares: a buy that doesn't fit is capped to
// floor(cash/price), a sell is capped to the shares held, and zero is a
// valid outcome. Hold and non-positive quantities are no-ops.
func (p *Portfolio) ExecuteTrade(action decision.Action, quantity int, price float64) int {
	if quantity <= 0 || price <= 0 {
		return 0
	}

	switch action {
	case decision.ActionBuy:
		cost := float64(quantity) * price
		if cost <= p.Cash {
			p.Shares += quantity
			p.Cash -= cost
			return quantity
		}
		maxQty := int(p.Cash / price)
		if maxQty <= 0 {
			return 0
		}
		p.Shares += maxQty
		p.Cash -= float64(maxQty) * price
		return maxQty

	case decision.ActionSell:
		if quantity > p.Shares {
			quantity = p.Shares
		}
		if quantity <= 0 {
			return 0
		}
		p.Cash += float64(quantity) * price
		p.Shares -= quantity
		return quantity
	}

	return 0
}
