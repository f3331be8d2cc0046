// Package portfolio holds the backtest ledger: cash, equity shares, and
// open options positions, plus the trade logic that mutates them.
package portfolio

import (
	"math"
	"time"

	"quantfund/pkg/decision"
)

// OptionType distinguishes calls from puts.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// OptionPosition is one open options leg. Positive contracts are long,
// negative contracts are the short leg of a spread; magnitude is the number
// of 100-share-equivalent contracts. Contracts is never zero for a live
// position.
type OptionPosition struct {
	Type            OptionType
	Strike          float64
	Contracts       int
	PremiumPaid     float64
	PremiumReceived float64
	ExpiryDate      time.Time
}

// IntrinsicValue values the position at the given underlying price. The
// sign of Contracts carries through, so an in-the-money short leg values
// negative, representing a liability.
func (p OptionPosition) IntrinsicValue(price float64) float64 {
	if p.Type == Call {
		return math.Max(0, price-p.Strike) * 100 * float64(p.Contracts)
	}
	return math.Max(0, p.Strike-price) * 100 * float64(p.Contracts)
}

// LegKind tags a trade record as a single-leg or spread entry.
type LegKind string

const (
	LegSingle LegKind = "single"
	LegSpread LegKind = "spread"
)

// TradeRecord is the audit entry for one executed options trade. Spreads
// produce one record covering both legs.
type TradeRecord struct {
	ID         string
	Date       time.Time
	Strategy   string
	Price      float64
	Kind       LegKind
	Contracts  int
	Cost       float64
	ExpiryDate time.Time
}

// Portfolio is the unit of truth for the simulation. It is created once at
// backtest start and mutated in place by trade execution and option
// settlement; nothing else may touch it.
type Portfolio struct {
	Cash    float64
	Shares  int
	Options []OptionPosition
	Trades  []TradeRecord
}

// New creates a portfolio with the given starting cash and no positions.
func New(initialCash float64) *Portfolio {
	return &Portfolio{Cash: initialCash}
}

// Snapshot renders the read-only view handed to the decision agent.
func (p *Portfolio) Snapshot() decision.PortfolioSnapshot {
	snap := decision.PortfolioSnapshot{
		Cash:    p.Cash,
		Shares:  p.Shares,
		Options: make([]decision.OptionSummary, 0, len(p.Options)),
	}
	for _, pos := range p.Options {
		snap.Options = append(snap.Options, decision.OptionSummary{
			Type:       string(pos.Type),
			Strike:     pos.Strike,
			Contracts:  pos.Contracts,
			ExpiryDate: pos.ExpiryDate.Format("2006-01-02"),
		})
	}
	return snap
}
