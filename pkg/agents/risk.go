package agents

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"quantfund/pkg/decision"
	"quantfund/pkg/prices"
)

// RiskAssessment is the risk manager's output: a 0-10 score, the dollar cap
// it implies for the equity position, and a coarse action.
type RiskAssessment struct {
	Score            float64
	Level            string
	MaxPositionValue decimal.Decimal
	Action           string // "normal", "hold" or "reduce"
	Confidence       float64
	Reasoning        string
}

const basePositionLimit = 0.25 // of total portfolio value

// AssessRisk scores market risk (volatility level and trend, beta proxy),
// position risk (concentration, drawdown) and signal risk (analyst
// disagreement), then scales the base 25% position limit down as the
// combined score rises.
func AssessRisk(bars []prices.Bar, port decision.PortfolioSnapshot, votes map[string]Verdict) RiskAssessment {
	closes := closingPrices(bars)
	if len(closes) == 0 {
		return RiskAssessment{
			Score: 5, Level: "Moderate", Action: "hold", Confidence: 0.5,
			MaxPositionValue: decimal.Zero,
			Reasoning:        "no price history for risk assessment",
		}
	}
	price := closes[len(closes)-1]

	positionValue := decimal.NewFromInt(int64(port.Shares)).Mul(decimal.NewFromFloat(price))
	totalValue := positionValue.Add(decimal.NewFromFloat(port.Cash))
	positionPct := 0.0
	if totalValue.IsPositive() {
		positionPct, _ = positionValue.Div(totalValue).Float64()
	}

	vol20 := rollingVolatility(closes, 20)
	vol60 := rollingVolatility(closes, 60)
	beta := 1.0
	if vol := annualizedVolatility(closes); vol > 0 {
		// Historical volatility over an assumed 16% market volatility.
		beta = vol / 0.16
	}
	drawdown := maxDrawdown(closes)

	marketScore := math.Min(4, vol20*10)
	if vol60 > 0 {
		marketScore += math.Min(3, math.Max(0, (vol20/vol60-1)*10))
	}
	marketScore += math.Min(3, math.Max(0, (beta-1)*2))
	marketScore = math.Min(10, marketScore)

	positionScore := math.Min(5, positionPct*20) + math.Min(5, math.Abs(drawdown)*10)
	positionScore = math.Min(10, positionScore)

	signalScore := signalRiskScore(votes)

	score := (marketScore + positionScore + signalScore) / 3

	maxPosition := totalValue.Mul(decimal.NewFromFloat(basePositionLimit * limitScale(score)))

	action := "normal"
	switch {
	case positionValue.GreaterThan(maxPosition.Mul(decimal.NewFromFloat(1.1))):
		action = "reduce"
	case score >= 8:
		action = "hold"
	}

	return RiskAssessment{
		Score:            score,
		Level:            riskLevel(score),
		MaxPositionValue: maxPosition.Round(2),
		Action:           action,
		Confidence:       riskConfidence(score),
		Reasoning: fmt.Sprintf("vol20 %.1f%%, beta %.2f, drawdown %.1f%%, position %.1f%% of portfolio",
			vol20*100, beta, drawdown*100, positionPct*100),
	}
}

// signalRiskScore rises with analyst disagreement and low confidence.
func signalRiskScore(votes map[string]Verdict) float64 {
	if len(votes) == 0 {
		return 5
	}
	unique := map[string]bool{}
	minConf := 1.0
	for _, v := range votes {
		unique[v.Signal] = true
		if v.Confidence < minConf {
			minConf = v.Confidence
		}
	}
	score := float64(len(unique)-1)*3 + (1-minConf)*4
	return math.Min(10, score)
}

func limitScale(score float64) float64 {
	switch {
	case score >= 8:
		return 0.4
	case score >= 6:
		return 0.6
	case score >= 4:
		return 0.8
	default:
		return 1.0
	}
}

func riskLevel(score float64) string {
	switch {
	case score >= 8:
		return "High"
	case score >= 5:
		return "Moderate"
	default:
		return "Low"
	}
}

func riskConfidence(score float64) float64 {
	switch {
	case score <= 2 || score >= 8:
		return 0.9
	case score <= 4 || score >= 6:
		return 0.7
	default:
		return 0.5
	}
}
