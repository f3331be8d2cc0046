package agents

// Signal values shared by every analyst.
const (
	SignalBullish = "bullish"
	SignalBearish = "bearish"
	SignalNeutral = "neutral"
)

// Verdict is one analyst's vote: a directional signal with a confidence in
// [0,1] and a short human-readable justification.
type Verdict struct {
	Signal     string
	Confidence float64
	Reasoning  string
}

func neutralVerdict(reason string) Verdict {
	return Verdict{Signal: SignalNeutral, Confidence: 0.5, Reasoning: reason}
}
