package agents

import (
	"fmt"
	"strings"

	"quantfund/pkg/news"
)

var bullishWords = []string{
	"beat", "beats", "surge", "soar", "rally", "record", "upgrade",
	"growth", "jump", "strong", "wins", "rises", "profit", "outperform",
}

var bearishWords = []string{
	"miss", "misses", "downgrade", "fall", "falls", "drop", "plunge",
	"slump", "weak", "loss", "lawsuit", "probe", "recall", "cuts", "decline",
}

// Sentiment scores recent headlines by keyword hits. Headlines without a
// directional keyword are ignored; confidence is the winning side's share
// of classified headlines.
func Sentiment(headlines []news.Headline) Verdict {
	if len(headlines) == 0 {
		return neutralVerdict("no recent headlines")
	}

	bullish, bearish := 0, 0
	for _, h := range headlines {
		title := strings.ToLower(h.Title)
		switch {
		case containsAny(title, bullishWords):
			bullish++
		case containsAny(title, bearishWords):
			bearish++
		}
	}

	classified := bullish + bearish
	if classified == 0 {
		return neutralVerdict(fmt.Sprintf("%d headlines, none directional", len(headlines)))
	}

	signal := SignalNeutral
	if bullish > bearish {
		signal = SignalBullish
	} else if bearish > bullish {
		signal = SignalBearish
	}

	return Verdict{
		Signal:     signal,
		Confidence: float64(maxInt(bullish, bearish)) / float64(classified),
		Reasoning:  fmt.Sprintf("%d bullish vs %d bearish of %d headlines", bullish, bearish, len(headlines)),
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
