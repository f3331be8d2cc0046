package decision

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"
)

// wire mirrors the JSON the agent emits before it is lifted into a Record.
type wireDecision struct {
	Action          string          `json:"action"`
	Quantity        float64         `json:"quantity"`
	OptionsStrategy *Strategy       `json:"options_strategy,omitempty"`
	AgentSignals    []wireSignal    `json:"agent_signals,omitempty"`
	Confidence      json.RawMessage `json:"confidence,omitempty"`
}

type wireSignal struct {
	Agent      string          `json:"agent"`
	Signal     string          `json:"signal"`
	Confidence json.RawMessage `json:"confidence"`
}

// Normalize turns a raw agent response into a Record. Markdown code fences
// are stripped, the JSON is repaired before parsing, and agent_signals are
// lifted into a flat map keyed by agent name. Any parse failure degrades to
// SafeDefault.
func Normalize(raw string, logger *zap.Logger) Record {
	cleaned := stripFences(raw)
	if cleaned == "" {
		logger.Warn("empty agent response, falling back to hold")
		return SafeDefault()
	}

	repaired, err := jsonrepair.JSONRepair(cleaned)
	if err != nil {
		logger.Warn("could not repair agent JSON", zap.Error(err), zap.String("raw", truncate(raw, 500)))
		return SafeDefault()
	}

	var wd wireDecision
	if err := json.Unmarshal([]byte(repaired), &wd); err != nil {
		logger.Warn("could not parse agent JSON", zap.Error(err), zap.String("raw", truncate(raw, 500)))
		return SafeDefault()
	}

	rec := Record{
		Action:          normalizeAction(wd.Action),
		Quantity:        int(wd.Quantity),
		OptionsStrategy: wd.OptionsStrategy,
		AgentSignals:    map[string]Signal{},
	}
	if rec.Quantity < 0 {
		rec.Quantity = 0
	}
	for _, ws := range wd.AgentSignals {
		if ws.Agent == "" {
			continue
		}
		sig := ws.Signal
		if sig == "" {
			sig = "unknown"
		}
		rec.AgentSignals[ws.Agent] = Signal{
			Signal:     sig,
			Confidence: parseConfidence(ws.Confidence),
		}
	}
	return rec
}

func normalizeAction(s string) Action {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return ActionBuy
	case "sell":
		return ActionSell
	default:
		return ActionHold
	}
}

// stripFences removes markdown code fencing (``` or ```json) around a JSON
// payload, returning the inner content.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.Contains(s, "```") {
		return s
	}
	start := strings.Index(s, "```")
	rest := s[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// Drop the language tag line ("json" etc.).
		if lang := strings.TrimSpace(rest[:nl]); lang == "" || len(lang) <= 10 {
			rest = rest[nl+1:]
		}
	}
	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// parseConfidence accepts numeric confidences as well as "65%"-style
// strings; percent strings are scaled to [0,1]. Missing or unparseable
// values default to 0.
func parseConfidence(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	if percent {
		return f / 100
	}
	return f
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
