package engagement

import "fmt"

const steadySuggestion = "Engagement stayed steady; keep the same pacing and interactive elements."

// SuggestionRules turns aggregates and highlights into coaching feedback.
// Each rule contributes at most one message, in a fixed order.
type SuggestionRules struct {
	LowAttention  float64
	LowEngagement float64
}

func (r SuggestionRules) Generate(avgEngagement, avgAttention float64, peaks, dips []TimelineHighlight) []string {
	var out []string
	if len(peaks) > 0 {
		p := peaks[0]
		out = append(out, fmt.Sprintf(
			"High engagement (%.0f%%) near %s - reuse the activity or storytelling there.",
			p.EngagementRatio*100, FormatTimestamp(p.Timestamp)))
	}
	if len(dips) > 0 {
		d := dips[0]
		out = append(out, fmt.Sprintf(
			"Engagement dipped to %.0f%% near %s - insert a poll, question, or visual aid.",
			d.EngagementRatio*100, FormatTimestamp(d.Timestamp)))
	}
	if avgAttention < r.LowAttention {
		out = append(out, fmt.Sprintf(
			"Average attention stayed below %.0f%% - slow the pace, make eye contact, or ask the audience to reflect.",
			r.LowAttention*100))
	}
	if avgEngagement < r.LowEngagement {
		out = append(out, "Overall engagement is low - interleave stories or interactive questions every few minutes.")
	}
	if len(out) == 0 {
		out = append(out, steadySuggestion)
	}
	return out
}
