package prefill

import (
	"fmt"

	"github.com/aristath/prefill/internal/domain"
)

// buildAggressionRules puts the risk-aversion overrides ahead of the urgency tiers
func (e *Engine) buildAggressionRules() chain[domain.Aggression] {
	r := e.rules.Aggression
	high := func(f *facts) bool { return float64(f.urgency) >= r.HighThreshold }

	return chain[domain.Aggression]{
		{
			name: "conservative_mandate",
			when: func(f *facts) bool {
				return float64(f.riskAversion) >= r.ConservativeRisk && !high(f)
			},
			value: is(domain.AggressionLow),
			explain: func(f *facts) string {
				return fmt.Sprintf("Client risk aversion %d/100 overrides to Low aggression (urgency %d/100)", f.riskAversion, f.urgency)
			},
		},
		{
			name: "aggressive_mandate",
			when: func(f *facts) bool {
				return float64(f.riskAversion) <= r.AggressiveRisk && float64(f.urgency) >= r.AggressiveUrgency && !high(f)
			},
			value: is(domain.AggressionHigh),
			explain: func(f *facts) string {
				return fmt.Sprintf("Client risk aversion %d/100 pushes to High aggression (urgency %d/100)", f.riskAversion, f.urgency)
			},
		},
		{
			name:  "high_urgency",
			when:  high,
			value: is(domain.AggressionHigh),
			explain: func(f *facts) string {
				return fmt.Sprintf("High urgency (%d/100): aggressive execution to ensure timely completion", f.urgency)
			},
		},
		{
			name:  "moderate_urgency",
			when:  func(f *facts) bool { return float64(f.urgency) >= r.MedThreshold },
			value: is(domain.AggressionMedium),
			explain: func(f *facts) string {
				return fmt.Sprintf("Moderate urgency (%d/100): balanced approach between speed and impact", f.urgency)
			},
		},
		{
			name:  "low_urgency",
			when:  always,
			value: is(domain.AggressionLow),
			explain: func(f *facts) string {
				return fmt.Sprintf("Low urgency (%d/100): passive execution to minimise market footprint", f.urgency)
			},
		},
	}
}

func (e *Engine) resolveAggression(f *facts, s SuggestionSet) {
	if !f.algo.IsAlgo() {
		return
	}
	o, _ := e.aggressionRules.resolve(f)
	level, reason := o.Value, o.Explanation

	if hist := f.hist.AggressionLevel(); f.histWeight > 0 && hist != domain.AggressionUnknown &&
		float64(f.hist.Count) >= e.rules.Aggression.MinOrdersBlend && hist != level {
		reason = fmt.Sprintf("Blended: history avg is %s (%.1f over %d orders), adjusted from rules (%s)",
			hist, f.hist.AvgAggression, f.hist.Count, level)
		level = hist
	}
	s.put(FieldAggression, level.String(), e.rules.Aggression.Confidence, reason)
}
