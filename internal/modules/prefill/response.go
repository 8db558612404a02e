package prefill

import (
	"encoding/json"

	"github.com/aristath/prefill/internal/domain"
)

// Body is the wire form of a Result. Suggested values, explanations and
// confidences are parallel maps keyed by field name.
type Body struct {
	Suggestions     map[Field]interface{}      `json:"suggestions"`
	Explanations    map[Field]string           `json:"explanations"`
	Confidence      map[Field]float64          `json:"confidence"`
	ComputedUrgency int                        `json:"computed_urgency"`
	Urgency         int                        `json:"urgency_score"`
	Breakdown       []BreakdownEntry           `json:"urgency_breakdown"`
	ScenarioTag     string                     `json:"scenario_tag"`
	ScenarioLabel   string                     `json:"scenario_label"`
	WhyNot          map[domain.AlgoType]string `json:"why_not"`
	Notes           ParsedNotes                `json:"parsed_notes"`
	History         HistoryStats               `json:"history"`
	CrossClient     CrossClientStats           `json:"cross_client"`
}

// Body flattens the suggestion set into the wire form
func (r Result) Body() Body {
	b := Body{
		Suggestions:     make(map[Field]interface{}, len(r.Suggestions)),
		Explanations:    make(map[Field]string, len(r.Suggestions)),
		Confidence:      make(map[Field]float64, len(r.Suggestions)),
		ComputedUrgency: r.ComputedUrgency,
		Urgency:         r.Urgency,
		Breakdown:       r.Breakdown,
		ScenarioTag:     r.ScenarioTag,
		ScenarioLabel:   r.ScenarioLabel,
		WhyNot:          r.WhyNot,
		Notes:           r.Notes,
		History:         r.History,
		CrossClient:     r.CrossClient,
	}
	for field, s := range r.Suggestions {
		b.Suggestions[field] = s.Value
		b.Explanations[field] = s.Explanation
		b.Confidence[field] = s.Confidence
	}
	if b.Breakdown == nil {
		b.Breakdown = []BreakdownEntry{}
	}
	if b.WhyNot == nil {
		b.WhyNot = map[domain.AlgoType]string{}
	}
	return b
}

// MarshalJSON encodes the result in its wire form
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Body())
}
