package prefill

import (
	"fmt"
	"strings"

	"github.com/aristath/prefill/internal/domain"
)

// noteClause contributes one fixed-format clause to the generated notes.
// Clauses render in slice order.
type noteClause func(e *Engine, f *facts) (string, bool)

var noteClauses = []noteClause{
	func(_ *Engine, f *facts) (string, bool) {
		return "EOD compliance required", f.tag == domain.TagComplianceDriven
	},
	func(_ *Engine, f *facts) (string, bool) {
		return "Minimize market impact: stealth execution", f.tag == domain.TagStealth
	},
	func(_ *Engine, f *facts) (string, bool) {
		return fmt.Sprintf("Benchmark: arrival price (₹%.2f)", f.price), f.tag == domain.TagBenchmarkDriven && f.price > 0
	},
	func(e *Engine, f *facts) (string, bool) {
		return fmt.Sprintf("Large block: %.1f%% of ADV", f.sizePct), f.sizePct > e.rules.Notes.LargeBlockPct
	},
	func(_ *Engine, f *facts) (string, bool) {
		return "Get Done: must complete", f.getDone
	},
	func(_ *Engine, f *facts) (string, bool) {
		if f.notes.Deadline == nil {
			return "", false
		}
		return "Deadline: " + f.notes.Deadline.String(), true
	},
}

func (e *Engine) resolveNotesTemplate(f *facts, s SuggestionSet) {
	var parts []string
	for _, clause := range noteClauses {
		if part, ok := clause(e, f); ok {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return
	}
	s.put(FieldOrderNotes, strings.Join(parts, " | "), e.rules.Notes.Confidence,
		"Auto-generated from client profile and order context")
}
