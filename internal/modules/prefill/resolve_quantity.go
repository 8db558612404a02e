package prefill

import (
	"fmt"
	"math"
)

// QuantityConfidence grows with history depth and saturates at BaseConfidence+MaxBoost
func QuantityConfidence(orders int, r QuantityRules) float64 {
	return r.BaseConfidence + math.Min(r.MaxBoost, math.Max(0, float64(orders)*r.PerOrder))
}

func (e *Engine) resolveQuantity(f *facts, s SuggestionSet) {
	if f.order.Quantity != nil && *f.order.Quantity > 0 {
		return
	}
	qty, basis := f.hist.MedianQuantity, "Median"
	if qty <= 0 {
		qty, basis = f.hist.AvgQuantity, "Average"
	}
	if qty <= 0 {
		return
	}
	s.put(FieldQuantity, qty, QuantityConfidence(f.hist.Count, e.rules.Quantity),
		fmt.Sprintf("%s from %d previous %s orders (median: %d, avg: %d)",
			basis, f.hist.Count, f.order.Symbol, f.hist.MedianQuantity, f.hist.AvgQuantity))
}
