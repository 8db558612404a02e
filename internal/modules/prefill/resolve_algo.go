package prefill

import (
	"fmt"
	"math"
	"strings"

	"github.com/aristath/prefill/internal/domain"
)

const (
	algoRuleNotes  = "notes"
	algoRuleDirect = "direct"
	algoRuleTag    = "tag"
	algoRuleMatrix = "matrix"
)

func (e *Engine) buildAlgoRules() chain[domain.AlgoType] {
	a := e.rules.Algo
	highTier := func(f *facts) bool { return float64(f.urgency) >= a.HighUrgency }
	lowTier := func(f *facts) bool { return float64(f.urgency) <= a.LowUrgency }
	medTier := func(f *facts) bool { return !highTier(f) && !lowTier(f) }
	sizeAtLeast := func(pct float64) func(f *facts) bool {
		return func(f *facts) bool { return f.sizePct >= pct }
	}
	both := func(p, q func(f *facts) bool) func(f *facts) bool {
		return func(f *facts) bool { return p(f) && q(f) }
	}

	return chain[domain.AlgoType]{
		{
			name:       algoRuleNotes,
			when:       func(f *facts) bool { return f.notes.Algo != "" },
			value:      func(f *facts) domain.AlgoType { return f.notes.Algo },
			confidence: conf(a.NotesConfidence),
			explain:    func(f *facts) string { return fmt.Sprintf("Order notes explicitly request %s", f.notes.Algo) },
		},
		{
			name: algoRuleDirect,
			when: func(f *facts) bool {
				return float64(f.urgency) >= a.DirectUrgency && f.sizePct < a.DirectSizeMax
			},
			value:      is(domain.AlgoNone),
			confidence: conf(a.DirectConfidence),
			explain: func(f *facts) string {
				return fmt.Sprintf("Very high urgency (%d/100) with small order (%.1f%% ADV): direct execution for maximum speed", f.urgency, f.sizePct)
			},
		},
		{
			name:       algoRuleTag,
			when:       func(f *facts) bool { return f.tag == domain.TagComplianceDriven },
			value:      is(domain.AlgoVWAP),
			confidence: conf(a.ComplianceConfidence),
			explain: func(f *facts) string {
				return fmt.Sprintf("Client has EOD compliance pattern: VWAP distributes execution over remaining %dmin to ensure fill by close", f.ttc)
			},
		},
		{
			name:       algoRuleTag,
			when:       func(f *facts) bool { return f.tag == domain.TagStealth },
			value:      is(domain.AlgoIceberg),
			confidence: conf(a.StealthConfidence),
			explain:    text("Stealth client: ICEBERG hides the full size to minimise footprint"),
		},
		{
			name:       algoRuleTag,
			when:       func(f *facts) bool { return f.tag == domain.TagBenchmarkDriven },
			value:      is(domain.AlgoPOV),
			confidence: conf(a.BenchmarkConfidence),
			explain:    text("Arrival price benchmark: POV keeps execution in step with volume to track arrival"),
		},
		{
			name:       algoRuleTag,
			when:       func(f *facts) bool { return f.tag == domain.TagSpeedDriven && f.sizePct < a.SpeedSmallSize },
			value:      is(domain.AlgoNone),
			confidence: conf(a.SpeedConfidence),
			explain: func(f *facts) string {
				return fmt.Sprintf("Small order (%.1f%% ADV) for speed-driven client: direct execution", f.sizePct)
			},
		},

		{
			name: algoRuleMatrix, when: both(highTier, sizeAtLeast(a.HighLargeSize)),
			value: is(domain.AlgoPOV), confidence: conf(a.HighLargeConf),
			explain: func(f *facts) string {
				return fmt.Sprintf("High urgency (%d/100) with significant size (%.1f%% ADV): POV for fast controlled participation", f.urgency, f.sizePct)
			},
		},
		{
			name: algoRuleMatrix, when: both(highTier, sizeAtLeast(a.HighMidSize)),
			value: is(domain.AlgoPOV), confidence: conf(a.HighMidConf),
			explain: func(f *facts) string {
				return fmt.Sprintf("High urgency (%d/100): POV provides speed while managing impact", f.urgency)
			},
		},
		{
			name: algoRuleMatrix, when: highTier,
			value: is(domain.AlgoNone), confidence: conf(a.HighSmallConf),
			explain: func(f *facts) string {
				return fmt.Sprintf("High urgency (%d/100) with small order: direct execution", f.urgency)
			},
		},
		{
			name: algoRuleMatrix, when: both(lowTier, sizeAtLeast(a.LowLargeSize)),
			value: is(domain.AlgoIceberg), confidence: conf(a.LowLargeConf),
			explain: func(f *facts) string {
				return fmt.Sprintf("Low urgency (%d/100) and large order (%.1f%% ADV): ICEBERG for patient accumulation", f.urgency, f.sizePct)
			},
		},
		{
			name: algoRuleMatrix, when: both(lowTier, sizeAtLeast(a.LowMidSize)),
			value: is(domain.AlgoVWAP), confidence: conf(a.LowMidConf),
			explain: func(f *facts) string {
				return fmt.Sprintf("Low urgency (%d/100): VWAP for patient volume-weighted distribution", f.urgency)
			},
		},
		{
			name: algoRuleMatrix, when: lowTier,
			value: is(domain.AlgoNone), confidence: conf(a.LowSmallConf),
			explain: func(f *facts) string {
				return fmt.Sprintf("Low urgency and small order (%.1f%% ADV): direct execution sufficient", f.sizePct)
			},
		},
		{
			name: algoRuleMatrix, when: both(medTier, sizeAtLeast(a.MedVeryLarge)),
			value: is(domain.AlgoIceberg), confidence: conf(a.MedVeryLargeConf),
			explain: func(f *facts) string {
				return fmt.Sprintf("Large order (%.1f%% ADV): ICEBERG hides size to reduce impact", f.sizePct)
			},
		},
		{
			name: algoRuleMatrix, when: both(medTier, sizeAtLeast(a.MedLargeSize)),
			value: is(domain.AlgoVWAP), confidence: conf(a.MedLargeConf),
			explain: func(f *facts) string {
				return fmt.Sprintf("Significant order (%.1f%% ADV): VWAP distributes evenly", f.sizePct)
			},
		},
		{
			name: algoRuleMatrix, when: both(medTier, sizeAtLeast(a.MedMidSize)),
			value: is(domain.AlgoPOV), confidence: conf(a.MedMidConf),
			explain: func(f *facts) string {
				return fmt.Sprintf("Mid-size order (%.1f%% ADV): POV balances speed and impact", f.sizePct)
			},
		},
		{
			name: algoRuleMatrix, when: always,
			value: is(domain.AlgoNone), confidence: conf(a.MedSmallConf),
			explain: func(f *facts) string {
				return fmt.Sprintf("Small order (%.1f%% ADV): direct execution is sufficient", f.sizePct)
			},
		},
	}
}

func (e *Engine) resolveAlgo(f *facts, s SuggestionSet) {
	o, _ := e.algoRules.resolve(f)
	algo, confidence := o.Value, o.Confidence
	var reason strings.Builder
	reason.WriteString(o.Explanation)

	h := e.rules.Historical
	if o.Rule != algoRuleNotes && f.histWeight > 0 && f.hist.PreferredAlgo != "" && f.hist.PreferredAlgo != algo {
		effective := f.histWeight * f.hist.Similarity(f.vol)
		if o.Rule == algoRuleMatrix && effective >= h.SimilarityThreshold {
			ruleAlgo := algo
			algo = f.hist.PreferredAlgo
			reason.Reset()
			fmt.Fprintf(&reason, "Blended: history (%d orders) prefers %s (weight %.0f%%), rules suggested %s. Market conditions similar (hist vol %.1f%% vs current %.1f%%)",
				f.hist.Count, algo, effective*100, ruleAlgo, f.hist.AvgVolatility, f.vol)
			confidence = math.Min(h.ConfidenceCeiling, confidence*(1-f.histWeight)+h.BlendAnchor*effective)
		} else {
			fmt.Fprintf(&reason, ". Note: client used %s in %d of %d past %s orders",
				f.hist.PreferredAlgo, f.hist.PreferredAlgoCount, f.hist.Count, f.order.Symbol)
			confidence = math.Min(h.ConfidenceCeiling, confidence+f.histWeight*h.AnnotationBoost)
		}
	}

	cc := e.rules.CrossClient
	if float64(f.cross.Total) >= cc.MinOrders && float64(f.cross.DominantPct) >= cc.MinPct {
		if f.cross.Dominant != algo {
			fmt.Fprintf(&reason, ". Market pattern: %d%% of similar-sized %s orders across all clients use %s",
				f.cross.DominantPct, f.order.Symbol, f.cross.Dominant)
		} else {
			fmt.Fprintf(&reason, ". Consistent with %d%% of similar-sized %s orders across all clients",
				f.cross.DominantPct, f.order.Symbol)
		}
	}

	f.algo = algo
	s.put(FieldAlgoType, string(algo), confidence, reason.String())
}
