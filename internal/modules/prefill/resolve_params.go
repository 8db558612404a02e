package prefill

import (
	"fmt"
	"math"

	"github.com/aristath/prefill/internal/domain"
)

func (e *Engine) resolveAlgoParams(f *facts, s SuggestionSet) {
	switch f.algo {
	case domain.AlgoPOV:
		e.resolvePOV(f, s)
	case domain.AlgoVWAP:
		e.resolveVWAP(f, s)
	case domain.AlgoIceberg:
		e.resolveIceberg(f, s)
	}
}

// participationRate applies the urgency/size table, then the size floor, then
// the near-close raise, which wins over the floor.
func (e *Engine) participationRate(f *facts) float64 {
	r := e.rules.POV
	small := f.sizePct < r.SizeSplit

	rate := r.RateDefault
	switch u := float64(f.urgency); {
	case u >= r.HighUrgency && small:
		rate = r.RateHighSmall
	case u >= r.HighUrgency:
		rate = r.RateHighLarge
	case u >= r.MedUrgency && small:
		rate = r.RateMedSmall
	case u >= r.MedUrgency:
		rate = r.RateMedLarge
	}
	if f.sizePct > r.VeryLargeSize {
		rate = r.RateVeryLarge
	}
	if float64(f.ttc) < r.CloseThreshold {
		rate = math.Max(rate, r.RateNearClose)
	}
	return rate
}

func (e *Engine) resolvePOV(f *facts, s SuggestionSet) {
	r := e.rules.POV
	rate := e.participationRate(f)
	reason := fmt.Sprintf("Target %g%% participation: urgency %d/100, order %.1f%% of ADV, %dmin to close",
		rate, f.urgency, f.sizePct, f.ttc)
	if limit, ok := f.notes.Constraint(ConstraintMaxParticipation); ok && limit < rate {
		rate = limit
		reason = fmt.Sprintf("Target %g%% participation: capped by order notes maximum", rate)
	}
	s.put(FieldParticipationRate, rate, r.RateConfidence, reason)

	ats := float64(f.avgTradeSize)
	minSize := max(int(r.MinSizeFloor), int(ats*r.MinSizeMult))
	maxSize := max(int(float64(minSize)*r.MaxSizeMinRatio), int(ats*r.MaxSizeMult))
	s.put(FieldMinOrderSize, minSize, r.SizeConfidence,
		fmt.Sprintf("~%.0f%% of avg trade size (%d) to avoid odd lots", r.MinSizeMult*100, f.avgTradeSize))
	s.put(FieldMaxOrderSize, maxSize, r.SizeConfidence,
		fmt.Sprintf("~%.0fx avg trade size (%d) to stay within normal flow", r.MaxSizeMult, f.avgTradeSize))
}

func (e *Engine) buildCurveRules() chain[string] {
	r := e.rules.VWAP
	return chain[string]{
		{
			name:  "urgency",
			when:  func(f *facts) bool { return float64(f.urgency) >= r.FrontLoadUrgency },
			value: is("Front-loaded"),
			explain: func(f *facts) string {
				return fmt.Sprintf("High urgency (%d/100): front-loaded to fill the majority early", f.urgency)
			},
		},
		{
			name:    "compliance",
			when:    func(f *facts) bool { return f.tag == domain.TagComplianceDriven },
			value:   is("Back-loaded"),
			explain: text("EOD compliance: back-loaded curve concentrates volume toward close"),
		},
		{
			name:  "time",
			when:  func(f *facts) bool { return float64(f.ttc) < r.FrontLoadTime },
			value: is("Front-loaded"),
			explain: func(f *facts) string {
				return fmt.Sprintf("Limited time (%dmin): front-loaded to ensure completion", f.ttc)
			},
		},
		{
			name:    "historical",
			when:    always,
			value:   is("Historical"),
			explain: text("Historical curve: follows the natural U-shaped volume distribution for minimal impact"),
		},
	}
}

func (e *Engine) resolveVWAP(f *facts, s SuggestionSet) {
	r := e.rules.VWAP
	o, _ := e.curveRules.resolve(f)
	s.put(FieldVolumeCurve, o.Value, r.CurveConfidence, o.Explanation)

	maxVol := r.MaxVolSmall
	switch {
	case f.sizePct > r.SizeLarge:
		maxVol = r.MaxVolLarge
	case f.sizePct > r.SizeMedium:
		maxVol = r.MaxVolMedium
	}
	reason := fmt.Sprintf("Cap at %g%% per interval: limits single-period market participation", maxVol)
	if limit, ok := f.notes.Constraint(ConstraintMaxParticipation); ok && limit < maxVol {
		maxVol = limit
		reason = fmt.Sprintf("Cap at %g%% per interval: order notes maximum", maxVol)
	}
	s.put(FieldMaxVolumePct, maxVol, r.MaxVolConfidence, reason)
}

func (e *Engine) resolveIceberg(f *facts, s SuggestionSet) {
	r := e.rules.Iceberg
	floor := int(r.MinDisplay)
	byPct := max(floor, int(float64(f.quantity)*r.DisplayPct))
	byFlow := max(floor, int(float64(f.avgTradeSize)*r.AvgTradeMult))
	display := max(floor, min(byPct, byFlow))

	share := 0.0
	if f.quantity > 0 {
		share = float64(display) / float64(f.quantity) * 100
	}
	s.put(FieldDisplayQuantity, display, r.Confidence,
		fmt.Sprintf("Display ~%.0f%% of total order (%d shares): blends with avg trade flow (%d)", share, display, f.avgTradeSize))
}
