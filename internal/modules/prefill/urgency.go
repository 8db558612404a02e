package prefill

import (
	"fmt"
	"math"

	"github.com/aristath/prefill/internal/domain"
)

// BreakdownEntry is one factor's contribution to the urgency score
type BreakdownEntry struct {
	Factor    string  `json:"factor"`
	Detail    string  `json:"detail"`
	Delta     float64 `json:"delta"`
	Rationale string  `json:"rationale,omitempty"`
}

// UrgencyInput carries the factors the score is built from.
// MinutesToDeadline is nil when the notes carry no deadline.
type UrgencyInput struct {
	MinutesToClose    int
	Tag               domain.ClientTag
	SizePctADV        float64
	VolatilityPct     float64
	Notes             ParsedNotes
	RiskAversion      int
	MinutesToDeadline *int
}

// ScoreUrgency sums the baseline and every factor, one bracket per factor,
// then rounds half to even and clamps to [0,100].
func ScoreUrgency(in UrgencyInput, r UrgencyRules) (int, []BreakdownEntry) {
	breakdown := []BreakdownEntry{{
		Factor:    "Baseline",
		Detail:    "Starting value",
		Delta:     r.Baseline,
		Rationale: "Neutral starting point before context adjustments",
	}}
	add := func(e BreakdownEntry) {
		if e.Delta != 0 {
			breakdown = append(breakdown, e)
		}
	}

	add(timePressure(in.MinutesToClose, r))
	add(tagFactor(in.Tag, r))
	add(sizeFactor(in.SizePctADV, r))
	add(volatilityFactor(in.VolatilityPct, r))

	switch in.Notes.Urgency {
	case UrgencyHintHigh:
		add(BreakdownEntry{Factor: "Order Notes", Detail: "Urgent language detected", Delta: r.NotesUrgentDelta,
			Rationale: "Trader notes ask for speed"})
	case UrgencyHintLow:
		add(BreakdownEntry{Factor: "Order Notes", Detail: "Patient language detected", Delta: r.NotesPatientDelta,
			Rationale: "Trader notes ask for patience"})
	}
	if in.Notes.GetDone {
		add(BreakdownEntry{Factor: "Get Done Flag", Detail: "Must-fill intent in notes", Delta: r.NotesGetDoneDelta,
			Rationale: "Completion mandate leaves less room to wait"})
	}
	if in.MinutesToDeadline != nil {
		add(deadlineFactor(*in.MinutesToDeadline, r))
	}

	risk := float64(domain.DefaultRiskAversion-in.RiskAversion) * r.RiskAversionFactor
	if risk != 0 {
		label := "aggressive"
		if risk < 0 {
			label = "conservative"
		}
		add(BreakdownEntry{
			Factor:    "Risk Aversion",
			Detail:    fmt.Sprintf("Risk aversion %d/100 (%s)", in.RiskAversion, label),
			Delta:     risk,
			Rationale: "Light tilt toward the client's risk appetite",
		})
	}

	raw := 0.0
	for _, e := range breakdown {
		raw += e.Delta
	}
	final := clampScore(math.RoundToEven(raw))
	if raw < 0 || raw > 100 {
		breakdown = append(breakdown, BreakdownEntry{
			Factor: "Clamped",
			Detail: "Score clamped to 0-100 range",
			Delta:  float64(final) - raw,
		})
	}
	return final, breakdown
}

func clampScore(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

func timePressure(ttc int, r UrgencyRules) BreakdownEntry {
	e := BreakdownEntry{Factor: "Time Pressure", Rationale: "Less session time left means less room to work the order"}
	t := float64(ttc)
	switch {
	case t < r.CloseCriticalMin:
		e.Delta, e.Detail = r.CloseCriticalDelta, fmt.Sprintf("%d min to close (critical)", ttc)
	case t < r.CloseTightMin:
		e.Delta, e.Detail = r.CloseTightDelta, fmt.Sprintf("%d min to close (tight)", ttc)
	case t < r.CloseApproachingMin:
		e.Delta, e.Detail = r.CloseApproachingDelta, fmt.Sprintf("%d min to close (approaching)", ttc)
	case t < r.CloseMildMin:
		e.Delta, e.Detail = r.CloseMildDelta, fmt.Sprintf("%d min to close (mild pressure)", ttc)
	case t > r.OpenPlentyMin:
		e.Delta, e.Detail = r.OpenPlentyDelta, fmt.Sprintf("%d min to close (plenty of time)", ttc)
		e.Rationale = "Most of the session remains"
	}
	return e
}

func tagFactor(tag domain.ClientTag, r UrgencyRules) BreakdownEntry {
	e := BreakdownEntry{Factor: "Client Profile", Detail: "Tag: " + string(tag)}
	switch tag {
	case domain.TagComplianceDriven:
		e.Delta, e.Rationale = r.TagCompliance, "Compliance mandate requires completion by close"
	case domain.TagSpeedDriven:
		e.Delta, e.Rationale = r.TagSpeed, "Speed-driven client values immediacy"
	case domain.TagStealth:
		e.Delta, e.Rationale = r.TagStealth, "Stealth client trades patiently to hide intent"
	case domain.TagConservative:
		e.Delta, e.Rationale = r.TagConservative, "Conservative mandate favours passive execution"
	case domain.TagBenchmarkDriven:
		e.Delta, e.Rationale = r.TagBenchmark, "Arrival benchmark penalises slow execution"
	}
	return e
}

func sizeFactor(pct float64, r UrgencyRules) BreakdownEntry {
	e := BreakdownEntry{Factor: "Order Size"}
	switch {
	case pct > r.SizeVeryLargePct:
		e.Delta, e.Detail = r.SizeVeryLargeDelta, fmt.Sprintf("%.1f%% of ADV (very large)", pct)
		e.Rationale = "Very large orders need time to avoid impact"
	case pct > r.SizeLargePct:
		e.Delta, e.Detail = r.SizeLargeDelta, fmt.Sprintf("%.1f%% of ADV (large)", pct)
		e.Rationale = "Large orders need some patience"
	case pct < r.SizeSmallPct:
		e.Delta, e.Detail = r.SizeSmallDelta, fmt.Sprintf("%.1f%% of ADV (small)", pct)
		e.Rationale = "Small orders can complete quickly"
	case pct < r.SizeModeratePct:
		e.Delta, e.Detail = r.SizeModerateDelta, fmt.Sprintf("%.1f%% of ADV (moderate)", pct)
		e.Rationale = "Moderate size is absorbed without much impact"
	}
	return e
}

func volatilityFactor(vol float64, r UrgencyRules) BreakdownEntry {
	e := BreakdownEntry{Factor: "Volatility"}
	switch {
	case vol > r.VolHighThreshold:
		e.Delta, e.Detail = r.VolHighDelta, fmt.Sprintf("%.2f%% (high)", vol)
		e.Rationale = "High volatility calls for more careful execution"
	case vol < r.VolLowThreshold:
		e.Delta, e.Detail = r.VolLowDelta, fmt.Sprintf("%.2f%% (low)", vol)
		e.Rationale = "Calm market allows faster execution"
	}
	return e
}

func deadlineFactor(mins int, r UrgencyRules) BreakdownEntry {
	e := BreakdownEntry{Factor: "Deadline", Rationale: "Notes deadline is close"}
	m := float64(mins)
	switch {
	case mins > 0 && m < r.DeadlineImminentMin:
		e.Delta, e.Detail = r.DeadlineImminentDelta, fmt.Sprintf("%d min away (imminent)", mins)
	case mins > 0 && m < r.DeadlineApproachingMin:
		e.Delta, e.Detail = r.DeadlineApproachingDelta, fmt.Sprintf("%d min away (approaching)", mins)
	}
	return e
}
