package prefill

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/prefill/internal/domain"
)

func factorDelta(breakdown []BreakdownEntry, factor string) (float64, bool) {
	for _, e := range breakdown {
		if e.Factor == factor {
			return e.Delta, true
		}
	}
	return 0, false
}

func TestScoreUrgency_ExclusiveBrackets(t *testing.T) {
	r := DefaultRules().Urgency

	tests := []struct {
		name   string
		factor string
		in     UrgencyInput
		delta  float64
	}{
		{"critical time only takes tightest bracket", "Time Pressure", UrgencyInput{MinutesToClose: 5, RiskAversion: 50, SizePctADV: 7}, 35},
		{"tight time", "Time Pressure", UrgencyInput{MinutesToClose: 15, RiskAversion: 50, SizePctADV: 7}, 25},
		{"approaching time", "Time Pressure", UrgencyInput{MinutesToClose: 25, RiskAversion: 50, SizePctADV: 7}, 18},
		{"mild time", "Time Pressure", UrgencyInput{MinutesToClose: 45, RiskAversion: 50, SizePctADV: 7}, 10},
		{"plenty of time", "Time Pressure", UrgencyInput{MinutesToClose: 300, RiskAversion: 50, SizePctADV: 7}, -10},
		{"very large size", "Order Size", UrgencyInput{MinutesToClose: 120, RiskAversion: 50, SizePctADV: 25}, -12},
		{"large size", "Order Size", UrgencyInput{MinutesToClose: 120, RiskAversion: 50, SizePctADV: 12}, -5},
		{"small size", "Order Size", UrgencyInput{MinutesToClose: 120, RiskAversion: 50, SizePctADV: 1}, 10},
		{"moderate size", "Order Size", UrgencyInput{MinutesToClose: 120, RiskAversion: 50, SizePctADV: 4}, 5},
		{"high volatility", "Volatility", UrgencyInput{MinutesToClose: 120, RiskAversion: 50, SizePctADV: 7, VolatilityPct: 3.5}, -8},
		{"low volatility", "Volatility", UrgencyInput{MinutesToClose: 120, RiskAversion: 50, SizePctADV: 7, VolatilityPct: 1.0}, 5},
		{"imminent deadline", "Deadline", UrgencyInput{MinutesToClose: 120, RiskAversion: 50, SizePctADV: 7, MinutesToDeadline: intPtr(20)}, 20},
		{"approaching deadline", "Deadline", UrgencyInput{MinutesToClose: 120, RiskAversion: 50, SizePctADV: 7, MinutesToDeadline: intPtr(45)}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, breakdown := ScoreUrgency(tt.in, r)
			delta, ok := factorDelta(breakdown, tt.factor)
			assert.True(t, ok)
			assert.Equal(t, tt.delta, delta)

			count := 0
			for _, e := range breakdown {
				if e.Factor == tt.factor {
					count++
				}
			}
			assert.Equal(t, 1, count, "one bracket per factor")
		})
	}
}

func TestScoreUrgency_MissingVolatilityCountsAsCalm(t *testing.T) {
	score, breakdown := ScoreUrgency(UrgencyInput{MinutesToClose: 120, RiskAversion: 50, SizePctADV: 7}, DefaultRules().Urgency)

	delta, ok := factorDelta(breakdown, "Volatility")
	assert.True(t, ok)
	assert.Equal(t, 5.0, delta)
	assert.Equal(t, 55, score)
}

func TestScoreUrgency_ComplianceExample(t *testing.T) {
	score, breakdown := ScoreUrgency(UrgencyInput{
		MinutesToClose: 90,
		Tag:            domain.TagComplianceDriven,
		SizePctADV:     4,
		VolatilityPct:  1.8,
		RiskAversion:   60,
	}, DefaultRules().Urgency)

	// 50 + 12 + 5 - 1.5 = 65.5, rounded half to even
	assert.Equal(t, 66, score)
	risk, ok := factorDelta(breakdown, "Risk Aversion")
	assert.True(t, ok)
	assert.InDelta(t, -1.5, risk, 1e-9)
}

func TestScoreUrgency_Clamped(t *testing.T) {
	r := DefaultRules().Urgency

	high, breakdown := ScoreUrgency(UrgencyInput{
		MinutesToClose:    3,
		Tag:               domain.TagSpeedDriven,
		SizePctADV:        0.5,
		VolatilityPct:     0.5,
		Notes:             ParsedNotes{Urgency: UrgencyHintHigh, GetDone: true},
		RiskAversion:      0,
		MinutesToDeadline: intPtr(5),
	}, r)
	assert.Equal(t, 100, high)
	_, ok := factorDelta(breakdown, "Clamped")
	assert.True(t, ok)

	low, _ := ScoreUrgency(UrgencyInput{
		MinutesToClose: 360,
		Tag:            domain.TagConservative,
		SizePctADV:     40,
		VolatilityPct:  5,
		Notes:          ParsedNotes{Urgency: UrgencyHintLow},
		RiskAversion:   100,
	}, r)
	assert.Equal(t, 0, low)
}

func TestScoreUrgency_AlwaysInRange(t *testing.T) {
	r := DefaultRules().Urgency
	rng := rand.New(rand.NewSource(42))
	tags := []domain.ClientTag{
		domain.TagNone, domain.TagComplianceDriven, domain.TagSpeedDriven,
		domain.TagStealth, domain.TagConservative, domain.TagBenchmarkDriven,
	}
	hints := []UrgencyHint{UrgencyHintNone, UrgencyHintHigh, UrgencyHintLow}

	for i := 0; i < 5000; i++ {
		in := UrgencyInput{
			MinutesToClose: rng.Intn(400),
			Tag:            tags[rng.Intn(len(tags))],
			SizePctADV:     rng.Float64() * 50,
			VolatilityPct:  rng.Float64() * 6,
			Notes:          ParsedNotes{Urgency: hints[rng.Intn(len(hints))], GetDone: rng.Intn(2) == 0},
			RiskAversion:   rng.Intn(101),
		}
		if rng.Intn(2) == 0 {
			in.MinutesToDeadline = intPtr(rng.Intn(200) - 50)
		}

		score, breakdown := ScoreUrgency(in, r)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
		assert.NotEmpty(t, breakdown)
	}
}

func intPtr(v int) *int { return &v }
