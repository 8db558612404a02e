package prefill

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/prefill/internal/domain"
	"github.com/aristath/prefill/internal/modules/session"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultRules(), session.Default())
	require.NoError(t, err)
	return e
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 10, 14, hour, minute, 0, 0, session.IST)
}

func testInput(now time.Time, tag domain.ClientTag, qty int) Input {
	return Input{
		Order: domain.OrderContext{
			ClientID:  "C001",
			Symbol:    "RELIANCE",
			Direction: domain.DirectionBuy,
			Quantity:  intPtr(qty),
		},
		Client:     domain.ClientProfile{ID: "C001", Name: "Test Client", Tag: tag, RiskAversion: 50},
		Instrument: domain.Instrument{Symbol: "RELIANCE", ADV: 1_000_000, TickSize: 0.05},
		Market:     domain.MarketSnapshot{Symbol: "RELIANCE", LastPrice: 2500, VolatilityPct: 1.8, AvgTradeSize: 500},
		Now:        now,
	}
}

func value(t *testing.T, r Result, f Field) interface{} {
	t.Helper()
	s, ok := r.Suggestions[f]
	require.True(t, ok, "missing suggestion %s", f)
	return s.Value
}

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	rules := DefaultRules()
	rules.Algo.NotesConfidence = 2
	_, err := NewEngine(rules, session.Default())
	assert.Error(t, err)

	_, err = NewEngine(DefaultRules(), session.Hours{Open: session.NewClock(15, 0), Close: session.NewClock(9, 0)})
	assert.Error(t, err)
}

func TestCompute_ComplianceClient(t *testing.T) {
	e := newTestEngine(t)
	in := testInput(at(14, 0), domain.TagComplianceDriven, 40_000)
	in.Client.RiskAversion = 60

	r := e.Compute(in)

	// 50 + 12 (tag) + 5 (4% ADV) - 1.5 (risk) = 65.5
	assert.Equal(t, 66, r.Urgency)
	assert.Equal(t, 66, r.ComputedUrgency)
	assert.Equal(t, "VWAP", value(t, r, FieldAlgoType))
	assert.Equal(t, 0.9, r.Suggestions[FieldAlgoType].Confidence)
	assert.Equal(t, "LIMIT", value(t, r, FieldOrderType))
	assert.Equal(t, 2503.0, value(t, r, FieldLimitPrice))
	assert.Equal(t, "GFD", value(t, r, FieldTIF))
	assert.Equal(t, true, value(t, r, FieldGetDone))
	assert.Equal(t, "14:00", value(t, r, FieldStartTime))
	assert.Equal(t, "15:30", value(t, r, FieldEndTime))
	assert.Equal(t, "Medium", value(t, r, FieldAggression))
	assert.Equal(t, "Front-loaded", value(t, r, FieldVolumeCurve))
	assert.Equal(t, 20.0, value(t, r, FieldMaxVolumePct))
	assert.Equal(t, "EOD compliance required | Get Done: must complete", value(t, r, FieldOrderNotes))
	assert.Equal(t, "eod_compliance", r.ScenarioTag)
	assert.Equal(t, "EOD Compliance Execution", r.ScenarioLabel)

	assert.NotContains(t, r.Suggestions, FieldQuantity, "ticket quantity given")
	assert.NotContains(t, r.Suggestions, FieldParticipationRate)
	assert.NotContains(t, r.Suggestions, FieldDisplayQuantity)

	require.Len(t, r.WhyNot, 3)
	assert.Contains(t, r.WhyNot[domain.AlgoNone], "Direct execution skipped")
	assert.Contains(t, r.WhyNot[domain.AlgoPOV], "EOD compliance")
}

func TestCompute_NotesDeadline(t *testing.T) {
	e := newTestEngine(t)
	in := testInput(at(11, 0), domain.TagStealth, 10_000)
	in.Order.Notes = "VWAP must complete by 2pm"

	r := e.Compute(in)

	assert.Equal(t, "VWAP", value(t, r, FieldAlgoType))
	assert.Equal(t, 0.95, r.Suggestions[FieldAlgoType].Confidence)
	assert.Equal(t, true, value(t, r, FieldGetDone))
	assert.Equal(t, "11:00", value(t, r, FieldStartTime))
	assert.Equal(t, "14:00", value(t, r, FieldEndTime))
	assert.Contains(t, value(t, r, FieldOrderNotes), "Deadline: 14:00")
}

func TestCompute_NotesAlgoWinsEverywhere(t *testing.T) {
	e := newTestEngine(t)
	tags := []domain.ClientTag{
		domain.TagNone, domain.TagComplianceDriven, domain.TagSpeedDriven,
		domain.TagStealth, domain.TagConservative, domain.TagBenchmarkDriven,
	}
	hints := map[string]domain.AlgoType{
		"use iceberg":             domain.AlgoIceberg,
		"pov please":              domain.AlgoPOV,
		"work it on vwap":         domain.AlgoVWAP,
		"percentage of volume ok": domain.AlgoPOV,
	}

	for notes, want := range hints {
		for _, tag := range tags {
			for _, urgency := range []int{0, 50, 100} {
				for _, qty := range []int{1_000, 300_000} {
					in := testInput(at(15, 20), tag, qty)
					in.Order.Notes = notes
					in.Order.UrgencyOverride = intPtr(urgency)
					in.History = []domain.HistoricalOrder{
						histOrder(domain.AlgoNone, qty, domain.AggressionHigh, false, 1.8),
						histOrder(domain.AlgoNone, qty, domain.AggressionHigh, false, 1.8),
						histOrder(domain.AlgoNone, qty, domain.AggressionHigh, false, 1.8),
						histOrder(domain.AlgoNone, qty, domain.AggressionHigh, false, 1.8),
						histOrder(domain.AlgoNone, qty, domain.AggressionHigh, false, 1.8),
					}

					r := e.Compute(in)
					assert.Equal(t, string(want), value(t, r, FieldAlgoType), "notes=%q tag=%s urgency=%d", notes, tag, urgency)
					assert.Equal(t, 0.95, r.Suggestions[FieldAlgoType].Confidence)
				}
			}
		}
	}
}

func TestCompute_HistoryOverridesMatrix(t *testing.T) {
	e := newTestEngine(t)
	in := testInput(at(11, 0), domain.TagNone, 50_000)
	in.Market.VolatilityPct = 2.1

	without := e.Compute(in)
	require.Equal(t, 40, without.Urgency)
	require.Equal(t, "POV", value(t, without, FieldAlgoType))

	in.History = []domain.HistoricalOrder{
		histOrder(domain.AlgoVWAP, 50_000, domain.AggressionMedium, false, 2.0),
		histOrder(domain.AlgoVWAP, 50_000, domain.AggressionMedium, false, 2.0),
		histOrder(domain.AlgoPOV, 50_000, domain.AggressionMedium, false, 2.0),
		histOrder(domain.AlgoVWAP, 50_000, domain.AggressionMedium, false, 2.0),
		histOrder(domain.AlgoVWAP, 50_000, domain.AggressionMedium, false, 2.0),
	}
	with := e.Compute(in)

	assert.Equal(t, "VWAP", value(t, with, FieldAlgoType))
	assert.Contains(t, with.Suggestions[FieldAlgoType].Explanation, "Blended: history (5 orders) prefers VWAP")
	assert.LessOrEqual(t, with.Suggestions[FieldAlgoType].Confidence, 0.95)
	assert.Equal(t, "Medium", value(t, with, FieldAggression))
}

func TestCompute_DissimilarMarketOnlyAnnotates(t *testing.T) {
	e := newTestEngine(t)
	in := testInput(at(11, 0), domain.TagNone, 50_000)
	in.Market.VolatilityPct = 2.1
	in.History = []domain.HistoricalOrder{
		histOrder(domain.AlgoVWAP, 50_000, 0, false, 6.0),
		histOrder(domain.AlgoVWAP, 50_000, 0, false, 6.0),
		histOrder(domain.AlgoVWAP, 50_000, 0, false, 6.0),
	}

	r := e.Compute(in)

	assert.Equal(t, "POV", value(t, r, FieldAlgoType))
	assert.Contains(t, r.Suggestions[FieldAlgoType].Explanation, "Note: client used VWAP in 3 of 3 past RELIANCE orders")
}

func TestCompute_CrossClientAnnotation(t *testing.T) {
	e := newTestEngine(t)
	in := testInput(at(14, 0), domain.TagComplianceDriven, 40_000)
	in.CrossClient = []domain.AlgoCount{
		{AlgoType: domain.AlgoPOV, Count: 8},
		{AlgoType: domain.AlgoVWAP, Count: 2},
	}

	r := e.Compute(in)

	assert.Equal(t, "VWAP", value(t, r, FieldAlgoType))
	assert.Contains(t, r.Suggestions[FieldAlgoType].Explanation,
		"Market pattern: 80% of similar-sized RELIANCE orders across all clients use POV")
	assert.Equal(t, 80, r.CrossClient.DominantPct)
}

func TestCompute_DirectExecution(t *testing.T) {
	e := newTestEngine(t)
	in := testInput(at(11, 0), domain.TagSpeedDriven, 5_000)
	in.Order.UrgencyOverride = intPtr(95)

	r := e.Compute(in)

	assert.Equal(t, "NONE", value(t, r, FieldAlgoType))
	assert.Equal(t, "MARKET", value(t, r, FieldOrderType))
	assert.Equal(t, "IOC", value(t, r, FieldTIF))
	assert.NotContains(t, r.Suggestions, FieldLimitPrice)
	assert.NotContains(t, r.Suggestions, FieldStartTime)
	assert.NotContains(t, r.Suggestions, FieldAggression)
	assert.Equal(t, 95, r.Urgency)
	assert.NotEqual(t, 95, r.ComputedUrgency)
}

func TestCompute_GetDoneForComplianceClients(t *testing.T) {
	e := newTestEngine(t)
	for _, urgency := range []int{0, 10, 50, 99} {
		for _, now := range []time.Time{at(9, 30), at(12, 0), at(15, 25)} {
			in := testInput(now, domain.TagComplianceDriven, 20_000)
			in.Order.UrgencyOverride = intPtr(urgency)
			r := e.Compute(in)
			assert.Equal(t, true, value(t, r, FieldGetDone), "urgency=%d now=%s", urgency, now)
		}
	}
}

func TestCompute_POVParameters(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name  string
		now   time.Time
		qty   int
		notes string
		rate  float64
	}{
		{"medium urgency small order", at(11, 0), 10_000, "", 12},
		{"notes cap participation", at(11, 0), 10_000, "max participation 8%", 8},
		{"very large order floors rate", at(11, 0), 200_000, "", 5},
		{"near close overrides size floor", at(15, 0), 200_000, "", 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInput(tt.now, domain.TagBenchmarkDriven, tt.qty)
			in.Order.Notes = tt.notes
			r := e.Compute(in)

			require.Equal(t, "POV", value(t, r, FieldAlgoType))
			assert.Equal(t, tt.rate, value(t, r, FieldParticipationRate))
			assert.Equal(t, 150, value(t, r, FieldMinOrderSize))
			assert.Equal(t, 1500, value(t, r, FieldMaxOrderSize))
		})
	}
}

func TestCompute_TimeWindow(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name  string
		now   time.Time
		qty   int
		start string
		end   string
	}{
		{"fraction of remaining session", at(11, 0), 10_000, "11:00", "13:28"},
		{"start rounds up to five minutes", at(11, 2), 10_000, "11:05", "13:30"},
		{"before open starts at open", at(8, 50), 10_000, "09:15", "12:41"},
		{"after close starts late and runs to close", at(15, 45), 60_000, "15:00", "15:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := e.Compute(testInput(tt.now, domain.TagBenchmarkDriven, tt.qty))
			require.Equal(t, "POV", value(t, r, FieldAlgoType))
			assert.Equal(t, tt.start, value(t, r, FieldStartTime))
			assert.Equal(t, tt.end, value(t, r, FieldEndTime))
		})
	}
}

func TestCompute_IcebergDisplay(t *testing.T) {
	e := newTestEngine(t)
	r := e.Compute(testInput(at(11, 0), domain.TagStealth, 100_000))

	assert.Equal(t, "ICEBERG", value(t, r, FieldAlgoType))
	assert.Equal(t, 750, value(t, r, FieldDisplayQuantity))
	assert.Contains(t, value(t, r, FieldOrderNotes), "stealth execution")
	assert.Equal(t, "stealth_execution", r.ScenarioTag)
}

func TestCompute_Scenarios(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name     string
		now      time.Time
		tag      domain.ClientTag
		urgency  *int
		notes    string
		expected string
	}{
		{"compliance near close", at(14, 45), domain.TagComplianceDriven, nil, "", "eod_compliance"},
		{"high urgency with ample time", at(12, 10), domain.TagNone, intPtr(90), "", "speed_priority"},
		{"arrival in notes", at(12, 10), domain.TagNone, nil, "arrival benchmark", "arrival_benchmark"},
		{"patient with time", at(10, 30), domain.TagNone, intPtr(10), "", "patient_accumulation"},
		{"standard", at(12, 10), domain.TagNone, nil, "", "standard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInput(tt.now, tt.tag, 10_000)
			in.Order.UrgencyOverride = tt.urgency
			in.Order.Notes = tt.notes
			assert.Equal(t, tt.expected, e.Compute(in).ScenarioTag)
		})
	}
}

func TestCompute_QuantityHint(t *testing.T) {
	e := newTestEngine(t)
	in := testInput(at(11, 0), domain.TagNone, 0)
	in.Order.Quantity = nil
	in.History = []domain.HistoricalOrder{
		histOrder(domain.AlgoVWAP, 10_000, 0, false, 0),
		histOrder(domain.AlgoVWAP, 30_000, 0, false, 0),
		histOrder(domain.AlgoVWAP, 20_000, 0, false, 0),
		histOrder(domain.AlgoVWAP, 24_000, 0, false, 0),
		histOrder(domain.AlgoVWAP, 16_000, 0, false, 0),
	}

	r := e.Compute(in)

	assert.Equal(t, 20_000, value(t, r, FieldQuantity))
	assert.Equal(t, 0.6, r.Suggestions[FieldQuantity].Confidence)
	assert.Equal(t, 20_000, e.SizingQuantity(in.Order, in.Instrument, in.History))
}

func TestQuantityConfidence_Monotonic(t *testing.T) {
	r := DefaultRules().Quantity
	prev := -1.0
	for n := 0; n <= 40; n++ {
		c := QuantityConfidence(n, r)
		assert.GreaterOrEqual(t, c, prev)
		assert.LessOrEqual(t, c, 0.70+1e-9)
		prev = c
	}
}

func TestCompute_MissingMarketData(t *testing.T) {
	e := newTestEngine(t)
	in := testInput(at(12, 0), domain.TagNone, 10_000)
	in.Market = domain.MarketSnapshot{}
	in.Instrument = domain.Instrument{Symbol: "RELIANCE"}

	r := e.Compute(in)

	assert.NotContains(t, r.Suggestions, FieldLimitPrice)
	assert.Contains(t, r.Suggestions, FieldAlgoType)
	assert.GreaterOrEqual(t, r.Urgency, 0)
	assert.LessOrEqual(t, r.Urgency, 100)
}

func TestCompute_Invariants(t *testing.T) {
	e := newTestEngine(t)
	rng := rand.New(rand.NewSource(7))
	tags := []domain.ClientTag{
		domain.TagNone, domain.TagComplianceDriven, domain.TagSpeedDriven,
		domain.TagStealth, domain.TagConservative, domain.TagBenchmarkDriven,
	}
	notes := []string{"", "urgent", "no rush", "vwap", "must complete by 1pm", "max participation 5%", "ioc", "vwap by 10am", "improve by 5 bps"}

	for i := 0; i < 500; i++ {
		in := testInput(at(9+rng.Intn(7), rng.Intn(60)), tags[rng.Intn(len(tags))], 100+rng.Intn(400_000))
		in.Client.RiskAversion = rng.Intn(101)
		in.Order.Notes = notes[rng.Intn(len(notes))]
		in.Market.VolatilityPct = rng.Float64() * 5
		if rng.Intn(2) == 0 {
			in.Order.Direction = domain.DirectionSell
		}

		r := e.Compute(in)

		chosen := domain.AlgoType(value(t, r, FieldAlgoType).(string))
		assert.NotContains(t, r.WhyNot, chosen)
		assert.Len(t, r.WhyNot, 3)
		for field, s := range r.Suggestions {
			assert.GreaterOrEqual(t, s.Confidence, 0.0, "field %s", field)
			assert.LessOrEqual(t, s.Confidence, 1.0, "field %s", field)
			assert.NotEmpty(t, s.Explanation, "field %s", field)
		}
		if st, ok := r.Suggestions[FieldStartTime]; ok {
			start, err := session.ParseClock(st.Value.(string))
			require.NoError(t, err)
			end, err := session.ParseClock(r.Suggestions[FieldEndTime].Value.(string))
			require.NoError(t, err)
			assert.Greater(t, int(end), int(start), "notes %q", in.Order.Notes)
		}
		if lp, ok := r.Suggestions[FieldLimitPrice]; ok {
			price := lp.Value.(float64)
			if in.Order.Direction == domain.DirectionBuy {
				assert.GreaterOrEqual(t, price, in.Market.LastPrice)
			} else {
				assert.LessOrEqual(t, price, in.Market.LastPrice)
			}
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	e := newTestEngine(t)
	in := testInput(at(13, 7), domain.TagBenchmarkDriven, 75_000)
	in.Order.Notes = "arrival benchmark, max volume 12%"
	in.History = []domain.HistoricalOrder{
		histOrder(domain.AlgoPOV, 70_000, domain.AggressionHigh, true, 1.5),
		histOrder(domain.AlgoVWAP, 80_000, domain.AggressionMedium, false, 2.5),
		histOrder(domain.AlgoPOV, 60_000, domain.AggressionHigh, true, 1.9),
	}
	in.CrossClient = []domain.AlgoCount{{AlgoType: domain.AlgoPOV, Count: 4}, {AlgoType: domain.AlgoVWAP, Count: 3}}

	first := e.Compute(in)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, e.Compute(in))
	}
}

func TestLimitPrice(t *testing.T) {
	assert.Equal(t, 2503.0, LimitPrice(2500, 12, domain.DirectionBuy, 0.05))
	assert.Equal(t, 2498.0, LimitPrice(2500, 8, domain.DirectionSell, 0.05))
	assert.Equal(t, 1235.55, LimitPrice(1234.56, 8, domain.DirectionBuy, 0.05))
	assert.Equal(t, 101.0, LimitPrice(100.2, 8, domain.DirectionBuy, 1))
	assert.Equal(t, 100.0, LimitPrice(100.2, 8, domain.DirectionSell, 1))
}

func TestLimitPrice_Property(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	ticks := []float64{0.01, 0.05, 0.1, 0.5, 1}
	offsets := []float64{0, 8, 12, 15, 18}

	for i := 0; i < 2000; i++ {
		ltp := math.Round((10+rng.Float64()*5000)*100) / 100
		tick := ticks[rng.Intn(len(ticks))]
		bps := offsets[rng.Intn(len(offsets))]
		dir := domain.DirectionBuy
		if rng.Intn(2) == 0 {
			dir = domain.DirectionSell
		}

		got := LimitPrice(ltp, bps, dir, tick)

		if dir == domain.DirectionBuy {
			assert.GreaterOrEqual(t, got, ltp, "buy ltp=%v bps=%v tick=%v", ltp, bps, tick)
		} else {
			assert.LessOrEqual(t, got, ltp, "sell ltp=%v bps=%v tick=%v", ltp, bps, tick)
		}
		steps := got / tick
		assert.InDelta(t, math.Round(steps), steps, 1e-6, "multiple of tick: %v / %v", got, tick)
	}
}

func pinnedVWAP(now time.Time, urgency int) Input {
	in := testInput(now, domain.TagNone, 10_000)
	in.Order.Notes = "vwap"
	in.Order.UrgencyOverride = intPtr(urgency)
	return in
}

func TestCompute_AggressionRiskOverrides(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name    string
		risk    int
		urgency int
		want    string
	}{
		{"conservative client caps moderate urgency", 80, 50, "Low"},
		{"conservative client at the threshold", 70, 69, "Low"},
		{"high urgency beats conservative client", 80, 75, "High"},
		{"aggressive client lifts moderate urgency", 20, 40, "High"},
		{"aggressive client needs some urgency", 20, 20, "Low"},
		{"neutral client follows urgency", 50, 50, "Medium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := pinnedVWAP(at(11, 0), tt.urgency)
			in.Order.RiskAversionOverride = intPtr(tt.risk)
			r := e.Compute(in)
			assert.Equal(t, tt.want, value(t, r, FieldAggression))
		})
	}
}

func TestCompute_AggressionHistoryOverride(t *testing.T) {
	e := newTestEngine(t)

	history := func(n int) []domain.HistoricalOrder {
		orders := make([]domain.HistoricalOrder, n)
		for i := range orders {
			orders[i] = histOrder(domain.AlgoVWAP, 10_000, domain.AggressionHigh, false, 1.8)
		}
		return orders
	}

	in := pinnedVWAP(at(11, 0), 50)
	in.History = history(4)
	assert.Equal(t, "Medium", value(t, e.Compute(in), FieldAggression))

	in.History = history(5)
	r := e.Compute(in)
	assert.Equal(t, "High", value(t, r, FieldAggression))
	assert.Contains(t, r.Suggestions[FieldAggression].Explanation, "history avg is High")
}

func TestCompute_TIFPaths(t *testing.T) {
	e := newTestEngine(t)

	withTIF := func(tif domain.TimeInForce, n int) []domain.HistoricalOrder {
		orders := make([]domain.HistoricalOrder, n)
		for i := range orders {
			orders[i] = histOrder(domain.AlgoVWAP, 10_000, domain.AggressionMedium, false, 1.8)
			orders[i].TIF = tif
		}
		return orders
	}

	tests := []struct {
		name       string
		mutate     func(in *Input)
		want       string
		confidence float64
	}{
		{"algo default", func(in *Input) {}, "GFD", 0.75},
		{"notes hint overrides rules", func(in *Input) { in.Order.Notes = "vwap ioc" }, "IOC", 0.95},
		{"notes hint matching rules still carries notes confidence", func(in *Input) { in.Order.Notes = "vwap day order" }, "GFD", 0.95},
		{"full session ahead allows carry-over", func(in *Input) {
			in.Order.UrgencyOverride = intPtr(40)
			in.Market.MinutesToClose = intPtr(400)
		}, "GTC", 0.6},
		{"history of three orders overrides", func(in *Input) { in.History = withTIF(domain.TIFGoodTillDate, 3) }, "GTD", 0.75},
		{"two orders are not enough history", func(in *Input) { in.History = withTIF(domain.TIFGoodTillDate, 2) }, "GFD", 0.75},
		{"notes hint beats history", func(in *Input) {
			in.Order.Notes = "vwap fok"
			in.History = withTIF(domain.TIFGoodTillDate, 5)
		}, "FOK", 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := pinnedVWAP(at(11, 0), 50)
			tt.mutate(&in)
			r := e.Compute(in)
			require.Equal(t, "VWAP", value(t, r, FieldAlgoType))
			assert.Equal(t, tt.want, value(t, r, FieldTIF))
			assert.Equal(t, tt.confidence, r.Suggestions[FieldTIF].Confidence)
		})
	}
}

func TestCompute_OrderTypeHistoryOverride(t *testing.T) {
	e := newTestEngine(t)

	history := func(n int) []domain.HistoricalOrder {
		orders := make([]domain.HistoricalOrder, n)
		for i := range orders {
			orders[i] = histOrder(domain.AlgoVWAP, 10_000, domain.AggressionMedium, false, 1.8)
			orders[i].OrderType = domain.OrderTypeMarket
		}
		return orders
	}

	in := pinnedVWAP(at(11, 0), 50)
	in.History = history(4)
	r := e.Compute(in)
	assert.Equal(t, "LIMIT", value(t, r, FieldOrderType))
	assert.Contains(t, r.Suggestions, FieldLimitPrice)

	in.History = history(5)
	r = e.Compute(in)
	assert.Equal(t, "MARKET", value(t, r, FieldOrderType))
	assert.InDelta(t, 0.815, r.Suggestions[FieldOrderType].Confidence, 0.011)
	assert.Contains(t, r.Suggestions[FieldOrderType].Explanation, "history favors MARKET")
	assert.NotContains(t, r.Suggestions, FieldLimitPrice)
}

func TestCompute_VWAPParameters(t *testing.T) {
	e := newTestEngine(t)

	curves := []struct {
		name    string
		now     time.Time
		tag     domain.ClientTag
		urgency int
		want    string
	}{
		{"high urgency front-loads", at(11, 0), domain.TagNone, 70, "Front-loaded"},
		{"compliance back-loads", at(11, 0), domain.TagComplianceDriven, 40, "Back-loaded"},
		{"little time front-loads", at(14, 30), domain.TagNone, 40, "Front-loaded"},
		{"otherwise historical curve", at(11, 0), domain.TagNone, 40, "Historical"},
	}
	for _, tt := range curves {
		t.Run(tt.name, func(t *testing.T) {
			in := pinnedVWAP(tt.now, tt.urgency)
			in.Client.Tag = tt.tag
			assert.Equal(t, tt.want, value(t, e.Compute(in), FieldVolumeCurve))
		})
	}

	caps := []struct {
		name string
		qty  int
		want float64
	}{
		{"large order", 150_000, 25},
		{"exactly ten percent is medium", 100_000, 15},
		{"medium order", 70_000, 15},
		{"small order", 30_000, 20},
	}
	for _, tt := range caps {
		t.Run(tt.name, func(t *testing.T) {
			in := pinnedVWAP(at(11, 0), 50)
			in.Order.Quantity = intPtr(tt.qty)
			assert.Equal(t, tt.want, value(t, e.Compute(in), FieldMaxVolumePct))
		})
	}
}

func TestCompute_DeadlineNeverEndsBeforeStart(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name  string
		now   time.Time
		notes string
	}{
		{"passed deadline", at(14, 0), "vwap by 10am"},
		{"amount mistaken for a time", at(11, 0), "vwap, improve limit by 5 bps"},
		{"deadline before open", at(11, 0), "vwap done by 8am"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInput(tt.now, domain.TagNone, 10_000)
			in.Order.Notes = tt.notes
			r := e.Compute(in)

			start, err := session.ParseClock(value(t, r, FieldStartTime).(string))
			require.NoError(t, err)
			end, err := session.ParseClock(value(t, r, FieldEndTime).(string))
			require.NoError(t, err)
			assert.Greater(t, int(end), int(start))
		})
	}

	in := testInput(at(14, 0), domain.TagNone, 10_000)
	in.Order.Notes = "vwap by 10am"
	r := e.Compute(in)
	assert.Contains(t, r.Suggestions[FieldEndTime].Explanation, "Notes deadline 10:00 is not after start 14:00: ignored")

	in = testInput(at(11, 0), domain.TagNone, 10_000)
	in.Order.Notes = "vwap, improve limit by 5 bps"
	r = e.Compute(in)
	assert.Nil(t, r.Notes.Deadline)
	if notes, ok := r.Suggestions[FieldOrderNotes]; ok {
		assert.NotContains(t, notes.Value, "Deadline")
	}
}
