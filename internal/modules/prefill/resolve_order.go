package prefill

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aristath/prefill/internal/domain"
)

func (e *Engine) buildOrderTypeRules() chain[domain.OrderType] {
	r := e.rules.OrderType
	return chain[domain.OrderType]{
		{
			name:       "algo",
			when:       func(f *facts) bool { return f.algo.IsAlgo() },
			value:      is(domain.OrderTypeLimit),
			confidence: conf(r.AlgoLimitConf),
			explain:    text("LIMIT order recommended with algo execution: price protection while the algo manages timing"),
		},
		{
			name:       "urgency",
			when:       func(f *facts) bool { return float64(f.urgency) >= r.MarketUrgency },
			value:      is(domain.OrderTypeMarket),
			confidence: conf(r.MarketConf),
			explain: func(f *facts) string {
				return fmt.Sprintf("Urgency %d/100: MARKET order for guaranteed immediate fill", f.urgency)
			},
		},
		{
			name:       "close",
			when:       func(f *facts) bool { return float64(f.ttc) < r.MarketClose },
			value:      is(domain.OrderTypeMarket),
			confidence: conf(r.MarketConf),
			explain: func(f *facts) string {
				return fmt.Sprintf("Only %dmin to close: MARKET order for guaranteed fill before session ends", f.ttc)
			},
		},
		{
			name:       "volatility",
			when:       func(f *facts) bool { return f.vol > r.LimitVol },
			value:      is(domain.OrderTypeLimit),
			confidence: conf(r.LimitVolConf),
			explain: func(f *facts) string {
				return fmt.Sprintf("High volatility (%.1f%%): LIMIT order to avoid adverse fills", f.vol)
			},
		},
		{
			name:       "default",
			when:       always,
			value:      is(domain.OrderTypeLimit),
			confidence: conf(r.DefaultConf),
			explain:    text("LIMIT order recommended as default for price control"),
		},
	}
}

func (e *Engine) resolveOrderType(f *facts, s SuggestionSet) {
	o, _ := e.orderTypeRules.resolve(f)
	orderType, confidence, reason := o.Value, o.Confidence, o.Explanation

	preferred := f.hist.PreferredOrderType
	if f.histWeight > 0 && preferred != "" && preferred != orderType && float64(f.hist.Count) >= e.rules.Historical.MinOrdersOrderType {
		reason = fmt.Sprintf("Blended: history favors %s (%d orders), rules suggested %s: following client preference",
			preferred, f.hist.Count, orderType)
		confidence = confidence*(1-f.histWeight) + e.rules.OrderType.HistoryAnchor*f.histWeight
		orderType = preferred
	}

	f.orderType = orderType
	s.put(FieldOrderType, string(orderType), confidence, reason)
}

func (e *Engine) buildOffsetRules() chain[float64] {
	r := e.rules.LimitPrice
	return chain[float64]{
		{name: "high_urgency", when: func(f *facts) bool { return float64(f.urgency) >= r.HighUrgency }, value: is(r.HighUrgencyOffset)},
		{name: "med_urgency", when: func(f *facts) bool { return float64(f.urgency) >= r.MedUrgency }, value: is(r.MedUrgencyOffset)},
		{name: "close", when: func(f *facts) bool { return float64(f.ttc) < r.CloseThreshold }, value: is(r.CloseOffset)},
		{name: "volatility", when: func(f *facts) bool { return f.vol > r.VolThreshold }, value: is(r.VolOffset)},
		{name: "default", when: always, value: is(r.DefaultOffset)},
	}
}

func (e *Engine) resolveLimitPrice(f *facts, s SuggestionSet) {
	if f.orderType != domain.OrderTypeLimit || f.price <= 0 {
		return
	}
	o, _ := e.offsetRules.resolve(f)
	offset := o.Value

	side, guard := "above", "capping upside risk"
	if f.order.Direction == domain.DirectionSell {
		side, guard = "below", "protecting downside"
	}
	limit := LimitPrice(f.price, offset, f.order.Direction, f.tick)

	s.put(FieldLimitPrice, limit, e.rules.LimitPrice.Confidence,
		fmt.Sprintf("Limit set %gbps %s LTP (₹%.2f): provides fill probability while %s", offset, side, f.price, guard))
}

// LimitPrice moves price bps away from the market on the side of dir and
// rounds half-up to the tick. A BUY never rounds below price and a SELL
// never above it.
func LimitPrice(price, bps float64, dir domain.Direction, tick float64) float64 {
	p := decimal.NewFromFloat(price)
	t := decimal.NewFromFloat(tick)
	shift := decimal.NewFromFloat(bps).Div(decimal.NewFromInt(10000))
	if dir == domain.DirectionSell {
		shift = shift.Neg()
	}
	raw := p.Mul(decimal.NewFromInt(1).Add(shift))

	limit := raw.Div(t).Add(decimal.NewFromFloat(0.5)).Floor().Mul(t)
	switch {
	case dir == domain.DirectionSell && limit.GreaterThan(p):
		limit = p.Div(t).Floor().Mul(t)
	case dir != domain.DirectionSell && limit.LessThan(p):
		limit = p.Div(t).Ceil().Mul(t)
	}
	v, _ := limit.Round(int32(tickPlaces(tick))).Float64()
	return v
}

func tickPlaces(tick float64) int {
	places := 0
	for places < 8 && math.Abs(tick-math.Round(tick)) > 1e-9 {
		tick *= 10
		places++
	}
	return places
}

func (e *Engine) buildTIFRules() (direct, algo chain[domain.TimeInForce]) {
	r := e.rules.TIF
	urgencyAtLeast := func(v float64) func(f *facts) bool {
		return func(f *facts) bool { return float64(f.urgency) >= v }
	}

	direct = chain[domain.TimeInForce]{
		{
			name: "extreme", when: urgencyAtLeast(r.DirectIOCExtreme),
			value: is(domain.TIFImmediateOrCancel), confidence: conf(0.85),
			explain: func(f *facts) string {
				return fmt.Sprintf("Extreme urgency (%d/100) with direct execution: IOC ensures immediate fill or cancel", f.urgency)
			},
		},
		{
			name: "very_high", when: urgencyAtLeast(r.DirectFOK),
			value: is(domain.TIFFillOrKill), confidence: conf(0.8),
			explain: func(f *facts) string {
				return fmt.Sprintf("Very high urgency (%d/100): FOK for all-or-nothing immediate execution", f.urgency)
			},
		},
		{
			name: "high", when: urgencyAtLeast(r.DirectIOCHigh),
			value: is(domain.TIFImmediateOrCancel), confidence: conf(0.7),
			explain: func(f *facts) string {
				return fmt.Sprintf("High urgency (%d/100) direct order: IOC to fill what is available immediately", f.urgency)
			},
		},
		{
			name: "default", when: always,
			value: is(domain.TIFDay), confidence: conf(0.8),
			explain: text("Good For Day: standard TIF for intraday direct orders"),
		},
	}

	algo = chain[domain.TimeInForce]{
		{
			name: "get_done",
			when: func(f *facts) bool { return float64(f.urgency) >= r.AlgoGFDHigh && f.getDone },
			value: is(domain.TIFDay), confidence: conf(0.85),
			explain: func(f *facts) string {
				return fmt.Sprintf("GFD with Get Done: algo manages timing within the day, urgency %d/100 handled via aggression", f.urgency)
			},
		},
		{
			name: "urgent", when: urgencyAtLeast(r.AlgoGFDModerate),
			value: is(domain.TIFDay), confidence: conf(0.8),
			explain: func(f *facts) string {
				return fmt.Sprintf("GFD: algo execution with high urgency (%d/100) managed through aggression and time window", f.urgency)
			},
		},
		{
			name: "full_session", when: func(f *facts) bool { return float64(f.ttc) > r.AlgoGTCTime },
			value: is(domain.TIFGoodTillCancel), confidence: conf(0.6),
			explain: text("Full session ahead with low urgency: GTC allows carry-over if not fully filled today"),
		},
		{
			name: "default", when: always,
			value: is(domain.TIFDay), confidence: conf(0.75),
			explain: text("Good For Day: standard TIF for intraday algo execution"),
		},
	}
	return direct, algo
}

func (e *Engine) resolveTIF(f *facts, s SuggestionSet) {
	rules := e.directTIFRules
	if f.algo.IsAlgo() {
		rules = e.algoTIFRules
	}
	o, _ := rules.resolve(f)
	tif, confidence, reason := o.Value, o.Confidence, o.Explanation

	r := e.rules.TIF
	switch preferred := f.hist.PreferredTIF; {
	case f.notes.TIF != "":
		tif, confidence = f.notes.TIF, r.NotesConfidence
		reason = fmt.Sprintf("Order notes explicitly request %s", tif)
	case f.histWeight > 0 && preferred != "" && preferred != tif && float64(f.hist.Count) >= e.rules.Historical.MinOrdersTIF:
		reason = fmt.Sprintf("Historical preference: client uses %s for %s (%d orders), rules suggested %s",
			preferred, f.order.Symbol, f.hist.Count, tif)
		tif, confidence = preferred, r.HistoryConf
	}
	s.put(FieldTIF, string(tif), confidence, reason)
}

// inferGetDone decides the completion mandate and lists what triggered it
func (e *Engine) inferGetDone(f *facts) (bool, []string) {
	var reasons []string
	if f.tag == domain.TagComplianceDriven {
		reasons = append(reasons, "EOD compliance client")
	}
	if f.notes.GetDone {
		reasons = append(reasons, "order notes indicate must-complete")
	}
	if float64(f.urgency) >= e.rules.GetDone.UrgencyThreshold {
		reasons = append(reasons, fmt.Sprintf("high urgency (%d/100)", f.urgency))
	}
	h := e.rules.Historical
	if len(reasons) == 0 && float64(f.hist.Count) >= h.MinOrdersStart && f.hist.GetDoneFreq > h.GetDoneFreq {
		reasons = append(reasons, "historical pattern shows frequent get-done usage")
	}
	return len(reasons) > 0, reasons
}

func (e *Engine) resolveGetDone(f *facts, s SuggestionSet) {
	on, reasons := e.inferGetDone(f)
	if on {
		s.put(FieldGetDone, true, e.rules.GetDone.OnConfidence, "Get Done enabled: "+strings.Join(reasons, ", "))
		return
	}
	s.put(FieldGetDone, false, e.rules.GetDone.OffConfidence, "Get Done not needed: no completion pressure detected")
}
