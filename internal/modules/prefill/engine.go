// Package prefill computes order ticket suggestions from client, instrument,
// market and history context. The Engine is immutable and performs no I/O.
package prefill

import (
	"fmt"
	"math"
	"time"

	"github.com/aristath/prefill/internal/domain"
	"github.com/aristath/prefill/internal/modules/session"
)

// Field names a suggested ticket field
type Field string

const (
	FieldAlgoType          Field = "algo_type"
	FieldOrderType         Field = "order_type"
	FieldLimitPrice        Field = "limit_price"
	FieldTIF               Field = "tif"
	FieldGetDone           Field = "get_done"
	FieldStartTime         Field = "start_time"
	FieldEndTime           Field = "end_time"
	FieldAggression        Field = "aggression_level"
	FieldParticipationRate Field = "target_participation_rate"
	FieldMinOrderSize      Field = "min_order_size"
	FieldMaxOrderSize      Field = "max_order_size"
	FieldVolumeCurve       Field = "volume_curve"
	FieldMaxVolumePct      Field = "max_volume_pct"
	FieldDisplayQuantity   Field = "display_quantity"
	FieldQuantity          Field = "quantity"
	FieldOrderNotes        Field = "order_notes"
)

// Suggestion is a suggested value with its confidence and justification
type Suggestion struct {
	Value       interface{}
	Confidence  float64
	Explanation string
}

// SuggestionSet maps each produced field to its suggestion
type SuggestionSet map[Field]Suggestion

func (s SuggestionSet) put(field Field, value interface{}, confidence float64, explanation string) {
	s[field] = Suggestion{Value: value, Confidence: roundConfidence(confidence), Explanation: explanation}
}

func roundConfidence(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return math.Round(c*100) / 100
}

// Input is everything one computation needs, fetched by the caller beforehand.
// History is most recent first. CrossClient holds filled similar-size orders
// for the symbol grouped by algo.
type Input struct {
	Order       domain.OrderContext
	Client      domain.ClientProfile
	Instrument  domain.Instrument
	Market      domain.MarketSnapshot
	History     []domain.HistoricalOrder
	CrossClient []domain.AlgoCount
	Now         time.Time
}

// Result is the complete suggestion set plus the context that produced it.
// It is serialized through Body.
type Result struct {
	Suggestions     SuggestionSet
	ComputedUrgency int
	Urgency         int
	Breakdown       []BreakdownEntry
	ScenarioTag     string
	ScenarioLabel   string
	WhyNot          map[domain.AlgoType]string
	Notes           ParsedNotes
	History         HistoryStats
	CrossClient     CrossClientStats
}

// facts is the per-request working set shared by every resolver
type facts struct {
	order      domain.OrderContext
	notes      ParsedNotes
	hist       HistoryStats
	histWeight float64
	cross      CrossClientStats

	tag          domain.ClientTag
	riskAversion int
	quantity     int
	adv          float64
	sizePct      float64
	ttc          int
	vol          float64
	avgTradeSize int
	price        float64
	tick         float64
	now          session.Clock

	computedUrgency int
	urgency         int
	getDone         bool

	algo      domain.AlgoType
	orderType domain.OrderType
}

// Engine resolves suggestions with a fixed rule configuration and session
type Engine struct {
	rules Rules
	hours session.Hours

	algoRules       chain[domain.AlgoType]
	orderTypeRules  chain[domain.OrderType]
	offsetRules     chain[float64]
	directTIFRules  chain[domain.TimeInForce]
	algoTIFRules    chain[domain.TimeInForce]
	aggressionRules chain[domain.Aggression]
	curveRules      chain[string]
	scenarioRules   chain[Scenario]
}

// NewEngine validates rules and builds the rule chains
func NewEngine(rules Rules, hours session.Hours) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if hours.Close <= hours.Open {
		return nil, fmt.Errorf("invalid session hours %s-%s", hours.Open, hours.Close)
	}
	e := &Engine{rules: rules, hours: hours}
	e.algoRules = e.buildAlgoRules()
	e.orderTypeRules = e.buildOrderTypeRules()
	e.offsetRules = e.buildOffsetRules()
	e.directTIFRules, e.algoTIFRules = e.buildTIFRules()
	e.aggressionRules = e.buildAggressionRules()
	e.curveRules = e.buildCurveRules()
	e.scenarioRules = e.buildScenarioRules()
	return e, nil
}

// Rules returns the configuration the engine was built with
func (e *Engine) Rules() Rules {
	return e.rules
}

// Hours returns the session the engine resolves time windows against
func (e *Engine) Hours() session.Hours {
	return e.hours
}

// SizingQuantity is the quantity used for size ratios: the ticket quantity,
// else the historical median, else the historical mean, else a share of ADV.
func (e *Engine) SizingQuantity(order domain.OrderContext, instrument domain.Instrument, history []domain.HistoricalOrder) int {
	return e.sizingQuantity(order, e.adv(instrument), AggregateHistory(history))
}

func (e *Engine) sizingQuantity(order domain.OrderContext, adv float64, hist HistoryStats) int {
	if order.Quantity != nil && *order.Quantity > 0 {
		return *order.Quantity
	}
	if hist.MedianQuantity > 0 {
		return hist.MedianQuantity
	}
	if hist.AvgQuantity > 0 {
		return hist.AvgQuantity
	}
	return int(adv * e.rules.Quantity.ADVFallbackPct)
}

func (e *Engine) adv(instrument domain.Instrument) float64 {
	if instrument.ADV > 0 {
		return float64(instrument.ADV)
	}
	return e.rules.Defaults.ADV
}

func (e *Engine) prepare(in Input) *facts {
	f := &facts{
		order:      in.Order,
		notes:      ParseNotes(in.Order.Notes, e.hours),
		hist:       AggregateHistory(in.History),
		cross:      AggregateCrossClient(in.CrossClient),
		tag:        in.Client.Tag,
		adv:        e.adv(in.Instrument),
		vol:        in.Market.VolatilityPct,
		price:      in.Market.LastPrice,
		tick:       in.Instrument.TickSize,
	}
	if !f.tag.Valid() {
		f.tag = domain.TagNone
	}
	f.histWeight = f.hist.Weight(e.rules.Historical)

	f.riskAversion = in.Client.RiskAversion
	if in.Order.RiskAversionOverride != nil {
		f.riskAversion = *in.Order.RiskAversionOverride
	}

	f.quantity = e.sizingQuantity(in.Order, f.adv, f.hist)
	f.sizePct = float64(f.quantity) / f.adv * 100

	if in.Market.MinutesToClose != nil {
		f.ttc = *in.Market.MinutesToClose
	} else {
		f.ttc = e.hours.MinutesToClose(in.Now)
	}
	if f.ttc < 0 {
		f.ttc = 0
	}

	f.avgTradeSize = in.Market.AvgTradeSize
	if f.avgTradeSize <= 0 {
		f.avgTradeSize = int(e.rules.Defaults.AvgTradeSize)
	}
	if f.tick <= 0 {
		f.tick = e.rules.Defaults.TickSize
	}
	f.now = session.ClockOf(e.hours.Local(in.Now))
	return f
}

// Compute runs the full pipeline. It is deterministic for a fixed Input.
func (e *Engine) Compute(in Input) Result {
	f := e.prepare(in)

	var deadlineIn *int
	if f.notes.Deadline != nil {
		mins := e.hours.MinutesUntil(in.Now, *f.notes.Deadline)
		deadlineIn = &mins
	}
	score, breakdown := ScoreUrgency(UrgencyInput{
		MinutesToClose:    f.ttc,
		Tag:               f.tag,
		SizePctADV:        f.sizePct,
		VolatilityPct:     f.vol,
		Notes:             f.notes,
		RiskAversion:      f.riskAversion,
		MinutesToDeadline: deadlineIn,
	}, e.rules.Urgency)
	f.computedUrgency = score
	f.urgency = score
	if in.Order.UrgencyOverride != nil {
		f.urgency = clampScore(float64(*in.Order.UrgencyOverride))
	}

	f.getDone, _ = e.inferGetDone(f)

	s := SuggestionSet{}
	e.resolveAlgo(f, s)
	e.resolveOrderType(f, s)
	e.resolveLimitPrice(f, s)
	e.resolveTIF(f, s)
	e.resolveGetDone(f, s)
	e.resolveTimeWindow(f, s)
	e.resolveAggression(f, s)
	e.resolveAlgoParams(f, s)
	e.resolveQuantity(f, s)
	e.resolveNotesTemplate(f, s)

	sc := e.classifyScenario(f)
	return Result{
		Suggestions:     s,
		ComputedUrgency: f.computedUrgency,
		Urgency:         f.urgency,
		Breakdown:       breakdown,
		ScenarioTag:     sc.Tag,
		ScenarioLabel:   sc.Label,
		WhyNot:          whyNot(f),
		Notes:           f.notes,
		History:         f.hist,
		CrossClient:     f.cross,
	}
}
