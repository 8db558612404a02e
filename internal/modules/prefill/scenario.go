package prefill

import "github.com/aristath/prefill/internal/domain"

// Scenario labels the overall execution context for display
type Scenario struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
}

var (
	ScenarioEODCompliance       = Scenario{Tag: "eod_compliance", Label: "EOD Compliance Execution"}
	ScenarioStealth             = Scenario{Tag: "stealth_execution", Label: "Stealth / Minimal Impact"}
	ScenarioArrivalBenchmark    = Scenario{Tag: "arrival_benchmark", Label: "Arrival Price Benchmark"}
	ScenarioSpeedPriority       = Scenario{Tag: "speed_priority", Label: "Speed Priority"}
	ScenarioPatientAccumulation = Scenario{Tag: "patient_accumulation", Label: "Patient Accumulation"}
	ScenarioStandard            = Scenario{Tag: "standard", Label: "Standard Execution"}
)

func (e *Engine) buildScenarioRules() chain[Scenario] {
	r := e.rules.Scenario
	return chain[Scenario]{
		{
			name: ScenarioEODCompliance.Tag,
			when: func(f *facts) bool {
				return f.tag == domain.TagComplianceDriven || (f.getDone && float64(f.ttc) < r.EODTime)
			},
			value: is(ScenarioEODCompliance),
		},
		{
			name: ScenarioStealth.Tag,
			when: func(f *facts) bool {
				return f.tag == domain.TagStealth || (f.sizePct > r.StealthSizeMin && float64(f.urgency) < r.StealthUrgencyMax)
			},
			value: is(ScenarioStealth),
		},
		{
			name: ScenarioArrivalBenchmark.Tag,
			when: func(f *facts) bool {
				return f.tag == domain.TagBenchmarkDriven || f.notes.Benchmark == BenchmarkArrival
			},
			value: is(ScenarioArrivalBenchmark),
		},
		{
			name: ScenarioSpeedPriority.Tag,
			when: func(f *facts) bool {
				return float64(f.urgency) > r.SpeedUrgencyMin || float64(f.ttc) < r.SpeedTime
			},
			value: is(ScenarioSpeedPriority),
		},
		{
			name: ScenarioPatientAccumulation.Tag,
			when: func(f *facts) bool {
				return float64(f.urgency) < r.PatientUrgencyMax && float64(f.ttc) > r.PatientTimeMin
			},
			value: is(ScenarioPatientAccumulation),
		},
		{name: ScenarioStandard.Tag, when: always, value: is(ScenarioStandard)},
	}
}

// classifyScenario is display-only; nothing downstream reads it
func (e *Engine) classifyScenario(f *facts) Scenario {
	o, _ := e.scenarioRules.resolve(f)
	return o.Value
}
