package prefill

// rule is one candidate source for a field: when it holds, the field takes
// value with the given confidence and explanation.
type rule[T any] struct {
	name       string
	when       func(f *facts) bool
	value      func(f *facts) T
	confidence func(f *facts) float64
	explain    func(f *facts) string
}

// chain is an ordered list of rules evaluated first-match-wins
type chain[T any] []rule[T]

// outcome is the decision of a chain
type outcome[T any] struct {
	Rule        string
	Value       T
	Confidence  float64
	Explanation string
}

// resolve returns the first matching rule's outcome; ok is false when none matched
func (c chain[T]) resolve(f *facts) (outcome[T], bool) {
	for _, r := range c {
		if r.when != nil && !r.when(f) {
			continue
		}
		o := outcome[T]{Rule: r.name, Value: r.value(f)}
		if r.confidence != nil {
			o.Confidence = r.confidence(f)
		}
		if r.explain != nil {
			o.Explanation = r.explain(f)
		}
		return o, true
	}
	return outcome[T]{}, false
}

func always(*facts) bool { return true }

func is[T any](v T) func(*facts) T {
	return func(*facts) T { return v }
}

func conf(v float64) func(*facts) float64 {
	return func(*facts) float64 { return v }
}

func text(s string) func(*facts) string {
	return func(*facts) string { return s }
}
