package prefill

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
)

// ErrUnknownRule is returned for a key that names no tunable value
var ErrUnknownRule = errors.New("unknown rule key")

// Param describes one tunable value of Rules as "category.name"
type Param struct {
	Key      string  `json:"key"`
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Order    int     `json:"display_order"`
}

type paramPath struct {
	category string
	label    string
	order    int
	index    [2]int
}

var (
	paramPaths = buildParamPaths()
	paramKeys  = sortedParamKeys()
)

func buildParamPaths() map[string]paramPath {
	paths := make(map[string]paramPath)
	rt := reflect.TypeOf(Rules{})
	for i := 0; i < rt.NumField(); i++ {
		cat := rt.Field(i)
		category := yamlName(cat)
		for j := 0; j < cat.Type.NumField(); j++ {
			f := cat.Type.Field(j)
			if f.Type.Kind() != reflect.Float64 {
				continue
			}
			name := yamlName(f)
			paths[category+"."+name] = paramPath{
				category: category,
				label:    labelFor(name),
				order:    j + 1,
				index:    [2]int{i, j},
			}
		}
	}
	return paths
}

func sortedParamKeys() []string {
	keys := make([]string, 0, len(paramPaths))
	for k := range paramPaths {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		pa, pb := paramPaths[keys[a]], paramPaths[keys[b]]
		if pa.category != pb.category {
			return pa.category < pb.category
		}
		return pa.order < pb.order
	})
	return keys
}

func yamlName(f reflect.StructField) string {
	tag := f.Tag.Get("yaml")
	if i := strings.IndexByte(tag, ','); i >= 0 {
		tag = tag[:i]
	}
	if tag == "" {
		return strings.ToLower(f.Name)
	}
	return tag
}

func labelFor(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		switch w {
		case "pct":
			words[i] = "%"
		case "min":
			if i == len(words)-1 {
				words[i] = "(min)"
			}
		case "conf":
			words[i] = "confidence"
		case "tif", "gfd", "gtc", "ioc", "fok", "adv", "pov":
			words[i] = strings.ToUpper(w)
		}
	}
	label := strings.Join(words, " ")
	return strings.ToUpper(label[:1]) + label[1:]
}

func (r *Rules) field(key string) (reflect.Value, bool) {
	p, ok := paramPaths[key]
	if !ok {
		return reflect.Value{}, false
	}
	return reflect.ValueOf(r).Elem().Field(p.index[0]).Field(p.index[1]), true
}

// Keys lists every rule key ordered by category then field order
func Keys() []string {
	out := make([]string, len(paramKeys))
	copy(out, paramKeys)
	return out
}

// Params lists every tunable value with its current setting
func (r Rules) Params() []Param {
	out := make([]Param, 0, len(paramKeys))
	for _, k := range paramKeys {
		p := paramPaths[k]
		v, _ := r.field(k)
		out = append(out, Param{Key: k, Category: p.category, Label: p.label, Value: v.Float(), Order: p.order})
	}
	return out
}

// Get returns the value of key
func (r Rules) Get(key string) (float64, bool) {
	v, ok := r.field(key)
	if !ok {
		return 0, false
	}
	return v.Float(), true
}

// Set changes the value of key
func (r *Rules) Set(key string, value float64) error {
	v, ok := r.field(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRule, key)
	}
	v.SetFloat(value)
	return nil
}

// WithOverrides returns a copy with values applied. Unknown keys are returned
// separately so stale rows never break a reload.
func (r Rules) WithOverrides(values map[string]float64) (Rules, []string) {
	out := r
	var unknown []string
	for k, v := range values {
		if err := out.Set(k, v); err != nil {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return out, unknown
}

// Validate checks the configuration is internally consistent
func (r Rules) Validate() error {
	var problems []string
	for _, p := range r.Params() {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			problems = append(problems, p.Key+" is not finite")
			continue
		}
		name := p.Key[strings.IndexByte(p.Key, '.')+1:]
		if strings.HasSuffix(name, "conf") || strings.HasSuffix(name, "confidence") || strings.HasSuffix(name, "_fraction") {
			if p.Value < 0 || p.Value > 1 {
				problems = append(problems, fmt.Sprintf("%s must be within [0,1], got %g", p.Key, p.Value))
			}
		}
	}

	u := r.Urgency
	if !(u.CloseCriticalMin < u.CloseTightMin && u.CloseTightMin < u.CloseApproachingMin && u.CloseApproachingMin < u.CloseMildMin) {
		problems = append(problems, "urgency time-to-close brackets must be strictly increasing")
	}
	if u.DeadlineImminentMin >= u.DeadlineApproachingMin {
		problems = append(problems, "urgency.deadline_imminent_min must be below deadline_approaching_min")
	}
	if r.Historical.MaxWeight < 0 || r.Historical.MaxWeight > 1 {
		problems = append(problems, "historical.max_weight must be within [0,1]")
	}
	if r.CrossClient.QtyLowFactor <= 0 || r.CrossClient.QtyLowFactor >= r.CrossClient.QtyHighFactor {
		problems = append(problems, "cross_client quantity band must satisfy 0 < low < high")
	}
	if r.Defaults.ADV <= 0 || r.Defaults.TickSize <= 0 || r.Defaults.AvgTradeSize <= 0 {
		problems = append(problems, "defaults must be positive")
	}
	if r.TimeWindow.StartStep < 1 {
		problems = append(problems, "time_window.start_step_min must be at least 1")
	}
	if r.Historical.QueryLimit < 10 {
		problems = append(problems, "historical.query_limit must be at least 10")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid rules: %s", strings.Join(problems, "; "))
	}
	return nil
}
