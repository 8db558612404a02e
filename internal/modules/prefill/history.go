package prefill

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/aristath/prefill/internal/domain"
)

// HistoryStats summarises a client's recent orders in one symbol
type HistoryStats struct {
	Count              int                `json:"order_count"`
	PreferredAlgo      domain.AlgoType    `json:"preferred_algo,omitempty"`
	PreferredAlgoCount int                `json:"preferred_algo_count"`
	PreferredOrderType domain.OrderType   `json:"preferred_order_type,omitempty"`
	PreferredTIF       domain.TimeInForce `json:"preferred_tif,omitempty"`
	MedianQuantity     int                `json:"median_quantity"`
	AvgQuantity        int                `json:"avg_quantity"`
	AvgAggression      float64            `json:"avg_aggression"`
	AggressionSamples  int                `json:"aggression_samples"`
	GetDoneFreq        float64            `json:"get_done_freq"`
	AvgVolatility      float64            `json:"avg_hist_volatility"`
	AvgSpreadBps       float64            `json:"avg_hist_spread"`
}

// AggregateHistory computes the statistics over orders, most recent first.
// Mode ties go to the value seen first, i.e. the most recent.
func AggregateHistory(orders []domain.HistoricalOrder) HistoryStats {
	if len(orders) == 0 {
		return HistoryStats{}
	}

	algos := make([]domain.AlgoType, 0, len(orders))
	orderTypes := make([]domain.OrderType, 0, len(orders))
	tifs := make([]domain.TimeInForce, 0, len(orders))
	quantities := make([]float64, 0, len(orders))
	var aggression, vols, spreads []float64
	getDone := 0

	for _, o := range orders {
		algo := o.AlgoType
		if algo == "" {
			algo = domain.AlgoNone
		}
		algos = append(algos, algo)
		if o.OrderType != "" {
			orderTypes = append(orderTypes, o.OrderType)
		}
		if o.TIF != "" {
			tifs = append(tifs, o.TIF)
		}
		quantities = append(quantities, float64(o.Quantity))
		if o.Aggression != domain.AggressionUnknown {
			aggression = append(aggression, float64(o.Aggression))
		}
		if o.GetDone {
			getDone++
		}
		if o.VolatilityPct > 0 {
			vols = append(vols, o.VolatilityPct)
		}
		if o.SpreadBps > 0 {
			spreads = append(spreads, o.SpreadBps)
		}
	}

	h := HistoryStats{Count: len(orders)}
	h.PreferredAlgo, h.PreferredAlgoCount = mode(algos)
	h.PreferredOrderType, _ = mode(orderTypes)
	h.PreferredTIF, _ = mode(tifs)
	h.MedianQuantity = median(quantities)
	h.AvgQuantity = int(stat.Mean(quantities, nil))
	if len(aggression) > 0 {
		h.AvgAggression = stat.Mean(aggression, nil)
		h.AggressionSamples = len(aggression)
	}
	h.GetDoneFreq = float64(getDone) / float64(len(orders))
	if len(vols) > 0 {
		h.AvgVolatility = stat.Mean(vols, nil)
	}
	if len(spreads) > 0 {
		h.AvgSpreadBps = stat.Mean(spreads, nil)
	}
	return h
}

// Weight is the share given to history against the rules, zero below the minimum depth
func (h HistoryStats) Weight(r HistoricalRules) float64 {
	if float64(h.Count) < r.MinOrdersStart {
		return 0
	}
	w := (float64(h.Count) - (r.MinOrdersStart - 1)) * r.WeightPerOrder
	return math.Min(r.MaxWeight, math.Max(0, w))
}

// Similarity compares current volatility with the historical average.
// Either side missing counts as fully similar.
func (h HistoryStats) Similarity(currentVol float64) float64 {
	if currentVol <= 0 || h.AvgVolatility <= 0 {
		return 1
	}
	return math.Min(currentVol, h.AvgVolatility) / math.Max(currentVol, h.AvgVolatility)
}

// AggressionLevel rounds the historical average to the nearest ordinal
func (h HistoryStats) AggressionLevel() domain.Aggression {
	if h.AggressionSamples == 0 {
		return domain.AggressionUnknown
	}
	level := domain.Aggression(math.Round(h.AvgAggression))
	if level < domain.AggressionLow {
		return domain.AggressionLow
	}
	if level > domain.AggressionHigh {
		return domain.AggressionHigh
	}
	return level
}

// CrossClientStats is the algo distribution of similar-sized filled orders across clients
type CrossClientStats struct {
	Total       int                     `json:"total_similar"`
	Dominant    domain.AlgoType         `json:"most_common_algo,omitempty"`
	DominantPct int                     `json:"most_common_pct"`
	Counts      map[domain.AlgoType]int `json:"algo_distribution,omitempty"`
}

// AggregateCrossClient folds per-algo counts into a distribution.
// The dominant algo is the largest count, ties broken by AlgoTypes order.
func AggregateCrossClient(rows []domain.AlgoCount) CrossClientStats {
	var c CrossClientStats
	if len(rows) == 0 {
		return c
	}
	c.Counts = make(map[domain.AlgoType]int, len(rows))
	for _, r := range rows {
		if r.Count <= 0 {
			continue
		}
		algo := r.AlgoType
		if algo == "" {
			algo = domain.AlgoNone
		}
		c.Counts[algo] += r.Count
		c.Total += r.Count
	}
	if c.Total == 0 {
		return CrossClientStats{}
	}

	keys := make([]domain.AlgoType, 0, len(c.Counts))
	for k := range c.Counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c.Counts[keys[i]] != c.Counts[keys[j]] {
			return c.Counts[keys[i]] > c.Counts[keys[j]]
		}
		return algoRank(keys[i]) < algoRank(keys[j])
	})
	c.Dominant = keys[0]
	c.DominantPct = int(math.Round(float64(c.Counts[c.Dominant]) / float64(c.Total) * 100))
	return c
}

// QuantityBand is the inclusive size band used to find similar orders
func QuantityBand(quantity int, r CrossClientRules) (low, high int) {
	low = int(float64(quantity) * r.QtyLowFactor)
	if low < 1 {
		low = 1
	}
	high = int(float64(quantity) * r.QtyHighFactor)
	return low, high
}

func algoRank(a domain.AlgoType) int {
	for i, known := range domain.AlgoTypes {
		if a == known {
			return i
		}
	}
	return len(domain.AlgoTypes)
}

func mode[T comparable](values []T) (T, int) {
	var zero T
	if len(values) == 0 {
		return zero, 0
	}
	counts := make(map[T]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best, bestCount := zero, 0
	for _, v := range values {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best, bestCount
}

// median of the values; even counts average the middle pair and truncate
func median(values []float64) int {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return int(sorted[mid])
	}
	return int((sorted[mid-1] + sorted[mid]) / 2)
}
