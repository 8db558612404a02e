package prefill

import (
	"fmt"

	"github.com/aristath/prefill/internal/domain"
)

// whyNot explains every algo type other than the chosen one
func whyNot(f *facts) map[domain.AlgoType]string {
	out := make(map[domain.AlgoType]string, len(domain.AlgoTypes)-1)
	for _, algo := range domain.AlgoTypes {
		if algo == f.algo {
			continue
		}
		out[algo] = rejection(algo, f)
	}
	return out
}

func rejection(algo domain.AlgoType, f *facts) string {
	switch algo {
	case domain.AlgoNone:
		if f.sizePct > 3 {
			return fmt.Sprintf("Direct execution skipped: order is %.1f%% of ADV. A single market order this size would cause %.0f-%.0f bps of market impact. An algorithm can slice it to reduce footprint.",
				f.sizePct, f.sizePct*0.3, f.sizePct*0.8)
		}
		return "Direct execution is viable but the selected algo provides better price discovery and execution analytics for audit purposes."

	case domain.AlgoPOV:
		switch {
		case f.tag == domain.TagComplianceDriven:
			return "POV not ideal for EOD compliance: it targets a fixed participation rate but does not guarantee completion by close. VWAP with a back-loaded curve better ensures a timely fill."
		case f.urgency < 30:
			return "POV not recommended at low urgency: its fixed participation rate may overshoot in low-volume periods. A patient VWAP or ICEBERG is more appropriate."
		case f.sizePct > 20:
			return fmt.Sprintf("POV risky for very large orders (%.1f%% ADV): fixed participation at this size would signal a large buyer or seller to the market.", f.sizePct)
		}
		return "POV considered but the selected algorithm better matches the current market conditions and client execution style."

	case domain.AlgoVWAP:
		switch {
		case f.ttc < 20:
			return fmt.Sprintf("VWAP not recommended: only %dmin to close. Insufficient time window for meaningful volume-weighted distribution.", f.ttc)
		case f.tag == domain.TagStealth && f.sizePct > 15:
			return "VWAP less suitable for stealth: it follows predictable volume patterns that sophisticated counterparties can detect. ICEBERG better hides intent."
		case f.urgency > 80:
			return "VWAP too passive for the current urgency level: it distributes evenly over time and may not complete fast enough."
		}
		return "VWAP considered but the selected algorithm better fits the order's size-to-volume ratio and client preferences."

	default:
		switch {
		case f.sizePct < 3:
			return fmt.Sprintf("ICEBERG unnecessary: order is only %.1f%% of ADV. The full quantity can be absorbed without significant market impact.", f.sizePct)
		case f.urgency > 75:
			return "ICEBERG too slow for current urgency: it reveals only small slices at a time, which limits fill speed. A more aggressive algo is needed."
		case f.tag == domain.TagBenchmarkDriven:
			return "ICEBERG not ideal for an arrival price benchmark: it does not control participation relative to volume. POV provides better arrival price tracking."
		}
		return "ICEBERG considered but the selected algorithm provides a better balance of speed and market impact for this order profile."
	}
}
