package prefill

import (
	"fmt"

	"github.com/aristath/prefill/internal/domain"
	"github.com/aristath/prefill/internal/modules/session"
)

func (e *Engine) resolveTimeWindow(f *facts, s SuggestionSet) {
	if !f.algo.IsAlgo() {
		return
	}
	w := e.rules.TimeWindow
	closing := e.hours.Close

	start := f.now.CeilTo(int(w.StartStep))
	if start < e.hours.Open {
		start = e.hours.Open
	}
	if start >= closing {
		start = closing.Add(-int(w.LateStartGap))
	}

	var end session.Clock
	var reason, skipped string
	deadline := f.notes.Deadline != nil
	if deadline {
		end = e.hours.Clamp(*f.notes.Deadline)
		if end <= start {
			deadline = false
			skipped = fmt.Sprintf("Notes deadline %s is not after start %s: ignored. ", *f.notes.Deadline, start)
		}
	}

	switch {
	case deadline:
		reason = fmt.Sprintf("End time from order notes deadline: %s", end)
	case closeBound(f):
		end = closing
		mode := "get-done"
		if f.tag == domain.TagComplianceDriven {
			mode = "EOD compliance"
		}
		reason = fmt.Sprintf("Window runs to market close (%s): %s mode", closing, mode)
	case float64(f.ttc) < w.CloseThreshold:
		end = closing
		reason = fmt.Sprintf("Less than %gmin to close: window extends to %s", w.CloseThreshold, closing)
	default:
		frac := w.LowFraction
		switch {
		case float64(f.urgency) >= w.HighUrgency:
			frac = w.HighFraction
		case float64(f.urgency) >= w.MedUrgency:
			frac = w.MedFraction
		}
		remaining := int(closing - start)
		window := int(float64(remaining) * frac)
		if window < int(w.MinWindow) {
			window = int(w.MinWindow)
		}
		end = start.Add(window)
		if end > closing {
			end = closing
		}
		reason = fmt.Sprintf("Window spans %dmin (~%d%% of remaining session): urgency %d/100", window, int(frac*100), f.urgency)
	}

	reason = skipped + reason
	s.put(FieldStartTime, start.String(), w.Confidence, reason)
	s.put(FieldEndTime, end.String(), w.Confidence, reason)
}

func closeBound(f *facts) bool {
	return f.tag == domain.TagComplianceDriven || f.getDone
}
