package prefill

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aristath/prefill/internal/domain"
	"github.com/aristath/prefill/internal/modules/session"
)

// UrgencyHint is the direction of urgency language found in notes
type UrgencyHint string

const (
	UrgencyHintNone UrgencyHint = ""
	UrgencyHintHigh UrgencyHint = "high"
	UrgencyHintLow  UrgencyHint = "low"
)

// Benchmark is the execution benchmark named in notes
type Benchmark string

const (
	BenchmarkNone    Benchmark = ""
	BenchmarkArrival Benchmark = "arrival"
	BenchmarkVWAP    Benchmark = "vwap"
	BenchmarkClose   Benchmark = "close"
)

// ConstraintMaxParticipation caps per-interval participation, in percent
const ConstraintMaxParticipation = "max_participation"

// Constraint is a numeric limit stated in notes
type Constraint struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// ParsedNotes is the structured intent extracted from free-text order notes
type ParsedNotes struct {
	Algo        domain.AlgoType    `json:"algo_hint,omitempty"`
	Deadline    *session.Clock     `json:"deadline,omitempty"`
	Urgency     UrgencyHint        `json:"urgency_hint,omitempty"`
	GetDone     bool               `json:"get_done"`
	Benchmark   Benchmark          `json:"benchmark,omitempty"`
	TIF         domain.TimeInForce `json:"tif_hint,omitempty"`
	Constraints []Constraint       `json:"constraints,omitempty"`
}

// Constraint returns the first constraint of the given type
func (p ParsedNotes) Constraint(kind string) (float64, bool) {
	for _, c := range p.Constraints {
		if c.Type == kind {
			return c.Value, true
		}
	}
	return 0, false
}

// noteMatcher extracts one concept from lower-cased notes
type noteMatcher func(lower string, hours session.Hours, out *ParsedNotes)

var noteMatchers = []noteMatcher{
	matchAlgoHint,
	matchDeadline,
	matchUrgencyHint,
	matchGetDone,
	matchBenchmark,
	matchTIFHint,
	matchConstraints,
}

// ParseNotes runs every matcher over the notes. Empty notes yield the zero value.
func ParseNotes(notes string, hours session.Hours) ParsedNotes {
	var out ParsedNotes
	lower := strings.ToLower(strings.TrimSpace(notes))
	if lower == "" {
		return out
	}
	for _, m := range noteMatchers {
		m(lower, hours, &out)
	}
	return out
}

var (
	reAlgoVWAP    = regexp.MustCompile(`\bvwap\b`)
	reAlgoPOV     = regexp.MustCompile(`\bpov\b|percentage\s+of\s+volume`)
	reAlgoIceberg = regexp.MustCompile(`\biceberg\b|\bhidden\b`)
)

func matchAlgoHint(lower string, _ session.Hours, out *ParsedNotes) {
	switch {
	case reAlgoVWAP.MatchString(lower):
		out.Algo = domain.AlgoVWAP
	case reAlgoPOV.MatchString(lower):
		out.Algo = domain.AlgoPOV
	case reAlgoIceberg.MatchString(lower):
		out.Algo = domain.AlgoIceberg
	}
}

var (
	reDeadlineClock = regexp.MustCompile(`\b(?:complete\s+by|finish\s+by|done\s+by|by|before)\s+(\d{1,4})(?::(\d{2}))?\s*([a-z%]*)`)
	reDeadlineClose = regexp.MustCompile(`\bby\s+(?:close|eod|end\s+of\s+day|market\s+close)\b`)
)

// deadlineUnits mark a "by N" that is an amount rather than a time
var deadlineUnits = map[string]bool{
	"%": true, "bp": true, "bps": true, "basis": true, "percent": true, "pct": true,
	"tick": true, "ticks": true, "paise": true, "rs": true, "shares": true, "lot": true, "lots": true, "k": true,
}

func matchDeadline(lower string, hours session.Hours, out *ParsedNotes) {
	for _, m := range reDeadlineClock.FindAllStringSubmatch(lower, -1) {
		if c, ok := parseDeadline(m[1], m[2], m[3], hours); ok {
			out.Deadline = &c
			return
		}
	}

	if reDeadlineClose.MatchString(lower) {
		c := hours.Close
		out.Deadline = &c
	}
}

// parseDeadline reads "2pm", "13:45", "1345" or a bare hour. A bare hour
// without minutes or am/pm only counts when it falls inside the session.
func parseDeadline(digits, minutes, suffix string, hours session.Hours) (session.Clock, bool) {
	if deadlineUnits[suffix] {
		return 0, false
	}
	explicit := minutes != ""
	if len(digits) > 2 {
		if explicit {
			return 0, false
		}
		digits, minutes = digits[:len(digits)-2], digits[len(digits)-2:]
		explicit = true
	}
	h, _ := strconv.Atoi(digits)
	mins := 0
	if explicit {
		mins, _ = strconv.Atoi(minutes)
	}

	switch {
	case suffix == "pm" && h < 12:
		h += 12
	case suffix == "am" && h == 12:
		h = 0
	}
	if h > 23 || mins > 59 {
		return 0, false
	}

	c := session.NewClock(h, mins)
	if !explicit && suffix != "am" && suffix != "pm" && (c < hours.Open || c > hours.Close) {
		return 0, false
	}
	return c, true
}

var (
	reUrgent  = regexp.MustCompile(`\b(?:urgent|asap|immediately|must\s+complete|critical|time\s+sensitive|rush|fast|quick)\b`)
	rePatient = regexp.MustCompile(`\b(?:patient|no\s+rush|take\s+time|slow|passive|minimi[sz]e\s+impact|stealth|low\s+footprint)\b`)
)

func matchUrgencyHint(lower string, _ session.Hours, out *ParsedNotes) {
	// "no rush" contains "rush"; patience phrases that embed an urgent word win
	if strings.Contains(lower, "no rush") {
		out.Urgency = UrgencyHintLow
		return
	}
	switch {
	case reUrgent.MatchString(lower):
		out.Urgency = UrgencyHintHigh
	case rePatient.MatchString(lower):
		out.Urgency = UrgencyHintLow
	}
}

var reGetDone = regexp.MustCompile(`must\s+(?:be\s+)?(?:done|complete|fill)|get\s+(?:it\s+)?done|ensure\s+fill|guaranteed\s+fill`)

func matchGetDone(lower string, _ session.Hours, out *ParsedNotes) {
	out.GetDone = reGetDone.MatchString(lower)
}

func matchBenchmark(lower string, _ session.Hours, out *ParsedNotes) {
	switch {
	case strings.Contains(lower, "arrival"):
		out.Benchmark = BenchmarkArrival
	case strings.Contains(lower, "vwap") && strings.Contains(lower, "benchmark"):
		out.Benchmark = BenchmarkVWAP
	case strings.Contains(lower, "close") && (strings.Contains(lower, "benchmark") || strings.Contains(lower, "closing")):
		out.Benchmark = BenchmarkClose
	}
}

var tifPatterns = []struct {
	re  *regexp.Regexp
	tif domain.TimeInForce
}{
	{regexp.MustCompile(`\bioc\b|immediate\s+or\s+cancel`), domain.TIFImmediateOrCancel},
	{regexp.MustCompile(`\bfok\b|fill\s+or\s+kill`), domain.TIFFillOrKill},
	{regexp.MustCompile(`\bgtc\b|good\s+till?\s+cancel`), domain.TIFGoodTillCancel},
	{regexp.MustCompile(`\bgtd\b|good\s+till?\s+date`), domain.TIFGoodTillDate},
	{regexp.MustCompile(`\bgfd\b|good\s+for\s+(?:the\s+)?day|day\s+order`), domain.TIFDay},
}

func matchTIFHint(lower string, _ session.Hours, out *ParsedNotes) {
	for _, p := range tifPatterns {
		if p.re.MatchString(lower) {
			out.TIF = p.tif
			return
		}
	}
}

var reMaxParticipation = regexp.MustCompile(`max(?:imum)?\s+(?:participation|volume)\s*[:\-]?\s*(\d+(?:\.\d+)?)\s*%`)

func matchConstraints(lower string, _ session.Hours, out *ParsedNotes) {
	for _, m := range reMaxParticipation.FindAllStringSubmatch(lower, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		out.Constraints = append(out.Constraints, Constraint{Type: ConstraintMaxParticipation, Value: v})
	}
}
