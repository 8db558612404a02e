// Package domain provides the core order ticket types shared by the prefill engine,
// its stores and its HTTP surface.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Direction is the side of an order
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// ParseDirection normalises a direction string ("buy", " SELL ")
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToUpper(strings.TrimSpace(s))) {
	case DirectionBuy:
		return DirectionBuy, nil
	case DirectionSell:
		return DirectionSell, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// AlgoType is the execution strategy of an order
type AlgoType string

const (
	AlgoNone    AlgoType = "NONE"
	AlgoPOV     AlgoType = "POV"
	AlgoVWAP    AlgoType = "VWAP"
	AlgoIceberg AlgoType = "ICEBERG"
)

// AlgoTypes lists every algo type in display order
var AlgoTypes = []AlgoType{AlgoNone, AlgoPOV, AlgoVWAP, AlgoIceberg}

// IsAlgo reports whether the order is worked by an algorithm
func (a AlgoType) IsAlgo() bool {
	return a != AlgoNone && a != ""
}

// ParseAlgoType returns the algo type for s or false when s names none
func ParseAlgoType(s string) (AlgoType, bool) {
	a := AlgoType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AlgoTypes {
		if a == known {
			return a, true
		}
	}
	return "", false
}

// OrderType is the pricing instruction of an order
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// TimeInForce is how long an unfilled order stays valid
type TimeInForce string

const (
	TIFDay               TimeInForce = "GFD"
	TIFImmediateOrCancel TimeInForce = "IOC"
	TIFFillOrKill        TimeInForce = "FOK"
	TIFGoodTillCancel    TimeInForce = "GTC"
	TIFGoodTillDate      TimeInForce = "GTD"
)

// Aggression is the ordinal aggression level of an algo order
type Aggression int

const (
	AggressionUnknown Aggression = 0
	AggressionLow     Aggression = 1
	AggressionMedium  Aggression = 2
	AggressionHigh    Aggression = 3
)

func (a Aggression) String() string {
	switch a {
	case AggressionLow:
		return "Low"
	case AggressionMedium:
		return "Medium"
	case AggressionHigh:
		return "High"
	}
	return ""
}

// ParseAggression accepts "Low"/"Medium"/"High" in any case; anything else is unknown
func ParseAggression(s string) Aggression {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return AggressionLow
	case "medium":
		return AggressionMedium
	case "high":
		return AggressionHigh
	}
	return AggressionUnknown
}

// ClientTag classifies a client's dominant execution mandate
type ClientTag string

const (
	TagComplianceDriven ClientTag = "compliance_driven"
	TagSpeedDriven      ClientTag = "speed_driven"
	TagStealth          ClientTag = "stealth"
	TagBenchmarkDriven  ClientTag = "benchmark_driven"
	TagConservative     ClientTag = "conservative"
	TagNone             ClientTag = "none"
)

// Valid reports whether t is one of the known tags
func (t ClientTag) Valid() bool {
	switch t {
	case TagComplianceDriven, TagSpeedDriven, TagStealth, TagBenchmarkDriven, TagConservative, TagNone:
		return true
	}
	return false
}

// OrderStatus values recorded in the historical store
const (
	StatusFilled    = "FILLED"
	StatusPartial   = "PARTIAL"
	StatusCancelled = "CANCELLED"
)

// DefaultRiskAversion is used when neither profile nor override carries one
const DefaultRiskAversion = 50

// OrderContext is the per-request ticket state. Optional values are nil when unset.
type OrderContext struct {
	ClientID             string    `json:"client_id"`
	Symbol               string    `json:"symbol"`
	Direction            Direction `json:"direction"`
	Quantity             *int      `json:"quantity,omitempty"`
	UrgencyOverride      *int      `json:"urgency,omitempty"`
	RiskAversionOverride *int      `json:"risk_aversion,omitempty"`
	Notes                string    `json:"order_notes,omitempty"`
}

// Validate checks the boundary constraints of a ticket
func (o OrderContext) Validate() error {
	if strings.TrimSpace(o.ClientID) == "" {
		return ErrMissingClient
	}
	if strings.TrimSpace(o.Symbol) == "" {
		return ErrMissingSymbol
	}
	if o.Direction != DirectionBuy && o.Direction != DirectionSell {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, o.Direction)
	}
	if o.Quantity != nil && *o.Quantity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, *o.Quantity)
	}
	if v := o.UrgencyOverride; v != nil && (*v < 0 || *v > 100) {
		return fmt.Errorf("%w: urgency %d outside [0,100]", ErrInvalidOverride, *v)
	}
	if v := o.RiskAversionOverride; v != nil && (*v < 0 || *v > 100) {
		return fmt.Errorf("%w: risk_aversion %d outside [0,100]", ErrInvalidOverride, *v)
	}
	return nil
}

// ClientProfile is a read-only client registry entry
type ClientProfile struct {
	ID           string    `json:"client_id"`
	Name         string    `json:"name"`
	Tag          ClientTag `json:"tag"`
	RiskAversion int       `json:"risk_aversion"`
	Notes        string    `json:"notes"`
}

// Instrument is the static reference data of a symbol
type Instrument struct {
	Symbol              string  `json:"symbol"`
	Name                string  `json:"name"`
	Sector              string  `json:"sector"`
	ADV                 int64   `json:"adv"`
	TickSize            float64 `json:"tick_size"`
	Restricted          bool    `json:"restricted"`
	ShortSellRestricted bool    `json:"short_sell_restricted"`
}

// MarketSnapshot is a point-in-time copy of the feed for one symbol.
// MinutesToClose is nil when the feed does not carry it.
type MarketSnapshot struct {
	Symbol         string    `json:"symbol" msgpack:"symbol"`
	LastPrice      float64   `json:"ltp" msgpack:"ltp"`
	Bid            float64   `json:"bid" msgpack:"bid"`
	Ask            float64   `json:"ask" msgpack:"ask"`
	SpreadBps      float64   `json:"spread_bps" msgpack:"spread_bps"`
	VolatilityPct  float64   `json:"volatility" msgpack:"volatility"`
	MinutesToClose *int      `json:"time_to_close,omitempty" msgpack:"time_to_close,omitempty"`
	AvgTradeSize   int       `json:"avg_trade_size" msgpack:"avg_trade_size"`
	UpdatedAt      time.Time `json:"updated_at" msgpack:"updated_at"`
}

// HistoricalOrder is an immutable past order with the market conditions at entry
type HistoricalOrder struct {
	ID            int64       `json:"id"`
	ClientID      string      `json:"client_id"`
	Symbol        string      `json:"symbol"`
	Direction     Direction   `json:"direction"`
	Quantity      int         `json:"quantity"`
	AlgoType      AlgoType    `json:"algo_type"`
	OrderType     OrderType   `json:"order_type"`
	TIF           TimeInForce `json:"tif"`
	Aggression    Aggression  `json:"aggression"`
	GetDone       bool        `json:"get_done"`
	Status        string      `json:"status"`
	VolatilityPct float64     `json:"volatility"`
	SpreadBps     float64     `json:"spread_bps"`
	CreatedAt     time.Time   `json:"created_at"`
}

// AlgoCount is one row of a cross-client algo distribution
type AlgoCount struct {
	AlgoType AlgoType `json:"algo_type"`
	Count    int      `json:"count"`
}
