package prefill

// Rules holds every tunable threshold of the engine. The zero value is not usable;
// start from DefaultRules and apply overrides.
type Rules struct {
	Urgency     UrgencyRules     `yaml:"urgency" json:"urgency"`
	Algo        AlgoRules        `yaml:"algo" json:"algo"`
	Historical  HistoricalRules  `yaml:"historical" json:"historical"`
	CrossClient CrossClientRules `yaml:"cross_client" json:"cross_client"`
	OrderType   OrderTypeRules   `yaml:"order_type" json:"order_type"`
	LimitPrice  LimitPriceRules  `yaml:"limit_price" json:"limit_price"`
	TIF         TIFRules         `yaml:"tif" json:"tif"`
	GetDone     GetDoneRules     `yaml:"get_done" json:"get_done"`
	TimeWindow  TimeWindowRules  `yaml:"time_window" json:"time_window"`
	Aggression  AggressionRules  `yaml:"aggression" json:"aggression"`
	POV         POVRules         `yaml:"pov" json:"pov"`
	VWAP        VWAPRules        `yaml:"vwap" json:"vwap"`
	Iceberg     IcebergRules     `yaml:"iceberg" json:"iceberg"`
	Quantity    QuantityRules    `yaml:"quantity" json:"quantity"`
	Notes       NotesRules       `yaml:"notes" json:"notes"`
	Scenario    ScenarioRules    `yaml:"scenario" json:"scenario"`
	Defaults    MarketDefaults   `yaml:"defaults" json:"defaults"`
}

// UrgencyRules are the additive factors of the urgency score
type UrgencyRules struct {
	Baseline float64 `yaml:"baseline" json:"baseline"`

	CloseCriticalMin      float64 `yaml:"time_close_critical_min" json:"time_close_critical_min"`
	CloseCriticalDelta    float64 `yaml:"time_close_critical_delta" json:"time_close_critical_delta"`
	CloseTightMin         float64 `yaml:"time_close_tight_min" json:"time_close_tight_min"`
	CloseTightDelta       float64 `yaml:"time_close_tight_delta" json:"time_close_tight_delta"`
	CloseApproachingMin   float64 `yaml:"time_close_approaching_min" json:"time_close_approaching_min"`
	CloseApproachingDelta float64 `yaml:"time_close_approaching_delta" json:"time_close_approaching_delta"`
	CloseMildMin          float64 `yaml:"time_close_mild_min" json:"time_close_mild_min"`
	CloseMildDelta        float64 `yaml:"time_close_mild_delta" json:"time_close_mild_delta"`
	OpenPlentyMin         float64 `yaml:"time_open_plenty_min" json:"time_open_plenty_min"`
	OpenPlentyDelta       float64 `yaml:"time_open_plenty_delta" json:"time_open_plenty_delta"`

	TagCompliance   float64 `yaml:"tag_compliance" json:"tag_compliance"`
	TagSpeed        float64 `yaml:"tag_speed" json:"tag_speed"`
	TagStealth      float64 `yaml:"tag_stealth" json:"tag_stealth"`
	TagConservative float64 `yaml:"tag_conservative" json:"tag_conservative"`
	TagBenchmark    float64 `yaml:"tag_benchmark" json:"tag_benchmark"`

	SizeVeryLargePct   float64 `yaml:"size_very_large_pct" json:"size_very_large_pct"`
	SizeVeryLargeDelta float64 `yaml:"size_very_large_delta" json:"size_very_large_delta"`
	SizeLargePct       float64 `yaml:"size_large_pct" json:"size_large_pct"`
	SizeLargeDelta     float64 `yaml:"size_large_delta" json:"size_large_delta"`
	SizeSmallPct       float64 `yaml:"size_small_pct" json:"size_small_pct"`
	SizeSmallDelta     float64 `yaml:"size_small_delta" json:"size_small_delta"`
	SizeModeratePct    float64 `yaml:"size_moderate_pct" json:"size_moderate_pct"`
	SizeModerateDelta  float64 `yaml:"size_moderate_delta" json:"size_moderate_delta"`

	VolHighThreshold float64 `yaml:"vol_high_threshold" json:"vol_high_threshold"`
	VolHighDelta     float64 `yaml:"vol_high_delta" json:"vol_high_delta"`
	VolLowThreshold  float64 `yaml:"vol_low_threshold" json:"vol_low_threshold"`
	VolLowDelta      float64 `yaml:"vol_low_delta" json:"vol_low_delta"`

	NotesUrgentDelta  float64 `yaml:"notes_urgent_delta" json:"notes_urgent_delta"`
	NotesPatientDelta float64 `yaml:"notes_patient_delta" json:"notes_patient_delta"`
	NotesGetDoneDelta float64 `yaml:"notes_get_done_delta" json:"notes_get_done_delta"`

	DeadlineImminentMin      float64 `yaml:"deadline_imminent_min" json:"deadline_imminent_min"`
	DeadlineImminentDelta    float64 `yaml:"deadline_imminent_delta" json:"deadline_imminent_delta"`
	DeadlineApproachingMin   float64 `yaml:"deadline_approaching_min" json:"deadline_approaching_min"`
	DeadlineApproachingDelta float64 `yaml:"deadline_approaching_delta" json:"deadline_approaching_delta"`

	RiskAversionFactor float64 `yaml:"risk_aversion_factor" json:"risk_aversion_factor"`
}

// AlgoRules drive the algo type priority chain
type AlgoRules struct {
	NotesConfidence float64 `yaml:"notes_confidence" json:"notes_confidence"`

	DirectUrgency    float64 `yaml:"direct_urgency_threshold" json:"direct_urgency_threshold"`
	DirectSizeMax    float64 `yaml:"direct_size_max" json:"direct_size_max"`
	DirectConfidence float64 `yaml:"direct_confidence" json:"direct_confidence"`

	ComplianceConfidence float64 `yaml:"compliance_confidence" json:"compliance_confidence"`
	StealthConfidence    float64 `yaml:"stealth_confidence" json:"stealth_confidence"`
	BenchmarkConfidence  float64 `yaml:"benchmark_confidence" json:"benchmark_confidence"`
	SpeedSmallSize       float64 `yaml:"speed_small_size" json:"speed_small_size"`
	SpeedConfidence      float64 `yaml:"speed_confidence" json:"speed_confidence"`

	HighUrgency float64 `yaml:"high_urgency_threshold" json:"high_urgency_threshold"`
	LowUrgency  float64 `yaml:"low_urgency_threshold" json:"low_urgency_threshold"`

	HighLargeSize    float64 `yaml:"high_urgency_large_size" json:"high_urgency_large_size"`
	HighLargeConf    float64 `yaml:"high_urgency_large_conf" json:"high_urgency_large_conf"`
	HighMidSize      float64 `yaml:"high_urgency_mid_size" json:"high_urgency_mid_size"`
	HighMidConf      float64 `yaml:"high_urgency_mid_conf" json:"high_urgency_mid_conf"`
	HighSmallConf    float64 `yaml:"high_urgency_small_conf" json:"high_urgency_small_conf"`
	LowLargeSize     float64 `yaml:"low_urgency_large_size" json:"low_urgency_large_size"`
	LowLargeConf     float64 `yaml:"low_urgency_large_conf" json:"low_urgency_large_conf"`
	LowMidSize       float64 `yaml:"low_urgency_mid_size" json:"low_urgency_mid_size"`
	LowMidConf       float64 `yaml:"low_urgency_mid_conf" json:"low_urgency_mid_conf"`
	LowSmallConf     float64 `yaml:"low_urgency_small_conf" json:"low_urgency_small_conf"`
	MedVeryLarge     float64 `yaml:"med_very_large_size" json:"med_very_large_size"`
	MedVeryLargeConf float64 `yaml:"med_very_large_conf" json:"med_very_large_conf"`
	MedLargeSize     float64 `yaml:"med_large_size" json:"med_large_size"`
	MedLargeConf     float64 `yaml:"med_large_conf" json:"med_large_conf"`
	MedMidSize       float64 `yaml:"med_mid_size" json:"med_mid_size"`
	MedMidConf       float64 `yaml:"med_mid_conf" json:"med_mid_conf"`
	MedSmallConf     float64 `yaml:"med_small_conf" json:"med_small_conf"`
}

// HistoricalRules control how much the client's own history counts
type HistoricalRules struct {
	QueryLimit          float64 `yaml:"query_limit" json:"query_limit"`
	MinOrdersStart      float64 `yaml:"min_orders_start" json:"min_orders_start"`
	MaxWeight           float64 `yaml:"max_weight" json:"max_weight"`
	WeightPerOrder      float64 `yaml:"weight_per_order" json:"weight_per_order"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" json:"similarity_threshold"`
	BlendAnchor         float64 `yaml:"blend_anchor" json:"blend_anchor"`
	ConfidenceCeiling   float64 `yaml:"confidence_ceiling" json:"confidence_ceiling"`
	AnnotationBoost     float64 `yaml:"annotation_boost" json:"annotation_boost"`
	MinOrdersOrderType  float64 `yaml:"min_orders_order_type" json:"min_orders_order_type"`
	MinOrdersTIF        float64 `yaml:"min_orders_tif" json:"min_orders_tif"`
	GetDoneFreq         float64 `yaml:"get_done_freq" json:"get_done_freq"`
}

// CrossClientRules gate the market-pattern annotation
type CrossClientRules struct {
	MinOrders     float64 `yaml:"min_orders" json:"min_orders"`
	MinPct        float64 `yaml:"min_pct" json:"min_pct"`
	QtyLowFactor  float64 `yaml:"qty_low_factor" json:"qty_low_factor"`
	QtyHighFactor float64 `yaml:"qty_high_factor" json:"qty_high_factor"`
}

type OrderTypeRules struct {
	AlgoLimitConf float64 `yaml:"algo_limit_conf" json:"algo_limit_conf"`
	MarketUrgency float64 `yaml:"market_urgency" json:"market_urgency"`
	MarketClose   float64 `yaml:"market_time_close" json:"market_time_close"`
	MarketConf    float64 `yaml:"market_conf" json:"market_conf"`
	LimitVol      float64 `yaml:"limit_volatility" json:"limit_volatility"`
	LimitVolConf  float64 `yaml:"limit_volatility_conf" json:"limit_volatility_conf"`
	DefaultConf   float64 `yaml:"default_conf" json:"default_conf"`
	HistoryAnchor float64 `yaml:"history_anchor" json:"history_anchor"`
}

type LimitPriceRules struct {
	HighUrgency       float64 `yaml:"high_urgency_threshold" json:"high_urgency_threshold"`
	HighUrgencyOffset float64 `yaml:"high_urgency_offset" json:"high_urgency_offset"`
	MedUrgency        float64 `yaml:"med_urgency_threshold" json:"med_urgency_threshold"`
	MedUrgencyOffset  float64 `yaml:"med_urgency_offset" json:"med_urgency_offset"`
	CloseThreshold    float64 `yaml:"time_close_threshold" json:"time_close_threshold"`
	CloseOffset       float64 `yaml:"time_close_offset" json:"time_close_offset"`
	VolThreshold      float64 `yaml:"vol_threshold" json:"vol_threshold"`
	VolOffset         float64 `yaml:"vol_offset" json:"vol_offset"`
	DefaultOffset     float64 `yaml:"default_offset" json:"default_offset"`
	Confidence        float64 `yaml:"confidence" json:"confidence"`
}

type TIFRules struct {
	DirectIOCExtreme float64 `yaml:"direct_ioc_extreme" json:"direct_ioc_extreme"`
	DirectFOK        float64 `yaml:"direct_fok" json:"direct_fok"`
	DirectIOCHigh    float64 `yaml:"direct_ioc_high" json:"direct_ioc_high"`
	AlgoGFDHigh      float64 `yaml:"algo_gfd_high" json:"algo_gfd_high"`
	AlgoGFDModerate  float64 `yaml:"algo_gfd_moderate" json:"algo_gfd_moderate"`
	AlgoGTCTime      float64 `yaml:"algo_gtc_time" json:"algo_gtc_time"`
	NotesConfidence  float64 `yaml:"notes_confidence" json:"notes_confidence"`
	HistoryConf      float64 `yaml:"history_confidence" json:"history_confidence"`
}

type GetDoneRules struct {
	UrgencyThreshold float64 `yaml:"urgency_threshold" json:"urgency_threshold"`
	OnConfidence     float64 `yaml:"on_confidence" json:"on_confidence"`
	OffConfidence    float64 `yaml:"off_confidence" json:"off_confidence"`
}

type TimeWindowRules struct {
	StartStep      float64 `yaml:"start_step_min" json:"start_step_min"`
	LateStartGap   float64 `yaml:"late_start_gap_min" json:"late_start_gap_min"`
	CloseThreshold float64 `yaml:"close_threshold" json:"close_threshold"`
	HighUrgency    float64 `yaml:"high_urgency_threshold" json:"high_urgency_threshold"`
	HighFraction   float64 `yaml:"high_urgency_fraction" json:"high_urgency_fraction"`
	MedUrgency     float64 `yaml:"med_urgency_threshold" json:"med_urgency_threshold"`
	MedFraction    float64 `yaml:"med_urgency_fraction" json:"med_urgency_fraction"`
	LowFraction    float64 `yaml:"low_urgency_fraction" json:"low_urgency_fraction"`
	MinWindow      float64 `yaml:"min_window_min" json:"min_window_min"`
	Confidence     float64 `yaml:"confidence" json:"confidence"`
}

type AggressionRules struct {
	HighThreshold     float64 `yaml:"high_threshold" json:"high_threshold"`
	MedThreshold      float64 `yaml:"med_threshold" json:"med_threshold"`
	ConservativeRisk  float64 `yaml:"conservative_risk" json:"conservative_risk"`
	AggressiveRisk    float64 `yaml:"aggressive_risk" json:"aggressive_risk"`
	AggressiveUrgency float64 `yaml:"aggressive_urgency_floor" json:"aggressive_urgency_floor"`
	MinOrdersBlend    float64 `yaml:"min_orders_blend" json:"min_orders_blend"`
	Confidence        float64 `yaml:"confidence" json:"confidence"`
}

type POVRules struct {
	HighUrgency     float64 `yaml:"high_urgency_threshold" json:"high_urgency_threshold"`
	MedUrgency      float64 `yaml:"med_urgency_threshold" json:"med_urgency_threshold"`
	SizeSplit       float64 `yaml:"size_split_threshold" json:"size_split_threshold"`
	RateHighSmall   float64 `yaml:"rate_high_small" json:"rate_high_small"`
	RateHighLarge   float64 `yaml:"rate_high_large" json:"rate_high_large"`
	RateMedSmall    float64 `yaml:"rate_med_small" json:"rate_med_small"`
	RateMedLarge    float64 `yaml:"rate_med_large" json:"rate_med_large"`
	RateDefault     float64 `yaml:"rate_default" json:"rate_default"`
	VeryLargeSize   float64 `yaml:"very_large_threshold" json:"very_large_threshold"`
	RateVeryLarge   float64 `yaml:"rate_very_large" json:"rate_very_large"`
	CloseThreshold  float64 `yaml:"time_close_threshold" json:"time_close_threshold"`
	RateNearClose   float64 `yaml:"rate_near_close" json:"rate_near_close"`
	MinSizeFloor    float64 `yaml:"min_size_floor" json:"min_size_floor"`
	MinSizeMult     float64 `yaml:"min_size_multiplier" json:"min_size_multiplier"`
	MaxSizeMinRatio float64 `yaml:"max_size_min_ratio" json:"max_size_min_ratio"`
	MaxSizeMult     float64 `yaml:"max_size_multiplier" json:"max_size_multiplier"`
	RateConfidence  float64 `yaml:"rate_confidence" json:"rate_confidence"`
	SizeConfidence  float64 `yaml:"size_confidence" json:"size_confidence"`
}

type VWAPRules struct {
	FrontLoadUrgency float64 `yaml:"front_load_urgency" json:"front_load_urgency"`
	FrontLoadTime    float64 `yaml:"front_load_time" json:"front_load_time"`
	SizeLarge        float64 `yaml:"size_large_threshold" json:"size_large_threshold"`
	SizeMedium       float64 `yaml:"size_medium_threshold" json:"size_medium_threshold"`
	MaxVolLarge      float64 `yaml:"max_vol_large" json:"max_vol_large"`
	MaxVolMedium     float64 `yaml:"max_vol_medium" json:"max_vol_medium"`
	MaxVolSmall      float64 `yaml:"max_vol_small" json:"max_vol_small"`
	CurveConfidence  float64 `yaml:"curve_confidence" json:"curve_confidence"`
	MaxVolConfidence float64 `yaml:"max_vol_confidence" json:"max_vol_confidence"`
}

type IcebergRules struct {
	MinDisplay   float64 `yaml:"min_display" json:"min_display"`
	DisplayPct   float64 `yaml:"display_pct" json:"display_pct"`
	AvgTradeMult float64 `yaml:"avg_trade_multiplier" json:"avg_trade_multiplier"`
	Confidence   float64 `yaml:"confidence" json:"confidence"`
}

type QuantityRules struct {
	BaseConfidence float64 `yaml:"base_confidence" json:"base_confidence"`
	PerOrder       float64 `yaml:"per_order" json:"per_order"`
	MaxBoost       float64 `yaml:"max_boost" json:"max_boost"`
	ADVFallbackPct float64 `yaml:"adv_fallback_pct" json:"adv_fallback_pct"`
}

type NotesRules struct {
	LargeBlockPct float64 `yaml:"large_block_pct" json:"large_block_pct"`
	Confidence    float64 `yaml:"confidence" json:"confidence"`
}

type ScenarioRules struct {
	EODTime           float64 `yaml:"eod_time_threshold" json:"eod_time_threshold"`
	StealthSizeMin    float64 `yaml:"stealth_size_min" json:"stealth_size_min"`
	StealthUrgencyMax float64 `yaml:"stealth_urgency_max" json:"stealth_urgency_max"`
	SpeedUrgencyMin   float64 `yaml:"speed_urgency_min" json:"speed_urgency_min"`
	SpeedTime         float64 `yaml:"speed_time" json:"speed_time"`
	PatientUrgencyMax float64 `yaml:"patient_urgency_max" json:"patient_urgency_max"`
	PatientTimeMin    float64 `yaml:"patient_time_min" json:"patient_time_min"`
}

// MarketDefaults fill gaps in reference and market data
type MarketDefaults struct {
	ADV          float64 `yaml:"adv" json:"adv"`
	TickSize     float64 `yaml:"tick_size" json:"tick_size"`
	AvgTradeSize float64 `yaml:"avg_trade_size" json:"avg_trade_size"`
}

// DefaultRules returns the factory configuration
func DefaultRules() Rules {
	return Rules{
		Urgency: UrgencyRules{
			Baseline:                 50,
			CloseCriticalMin:         10,
			CloseCriticalDelta:       35,
			CloseTightMin:            20,
			CloseTightDelta:          25,
			CloseApproachingMin:      30,
			CloseApproachingDelta:    18,
			CloseMildMin:             60,
			CloseMildDelta:           10,
			OpenPlentyMin:            240,
			OpenPlentyDelta:          -10,
			TagCompliance:            12,
			TagSpeed:                 18,
			TagStealth:               -12,
			TagConservative:          -15,
			TagBenchmark:             5,
			SizeVeryLargePct:         20,
			SizeVeryLargeDelta:       -12,
			SizeLargePct:             10,
			SizeLargeDelta:           -5,
			SizeSmallPct:             2,
			SizeSmallDelta:           10,
			SizeModeratePct:          5,
			SizeModerateDelta:        5,
			VolHighThreshold:         3.0,
			VolHighDelta:             -8,
			VolLowThreshold:          1.5,
			VolLowDelta:              5,
			NotesUrgentDelta:         20,
			NotesPatientDelta:        -15,
			NotesGetDoneDelta:        12,
			DeadlineImminentMin:      30,
			DeadlineImminentDelta:    20,
			DeadlineApproachingMin:   60,
			DeadlineApproachingDelta: 10,
			RiskAversionFactor:       0.15,
		},
		Algo: AlgoRules{
			NotesConfidence:      0.95,
			DirectUrgency:        85,
			DirectSizeMax:        5,
			DirectConfidence:     0.85,
			ComplianceConfidence: 0.90,
			StealthConfidence:    0.85,
			BenchmarkConfidence:  0.85,
			SpeedSmallSize:       2,
			SpeedConfidence:      0.85,
			HighUrgency:          75,
			LowUrgency:           25,
			HighLargeSize:        10,
			HighLargeConf:        0.75,
			HighMidSize:          3,
			HighMidConf:          0.70,
			HighSmallConf:        0.75,
			LowLargeSize:         15,
			LowLargeConf:         0.75,
			LowMidSize:           5,
			LowMidConf:           0.70,
			LowSmallConf:         0.65,
			MedVeryLarge:         20,
			MedVeryLargeConf:     0.75,
			MedLargeSize:         10,
			MedLargeConf:         0.70,
			MedMidSize:           3,
			MedMidConf:           0.60,
			MedSmallConf:         0.65,
		},
		Historical: HistoricalRules{
			QueryLimit:          10,
			MinOrdersStart:      3,
			MaxWeight:           0.30,
			WeightPerOrder:      0.10,
			SimilarityThreshold: 0.20,
			BlendAnchor:         0.90,
			ConfidenceCeiling:   0.95,
			AnnotationBoost:     0.10,
			MinOrdersOrderType:  5,
			MinOrdersTIF:        3,
			GetDoneFreq:         0.50,
		},
		CrossClient: CrossClientRules{
			MinOrders:     5,
			MinPct:        60,
			QtyLowFactor:  0.4,
			QtyHighFactor: 2.5,
		},
		OrderType: OrderTypeRules{
			AlgoLimitConf: 0.80,
			MarketUrgency: 85,
			MarketClose:   15,
			MarketConf:    0.85,
			LimitVol:      3.0,
			LimitVolConf:  0.75,
			DefaultConf:   0.60,
			HistoryAnchor: 0.85,
		},
		LimitPrice: LimitPriceRules{
			HighUrgency:       75,
			HighUrgencyOffset: 18,
			MedUrgency:        50,
			MedUrgencyOffset:  12,
			CloseThreshold:    30,
			CloseOffset:       15,
			VolThreshold:      2.5,
			VolOffset:         12,
			DefaultOffset:     8,
			Confidence:        0.60,
		},
		TIF: TIFRules{
			DirectIOCExtreme: 90,
			DirectFOK:        80,
			DirectIOCHigh:    65,
			AlgoGFDHigh:      85,
			AlgoGFDModerate:  70,
			AlgoGTCTime:      375,
			NotesConfidence:  0.95,
			HistoryConf:      0.75,
		},
		GetDone: GetDoneRules{
			UrgencyThreshold: 75,
			OnConfidence:     0.80,
			OffConfidence:    0.60,
		},
		TimeWindow: TimeWindowRules{
			StartStep:      5,
			LateStartGap:   30,
			CloseThreshold: 60,
			HighUrgency:    70,
			HighFraction:   0.35,
			MedUrgency:     50,
			MedFraction:    0.55,
			LowFraction:    0.75,
			MinWindow:      20,
			Confidence:     0.75,
		},
		Aggression: AggressionRules{
			HighThreshold:     70,
			MedThreshold:      35,
			ConservativeRisk:  70,
			AggressiveRisk:    29,
			AggressiveUrgency: 30,
			MinOrdersBlend:    5,
			Confidence:        0.75,
		},
		POV: POVRules{
			HighUrgency:     75,
			MedUrgency:      50,
			SizeSplit:       10,
			RateHighSmall:   20,
			RateHighLarge:   15,
			RateMedSmall:    12,
			RateMedLarge:    10,
			RateDefault:     10,
			VeryLargeSize:   15,
			RateVeryLarge:   5,
			CloseThreshold:  60,
			RateNearClose:   18,
			MinSizeFloor:    50,
			MinSizeMult:     0.3,
			MaxSizeMinRatio: 10,
			MaxSizeMult:     3.0,
			RateConfidence:  0.70,
			SizeConfidence:  0.60,
		},
		VWAP: VWAPRules{
			FrontLoadUrgency: 65,
			FrontLoadTime:    90,
			SizeLarge:        10,
			SizeMedium:       5,
			MaxVolLarge:      25,
			MaxVolMedium:     15,
			MaxVolSmall:      20,
			CurveConfidence:  0.75,
			MaxVolConfidence: 0.65,
		},
		Iceberg: IcebergRules{
			MinDisplay:   100,
			DisplayPct:   0.08,
			AvgTradeMult: 1.5,
			Confidence:   0.70,
		},
		Quantity: QuantityRules{
			BaseConfidence: 0.40,
			PerOrder:       0.04,
			MaxBoost:       0.30,
			ADVFallbackPct: 0.05,
		},
		Notes: NotesRules{
			LargeBlockPct: 15,
			Confidence:    0.50,
		},
		Scenario: ScenarioRules{
			EODTime:           90,
			StealthSizeMin:    20,
			StealthUrgencyMax: 40,
			SpeedUrgencyMin:   80,
			SpeedTime:         15,
			PatientUrgencyMax: 25,
			PatientTimeMin:    120,
		},
		Defaults: MarketDefaults{
			ADV:          1_000_000,
			TickSize:     0.05,
			AvgTradeSize: 500,
		},
	}
}
