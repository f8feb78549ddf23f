package models

// Reason tags why a signal was rejected. Reasons are machine-readable and
// travel alongside the boolean outcome; downstream never parses messages.
type Reason string

const (
	ReasonNone Reason = ""

	// InstantGate
	ReasonLowVolume     Reason = "low_volume"
	ReasonLowLiquidity  Reason = "low_liquidity"
	ReasonLowConfidence Reason = "low_confidence"
	ReasonExtremeRSI    Reason = "extreme_rsi"

	// HeuristicFilter
	ReasonInvalidSignal       Reason = "invalid_signal"
	ReasonCooldownActive      Reason = "cooldown_active"
	ReasonSymbolLimit         Reason = "symbol_limit_reached"
	ReasonVolumeQuality       Reason = "volume_quality"
	ReasonLiquidityDepth      Reason = "liquidity_depth"
	ReasonVolumeSpike         Reason = "volume_spike"
	ReasonHolderConcentration Reason = "holder_concentration"
	ReasonWashTrading         Reason = "wash_trading"
	ReasonPumpAndDump         Reason = "pump_and_dump"
	ReasonUnlockedLiquidity   Reason = "unlocked_liquidity"
	ReasonTokenAge            Reason = "token_age"
	ReasonPriceManipulation   Reason = "price_manipulation"

	// MicroTimeframeGate
	ReasonMicroLowVolume     Reason = "micro_low_volume"
	ReasonMicroLowConfidence Reason = "micro_low_confidence"
	ReasonMicroCooldown      Reason = "micro_cooldown"
	ReasonPriceUnstable      Reason = "price_unstable"
	ReasonMicroPumpDump      Reason = "micro_pump_dump"
	ReasonMicroComposite     Reason = "micro_composite"

	// SniperGate
	ReasonHoneypot   Reason = "honeypot"
	ReasonSocialRisk Reason = "social_risk"

	// Cross-cutting
	ReasonRateLimited     Reason = "rate_limited"
	ReasonEvaluationError Reason = "evaluation_error"
)

// StageResult is produced by one filter invocation and consumed immediately
// by the orchestrator; it is never persisted.
type StageResult struct {
	Passed   []*Signal
	Rejected int
	Reasons  map[Reason]int
}

// StageStats is a point-in-time snapshot of one stage's counters.
type StageStats struct {
	Stage         string  `json:"stage"`
	Processed     int64   `json:"processed"`
	Rejected      int64   `json:"rejected"`
	RejectionRate float64 `json:"rejection_rate"`
}

// PipelineStats is a point-in-time snapshot of the orchestrator's counters.
type PipelineStats struct {
	Stages         []StageStats `json:"stages"`
	TotalProcessed int64        `json:"total_processed"`
	TotalRejected  int64        `json:"total_rejected"`
	RejectionRate  float64      `json:"rejection_rate"`
}
