package models

// Action is the trade direction suggested by a signal.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Signal is the unit flowing through the admission pipeline. Confidence is a
// fraction in [0,1]; Timestamp is unix seconds and is the source of truth for
// all cooldown math (never the wall clock at evaluation time).
type Signal struct {
	Symbol      string     `json:"symbol" validate:"required"`
	Action      Action     `json:"action" default:"HOLD" validate:"oneof=BUY SELL HOLD"`
	Confidence  float64    `json:"confidence" validate:"gte=0,lte=1"`
	Timeframe   string     `json:"timeframe" default:"1m"`
	Timestamp   int64      `json:"timestamp" validate:"gt=0"`
	Volume      float64    `json:"volume" validate:"gte=0"`
	Liquidity   float64    `json:"liquidity" validate:"gte=0"`
	RSI         float64    `json:"rsi_value"`
	Support     float64    `json:"support,omitempty"`
	Resistance  float64    `json:"resistance,omitempty"`
	PriceTarget float64    `json:"price_target,omitempty"`
	StopLoss    float64    `json:"stop_loss,omitempty"`
	Meta        SignalMeta `json:"meta"`
}

// SignalMeta carries auxiliary fields computed upstream. The field set is
// closed, so it is a typed struct rather than an open map.
type SignalMeta struct {
	VolumeSpikeRatio    float64 `json:"volume_spike_ratio"`
	AvgTxSize           float64 `json:"avg_tx_size"`
	VolumeConsistency   float64 `json:"volume_consistency"`
	HolderConcentration float64 `json:"holder_concentration"`
	PriceChange5m       float64 `json:"price_change_5m"`
	PriceStability      float64 `json:"price_stability"`
	IsSniperCandidate   bool    `json:"is_sniper_candidate"`
	TokenAddress        string  `json:"token_address,omitempty"`
}

// Malformed reports whether the signal fails structural validation
// (as opposed to failing a configured threshold).
func (s *Signal) Malformed() bool {
	if s == nil || s.Symbol == "" || s.Timestamp <= 0 {
		return true
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return true
	}
	if s.Volume < 0 || s.Liquidity < 0 {
		return true
	}
	return false
}
