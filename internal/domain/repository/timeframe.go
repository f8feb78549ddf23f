package repository

// Timeframe is the discrete bar interval a signal was generated on.
type Timeframe string

const (
	TF1s  Timeframe = "1s"
	TF5s  Timeframe = "5s"
	TF15s Timeframe = "15s"
	TF30s Timeframe = "30s"
	TF1m  Timeframe = "1m"
	TF5m  Timeframe = "5m"
)

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF1s, TF5s, TF15s, TF30s, TF1m, TF5m:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TF1m }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}
