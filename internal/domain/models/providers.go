package models

// Provider result payloads. Each is returned by one external data provider;
// see internal/domain/service for the interfaces.

// HolderDistribution describes token ownership concentration.
type HolderDistribution struct {
	TopHolderShare float64 `json:"top_holder_share"` // fraction held by the largest holder
	UniqueHolders  int     `json:"unique_holders"`
}

// TxHistory summarizes recent transaction activity for a token.
type TxHistory struct {
	WashScore    float64 `json:"wash_score"` // 0..1, higher = more wash-like
	TxPerMinute  float64 `json:"tx_per_minute"`
	LargeTxShare float64 `json:"large_tx_share"` // fraction of volume in large transactions
}

// LiquidityLock describes how much of the pool liquidity is locked.
type LiquidityLock struct {
	LockedRatio float64 `json:"locked_ratio"` // 0..1
}

// TokenAge is the time since token creation.
type TokenAge struct {
	AgeHours float64 `json:"age_hours"`
}

// HoneypotReport is the result of a simulated buy/sell round trip.
type HoneypotReport struct {
	IsHoneypot bool    `json:"is_honeypot"`
	BuyTax     float64 `json:"buy_tax"`
	SellTax    float64 `json:"sell_tax"`
}

// SocialReport summarizes social-mention analysis for a symbol.
type SocialReport struct {
	Mentions int     `json:"mentions"`
	BotRatio float64 `json:"bot_ratio"` // fraction of mentions judged bot-driven
}
