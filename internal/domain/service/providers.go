package service

import (
	"context"

	"SignalGate/internal/domain/models"
)

// External data providers consumed by the filter stages. Every call is
// treated as potentially slow or failing; callers bound it with a context
// timeout and apply their own fail-open/fail-closed policy.

// HolderProvider looks up token ownership distribution.
type HolderProvider interface {
	Distribution(ctx context.Context, tokenAddress string) (*models.HolderDistribution, error)
}

// TxHistoryProvider looks up recent transaction activity.
type TxHistoryProvider interface {
	History(ctx context.Context, tokenAddress string) (*models.TxHistory, error)
}

// LiquidityLockProvider looks up the locked-liquidity ratio.
type LiquidityLockProvider interface {
	Lock(ctx context.Context, tokenAddress string) (*models.LiquidityLock, error)
}

// TokenAgeProvider looks up the time since token creation.
type TokenAgeProvider interface {
	Age(ctx context.Context, tokenAddress string) (*models.TokenAge, error)
}

// HoneypotProvider runs a simulated buy/sell round trip.
type HoneypotProvider interface {
	Analyze(ctx context.Context, tokenAddress string) (*models.HoneypotReport, error)
}

// SocialProvider summarizes social mentions for a symbol.
type SocialProvider interface {
	Mentions(ctx context.Context, symbol string) (*models.SocialReport, error)
}
