package filters

import (
	"context"

	"SignalGate/internal/domain/models"
	"SignalGate/pkg/config"
)

// InstantGate runs zero-I/O threshold checks, cheapest first. It is a pure
// function of the signal and static config: same input, same outcome.
type InstantGate struct {
	cfg config.InstantConfig
}

func NewInstantGate(cfg config.InstantConfig) *InstantGate {
	return &InstantGate{cfg: cfg}
}

func (g *InstantGate) Name() string { return "instant" }

func (g *InstantGate) Apply(ctx context.Context, batch []*models.Signal) models.StageResult {
	return applyStage(ctx, batch, g.evaluate)
}

// evaluate returns the first failing check's reason. Ordering matters only
// for diagnostics, never for control flow elsewhere.
func (g *InstantGate) evaluate(_ context.Context, s *models.Signal) models.Reason {
	if s.Volume < g.cfg.MinVolume {
		return models.ReasonLowVolume
	}
	if s.Liquidity < g.cfg.MinLiquidity {
		return models.ReasonLowLiquidity
	}
	if s.Confidence < g.cfg.MinConfidence {
		return models.ReasonLowConfidence
	}
	if s.RSI < g.cfg.RSIExtremeLow || s.RSI > g.cfg.RSIExtremeHigh {
		return models.ReasonExtremeRSI
	}
	return models.ReasonNone
}
