package filters

import (
	"context"
	"math"
	"time"

	"SignalGate/internal/domain/models"
	"SignalGate/internal/service/cooldown"
	"SignalGate/pkg/config"
)

// MicroTimeframeGate applies ultra-strict checks to the shortest timeframes,
// where spam pressure is highest. Signals on other timeframes pass through
// untouched. It holds its own cooldown tracker with a tighter interval than
// the heuristic stage's.
type MicroTimeframeGate struct {
	cfg   config.MicroConfig
	micro map[string]struct{}
	cd    *cooldown.Tracker
}

func NewMicroTimeframeGate(cfg config.MicroConfig, cd *cooldown.Tracker) *MicroTimeframeGate {
	m := make(map[string]struct{}, len(cfg.Timeframes))
	for _, tf := range cfg.Timeframes {
		m[tf] = struct{}{}
	}
	return &MicroTimeframeGate{cfg: cfg, micro: m, cd: cd}
}

func (g *MicroTimeframeGate) Name() string { return "micro" }

func (g *MicroTimeframeGate) Apply(ctx context.Context, batch []*models.Signal) models.StageResult {
	return applyStage(ctx, batch, g.evaluate)
}

func (g *MicroTimeframeGate) evaluate(_ context.Context, s *models.Signal) models.Reason {
	if _, ok := g.micro[s.Timeframe]; !ok {
		return models.ReasonNone
	}

	if s.Volume < g.cfg.MinVolume {
		return models.ReasonMicroLowVolume
	}
	if s.Confidence < g.cfg.MinConfidence {
		return models.ReasonMicroLowConfidence
	}
	if g.cd != nil && !g.cd.TryAdmit(s.Symbol, time.Unix(s.Timestamp, 0)) {
		return models.ReasonMicroCooldown
	}
	if math.Abs(s.Meta.PriceChange5m) > g.cfg.MaxPriceChange5m || s.Meta.PriceStability < g.cfg.MinPriceStability {
		return models.ReasonPriceUnstable
	}
	if g.pumpIndicators(s) >= g.cfg.PumpIndicatorMin {
		return models.ReasonMicroPumpDump
	}
	if g.compositeRatio(s) < g.cfg.CompositePassRatio {
		return models.ReasonMicroComposite
	}
	return models.ReasonNone
}

// pumpIndicators counts co-occurring pump anomalies; any two together are
// treated as coordinated activity.
func (g *MicroTimeframeGate) pumpIndicators(s *models.Signal) int {
	n := 0
	if s.Meta.VolumeSpikeRatio > g.cfg.PumpSpikeRatio {
		n++
	}
	if math.Abs(s.Meta.PriceChange5m) > g.cfg.PumpPriceChange {
		n++
	}
	if s.Meta.HolderConcentration > g.cfg.PumpConcentration {
		n++
	}
	if s.Volume > 0 && s.Liquidity/s.Volume < g.cfg.PumpLiqVolumeRatio {
		n++
	}
	return n
}

// compositeRatio is the fraction of the four micro sub-checks that pass.
func (g *MicroTimeframeGate) compositeRatio(s *models.Signal) float64 {
	passed := 0
	if s.RSI >= g.cfg.CompositeRSILow && s.RSI <= g.cfg.CompositeRSIHigh {
		passed++
	}
	if s.Meta.VolumeConsistency >= g.cfg.CompositeConsistency {
		passed++
	}
	if s.Volume > 0 && s.Liquidity/s.Volume >= g.cfg.CompositeLiqVolRatio {
		passed++
	}
	if s.Meta.AvgTxSize >= g.cfg.CompositeMinAvgTxSize {
		passed++
	}
	return float64(passed) / 4
}
