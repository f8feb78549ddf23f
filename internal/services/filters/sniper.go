package filters

import (
	"context"
	"time"

	"SignalGate/internal/domain/models"
	domsvc "SignalGate/internal/domain/service"
	"SignalGate/pkg/config"
	"SignalGate/pkg/logger"
)

// SniperGate runs honeypot and social checks for signals flagged as sniper
// candidates. Unlike the heuristic stage, missing data here is fail-closed:
// a token we cannot simulate a sell on is not worth sniping.
type SniperGate struct {
	cfg      config.SniperConfig
	honeypot domsvc.HoneypotProvider
	social   domsvc.SocialProvider
	timeout  time.Duration
	log      *logger.Logger
}

func NewSniperGate(
	cfg config.SniperConfig,
	honeypot domsvc.HoneypotProvider,
	social domsvc.SocialProvider,
	providerTimeout time.Duration,
	log *logger.Logger,
) *SniperGate {
	if providerTimeout <= 0 {
		providerTimeout = 1500 * time.Millisecond
	}
	return &SniperGate{cfg: cfg, honeypot: honeypot, social: social, timeout: providerTimeout, log: log}
}

func (g *SniperGate) Name() string { return "sniper" }

func (g *SniperGate) Apply(ctx context.Context, batch []*models.Signal) models.StageResult {
	return applyStageConcurrent(ctx, batch, g.evaluate)
}

func (g *SniperGate) evaluate(ctx context.Context, s *models.Signal) models.Reason {
	if !s.Meta.IsSniperCandidate {
		return models.ReasonNone
	}
	if s.Meta.TokenAddress == "" || g.honeypot == nil {
		return models.ReasonHoneypot
	}

	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	report, err := g.honeypot.Analyze(cctx, s.Meta.TokenAddress)
	cancel()
	if err != nil || report == nil {
		if g.log != nil {
			g.log.Warn("honeypot check unavailable, rejecting",
				logger.String("symbol", s.Symbol), logger.Error(err))
		}
		return models.ReasonHoneypot
	}
	if report.IsHoneypot || report.BuyTax > g.cfg.MaxBuyTax || report.SellTax > g.cfg.MaxSellTax {
		return models.ReasonHoneypot
	}

	if g.social == nil {
		if g.cfg.SocialAdvisory {
			return models.ReasonNone
		}
		return models.ReasonSocialRisk
	}
	cctx, cancel = context.WithTimeout(ctx, g.timeout)
	mentions, err := g.social.Mentions(cctx, s.Symbol)
	cancel()
	if err != nil || mentions == nil {
		if g.cfg.SocialAdvisory {
			return models.ReasonNone
		}
		return models.ReasonSocialRisk
	}
	if mentions.Mentions < g.cfg.MinMentions || mentions.BotRatio > g.cfg.MaxBotRatio {
		return models.ReasonSocialRisk
	}
	return models.ReasonNone
}
