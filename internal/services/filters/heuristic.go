package filters

import (
	"context"
	"math"
	"time"

	"SignalGate/internal/domain/models"
	drepo "SignalGate/internal/domain/repository"
	domsvc "SignalGate/internal/domain/service"
	"SignalGate/internal/service/cooldown"
	"SignalGate/pkg/config"
	"SignalGate/pkg/logger"
)

// HeuristicFilter runs the ordered legitimacy checks, short-circuiting per
// signal on the first failure. Signals are evaluated independently of each
// other's outcomes; provider-backed checks are bounded by a per-call timeout
// and follow ProviderPolicy on error.
type HeuristicFilter struct {
	cfg      config.HeuristicConfig
	cd       *cooldown.Tracker
	holders  domsvc.HolderProvider
	txs      domsvc.TxHistoryProvider
	locks    domsvc.LiquidityLockProvider
	ages     domsvc.TokenAgeProvider
	timeout  time.Duration
	log      *logger.Logger
	metrics  drepo.Metrics
}

func NewHeuristicFilter(
	cfg config.HeuristicConfig,
	cd *cooldown.Tracker,
	holders domsvc.HolderProvider,
	txs domsvc.TxHistoryProvider,
	locks domsvc.LiquidityLockProvider,
	ages domsvc.TokenAgeProvider,
	providerTimeout time.Duration,
	log *logger.Logger,
	metrics drepo.Metrics,
) *HeuristicFilter {
	if providerTimeout <= 0 {
		providerTimeout = 1500 * time.Millisecond
	}
	return &HeuristicFilter{
		cfg:     cfg,
		cd:      cd,
		holders: holders,
		txs:     txs,
		locks:   locks,
		ages:    ages,
		timeout: providerTimeout,
		log:     log,
		metrics: metrics,
	}
}

func (f *HeuristicFilter) Name() string { return "heuristic" }

func (f *HeuristicFilter) Apply(ctx context.Context, batch []*models.Signal) models.StageResult {
	// provider calls dominate latency here, so signals run concurrently
	return applyStageConcurrent(ctx, batch, f.evaluate)
}

func (f *HeuristicFilter) evaluate(ctx context.Context, s *models.Signal) models.Reason {
	// 1. basic validation
	if s.Malformed() {
		return models.ReasonInvalidSignal
	}
	if s.Confidence < f.cfg.MinConfidence {
		return models.ReasonLowConfidence
	}
	if s.Volume < f.cfg.MinVolume {
		return models.ReasonLowVolume
	}
	if s.Liquidity < f.cfg.MinLiquidity {
		return models.ReasonLowLiquidity
	}

	// 2. cooldown + per-symbol cap; the signal timestamp drives the math
	if !f.cd.SignalCountCheck(s.Symbol) {
		return models.ReasonSymbolLimit
	}
	if !f.cd.TryAdmit(s.Symbol, time.Unix(s.Timestamp, 0)) {
		return models.ReasonCooldownActive
	}

	// 3. volume quality (wash-trading heuristic)
	if f.volumeQualityScore(s) < f.cfg.QualityThreshold {
		return models.ReasonVolumeQuality
	}

	// 4. liquidity depth
	if s.Liquidity > 0 && s.Volume/s.Liquidity > f.cfg.MaxLiquidityDepthRatio {
		return models.ReasonLiquidityDepth
	}

	// 5. volume spike sanity
	if s.Volume > f.cfg.SpikeVolume && s.Liquidity < f.cfg.SpikeLiquidity {
		return models.ReasonVolumeSpike
	}

	// 6. holder distribution (advisory, fail-open)
	if r := f.checkHolders(ctx, s); r != models.ReasonNone {
		return r
	}

	// 7. transaction history (advisory, fail-open)
	if r := f.checkTxHistory(ctx, s); r != models.ReasonNone {
		return r
	}

	// 8. pump-and-dump heuristics
	if r := f.checkPumpAndDump(ctx, s); r != models.ReasonNone {
		return r
	}

	// 9. token age (advisory, fail-open)
	if r := f.checkTokenAge(ctx, s); r != models.ReasonNone {
		return r
	}

	// 10. price manipulation
	if r := f.checkPriceManipulation(s); r != models.ReasonNone {
		return r
	}

	return models.ReasonNone
}

// volumeQualityScore combines three independent weak wash-trading signals
// additively so no single metric can be gamed in isolation.
func (f *HeuristicFilter) volumeQualityScore(s *models.Signal) float64 {
	score := 1.0
	if s.Meta.AvgTxSize < f.cfg.MinAvgTxSize {
		score -= 0.4
	}
	if s.Meta.VolumeConsistency < f.cfg.MinVolumeConsistency {
		score -= 0.3
	}
	if s.Liquidity > 0 && s.Volume/s.Liquidity > f.cfg.MaxVolumeLiquidityRatio {
		score -= 0.3
	}
	return score
}

func (f *HeuristicFilter) checkHolders(ctx context.Context, s *models.Signal) models.Reason {
	dist, err := f.fetchHolders(ctx, s)
	if err != nil {
		return f.onProviderError("holders", s.Symbol, models.ReasonHolderConcentration, err)
	}
	if dist == nil {
		return models.ReasonNone
	}
	if dist.TopHolderShare > f.cfg.MaxHolderConcentration || dist.UniqueHolders < f.cfg.MinUniqueHolders {
		return models.ReasonHolderConcentration
	}
	return models.ReasonNone
}

func (f *HeuristicFilter) checkTxHistory(ctx context.Context, s *models.Signal) models.Reason {
	hist, err := f.fetchTxHistory(ctx, s)
	if err != nil {
		return f.onProviderError("txhistory", s.Symbol, models.ReasonWashTrading, err)
	}
	if hist == nil {
		return models.ReasonNone
	}
	if hist.WashScore > f.cfg.MaxWashScore {
		return models.ReasonWashTrading
	}
	// many tiny transactions with almost no large fills is itself wash-like
	if hist.TxPerMinute > f.cfg.MaxTxPerMinute && hist.LargeTxShare < f.cfg.MinLargeTxShare {
		return models.ReasonWashTrading
	}
	return models.ReasonNone
}

func (f *HeuristicFilter) checkPumpAndDump(ctx context.Context, s *models.Signal) models.Reason {
	if s.RSI > f.cfg.PumpRSICeiling {
		return models.ReasonPumpAndDump
	}
	if s.Meta.PriceChange5m > f.cfg.MaxPriceChange5m {
		return models.ReasonPumpAndDump
	}
	// resistance with no corresponding support suggests artificial levels
	if s.Resistance > 0 && s.Support <= 0 {
		return models.ReasonPumpAndDump
	}

	lock, err := f.fetchLock(ctx, s)
	if err != nil {
		return f.onProviderError("liquiditylock", s.Symbol, models.ReasonUnlockedLiquidity, err)
	}
	if lock != nil && lock.LockedRatio < f.cfg.MinLockedLiquidity {
		// fail-closed once the data is present
		return models.ReasonUnlockedLiquidity
	}
	return models.ReasonNone
}

func (f *HeuristicFilter) checkTokenAge(ctx context.Context, s *models.Signal) models.Reason {
	age, err := f.fetchAge(ctx, s)
	if err != nil {
		return f.onProviderError("tokenage", s.Symbol, models.ReasonTokenAge, err)
	}
	if age == nil {
		return models.ReasonNone
	}
	if age.AgeHours < f.cfg.MinTokenAgeHours {
		return models.ReasonTokenAge
	}
	if age.AgeHours < f.cfg.YoungTokenAgeHours && s.Confidence < f.cfg.YoungTokenConfidence {
		return models.ReasonTokenAge
	}
	return models.ReasonNone
}

func (f *HeuristicFilter) checkPriceManipulation(s *models.Signal) models.Reason {
	if s.PriceTarget <= 0 {
		return models.ReasonNone
	}
	if s.StopLoss <= 0 {
		return models.ReasonPriceManipulation
	}
	est := estimatedPrice(s)
	if est <= 0 {
		return models.ReasonNone
	}
	reward := s.PriceTarget - est
	risk := est - s.StopLoss
	if risk <= 0 {
		return models.ReasonPriceManipulation
	}
	if reward/risk > f.cfg.MaxRewardRiskRatio {
		return models.ReasonPriceManipulation
	}
	if risk/est < f.cfg.MinStopDistance {
		return models.ReasonPriceManipulation
	}
	// round numbers are a weak manipulation signal, not an automatic reject
	if isRoundNumber(s.PriceTarget) && s.Confidence < f.cfg.RoundTargetConfidence {
		return models.ReasonPriceManipulation
	}
	return models.ReasonNone
}

// estimatedPrice approximates the current price from the signal's own
// levels: midpoint of support/resistance when both are present, otherwise
// falling back to whichever structure exists.
func estimatedPrice(s *models.Signal) float64 {
	switch {
	case s.Support > 0 && s.Resistance > 0:
		return (s.Support + s.Resistance) / 2
	case s.Support > 0:
		return s.Support
	case s.Resistance > 0:
		return s.Resistance
	case s.StopLoss > 0 && s.PriceTarget > 0:
		return (s.StopLoss + s.PriceTarget) / 2
	default:
		return 0
	}
}

// isRoundNumber reports whether v has at most two significant digits,
// e.g. 0.5, 10, 2500.
func isRoundNumber(v float64) bool {
	if v <= 0 {
		return false
	}
	norm := v / math.Pow(10, math.Floor(math.Log10(v)))
	scaled := norm * 10
	return math.Abs(scaled-math.Round(scaled)) < 1e-9
}

func (f *HeuristicFilter) onProviderError(provider, symbol string, check models.Reason, err error) models.Reason {
	if f.metrics != nil {
		f.metrics.RecordProviderError(provider)
	}
	if f.log != nil {
		f.log.Warn("provider unavailable",
			logger.String("provider", provider),
			logger.String("symbol", symbol),
			logger.Error(err))
	}
	if ProviderPolicy(check) == FailOpen {
		return models.ReasonNone
	}
	return check
}

func (f *HeuristicFilter) fetchHolders(ctx context.Context, s *models.Signal) (*models.HolderDistribution, error) {
	if f.holders == nil || s.Meta.TokenAddress == "" {
		return nil, nil
	}
	cctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return f.holders.Distribution(cctx, s.Meta.TokenAddress)
}

func (f *HeuristicFilter) fetchTxHistory(ctx context.Context, s *models.Signal) (*models.TxHistory, error) {
	if f.txs == nil || s.Meta.TokenAddress == "" {
		return nil, nil
	}
	cctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return f.txs.History(cctx, s.Meta.TokenAddress)
}

func (f *HeuristicFilter) fetchLock(ctx context.Context, s *models.Signal) (*models.LiquidityLock, error) {
	if f.locks == nil || s.Meta.TokenAddress == "" {
		return nil, nil
	}
	cctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return f.locks.Lock(cctx, s.Meta.TokenAddress)
}

func (f *HeuristicFilter) fetchAge(ctx context.Context, s *models.Signal) (*models.TokenAge, error) {
	if f.ages == nil || s.Meta.TokenAddress == "" {
		return nil, nil
	}
	cctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return f.ages.Age(cctx, s.Meta.TokenAddress)
}
