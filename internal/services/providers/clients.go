package providers

import (
	"context"

	"SignalGate/internal/domain/models"
	domsvc "SignalGate/internal/domain/service"
	"SignalGate/internal/service/ratelimit"
	"SignalGate/pkg/config"
)

// Set bundles one client per external data provider, all sharing a base
// URL, HTTP client, and outbound rate limit.
type Set struct {
	Holders  domsvc.HolderProvider
	Txs      domsvc.TxHistoryProvider
	Locks    domsvc.LiquidityLockProvider
	Ages     domsvc.TokenAgeProvider
	Honeypot domsvc.HoneypotProvider
	Social   domsvc.SocialProvider
}

// NewSet builds the HTTP provider clients.
func NewSet(cfg config.ProvidersConfig, limiter *ratelimit.Limiter) *Set {
	base := newHTTPBase(cfg, limiter)
	return &Set{
		Holders:  &holderClient{base},
		Txs:      &txHistoryClient{base},
		Locks:    &liquidityLockClient{base},
		Ages:     &tokenAgeClient{base},
		Honeypot: &honeypotClient{base},
		Social:   &socialClient{base},
	}
}

func tokenQuery(token string) map[string][]string {
	return map[string][]string{"token": {token}}
}

type holderClient struct{ *httpBase }

func (c *holderClient) Distribution(ctx context.Context, token string) (*models.HolderDistribution, error) {
	var out models.HolderDistribution
	if err := c.getJSON(ctx, "holders", "/holders/distribution", tokenQuery(token), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type txHistoryClient struct{ *httpBase }

func (c *txHistoryClient) History(ctx context.Context, token string) (*models.TxHistory, error) {
	var out models.TxHistory
	if err := c.getJSON(ctx, "txhistory", "/transactions/summary", tokenQuery(token), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type liquidityLockClient struct{ *httpBase }

func (c *liquidityLockClient) Lock(ctx context.Context, token string) (*models.LiquidityLock, error) {
	var out models.LiquidityLock
	if err := c.getJSON(ctx, "liquiditylock", "/liquidity/lock", tokenQuery(token), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type tokenAgeClient struct{ *httpBase }

func (c *tokenAgeClient) Age(ctx context.Context, token string) (*models.TokenAge, error) {
	var out models.TokenAge
	if err := c.getJSON(ctx, "tokenage", "/tokens/age", tokenQuery(token), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type honeypotClient struct{ *httpBase }

func (c *honeypotClient) Analyze(ctx context.Context, token string) (*models.HoneypotReport, error) {
	var out models.HoneypotReport
	if err := c.getJSON(ctx, "honeypot", "/honeypot/analyze", tokenQuery(token), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type socialClient struct{ *httpBase }

func (c *socialClient) Mentions(ctx context.Context, symbol string) (*models.SocialReport, error) {
	var out models.SocialReport
	q := map[string][]string{"symbol": {symbol}}
	if err := c.getJSON(ctx, "social", "/social/mentions", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
