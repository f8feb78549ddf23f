package filters

import (
	"context"
	"errors"
	"testing"
	"time"

	"SignalGate/internal/domain/models"
	"SignalGate/pkg/config"
)

func sniperConfig() config.SniperConfig {
	return config.SniperConfig{
		Enabled:     true,
		MaxBuyTax:   0.10,
		MaxSellTax:  0.10,
		MinMentions: 5,
		MaxBotRatio: 0.7,
	}
}

type fakeSniperProviders struct {
	honeypot func() (*models.HoneypotReport, error)
	social   func() (*models.SocialReport, error)
}

func (f *fakeSniperProviders) Analyze(context.Context, string) (*models.HoneypotReport, error) {
	if f.honeypot == nil {
		return nil, nil
	}
	return f.honeypot()
}

func (f *fakeSniperProviders) Mentions(context.Context, string) (*models.SocialReport, error) {
	if f.social == nil {
		return nil, nil
	}
	return f.social()
}

func cleanReport() (*models.HoneypotReport, error) {
	return &models.HoneypotReport{BuyTax: 0.03, SellTax: 0.03}, nil
}

func healthySocial() (*models.SocialReport, error) {
	return &models.SocialReport{Mentions: 40, BotRatio: 0.2}, nil
}

func sniperSignal() *models.Signal {
	return &models.Signal{
		Symbol:     "MOON",
		Action:     models.ActionBuy,
		Confidence: 0.9,
		Timeframe:  "1m",
		Timestamp:  1_700_000_000,
		Volume:     50_000,
		Liquidity:  100_000,
		RSI:        55,
		Meta: models.SignalMeta{
			IsSniperCandidate: true,
			TokenAddress:      "0xdef",
		},
	}
}

func newTestSniper(p *fakeSniperProviders) *SniperGate {
	return NewSniperGate(sniperConfig(), p, p, time.Second, nil)
}

func TestSniperSkipsNonCandidates(t *testing.T) {
	g := newTestSniper(&fakeSniperProviders{})
	s := sniperSignal()
	s.Meta.IsSniperCandidate = false
	s.Meta.TokenAddress = "" // would otherwise fail closed
	res := g.Apply(context.Background(), []*models.Signal{s})
	if len(res.Passed) != 1 {
		t.Fatalf("non-candidates must pass untouched: %v", res.Reasons)
	}
}

func TestSniperCleanCandidatePasses(t *testing.T) {
	g := newTestSniper(&fakeSniperProviders{honeypot: cleanReport, social: healthySocial})
	res := g.Apply(context.Background(), []*models.Signal{sniperSignal()})
	if len(res.Passed) != 1 {
		t.Fatalf("expected pass, got %v", res.Reasons)
	}
}

func TestSniperMissingDataFailsClosed(t *testing.T) {
	g := newTestSniper(&fakeSniperProviders{honeypot: cleanReport, social: healthySocial})

	s := sniperSignal()
	s.Meta.TokenAddress = ""
	res := g.Apply(context.Background(), []*models.Signal{s})
	if res.Reasons[models.ReasonHoneypot] != 1 {
		t.Fatalf("missing token address must reject, got %v", res.Reasons)
	}
}

func TestSniperHoneypotErrorFailsClosed(t *testing.T) {
	g := newTestSniper(&fakeSniperProviders{
		honeypot: func() (*models.HoneypotReport, error) { return nil, errors.New("simulation failed") },
	})
	res := g.Apply(context.Background(), []*models.Signal{sniperSignal()})
	if res.Reasons[models.ReasonHoneypot] != 1 {
		t.Fatalf("honeypot provider error must reject, got %v", res.Reasons)
	}
}

func TestSniperRejectsHoneypotAndTaxes(t *testing.T) {
	cases := []struct {
		name   string
		report models.HoneypotReport
	}{
		{"honeypot", models.HoneypotReport{IsHoneypot: true}},
		{"buy_tax", models.HoneypotReport{BuyTax: 0.25}},
		{"sell_tax", models.HoneypotReport{SellTax: 0.25}},
	}
	for _, tc := range cases {
		report := tc.report
		g := newTestSniper(&fakeSniperProviders{
			honeypot: func() (*models.HoneypotReport, error) { return &report, nil },
			social:   healthySocial,
		})
		res := g.Apply(context.Background(), []*models.Signal{sniperSignal()})
		if res.Reasons[models.ReasonHoneypot] != 1 {
			t.Fatalf("%s: expected honeypot rejection, got %v", tc.name, res.Reasons)
		}
	}
}

func TestSniperSocialRisk(t *testing.T) {
	g := newTestSniper(&fakeSniperProviders{
		honeypot: cleanReport,
		social:   func() (*models.SocialReport, error) { return &models.SocialReport{Mentions: 2, BotRatio: 0.1}, nil },
	})
	res := g.Apply(context.Background(), []*models.Signal{sniperSignal()})
	if res.Reasons[models.ReasonSocialRisk] != 1 {
		t.Fatalf("expected social_risk for thin mentions, got %v", res.Reasons)
	}

	g = newTestSniper(&fakeSniperProviders{
		honeypot: cleanReport,
		social:   func() (*models.SocialReport, error) { return &models.SocialReport{Mentions: 50, BotRatio: 0.9}, nil },
	})
	res = g.Apply(context.Background(), []*models.Signal{sniperSignal()})
	if res.Reasons[models.ReasonSocialRisk] != 1 {
		t.Fatalf("expected social_risk for bot swarm, got %v", res.Reasons)
	}
}

func TestSniperSocialErrorAdvisoryToggle(t *testing.T) {
	failing := func() (*models.SocialReport, error) { return nil, errors.New("api down") }

	strict := newTestSniper(&fakeSniperProviders{honeypot: cleanReport, social: failing})
	res := strict.Apply(context.Background(), []*models.Signal{sniperSignal()})
	if res.Reasons[models.ReasonSocialRisk] != 1 {
		t.Fatalf("strict mode must reject on social outage, got %v", res.Reasons)
	}

	cfg := sniperConfig()
	cfg.SocialAdvisory = true
	p := &fakeSniperProviders{honeypot: cleanReport, social: failing}
	advisory := NewSniperGate(cfg, p, p, time.Second, nil)
	res = advisory.Apply(context.Background(), []*models.Signal{sniperSignal()})
	if len(res.Passed) != 1 {
		t.Fatalf("advisory mode must admit on social outage, got %v", res.Reasons)
	}
}
