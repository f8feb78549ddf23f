package providers

import (
	"context"
	"fmt"
	"time"

	svcmetrics "SignalGate/internal/service/metrics"
	"SignalGate/internal/service/ratelimit"
	"SignalGate/pkg/config"
	xhttp "SignalGate/pkg/http"
)

// httpBase centralizes client construction and JSON GET handling for the
// external data provider clients. Each call is rate limited under the
// shared "providers" client so a flood of signals cannot hammer a vendor.
type httpBase struct {
	baseURL string
	client  *xhttp.Client
	limiter *ratelimit.Limiter
}

func newHTTPBase(cfg config.ProvidersConfig, limiter *ratelimit.Limiter) *httpBase {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	svcmetrics.Register()
	return &httpBase{
		baseURL: cfg.BaseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter: limiter,
	}
}

// getJSON fetches baseURL+path with query params and decodes JSON into dest.
func (b *httpBase) getJSON(ctx context.Context, provider, path string, query map[string][]string, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("provider %s: client not configured", provider)
	}
	if b.limiter != nil {
		if res := b.limiter.Check("providers", provider); !res.Allowed {
			svcmetrics.ProviderErrors.WithLabelValues(provider).Inc()
			return fmt.Errorf("provider %s: rate limited, retry after %s", provider, res.RetryAfter)
		}
	}

	start := time.Now()
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + path,
		QueryParams: query,
	}, dest)
	svcmetrics.ProviderLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		svcmetrics.ProviderErrors.WithLabelValues(provider).Inc()
		return fmt.Errorf("get %s: %w", path, err)
	}
	return nil
}
