package api

import (
	"net/http"

	models "SignalGate/internal/domain/models"
	"SignalGate/internal/service/cooldown"
	"SignalGate/internal/service/ratelimit"
	"SignalGate/internal/services/filters"
	"SignalGate/internal/services/monitor"
	xhttp "SignalGate/pkg/http"
	xlogger "SignalGate/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Connectable reports upstream feed connectivity for the health endpoint.
type Connectable interface {
	IsConnected() bool
}

// FiltersEchoHandler exposes the admission pipeline over HTTP: ad-hoc
// evaluation of signal batches, pipeline statistics, health, and resets.
type FiltersEchoHandler struct {
	logger    *xlogger.Logger
	orch      *filters.Orchestrator
	limiter   *ratelimit.Limiter
	mon       *monitor.HealthMonitor
	cooldowns []*cooldown.Tracker
	feed      Connectable
}

func NewFiltersEchoHandler(
	logger *xlogger.Logger,
	orch *filters.Orchestrator,
	limiter *ratelimit.Limiter,
	mon *monitor.HealthMonitor,
	feed Connectable,
	cooldowns ...*cooldown.Tracker,
) *FiltersEchoHandler {
	return &FiltersEchoHandler{
		logger:    logger,
		orch:      orch,
		limiter:   limiter,
		mon:       mon,
		feed:      feed,
		cooldowns: cooldowns,
	}
}

func (h *FiltersEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/evaluate", h.Evaluate)
	g.GET("/stats", h.Stats)
	g.GET("/health", h.Health)
	g.GET("/monitor", h.Monitor)
	g.POST("/reset", h.Reset)
}

// Evaluate runs a submitted batch through the full pipeline and returns
// the admitted signals. Rate limited per caller.
func (h *FiltersEchoHandler) Evaluate(c echo.Context) error {
	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	clientID := c.Request().Header.Get("X-Client-ID")
	if clientID == "" {
		clientID = c.RealIP()
	}
	if res := h.limiter.Check(clientID, "evaluate"); !res.Allowed {
		h.logger.Warn("evaluate rate_limited",
			xlogger.String("client", clientID),
			xlogger.Any("retry_after", res.RetryAfter.Seconds()))
		c.Response().Header().Set("Retry-After", res.RetryAfter.String())
		return xhttp.DataResponse(c, http.StatusTooManyRequests, map[string]interface{}{
			"reason":      string(models.ReasonRateLimited),
			"retry_after": res.RetryAfter.Seconds(),
		})
	}

	batch := make([]*models.Signal, len(req.Signals))
	for i := range req.Signals {
		batch[i] = &req.Signals[i]
	}
	admitted := h.orch.Run(c.Request().Context(), batch)

	return xhttp.SuccessResponse(c, &models.EvaluateResponse{
		Admitted: admitted,
		Rejected: len(batch) - len(admitted),
		Stats:    h.orch.Stats().Snapshot(),
	})
}

// Stats returns the cumulative per-stage rejection counters.
func (h *FiltersEchoHandler) Stats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.orch.Stats().Snapshot())
}

// Health reports monitor state and feed connectivity.
func (h *FiltersEchoHandler) Health(c echo.Context) error {
	connected := false
	if h.feed != nil {
		connected = h.feed.IsConnected()
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"feed_connected": connected,
		"monitor":        h.mon.Summary(),
	})
}

// Monitor serves the monitor's Prometheus text exposition.
func (h *FiltersEchoHandler) Monitor(c echo.Context) error {
	return c.String(http.StatusOK, h.mon.Exposition())
}

// Reset clears the requested counters. Operator endpoint.
func (h *FiltersEchoHandler) Reset(c echo.Context) error {
	req := &models.ResetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	switch req.Target {
	case "stats":
		h.orch.Stats().Reset()
	case "monitor":
		h.mon.Reset()
	case "ratelimit":
		h.limiter.Reset(req.ClientID, req.Endpoint)
	case "cooldown":
		for _, t := range h.cooldowns {
			t.Reset()
		}
	}

	h.logger.Info("reset applied", xlogger.String("target", req.Target))
	return xhttp.SuccessResponse(c, map[string]string{"reset": req.Target})
}
