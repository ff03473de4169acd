package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/AutoGift-Intelligence/pkg/types/common"
)

// HealthChecker is implemented by infrastructure components that can report
// their health.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

type funcChecker struct {
	name  string
	check func(ctx context.Context) error
}

func (c funcChecker) Name() string                    { return c.name }
func (c funcChecker) Check(ctx context.Context) error { return c.check(ctx) }

// CheckFunc adapts a ping function into a HealthChecker.
func CheckFunc(name string, check func(ctx context.Context) error) HealthChecker {
	return funcChecker{name: name, check: check}
}

// HealthRecorder receives probe outcomes, typically a metrics gauge.
type HealthRecorder interface {
	RecordHealth(component string, up bool)
}

// HealthHandler serves liveness, readiness and detailed health.
type HealthHandler struct {
	checkers []HealthChecker
	recorder HealthRecorder
	version  string
	startAt  time.Time

	readinessTimeout time.Duration
	detailedTimeout  time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers:         checkers,
		version:          version,
		startAt:          time.Now(),
		readinessTimeout: 5 * time.Second,
		detailedTimeout:  10 * time.Second,
	}
}

// WithRecorder publishes every probe outcome to rec.
func (h *HealthHandler) WithRecorder(rec HealthRecorder) *HealthHandler {
	h.recorder = rec
	return h
}

// RegisterRoutes registers the health endpoints.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/readyz", h.Readiness)
	r.Get("/health", h.Detailed)
}

// LivenessResponse is the response for liveness probe.
type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the response for readiness probe.
type ReadinessResponse struct {
	Status     string                            `json:"status"`
	Components map[string]common.ComponentHealth `json:"components,omitempty"`
}

// DetailedResponse is the response of the detailed health endpoint.
type DetailedResponse struct {
	Status     common.HealthStatus               `json:"status"`
	Version    string                            `json:"version"`
	Uptime     string                            `json:"uptime"`
	Components map[string]common.ComponentHealth `json:"components"`
}

// Liveness handles GET /healthz.  It never touches dependencies.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  h.uptime(),
	})
}

// Readiness handles GET /readyz; any failing dependency yields 503.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if len(h.checkers) == 0 {
		writeJSON(w, http.StatusOK, ReadinessResponse{Status: "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.readinessTimeout)
	defer cancel()

	components, healthy := h.checkAll(ctx)
	resp := ReadinessResponse{Status: "ready", Components: components}
	code := http.StatusOK
	if !healthy {
		resp.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// Detailed handles GET /health.
func (h *HealthHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.detailedTimeout)
	defer cancel()

	components, healthy := h.checkAll(ctx)
	resp := DetailedResponse{
		Status:     common.HealthUp,
		Version:    h.version,
		Uptime:     h.uptime(),
		Components: components,
	}
	code := http.StatusOK
	if !healthy {
		resp.Status = common.HealthDegraded
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func (h *HealthHandler) uptime() string {
	return time.Since(h.startAt).Truncate(time.Second).String()
}

// checkAll runs all health checkers concurrently.
func (h *HealthHandler) checkAll(ctx context.Context) (map[string]common.ComponentHealth, bool) {
	results := make(map[string]common.ComponentHealth, len(h.checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, checker := range h.checkers {
		wg.Add(1)
		go func(c HealthChecker) {
			defer wg.Done()

			start := time.Now()
			err := c.Check(ctx)

			ch := common.ComponentHealth{
				Name:    c.Name(),
				Status:  common.HealthUp,
				Latency: time.Since(start),
			}
			if err != nil {
				ch.Status = common.HealthDown
				ch.Message = err.Error()
			}
			if h.recorder != nil {
				h.recorder.RecordHealth(c.Name(), err == nil)
			}

			mu.Lock()
			results[c.Name()] = ch
			mu.Unlock()
		}(checker)
	}
	wg.Wait()

	healthy := true
	for _, c := range results {
		if c.Status != common.HealthUp {
			healthy = false
			break
		}
	}
	return results, healthy
}

//Personal.AI order the ending
