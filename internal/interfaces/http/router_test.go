package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/AutoGift-Intelligence/internal/application/intelligence"
	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/AutoGift-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/AutoGift-Intelligence/internal/testutil"
)

// stubService answers every call with empty results.
type stubService struct{}

func (stubService) ScanOpportunities(context.Context, string) ([]*gifting.GiftOpportunity, error) {
	return nil, nil
}

func (stubService) GetRelationshipContext(_ context.Context, requesterID, recipientID string) (*gifting.RelationshipContext, error) {
	return &gifting.RelationshipContext{RequesterID: requesterID, RecipientID: recipientID}, nil
}

func (stubService) RecommendBudget(context.Context, string, string, string) (*gifting.BudgetRecommendation, error) {
	return &gifting.BudgetRecommendation{Min: 25, Max: 100}, nil
}

func (stubService) PredictCategories(context.Context, string, string, string) ([]string, error) {
	return []string{"General"}, nil
}

func (stubService) CreateRuleSnapshot(_ context.Context, req *intelligence.CreateRuleRequest) (*gifting.AutoGiftRule, error) {
	return &gifting.AutoGiftRule{ID: "rule-1", RequesterID: req.RequesterID}, nil
}

func (stubService) RequestScan(_ context.Context, requesterID string) (*intelligence.ScanRequest, error) {
	return &intelligence.ScanRequest{RequestID: "r1", RequesterID: requesterID}, nil
}

func (stubService) HandleScanRequest(context.Context, *intelligence.ScanRequest) error { return nil }

func newTestRouter(t *testing.T) (http.Handler, prometheus.MetricsCollector, *testutil.MockLogger) {
	t.Helper()
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "test"}, nil)
	require.NoError(t, err)
	log := testutil.NewMockLogger()

	router := NewRouter(RouterConfig{
		GiftingHandler: handlers.NewGiftingHandler(stubService{}, log),
		HealthHandler:  handlers.NewHealthHandler("test"),
		Metrics:        prometheus.NewEngineMetrics(collector),
		MetricsHandler: collector.Handler(),
		Logger:         log,
	})
	return router, collector, log
}

func do(h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter_HealthEndpoints(t *testing.T) {
	router, _, _ := newTestRouter(t)
	for _, path := range []string{"/healthz", "/readyz", "/health"} {
		assert.Equal(t, http.StatusOK, do(router, http.MethodGet, path, "", "").Code, path)
	}
}

func TestNewRouter_GiftingRoutesRegistered(t *testing.T) {
	router, _, _ := newTestRouter(t)
	cases := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/v1/users/u1/opportunities", "", http.StatusOK},
		{http.MethodPost, "/api/v1/users/u1/scans", "", http.StatusAccepted},
		{http.MethodPost, "/api/v1/users/u1/rules", `{"recipient_id":"u2","occasion":"birthday"}`, http.StatusCreated},
		{http.MethodGet, "/api/v1/users/u1/recipients/u2/context", "", http.StatusOK},
		{http.MethodGet, "/api/v1/users/u1/recipients/u2/budget?occasion=birthday", "", http.StatusOK},
		{http.MethodGet, "/api/v1/users/u1/recipients/u2/categories?occasion=birthday", "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			contentType := ""
			if tc.body != "" {
				contentType = "application/json"
			}
			rec := do(router, tc.method, tc.path, contentType, tc.body)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestNewRouter_UnknownRoute(t *testing.T) {
	router, _, _ := newTestRouter(t)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/v1/unknown", "", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(router, http.MethodDelete, "/api/v1/users/u1/opportunities", "", "").Code)
}

func TestNewRouter_RejectsNonJSONBody(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rec := do(router, http.MethodPost, "/api/v1/users/u1/rules", "text/plain", "recipient=u2")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestNewRouter_RequestIDEchoed(t *testing.T) {
	router, _, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/opportunities", nil)
	req.Header.Set(chimw.RequestIDHeader, "trace-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "trace-1", rec.Header().Get(chimw.RequestIDHeader))
	assert.Contains(t, rec.Body.String(), `"request_id":"trace-1"`)
}

func TestNewRouter_MetricsUseRoutePattern(t *testing.T) {
	router, _, _ := newTestRouter(t)
	do(router, http.MethodGet, "/api/v1/users/u1/opportunities", "", "")
	do(router, http.MethodGet, "/api/v1/users/u2/opportunities", "", "")

	body := do(router, http.MethodGet, "/metrics", "", "").Body.String()
	assert.Contains(t, body, `test_http_requests_total{method="GET",route="/api/v1/users/{userID}/opportunities",status_code="200"} 2`)
}

func TestNewRouter_LogsAPIRequestsOnly(t *testing.T) {
	router, _, log := newTestRouter(t)
	do(router, http.MethodGet, "/healthz", "", "")
	assert.Empty(t, log.GetMessages())

	do(router, http.MethodGet, "/api/v1/users/u1/opportunities", "", "")
	assert.True(t, log.HasMessage("info", "HTTP request completed"))
}

func TestNewRouter_NilHandlers_NoPanic(t *testing.T) {
	router := NewRouter(RouterConfig{})
	assert.NotPanics(t, func() {
		rec := do(router, http.MethodGet, "/api/v1/users/u1/opportunities", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

//Personal.AI order the ending
