package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/AutoGift-Intelligence/internal/application/intelligence"
	"github.com/turtacn/AutoGift-Intelligence/internal/domain/gifting"
	"github.com/turtacn/AutoGift-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
)

// GiftingHandler exposes the intelligence service over HTTP.
type GiftingHandler struct {
	svc    intelligence.Service
	logger logging.Logger
}

// NewGiftingHandler creates a new GiftingHandler.
func NewGiftingHandler(svc intelligence.Service, logger logging.Logger) *GiftingHandler {
	return &GiftingHandler{
		svc:    svc,
		logger: logging.OrNop(logger).Named("http.gifting"),
	}
}

// CreateRuleBody is the request body of CreateRule.  The requester comes
// from the path.
type CreateRuleBody struct {
	RecipientID string `json:"recipient_id"`
	Occasion    string `json:"occasion"`
}

// OpportunityList is the payload of ScanOpportunities.
type OpportunityList struct {
	RequesterID   string                     `json:"requester_id"`
	Count         int                        `json:"count"`
	Opportunities []*gifting.GiftOpportunity `json:"opportunities"`
}

// CategoryList is the payload of PredictCategories.
type CategoryList struct {
	RecipientID string   `json:"recipient_id"`
	Occasion    string   `json:"occasion"`
	Categories  []string `json:"categories"`
}

// RegisterRoutes mounts the gifting endpoints under /users/{userID}.
func (h *GiftingHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users/{userID}", func(ur chi.Router) {
		ur.Get("/opportunities", h.ScanOpportunities)
		ur.Post("/scans", h.RequestScan)
		ur.Post("/rules", h.CreateRule)

		ur.Route("/recipients/{recipientID}", func(rr chi.Router) {
			rr.Get("/context", h.GetRelationshipContext)
			rr.Get("/budget", h.RecommendBudget)
			rr.Get("/categories", h.PredictCategories)
		})
	})
}

// ScanOpportunities handles GET /users/{userID}/opportunities.
func (h *GiftingHandler) ScanOpportunities(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	ops, err := h.svc.ScanOpportunities(r.Context(), userID)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	if ops == nil {
		ops = []*gifting.GiftOpportunity{}
	}
	writeData(w, r, http.StatusOK, OpportunityList{
		RequesterID:   userID,
		Count:         len(ops),
		Opportunities: ops,
	})
}

// RequestScan handles POST /users/{userID}/scans.  The scan runs on a
// worker; the response carries the queued request.
func (h *GiftingHandler) RequestScan(w http.ResponseWriter, r *http.Request) {
	req, err := h.svc.RequestScan(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusAccepted, req)
}

// CreateRule handles POST /users/{userID}/rules.
func (h *GiftingHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var body CreateRuleBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	rule, err := h.svc.CreateRuleSnapshot(r.Context(), &intelligence.CreateRuleRequest{
		RequesterID: chi.URLParam(r, "userID"),
		RecipientID: body.RecipientID,
		Occasion:    body.Occasion,
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusCreated, rule)
}

// GetRelationshipContext handles GET /users/{userID}/recipients/{recipientID}/context.
func (h *GiftingHandler) GetRelationshipContext(w http.ResponseWriter, r *http.Request) {
	rc, err := h.svc.GetRelationshipContext(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "recipientID"))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusOK, rc)
}

// RecommendBudget handles GET /users/{userID}/recipients/{recipientID}/budget?occasion=.
func (h *GiftingHandler) RecommendBudget(w http.ResponseWriter, r *http.Request) {
	occasion, err := occasionParam(r)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	rec, err := h.svc.RecommendBudget(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "recipientID"), occasion)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusOK, rec)
}

// PredictCategories handles GET /users/{userID}/recipients/{recipientID}/categories?occasion=.
func (h *GiftingHandler) PredictCategories(w http.ResponseWriter, r *http.Request) {
	occasion, err := occasionParam(r)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	recipientID := chi.URLParam(r, "recipientID")

	categories, err := h.svc.PredictCategories(r.Context(), chi.URLParam(r, "userID"), recipientID, occasion)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusOK, CategoryList{
		RecipientID: recipientID,
		Occasion:    occasion,
		Categories:  categories,
	})
}

func occasionParam(r *http.Request) (string, error) {
	occasion := strings.TrimSpace(r.URL.Query().Get("occasion"))
	if occasion == "" {
		return "", errors.New(errors.CodeInvalidOccasion, "occasion query parameter is required")
	}
	return occasion, nil
}

//Personal.AI order the ending
