package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/adapters/middleware"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/domain"
	"github.com/AchilleasB/baby-kliniek/intake-dashboard-service/internal/core/services"
)

type DashboardHandler struct {
	registry *services.SessionRegistry
	logger   *zap.Logger
}

func NewDashboardHandler(registry *services.SessionRegistry, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{registry: registry, logger: logger}
}

type ActionRequest struct {
	Comment string `json:"comment"`
}

type NotifyRequest struct {
	Message string `json:"message"`
}

// ListRequests serves the dashboard overview: all intake requests with
// fact-derived status and lateness, plus the headline counters.
func (h *DashboardHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	dash, ok := middleware.DashboardFrom(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	overview, err := dash.Overview(r.Context(), time.Now())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(overview); err != nil {
		h.logger.Error("failed to encode overview", zap.Error(err))
	}
}

func (h *DashboardHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, domain.DecisionApprove)
}

func (h *DashboardHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, domain.DecisionReject)
}

func (h *DashboardHandler) Notify(w http.ResponseWriter, r *http.Request) {
	dash, ok := middleware.DashboardFrom(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	id, err := requestID(r)
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}

	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	if err := dash.Notify(r.Context(), id, req.Message); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Notification sent"})
}

func (h *DashboardHandler) act(w http.ResponseWriter, r *http.Request, decision domain.Decision) {
	dash, ok := middleware.DashboardFrom(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	id, err := requestID(r)
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	view, err := dash.Act(r.Context(), id, decision, req.Comment)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		h.logger.Error("failed to encode request view", zap.Error(err))
	}
}

// writeError maps the error taxonomy onto HTTP statuses for the UI. A
// session-expired error also destroys the session so the next call starts
// clean at the login screen.
func (h *DashboardHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		if id, ok := middleware.SessionIDFrom(r.Context()); ok {
			h.registry.Drop(r.Context(), id)
		}
		http.Error(w, "session expired", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrAuthExpired):
		http.Error(w, "authorization rejected", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrAlreadyActed):
		http.Error(w, "request already resolved for this role", http.StatusConflict)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "request not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrUpstream):
		http.Error(w, "clinic API unavailable", http.StatusBadGateway)
	default:
		h.logger.Error("dashboard operation failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func requestID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid request id %q", r.PathValue("id"))
	}
	return id, nil
}
