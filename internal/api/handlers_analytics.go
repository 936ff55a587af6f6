package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/answerhub/qa-service/internal/api/respond"
	"github.com/answerhub/qa-service/internal/services"
)

// AnalyticsHandler serves the analytics and export read endpoints.
type AnalyticsHandler struct {
	svc *services.DataService
}

func NewAnalyticsHandler(svc *services.DataService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// SystemAnalytics handles GET /analytics.
func (h *AnalyticsHandler) SystemAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.SystemAnalytics(r.Context())
	if err != nil {
		respond.WriteInternalError(w, "failed to compute analytics")
		return
	}
	respond.WriteJSON(w, http.StatusOK, report)
}

// UserAnalytics handles GET /analytics/user/{username}.
func (h *AnalyticsHandler) UserAnalytics(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	summary, err := h.svc.UserAnalytics(r.Context(), username)
	if err != nil {
		if services.IsNotFound(err) {
			respond.WriteNotFound(w, "user not found")
			return
		}
		respond.WriteInternalError(w, "failed to compute user analytics")
		return
	}
	respond.WriteJSON(w, http.StatusOK, summary)
}

// ExportUser handles GET /export/user/{username}.
func (h *AnalyticsHandler) ExportUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	export, err := h.svc.ExportUser(r.Context(), username)
	if err != nil {
		if services.IsNotFound(err) {
			respond.WriteNotFound(w, "user not found")
			return
		}
		respond.WriteInternalError(w, "failed to export user data")
		return
	}
	respond.WriteJSON(w, http.StatusOK, export)
}
