package api

import (
	"net/http"

	"github.com/answerhub/qa-service/internal/api/respond"
	"github.com/answerhub/qa-service/internal/services"
)

// DataHandler serves the reconciliation endpoints.
type DataHandler struct {
	svc *services.DataService
}

func NewDataHandler(svc *services.DataService) *DataHandler { return &DataHandler{svc: svc} }

// Validate handles GET /data/validate.
func (h *DataHandler) Validate(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.ValidateConsistency(r.Context())
	if err != nil {
		respond.WriteInternalError(w, "failed to validate consistency")
		return
	}
	respond.WriteJSON(w, http.StatusOK, report)
}

// Backup handles POST /data/backup.
func (h *DataHandler) Backup(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.BackupToMirror(r.Context())
	if err != nil {
		respond.WriteInternalError(w, "failed to back up to mirror")
		return
	}
	respond.WriteJSON(w, http.StatusOK, report)
}
