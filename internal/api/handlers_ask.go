package api

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/answerhub/qa-service/internal/api/respond"
	"github.com/answerhub/qa-service/internal/api/validate"
	"github.com/answerhub/qa-service/internal/services"
)

// AskHandler serves POST /ask.
type AskHandler struct {
	svc *services.DataService
}

func NewAskHandler(svc *services.DataService) *AskHandler { return &AskHandler{svc: svc} }

func (h *AskHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username  string `json:"username"`
		Question  string `json:"question"`
		SessionID string `json:"session_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json body")
		return
	}

	username := strings.TrimSpace(in.Username)
	question := strings.TrimSpace(in.Question)
	if err := validate.Username(username); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Question(question); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.svc.ProcessQuestion(r.Context(), username, question, clientIP(r), in.SessionID)
	if err != nil {
		// Storage error text stays internal; the client sees a generic failure.
		respond.WriteInternalError(w, "failed to process question")
		return
	}
	respond.WriteJSON(w, http.StatusOK, result)
}

// clientIP extracts the remote host without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
