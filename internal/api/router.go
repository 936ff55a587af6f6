package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/answerhub/qa-service/internal/api/recovery"
	"github.com/answerhub/qa-service/internal/api/respond"
	"github.com/answerhub/qa-service/internal/services"
)

// NewRouter wires all HTTP routes to handlers.
func NewRouter(svc *services.DataService) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	ask := NewAskHandler(svc)
	root.HandleFunc("/ask", ask.HandleAsk).Methods("POST")

	analytics := NewAnalyticsHandler(svc)
	root.HandleFunc("/analytics", analytics.SystemAnalytics).Methods("GET")
	root.HandleFunc("/analytics/user/{username}", analytics.UserAnalytics).Methods("GET")
	root.HandleFunc("/export/user/{username}", analytics.ExportUser).Methods("GET")

	data := NewDataHandler(svc)
	root.HandleFunc("/data/validate", data.Validate).Methods("GET")
	root.HandleFunc("/data/backup", data.Backup).Methods("POST")

	health := NewHealthHandler()
	root.HandleFunc("/", health.Home).Methods("GET")
	root.HandleFunc("/health", health.CheckHealth).Methods("GET")

	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.WriteNotFound(w, "endpoint not found")
	})

	return root
}
