package httpapi

import (
	"log/slog"
	"net/http"

	"airquality-server/internal/modules/airquality/repository"
	"airquality-server/internal/utils"
)

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	connector repository.Connector
}

func NewHealthchecker(connector repository.Connector) healthchecker {
	return &healthcheckerImpl{connector: connector}
}

// handleHealthz opens a connection the same way a request would and closes
// it again. Connect pings the store before returning.
func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	repo, err := h.connector.Connect(r.Context())
	if err != nil {
		slog.Error("failed to check database connectivity", "error", err)
		utils.WriteError(w, http.StatusServiceUnavailable, "failed to check database connectivity")
		return
	}
	if err := repo.Close(); err != nil {
		slog.Error("healthz: close connection failed", "error", err)
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(mux *http.ServeMux, connector repository.Connector) {
	healthchecker := NewHealthchecker(connector)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
