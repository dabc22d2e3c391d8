package handler

import "net/http"

// HealthHandler exposes a liveness endpoint. The wallet has no external
// dependencies to probe: if the process is up, it's ready.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
