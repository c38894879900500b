package handlers

import (
	"context"
	"net/http"

	"batepapo/internal/auth"
	"batepapo/internal/services"
)

type StatusHandlers struct {
	presenceService *services.PresenceService
}

func NewStatusHandlers(presenceService *services.PresenceService) *StatusHandlers {
	return &StatusHandlers{presenceService: presenceService}
}

func (h *StatusHandlers) Heartbeat(w http.ResponseWriter, r *http.Request) {
	if err := h.presenceService.Heartbeat(r.Context(), auth.FromHeader(r)); err != nil {
		respondError(w, "Heartbeat", err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandlers struct {
	store Pinger
}

func NewHealthHandlers(store Pinger) *HealthHandlers {
	return &HealthHandlers{store: store}
}

func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		respondError(w, "Health check", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
