package handlers

import (
	"net/http"

	"batepapo/internal/models"
	"batepapo/internal/services"
)

type ParticipantHandlers struct {
	participantService *services.ParticipantService
}

func NewParticipantHandlers(participantService *services.ParticipantService) *ParticipantHandlers {
	return &ParticipantHandlers{participantService: participantService}
}

func (h *ParticipantHandlers) Join(w http.ResponseWriter, r *http.Request) {
	var req models.JoinRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Join", err)
		return
	}

	participant, err := h.participantService.Join(r.Context(), &req)
	if err != nil {
		respondError(w, "Join", err)
		return
	}

	writeJSON(w, http.StatusCreated, participant)
}

func (h *ParticipantHandlers) List(w http.ResponseWriter, r *http.Request) {
	participants, err := h.participantService.List(r.Context())
	if err != nil {
		respondError(w, "List participants", err)
		return
	}

	writeJSON(w, http.StatusOK, participants)
}
