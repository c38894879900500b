package handlers

import (
	"net/http"

	"batepapo/internal/auth"
	"batepapo/internal/services"
	ws "batepapo/internal/websocket"
	"batepapo/pkg/logger"

	"github.com/gorilla/websocket"
)

type WebSocketHandlers struct {
	participantService *services.ParticipantService
	hub                *ws.Hub
	upgrader           websocket.Upgrader
}

func NewWebSocketHandlers(participantService *services.ParticipantService, hub *ws.Hub) *WebSocketHandlers {
	return &WebSocketHandlers{
		participantService: participantService,
		hub:                hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Configure for production
		},
	}
}

// Live streams newly stored messages visible to the caller.
func (h *WebSocketHandlers) Live(w http.ResponseWriter, r *http.Request) {
	username := auth.FromHeaderOrQuery(r)
	if username == "" {
		respondError(w, "Live feed", services.ErrMissingIdentity)
		return
	}

	exists, err := h.participantService.Exists(r.Context(), username)
	if err != nil {
		respondError(w, "Live feed", err)
		return
	}
	if !exists {
		respondError(w, "Live feed", services.ErrNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn, username)
	select {
	case h.hub.Register <- client:
	case <-h.hub.Done():
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
