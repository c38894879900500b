package handlers

import (
	"net/http"
)

func SetupRoutes(mux *http.ServeMux, participants *ParticipantHandlers, messages *MessageHandlers, status *StatusHandlers, live *WebSocketHandlers, health *HealthHandlers) {
	mux.HandleFunc("/participants", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			participants.List(w, r)
		case http.MethodPost:
			participants.Join(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			messages.List(w, r)
		case http.MethodPost:
			messages.Post(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		status.Heartbeat(w, r)
	})

	mux.HandleFunc("/messages/live", live.Live)
	mux.HandleFunc("/healthz", health.Healthz)
}
