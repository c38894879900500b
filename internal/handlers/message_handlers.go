package handlers

import (
	"net/http"

	"batepapo/internal/auth"
	"batepapo/internal/models"
	"batepapo/internal/services"
)

type MessageHandlers struct {
	messageService *services.MessageService
	feedService    *services.FeedService
}

func NewMessageHandlers(messageService *services.MessageService, feedService *services.FeedService) *MessageHandlers {
	return &MessageHandlers{
		messageService: messageService,
		feedService:    feedService,
	}
}

func (h *MessageHandlers) Post(w http.ResponseWriter, r *http.Request) {
	var req models.PostMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Post message", err)
		return
	}

	msg, err := h.messageService.Post(r.Context(), auth.FromHeader(r), &req)
	if err != nil {
		respondError(w, "Post message", err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, err := services.ParseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		respondError(w, "List messages", err)
		return
	}

	messages, err := h.feedService.Feed(r.Context(), auth.FromHeader(r), limit)
	if err != nil {
		respondError(w, "List messages", err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}
