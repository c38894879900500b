package services

import (
	"context"
	"fmt"
	"time"

	"batepapo/internal/clock"
	"batepapo/internal/database"
	"batepapo/internal/models"

	"github.com/google/uuid"
)

// Publisher receives messages once they are durably stored.
type Publisher interface {
	Publish(message *models.Message)
}

type nopPublisher struct{}

func (nopPublisher) Publish(*models.Message) {}

// MessageService classifies, stamps and stores outbound messages.
type MessageService struct {
	db        database.Database
	clock     clock.Clock
	publisher Publisher
}

func NewMessageService(db database.Database, clk clock.Clock, publisher Publisher) *MessageService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &MessageService{db: db, clock: clk, publisher: publisher}
}

// JoinMessage builds the status message announcing name, stamped with the registration time.
func (s *MessageService) JoinMessage(name string, at time.Time) *models.Message {
	msg := models.NewStatusMessage(name, models.JoinText, at)
	msg.ID = uuid.NewString()
	return msg
}

// LeaveMessage builds the status message written when name is evicted.
func (s *MessageService) LeaveMessage(name string, at time.Time) *models.Message {
	msg := models.NewStatusMessage(name, models.LeaveText, at)
	msg.ID = uuid.NewString()
	return msg
}

// Post validates and stores a user message sent by from.
func (s *MessageService) Post(ctx context.Context, from string, req *models.PostMessageRequest) (*models.Message, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if from == "" {
		return nil, ErrUnauthorized
	}
	exists, err := s.db.ParticipantExists(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to look up sender: %w", err)
	}
	if !exists {
		return nil, ErrUnauthorized
	}

	msg := &models.Message{
		ID:   uuid.NewString(),
		From: from,
		To:   req.To,
		Text: req.Text,
		Type: req.Type,
		Time: models.FormatTime(s.clock.Now()),
	}
	if err := s.db.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	s.publisher.Publish(msg)
	return msg, nil
}

// Announce hands already stored messages to the publisher.
func (s *MessageService) Announce(messages ...*models.Message) {
	for _, msg := range messages {
		s.publisher.Publish(msg)
	}
}
