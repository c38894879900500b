package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"batepapo/internal/clock"
	"batepapo/internal/database"
	"batepapo/internal/models"
	"batepapo/pkg/logger"
)

// ParticipantService owns registration. A join stores the participant and its
// status message in one store transaction, so a failed join leaves nothing behind.
type ParticipantService struct {
	db       database.Database
	clock    clock.Clock
	messages *MessageService
}

func NewParticipantService(db database.Database, clk clock.Clock, messages *MessageService) *ParticipantService {
	return &ParticipantService{db: db, clock: clk, messages: messages}
}

// Join registers the name with surrounding space removed, the same way callers
// are identified from the user header. A blank name is rejected.
func (s *ParticipantService) Join(ctx context.Context, req *models.JoinRequest) (*models.Participant, error) {
	normalized := models.JoinRequest{Name: strings.TrimSpace(req.Name)}
	if err := validateRequest(&normalized); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	participant := &models.Participant{Name: normalized.Name, LastSeen: now.UnixMilli()}
	status := s.messages.JoinMessage(normalized.Name, now)

	if err := s.db.CreateParticipant(ctx, participant, status); err != nil {
		if errors.Is(err, database.ErrParticipantExists) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}

	logger.Debug("Participant %s joined", participant.Name)
	s.messages.Announce(status)
	return participant, nil
}

func (s *ParticipantService) List(ctx context.Context) ([]*models.Participant, error) {
	return s.db.ListParticipants(ctx)
}

func (s *ParticipantService) Exists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, nil
	}
	return s.db.ParticipantExists(ctx, name)
}
