//go:generate go run go.uber.org/mock/mockgen -source=interfaces.go -destination=../mocks/mock_database.go -package=mocks
package database

import (
	"context"
	"errors"

	"batepapo/internal/models"
)

var (
	ErrParticipantExists   = errors.New("participant already exists")
	ErrParticipantNotFound = errors.New("participant not found")
)

// FarewellFunc builds the status message written when a participant is evicted.
type FarewellFunc func(participant *models.Participant) *models.Message

type ParticipantRepository interface {
	// CreateParticipant stores the participant and its join status message atomically.
	// It returns ErrParticipantExists when the name is already taken.
	CreateParticipant(ctx context.Context, participant *models.Participant, status *models.Message) error
	ListParticipants(ctx context.Context) ([]*models.Participant, error)
	ParticipantExists(ctx context.Context, name string) (bool, error)
	TouchParticipant(ctx context.Context, name string, lastSeen int64) error
	RemoveInactiveParticipants(ctx context.Context, lastSeenBefore int64, farewell FarewellFunc) ([]*models.Participant, error)
}

type MessageRepository interface {
	SaveMessage(ctx context.Context, message *models.Message) error
	// LoadVisibleMessages returns the requester's feed, newest first. A limit of 0 returns everything.
	LoadVisibleMessages(ctx context.Context, requester string, limit int) ([]*models.Message, error)
}

type Database interface {
	ParticipantRepository
	MessageRepository
	Ping(ctx context.Context) error
	Close() error
}
