package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"batepapo/internal/clock"
	"batepapo/internal/database"
	"batepapo/internal/models"
	"batepapo/pkg/logger"
)

// PresenceService refreshes last-seen timestamps and evicts participants that went quiet.
type PresenceService struct {
	db       database.Database
	clock    clock.Clock
	messages *MessageService
	timeout  time.Duration
}

func NewPresenceService(db database.Database, clk clock.Clock, messages *MessageService, timeout time.Duration) *PresenceService {
	return &PresenceService{db: db, clock: clk, messages: messages, timeout: timeout}
}

// Heartbeat updates the participant's last-seen time. It never writes a message.
func (s *PresenceService) Heartbeat(ctx context.Context, name string) error {
	if name == "" {
		return ErrMissingIdentity
	}

	err := s.db.TouchParticipant(ctx, name, s.clock.Now().UnixMilli())
	if errors.Is(err, database.ErrParticipantNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to refresh participant: %w", err)
	}
	return nil
}

// Sweep removes participants idle for longer than the timeout, leaving a
// farewell status message for each.
func (s *PresenceService) Sweep(ctx context.Context) ([]*models.Participant, error) {
	now := s.clock.Now()
	cutoff := now.Add(-s.timeout).UnixMilli()

	// The store may retry its transaction, so farewells are built once per name.
	farewells := make(map[string]*models.Message)
	removed, err := s.db.RemoveInactiveParticipants(ctx, cutoff, func(p *models.Participant) *models.Message {
		if msg, ok := farewells[p.Name]; ok {
			return msg
		}
		msg := s.messages.LeaveMessage(p.Name, now)
		farewells[p.Name] = msg
		return msg
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove inactive participants: %w", err)
	}

	for _, participant := range removed {
		logger.Info("Participant %s left after inactivity", participant.Name)
		s.messages.Announce(farewells[participant.Name])
	}
	return removed, nil
}

// Run sweeps on every tick until ctx is done.
func (s *PresenceService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				logger.Error("Presence sweep error: %v", err)
			}
		}
	}
}

// Start runs the sweeper in the background. The returned stop cancels it and
// waits until no sweep is in flight.
func (s *PresenceService) Start(ctx context.Context, interval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, interval)
	}()
	return func() {
		cancel()
		<-done
	}
}
