package services

import (
	"context"
	"fmt"
	"strconv"

	"batepapo/internal/database"
	"batepapo/internal/models"
)

const invalidLimit = "limit must be a valid positive number"

type FeedService struct {
	db database.Database
}

func NewFeedService(db database.Database) *FeedService {
	return &FeedService{db: db}
}

// ParseLimit reads the optional limit query value. An empty value means no limit.
func ParseLimit(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return nil, invalid(invalidLimit)
	}
	return &limit, nil
}

// Feed returns the messages visible to requester, newest first, capped to limit when given.
func (s *FeedService) Feed(ctx context.Context, requester string, limit *int) ([]*models.Message, error) {
	capped := 0
	if limit != nil {
		if *limit <= 0 {
			return nil, invalid(invalidLimit)
		}
		capped = *limit
	}

	messages, err := s.db.LoadVisibleMessages(ctx, requester, capped)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return messages, nil
}
