package services

import (
	"context"
	"testing"

	"batepapo/internal/mocks"
	"batepapo/internal/models"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw     string
		want    *int
		invalid bool
	}{
		{raw: "", want: nil},
		{raw: "1", want: lo.ToPtr(1)},
		{raw: "50", want: lo.ToPtr(50)},
		{raw: "0", invalid: true},
		{raw: "-1", invalid: true},
		{raw: "abc", invalid: true},
		{raw: "2.5", invalid: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			req := require.New(t)
			limit, err := ParseLimit(tt.raw)
			if tt.invalid {
				req.ErrorIs(err, ErrInvalid)
				req.EqualError(err, invalidLimit)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, limit)
		})
	}
}

func TestFeedService_Feed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	mockDB := mocks.NewMockDatabase(ctrl)
	svc := NewFeedService(mockDB)
	feed := []*models.Message{{From: "Maria", To: models.Everyone, Text: "oi", Type: models.MessageTypeMessage, Time: "10:00:00"}}

	t.Run("should load every visible message without a limit", func(t *testing.T) {
		req := require.New(t)
		mockDB.EXPECT().LoadVisibleMessages(ctx, "Joao", 0).Return(feed, nil).Times(1)

		messages, err := svc.Feed(ctx, "Joao", nil)

		req.NoError(err)
		req.Equal(feed, messages)
	})

	t.Run("should pass the limit to the store", func(t *testing.T) {
		req := require.New(t)
		mockDB.EXPECT().LoadVisibleMessages(ctx, "Joao", 10).Return(feed, nil).Times(1)

		_, err := svc.Feed(ctx, "Joao", lo.ToPtr(10))

		req.NoError(err)
	})

	t.Run("should reject a non positive limit", func(t *testing.T) {
		req := require.New(t)
		mockDB.EXPECT().LoadVisibleMessages(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Feed(ctx, "Joao", lo.ToPtr(0))
		req.ErrorIs(err, ErrInvalid)

		_, err = svc.Feed(ctx, "Joao", lo.ToPtr(-1))
		req.ErrorIs(err, ErrInvalid)
	})
}
