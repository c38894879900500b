package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"batepapo/internal/clock"
	"batepapo/internal/database"
	"batepapo/internal/mocks"
	"batepapo/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPresenceService_Heartbeat(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	mockDB := mocks.NewMockDatabase(ctrl)
	clk := clock.NewFixed(startTime)
	svc := NewPresenceService(mockDB, clk, NewMessageService(mockDB, clk, nil), 10*time.Second)

	t.Run("should refresh last seen without writing a message", func(t *testing.T) {
		mockDB.EXPECT().TouchParticipant(ctx, "Maria", startTime.UnixMilli()).Return(nil).Times(1)
		mockDB.EXPECT().SaveMessage(gomock.Any(), gomock.Any()).Times(0)

		require.NoError(t, svc.Heartbeat(ctx, "Maria"))
	})

	t.Run("should require an identity", func(t *testing.T) {
		mockDB.EXPECT().TouchParticipant(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		require.ErrorIs(t, svc.Heartbeat(ctx, ""), ErrMissingIdentity)
	})

	t.Run("should report unknown participants", func(t *testing.T) {
		mockDB.EXPECT().TouchParticipant(ctx, "Pedro", gomock.Any()).Return(database.ErrParticipantNotFound).Times(1)

		require.ErrorIs(t, svc.Heartbeat(ctx, "Pedro"), ErrNotFound)
	})

	t.Run("should surface storage failures", func(t *testing.T) {
		storageErr := errors.New("timeout")
		mockDB.EXPECT().TouchParticipant(ctx, "Maria", gomock.Any()).Return(storageErr).Times(1)

		err := svc.Heartbeat(ctx, "Maria")
		require.ErrorIs(t, err, storageErr)
		require.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestPresenceService_Sweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	req := require.New(t)
	ctx := context.Background()
	mockDB := mocks.NewMockDatabase(ctrl)
	clk := clock.NewFixed(startTime)
	publisher := &recordingPublisher{}
	svc := NewPresenceService(mockDB, clk, NewMessageService(mockDB, clk, publisher), 10*time.Second)

	cutoff := startTime.Add(-10 * time.Second).UnixMilli()
	mockDB.EXPECT().
		RemoveInactiveParticipants(ctx, cutoff, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, farewell database.FarewellFunc) ([]*models.Participant, error) {
			maria := &models.Participant{Name: "Maria", LastSeen: cutoff - 1}
			// A retried transaction asks twice; the same message must come back.
			first := farewell(maria)
			req.Same(first, farewell(maria))
			return []*models.Participant{maria}, nil
		}).
		Times(1)

	removed, err := svc.Sweep(ctx)

	req.NoError(err)
	req.Len(removed, 1)
	req.Len(publisher.published, 1)
	farewell := publisher.published[0]
	req.Equal("Maria", farewell.From)
	req.Equal(models.Everyone, farewell.To)
	req.Equal(models.LeaveText, farewell.Text)
	req.Equal(models.MessageTypeStatus, farewell.Type)
	req.Equal("14:30:15", farewell.Time)
}

func TestPresenceService_Start(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	req := require.New(t)
	mockDB := mocks.NewMockDatabase(ctrl)
	clk := clock.NewFixed(startTime)
	svc := NewPresenceService(mockDB, clk, NewMessageService(mockDB, clk, nil), 10*time.Second)

	var sweeps atomic.Int32
	mockDB.EXPECT().
		RemoveInactiveParticipants(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, int64, database.FarewellFunc) ([]*models.Participant, error) {
			sweeps.Add(1)
			return nil, nil
		}).
		AnyTimes()

	stop := svc.Start(context.Background(), 5*time.Millisecond)
	req.Eventually(func() bool { return sweeps.Load() > 0 }, time.Second, 5*time.Millisecond)

	stop()
	afterStop := sweeps.Load()
	time.Sleep(30 * time.Millisecond)
	req.Equal(afterStop, sweeps.Load(), "no sweep may run once stop has returned")
}
