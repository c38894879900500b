package database

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"batepapo/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func openBadger(t *testing.T) Database {
	t.Helper()
	db, err := NewBadgerDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// openPostgres needs TEST_DATABASE_URL pointing at a disposable database; tables are truncated.
func openPostgres(t *testing.T) Database {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := NewPostgresDB(ctx, url)
	require.NoError(t, err)
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `TRUNCATE participants, messages RESTART IDENTITY`)
	require.NoError(t, err)
	pool.Close()
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBadgerRepository(t *testing.T) {
	runRepositoryContract(t, openBadger)
}

func TestPostgresRepository(t *testing.T) {
	runRepositoryContract(t, openPostgres)
}

func TestOpen_Badger_Scheme(t *testing.T) {
	req := require.New(t)
	db, err := Open(context.Background(), "badger://"+t.TempDir())
	req.NoError(err)
	defer db.Close()

	_, ok := db.(*BadgerDB)
	req.True(ok)
	req.NoError(db.Ping(context.Background()))
}

func message(from, to string, msgType models.MessageType, at string) *models.Message {
	return &models.Message{
		ID:   uuid.NewString(),
		From: from,
		To:   to,
		Text: fmt.Sprintf("%s to %s", from, to),
		Type: msgType,
		Time: at,
	}
}

func join(name string, lastSeen int64) (*models.Participant, *models.Message) {
	status := message(name, models.Everyone, models.MessageTypeStatus, "10:00:00")
	status.Text = models.JoinText
	return &models.Participant{Name: name, LastSeen: lastSeen}, status
}

func createParticipant(ctx context.Context, db Database, name string, lastSeen int64) error {
	participant, status := join(name, lastSeen)
	return db.CreateParticipant(ctx, participant, status)
}

func runRepositoryContract(t *testing.T, open func(t *testing.T) Database) {
	ctx := context.Background()

	t.Run("create participant stores the join status message", func(t *testing.T) {
		req := require.New(t)
		db := open(t)
		participant, status := join("Maria", 1000)

		req.NoError(db.CreateParticipant(ctx, participant, status))

		participants, err := db.ListParticipants(ctx)
		req.NoError(err)
		req.Len(participants, 1)
		req.Equal(*participant, *participants[0])

		feed, err := db.LoadVisibleMessages(ctx, "Joao", 0)
		req.NoError(err)
		req.Len(feed, 1)
		req.Equal(models.MessageTypeStatus, feed[0].Type)
		req.Equal("Maria", feed[0].From)
		req.Equal(models.JoinText, feed[0].Text)
	})

	t.Run("duplicate name is rejected without a second status message", func(t *testing.T) {
		req := require.New(t)
		db := open(t)
		req.NoError(createParticipant(ctx, db, "Maria", 1000))

		err := createParticipant(ctx, db, "Maria", 2000)

		req.ErrorIs(err, ErrParticipantExists)
		participants, err := db.ListParticipants(ctx)
		req.NoError(err)
		req.Len(participants, 1)
		req.Equal(int64(1000), participants[0].LastSeen)
		feed, err := db.LoadVisibleMessages(ctx, "Maria", 0)
		req.NoError(err)
		req.Len(feed, 1)
	})

	t.Run("concurrent joins with the same name admit exactly one", func(t *testing.T) {
		req := require.New(t)
		db := open(t)
		const attempts = 8

		var wg sync.WaitGroup
		errs := make(chan error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- createParticipant(ctx, db, "Maria", int64(i))
			}(i)
		}
		wg.Wait()
		close(errs)

		succeeded := 0
		for err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			req.ErrorIs(err, ErrParticipantExists)
		}
		req.Equal(1, succeeded)
		participants, err := db.ListParticipants(ctx)
		req.NoError(err)
		req.Len(participants, 1)
	})

	t.Run("participant exists and touch", func(t *testing.T) {
		req := require.New(t)
		db := open(t)
		req.NoError(createParticipant(ctx, db, "Maria", 1000))

		exists, err := db.ParticipantExists(ctx, "Maria")
		req.NoError(err)
		req.True(exists)
		exists, err = db.ParticipantExists(ctx, "Pedro")
		req.NoError(err)
		req.False(exists)

		req.NoError(db.TouchParticipant(ctx, "Maria", 5000))
		req.ErrorIs(db.TouchParticipant(ctx, "Pedro", 5000), ErrParticipantNotFound)

		participants, err := db.ListParticipants(ctx)
		req.NoError(err)
		req.Equal(int64(5000), participants[0].LastSeen)
	})

	t.Run("feed applies visibility and descending time order", func(t *testing.T) {
		req := require.New(t)
		db := open(t)
		for _, m := range []*models.Message{
			message("Maria", models.Everyone, models.MessageTypeMessage, "10:00:01"),
			message("Maria", "Joao", models.MessageTypePrivateMessage, "10:00:02"),
			message("Joao", "Maria", models.MessageTypePrivateMessage, "10:00:03"),
			message("Ana", "Maria", models.MessageTypeMessage, "10:00:04"),
			message("Ana", "Joao", models.MessageTypePrivateMessage, "10:00:05"),
		} {
			req.NoError(db.SaveMessage(ctx, m))
		}

		feed, err := db.LoadVisibleMessages(ctx, "Pedro", 0)
		req.NoError(err)
		req.Len(feed, 2)
		req.Equal("10:00:04", feed[0].Time)
		req.Equal("10:00:01", feed[1].Time)

		feed, err = db.LoadVisibleMessages(ctx, "Joao", 0)
		req.NoError(err)
		var times []string
		for _, m := range feed {
			times = append(times, m.Time)
		}
		req.Equal([]string{"10:00:05", "10:00:04", "10:00:03", "10:00:02", "10:00:01"}, times)
	})

	t.Run("feed limit returns a prefix of the full ordering", func(t *testing.T) {
		req := require.New(t)
		db := open(t)
		for i := 0; i < 5; i++ {
			req.NoError(db.SaveMessage(ctx, message("Maria", models.Everyone, models.MessageTypeMessage, fmt.Sprintf("10:00:0%d", i))))
		}

		all, err := db.LoadVisibleMessages(ctx, "Joao", 0)
		req.NoError(err)
		limited, err := db.LoadVisibleMessages(ctx, "Joao", 3)
		req.NoError(err)

		req.Len(limited, 3)
		req.Equal(all[:3], limited)
	})

	t.Run("equal times list the latest stored first", func(t *testing.T) {
		req := require.New(t)
		db := open(t)
		first := message("Maria", models.Everyone, models.MessageTypeMessage, "10:00:00")
		second := message("Joao", models.Everyone, models.MessageTypeMessage, "10:00:00")
		req.NoError(db.SaveMessage(ctx, first))
		req.NoError(db.SaveMessage(ctx, second))

		feed, err := db.LoadVisibleMessages(ctx, "Ana", 0)
		req.NoError(err)
		req.Equal(second.ID, feed[0].ID)
		req.Equal(first.ID, feed[1].ID)
	})

	t.Run("remove inactive participants writes farewells", func(t *testing.T) {
		req := require.New(t)
		db := open(t)
		req.NoError(createParticipant(ctx, db, "Maria", 1000))
		req.NoError(createParticipant(ctx, db, "Joao", 9000))

		removed, err := db.RemoveInactiveParticipants(ctx, 5000, func(p *models.Participant) *models.Message {
			farewell := message(p.Name, models.Everyone, models.MessageTypeStatus, "10:00:10")
			farewell.Text = models.LeaveText
			return farewell
		})

		req.NoError(err)
		req.Len(removed, 1)
		req.Equal("Maria", removed[0].Name)

		participants, err := db.ListParticipants(ctx)
		req.NoError(err)
		req.Len(participants, 1)
		req.Equal("Joao", participants[0].Name)

		feed, err := db.LoadVisibleMessages(ctx, "Ana", 1)
		req.NoError(err)
		req.Equal(models.LeaveText, feed[0].Text)
		req.Equal("Maria", feed[0].From)
	})
}
