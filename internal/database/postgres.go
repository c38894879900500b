package database

import (
	"context"
	"errors"
	"fmt"

	"batepapo/internal/models"
	"batepapo/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS participants (
		name      TEXT PRIMARY KEY,
		last_seen BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		seq       BIGSERIAL PRIMARY KEY,
		id        TEXT NOT NULL UNIQUE,
		sender    TEXT NOT NULL,
		recipient TEXT NOT NULL,
		text      TEXT NOT NULL,
		type      TEXT NOT NULL CHECK (type IN ('status', 'message', 'private_message')),
		time      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_feed ON messages (time COLLATE "C" DESC, seq DESC)`,
}

type PostgresDB struct {
	pool *pgxpool.Pool
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func NewPostgresDB(ctx context.Context, databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &PostgresDB{pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Connected to database successfully")
	return db, nil
}

func (db *PostgresDB) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

// Participant Repository Implementation
func (db *PostgresDB) CreateParticipant(ctx context.Context, participant *models.Participant, status *models.Message) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// The primary key on name makes concurrent joins race safely: only one insert commits.
	query := `INSERT INTO participants (name, last_seen) VALUES ($1, $2)`
	if _, err := tx.Exec(ctx, query, participant.Name, participant.LastSeen); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrParticipantExists
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}

	if err := insertMessage(ctx, tx, status); err != nil {
		return fmt.Errorf("failed to save status message: %w", err)
	}

	return tx.Commit(ctx)
}

func (db *PostgresDB) ListParticipants(ctx context.Context) ([]*models.Participant, error) {
	rows, err := db.pool.Query(ctx, `SELECT name, last_seen FROM participants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := []*models.Participant{}
	for rows.Next() {
		participant := &models.Participant{}
		if err := rows.Scan(&participant.Name, &participant.LastSeen); err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}

	return participants, rows.Err()
}

func (db *PostgresDB) ParticipantExists(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM participants WHERE name = $1)`

	var exists bool
	err := db.pool.QueryRow(ctx, query, name).Scan(&exists)
	return exists, err
}

func (db *PostgresDB) TouchParticipant(ctx context.Context, name string, lastSeen int64) error {
	query := `UPDATE participants SET last_seen = $2 WHERE name = $1`
	tag, err := db.pool.Exec(ctx, query, name, lastSeen)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

func (db *PostgresDB) RemoveInactiveParticipants(ctx context.Context, lastSeenBefore int64, farewell FarewellFunc) ([]*models.Participant, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `DELETE FROM participants WHERE last_seen < $1 RETURNING name, last_seen`, lastSeenBefore)
	if err != nil {
		return nil, err
	}

	var removed []*models.Participant
	for rows.Next() {
		participant := &models.Participant{}
		if err := rows.Scan(&participant.Name, &participant.LastSeen); err != nil {
			rows.Close()
			return nil, err
		}
		removed = append(removed, participant)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, participant := range removed {
		if err := insertMessage(ctx, tx, farewell(participant)); err != nil {
			return nil, fmt.Errorf("failed to save farewell message: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return removed, nil
}

// Message Repository Implementation
func (db *PostgresDB) SaveMessage(ctx context.Context, message *models.Message) error {
	return insertMessage(ctx, db.pool, message)
}

func (db *PostgresDB) LoadVisibleMessages(ctx context.Context, requester string, limit int) ([]*models.Message, error) {
	// Ordering compares the formatted time byte-wise; LIMIT NULL means no limit.
	query := `
		SELECT seq, id, sender, recipient, text, type, time
		FROM messages
		WHERE sender = $1 OR recipient = $1 OR recipient = $2 OR type = $3
		ORDER BY time COLLATE "C" DESC, seq DESC
		LIMIT $4`

	var capped *int
	if limit > 0 {
		capped = &limit
	}

	rows, err := db.pool.Query(ctx, query, requester, models.Everyone, string(models.MessageTypeMessage), capped)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []*models.Message{}
	for rows.Next() {
		msg := &models.Message{}
		var msgType string
		if err := rows.Scan(&msg.Seq, &msg.ID, &msg.From, &msg.To, &msg.Text, &msgType, &msg.Time); err != nil {
			return nil, err
		}
		msg.Type = models.MessageType(msgType)
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func insertMessage(ctx context.Context, q querier, message *models.Message) error {
	query := `
		INSERT INTO messages (id, sender, recipient, text, type, time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq`

	return q.QueryRow(ctx, query,
		message.ID, message.From, message.To, message.Text, string(message.Type), message.Time,
	).Scan(&message.Seq)
}
