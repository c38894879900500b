package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"batepapo/internal/models"
	"batepapo/pkg/logger"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

const (
	participantPrefix = "participant:"
	messagePrefix     = "message:"
	messageSeqKey     = "seq:message"

	// maxTxnAttempts bounds retries of transactions that lost a write conflict.
	maxTxnAttempts = 3
)

// BadgerDB is an embedded store. Keys:
//
//	participant:{name}       JSON participant
//	message:{seq 19 digits}  JSON message, so a prefix scan yields insertion order
type BadgerDB struct {
	db  *badger.DB
	seq *badger.Sequence
}

type diskMessage struct {
	Seq  int64  `json:"seq"`
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

func NewBadgerDB(path string) (*BadgerDB, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", path, err)
	}

	seq, err := db.GetSequence([]byte(messageSeqKey), 100)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to lease message sequence: %w", err)
	}

	logger.Info("Opened badger store at %s", path)
	return &BadgerDB{db: db, seq: seq}, nil
}

func (b *BadgerDB) Ping(ctx context.Context) error {
	if b.db.IsClosed() {
		return errors.New("badger store is closed")
	}
	return nil
}

func (b *BadgerDB) Close() error {
	if err := b.seq.Release(); err != nil {
		logger.Error("Error releasing message sequence: %v", err)
	}
	return b.db.Close()
}

// Participant Repository Implementation
func (b *BadgerDB) CreateParticipant(ctx context.Context, participant *models.Participant, status *models.Message) error {
	participantValue, err := json.Marshal(participant)
	if err != nil {
		return fmt.Errorf("marshal participant failed: %w", err)
	}
	messageKey, messageValue, err := b.encodeMessage(status)
	if err != nil {
		return err
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		key := participantKey(participant.Name)
		if _, err := txn.Get(key); err == nil {
			return ErrParticipantExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(key, participantValue); err != nil {
			return err
		}
		return txn.Set(messageKey, messageValue)
	})
	// A conflict means another transaction committed the same participant key first.
	if errors.Is(err, badger.ErrConflict) {
		return ErrParticipantExists
	}
	return err
}

func (b *BadgerDB) ListParticipants(ctx context.Context) ([]*models.Participant, error) {
	participants := []*models.Participant{}
	err := b.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, participantPrefix, func(value []byte) error {
			participant := &models.Participant{}
			if err := json.Unmarshal(value, participant); err != nil {
				return err
			}
			participants = append(participants, participant)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (b *BadgerDB) ParticipantExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(participantKey(name))
		switch {
		case err == nil:
			exists = true
			return nil
		case errors.Is(err, badger.ErrKeyNotFound):
			return nil
		default:
			return err
		}
	})
	return exists, err
}

func (b *BadgerDB) TouchParticipant(ctx context.Context, name string, lastSeen int64) error {
	value, err := json.Marshal(models.Participant{Name: name, LastSeen: lastSeen})
	if err != nil {
		return fmt.Errorf("marshal participant failed: %w", err)
	}

	return b.update(func(txn *badger.Txn) error {
		key := participantKey(name)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrParticipantNotFound
			}
			return err
		}
		return txn.Set(key, value)
	})
}

func (b *BadgerDB) RemoveInactiveParticipants(ctx context.Context, lastSeenBefore int64, farewell FarewellFunc) ([]*models.Participant, error) {
	var removed []*models.Participant
	err := b.update(func(txn *badger.Txn) error {
		removed = nil
		err := scanPrefix(txn, participantPrefix, func(value []byte) error {
			participant := &models.Participant{}
			if err := json.Unmarshal(value, participant); err != nil {
				return err
			}
			if participant.LastSeen < lastSeenBefore {
				removed = append(removed, participant)
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, participant := range removed {
			if err := txn.Delete(participantKey(participant.Name)); err != nil {
				return err
			}
			key, value, err := b.encodeMessage(farewell(participant))
			if err != nil {
				return err
			}
			if err := txn.Set(key, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// Message Repository Implementation
func (b *BadgerDB) SaveMessage(ctx context.Context, message *models.Message) error {
	key, value, err := b.encodeMessage(message)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (b *BadgerDB) LoadVisibleMessages(ctx context.Context, requester string, limit int) ([]*models.Message, error) {
	var messages []*models.Message
	err := b.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, messagePrefix, func(value []byte) error {
			var dm diskMessage
			if err := json.Unmarshal(value, &dm); err != nil {
				return err
			}
			messages = append(messages, toMessage(dm))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	visible := lo.Filter(messages, func(m *models.Message, _ int) bool {
		return m.VisibleTo(requester)
	})
	models.SortFeed(visible)

	if limit > 0 && len(visible) > limit {
		visible = visible[:limit]
	}
	return visible, nil
}

// encodeMessage assigns the next sequence number to message and returns its key and value.
func (b *BadgerDB) encodeMessage(message *models.Message) ([]byte, []byte, error) {
	next, err := b.seq.Next()
	if err != nil {
		return nil, nil, fmt.Errorf("next message sequence failed: %w", err)
	}
	message.Seq = int64(next)

	value, err := json.Marshal(fromMessage(message))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal message failed: %w", err)
	}
	return []byte(fmt.Sprintf("%s%019d", messagePrefix, message.Seq)), value, nil
}

func (b *BadgerDB) update(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		err = b.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func scanPrefix(txn *badger.Txn, prefix string, fn func(value []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func participantKey(name string) []byte {
	return []byte(participantPrefix + name)
}

func fromMessage(m *models.Message) diskMessage {
	return diskMessage{
		Seq:  m.Seq,
		ID:   m.ID,
		From: m.From,
		To:   m.To,
		Text: m.Text,
		Type: string(m.Type),
		Time: m.Time,
	}
}

func toMessage(dm diskMessage) *models.Message {
	return &models.Message{
		Seq:  dm.Seq,
		ID:   dm.ID,
		From: dm.From,
		To:   dm.To,
		Text: dm.Text,
		Type: models.MessageType(dm.Type),
		Time: dm.Time,
	}
}
