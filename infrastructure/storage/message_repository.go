// Package storage implements the persistence gateway on BadgerDB.
package storage

import (
	"chat-relay/domain"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// keySeparator never appears in room names or identities: the transport
// layer rejects it on input. The derived private-channel key may contain
// ':' and '-', both harmless here.
const keySeparator = "|"

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// messageKey formats "msg|{room}|{timestamp_padded}|{uuid}" so that:
//  1. A prefix scan per room returns records in chronological order
//     thanks to the 19-digit zero padding (lexicographical order).
//  2. The UUID disambiguates two messages arriving at the same nanosecond.
func messageKey(msg domain.Message) []byte {
	return []byte(fmt.Sprintf("msg%s%s%s%019d%s%s",
		keySeparator, msg.Room,
		keySeparator, msg.CreatedAt.UnixNano(),
		keySeparator, msg.ID,
	))
}

func roomPrefix(room string) []byte {
	return []byte(fmt.Sprintf("msg%s%s%s", keySeparator, room, keySeparator))
}

// Append durably stores one record, assigning ID and CreatedAt when unset.
// The write runs under the caller's deadline: a timeout is reported as a
// definite failure for this record, never swallowed.
func (r MessageRepository) Append(ctx context.Context, msg domain.Message) (domain.Message, error) {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	payload, err := cbor.Marshal(msg)
	if err != nil {
		return domain.Message{}, fmt.Errorf("encoding message %s: %w", msg.ID, err)
	}

	err = r.bounded(ctx, func() error {
		return r.db.Update(func(txn *badger.Txn) error {
			return txn.Set(messageKey(msg), payload)
		})
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("storing message %s: %w", msg.ID, err)
	}
	return msg, nil
}

// QueryRoom returns up to limit records of a room in ascending CreatedAt
// order. An unknown or empty room yields an empty result, not an error.
func (r MessageRepository) QueryRoom(ctx context.Context, room string, limit int) ([]domain.Message, error) {
	messages := make([]domain.Message, 0)

	err := r.bounded(ctx, func() error {
		return r.db.View(func(txn *badger.Txn) error {
			prefix := roomPrefix(room)
			options := badger.DefaultIteratorOptions
			options.Prefix = prefix
			it := txn.NewIterator(options)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if len(messages) == limit {
					r.log.Debug(fmt.Sprintf("Maximum of %d messages reached", limit))
					break
				}
				err := it.Item().Value(func(value []byte) error {
					var msg domain.Message
					if err := cbor.Unmarshal(value, &msg); err != nil {
						return err
					}
					messages = append(messages, msg)
					return nil
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("querying room %q: %w", room, err)
	}
	return messages, nil
}

// QueryBetween returns up to limit private records exchanged between two
// identities, either direction, ascending CreatedAt. Every such record was
// written under the derived channel key, so one prefix scan covers both
// directions.
func (r MessageRepository) QueryBetween(ctx context.Context, userA, userB string, limit int) ([]domain.Message, error) {
	return r.QueryRoom(ctx, domain.PrivateChannel(userA, userB), limit)
}

// bounded runs a database call in its own goroutine so the caller's
// context deadline is honored even though badger transactions are not
// context-aware themselves.
func (r MessageRepository) bounded(ctx context.Context, call func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- call()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
