//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
)

// EventSink is one live client connection from the relay's point of view.
// Delivery is best effort: a sink must never block the caller indefinitely.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// MessageStore is the persistence gateway. Append durably stores one record,
// assigning CreatedAt when unset; it reports failure instead of dropping
// silently. Queries return records in ascending CreatedAt order, bounded by
// limit. There are no update or delete operations.
type MessageStore interface {
	Append(ctx context.Context, msg domain.Message) (domain.Message, error)
	QueryRoom(ctx context.Context, room string, limit int) ([]domain.Message, error)
	QueryBetween(ctx context.Context, userA, userB string, limit int) ([]domain.Message, error)
}

// ContentFilter masks forbidden terms in message content before persistence.
type ContentFilter interface {
	Mask(content string) string
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
