//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"group-chat/domain"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
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

// ITokenVerifier validates a presented credential and resolves the user
// behind it.
type ITokenVerifier interface {
	Verify(token string) (userID, username string, err error)
}

// IMembership answers the admission question for one group. Called on
// every connection attempt, never cached across attempts.
type IMembership interface {
	IsMember(groupID domain.GroupID, userID string) (bool, error)
}

// IMessageStore is the persistence collaborator of the live channel.
type IMessageStore interface {
	Create(userID, username string, groupID domain.GroupID, content string) (domain.Message, error)
	RecentByGroup(groupID domain.GroupID, limit int) ([]domain.Message, error)
}

// IMessageIndex is the advisory full-text index over stored messages.
// Index failures never block persistence or broadcast.
type IMessageIndex interface {
	Index(msg domain.Message) error
	SearchByGroup(ctx context.Context, groupID domain.GroupID, query string, limit int) ([]domain.Message, error)
}

// Sink is the outbound side of one live connection. Deliver must not
// block the caller; a full or closed connection reports an error and the
// broadcast moves on to the next recipient.
type Sink interface {
	Deliver(payload []byte) error
}

// Entry pairs a registered session with its outbound sink.
type Entry struct {
	Session domain.Session
	Sink    Sink
}

type IRegistry interface {
	Insert(handle domain.Handle, session domain.Session, sink Sink) error
	Remove(handle domain.Handle)
	SnapshotForGroup(groupID domain.GroupID) []Entry
}
