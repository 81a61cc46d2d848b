//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"quiz-relay/domain"
	"quiz-relay/domain/event"
)

// ConnectionSender is the transport capability the dispatcher needs: deliver
// one event to one connection, or fan one event out to a room. Fan-out is
// best-effort per recipient; a slow or broken connection never fails the
// others.
type ConnectionSender interface {
	SendTo(connectionID string, e event.Event) error
	BroadcastToRoom(roomID domain.RoomID, e event.Event, exclude ...string)
}

type IRegistry interface {
	Join(roomID domain.RoomID, p domain.Participant) ([]domain.Participant, []domain.RoomDeparture)
	Leave(connectionID string) []domain.RoomDeparture
	Participants(roomID domain.RoomID) []domain.Participant
	Counts() (connections int, rooms int)
}

type ISessionStore interface {
	Start(roomID domain.RoomID, quiz map[string]any) domain.QuizSession
	AdvanceQuestion(roomID domain.RoomID, index int)
	End(roomID domain.RoomID)
	Get(roomID domain.RoomID) (domain.QuizSession, bool)
}

type IDispatcher interface {
	Handle(cmd domain.Command)
}

// Submitter hands an inbound command to the processing pipeline without
// blocking on it.
type Submitter interface {
	Submit(cmd domain.Command)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself; the supervisor does.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// initialization or lifecycle events, avoiding the need for manual naming in
// the Worker interface.
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
