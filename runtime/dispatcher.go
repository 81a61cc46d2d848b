package runtime

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"quiz-relay/contract"
	"quiz-relay/domain"
	"quiz-relay/domain/event"
)

// wire names for the validator's struct field names, so error replies speak
// the client's vocabulary.
var wireNames = map[string]string{
	"RoomID":     "roomId",
	"UserID":     "userId",
	"QuestionID": "questionId",
	"Answer":     "answer",
}

// Dispatcher consumes one inbound command at a time, validates its required
// fields, mutates the registry and session store, and emits the resulting
// broadcasts. All durable state lives in the stores; the dispatcher itself is
// stateless and safe for concurrent use.
//
// Failures are contained per command: a malformed or panicking event is
// reported to its sender only and never disturbs other connections or rooms.
type Dispatcher struct {
	log      *slog.Logger
	registry contract.IRegistry
	sessions contract.ISessionStore
	sender   contract.ConnectionSender
	validate *validator.Validate
	now      func() time.Time
}

func NewDispatcher(
	log *slog.Logger,
	registry contract.IRegistry,
	sessions contract.ISessionStore,
	sender contract.ConnectionSender,
) *Dispatcher {
	return &Dispatcher{
		log:      log,
		registry: registry,
		sessions: sessions,
		sender:   sender,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (d *Dispatcher) Handle(cmd domain.Command) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("Command handler panicked",
				"action", cmd.Action(), "connection", cmd.ConnectionID(), "panic", r)
			d.sendError(cmd, fmt.Sprintf("failed to process %s", cmd.Action()))
		}
	}()

	if err := d.validate.Struct(cmd); err != nil {
		d.log.Debug("Rejected command with missing fields",
			"action", cmd.Action(), "connection", cmd.ConnectionID(), "err", err)
		d.sendError(cmd, rejectionMessage(cmd, err))
		return
	}

	switch c := cmd.(type) {
	case domain.JoinRoomCommand:
		d.handleJoin(c)
	case domain.StartQuizCommand:
		d.handleStart(c)
	case domain.SubmitAnswerCommand:
		d.handleSubmitAnswer(c)
	case domain.NextQuestionCommand:
		d.handleNextQuestion(c)
	case domain.EndQuizCommand:
		d.handleEnd(c)
	case domain.DisconnectCommand:
		d.handleDisconnect(c)
	default:
		d.log.Warn("No handler for command", "action", cmd.Action())
	}
}

func (d *Dispatcher) handleJoin(c domain.JoinRoomCommand) {
	name := c.UserName
	if name == "" {
		name = fmt.Sprintf("User %s", c.UserID)
	}
	roomID := domain.RoomID(c.RoomID)
	p := domain.Participant{
		ConnectionID: c.Conn,
		UserID:       c.UserID,
		DisplayName:  name,
		JoinedAt:     d.now().UTC(),
	}

	list, departures := d.registry.Join(roomID, p)
	// Leaving the previous room may have emptied it; its session must not
	// outlive it.
	for _, dep := range departures {
		if dep.Empty {
			d.sessions.End(dep.RoomID)
		}
	}

	d.sender.BroadcastToRoom(roomID, event.ParticipantsUpdate{
		Participants: list,
		Count:        len(list),
	})
	d.sendTo(c.Conn, event.RoomJoined{
		RoomID:           c.RoomID,
		ParticipantCount: len(list),
		Participants:     list,
	})
	d.log.Debug("Participant joined room",
		"room", c.RoomID, "user", c.UserID, "connection", c.Conn, "count", len(list))
}

func (d *Dispatcher) handleStart(c domain.StartQuizCommand) {
	roomID := domain.RoomID(c.RoomID)
	session := d.sessions.Start(roomID, c.Quiz)

	d.sender.BroadcastToRoom(roomID, event.QuizStarted{
		RoomID: c.RoomID,
		Quiz:   session.Snapshot(),
	})
	d.log.Debug("Quiz started", "room", c.RoomID, "connection", c.Conn)
}

// handleSubmitAnswer relays the answer to the rest of the room without
// touching any store. Missing fields are relayed as-is.
func (d *Dispatcher) handleSubmitAnswer(c domain.SubmitAnswerCommand) {
	d.sender.BroadcastToRoom(domain.RoomID(c.RoomID), event.AnswerReceived{
		UserID:     c.UserID,
		QuestionID: c.QuestionID,
		Answer:     c.Answer,
		Timestamp:  d.now().UTC(),
	}, c.Conn)
}

func (d *Dispatcher) handleNextQuestion(c domain.NextQuestionCommand) {
	roomID := domain.RoomID(c.RoomID)
	// No-op when no session exists; the change is still announced.
	d.sessions.AdvanceQuestion(roomID, c.QuestionIndex)

	d.sender.BroadcastToRoom(roomID, event.QuestionChanged{
		RoomID:        c.RoomID,
		QuestionIndex: c.QuestionIndex,
		Timestamp:     d.now().UTC(),
	})
}

func (d *Dispatcher) handleEnd(c domain.EndQuizCommand) {
	roomID := domain.RoomID(c.RoomID)
	d.sender.BroadcastToRoom(roomID, event.QuizEnded{
		RoomID:  c.RoomID,
		Results: c.Results,
		EndedAt: d.now().UTC(),
	})
	d.sessions.End(roomID)
	d.log.Debug("Quiz ended", "room", c.RoomID, "connection", c.Conn)
}

// handleDisconnect is idempotent: a connection with no room membership
// produces no departures and no broadcasts.
func (d *Dispatcher) handleDisconnect(c domain.DisconnectCommand) {
	for _, dep := range d.registry.Leave(c.Conn) {
		if dep.Empty {
			d.sessions.End(dep.RoomID)
			d.log.Debug("Room emptied, session cleared", "room", dep.RoomID)
			continue
		}
		d.sender.BroadcastToRoom(dep.RoomID, event.ParticipantsUpdate{
			Participants: dep.Remaining,
			Count:        len(dep.Remaining),
		})
	}
}

func (d *Dispatcher) sendTo(connectionID string, e event.Event) {
	if err := d.sender.SendTo(connectionID, e); err != nil {
		d.log.Warn("Failed to deliver event to connection",
			"connection", connectionID, "event", e.Name(), "err", err)
	}
}

func (d *Dispatcher) sendError(cmd domain.Command, message string) {
	if err := d.sender.SendTo(cmd.ConnectionID(), event.Error{Message: message}); err != nil {
		d.log.Warn("Failed to deliver error event",
			"connection", cmd.ConnectionID(), "err", err)
	}
}

func rejectionMessage(cmd domain.Command, err error) string {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Sprintf("invalid %s event", cmd.Action())
	}
	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := fe.Field()
		if wire, ok := wireNames[name]; ok {
			name = wire
		}
		missing = append(missing, name)
	}
	return fmt.Sprintf("%s requires %s", cmd.Action(), strings.Join(missing, " and "))
}
