// Package event defines the outbound events the relay emits to connections.
package event

import (
	"time"

	"quiz-relay/domain"
)

// Event is one outbound payload. Name is the wire event name the transport
// puts on the frame.
type Event interface {
	Name() string
}

type ParticipantsUpdate struct {
	Participants []domain.Participant `json:"participants"`
	Count        int                  `json:"count"`
}

func (ParticipantsUpdate) Name() string { return "participants-update" }

// RoomJoined is the sender-only confirmation carrying the same list the room
// just received.
type RoomJoined struct {
	RoomID           string               `json:"roomId"`
	ParticipantCount int                  `json:"participantCount"`
	Participants     []domain.Participant `json:"participants"`
}

func (RoomJoined) Name() string { return "room-joined" }

type QuizStarted struct {
	RoomID string         `json:"roomId"`
	Quiz   map[string]any `json:"quiz"`
}

func (QuizStarted) Name() string { return "quiz-started" }

type AnswerReceived struct {
	UserID     string    `json:"userId"`
	QuestionID string    `json:"questionId"`
	Answer     any       `json:"answer"`
	Timestamp  time.Time `json:"timestamp"`
}

func (AnswerReceived) Name() string { return "answer-received" }

type QuestionChanged struct {
	RoomID        string    `json:"roomId"`
	QuestionIndex int       `json:"questionIndex"`
	Timestamp     time.Time `json:"timestamp"`
}

func (QuestionChanged) Name() string { return "question-changed" }

type QuizEnded struct {
	RoomID  string    `json:"roomId"`
	Results any       `json:"results"`
	EndedAt time.Time `json:"endedAt"`
}

func (QuizEnded) Name() string { return "quiz-ended" }

type Error struct {
	Message string `json:"message"`
}

func (Error) Name() string { return "error" }
