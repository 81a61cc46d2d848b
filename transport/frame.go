// Package transport adapts websocket connections to the relay: inbound
// frames become typed commands, outbound events become frames, and the Hub
// exposes the send/broadcast primitives the dispatcher needs.
package transport

import (
	"encoding/json"
	"fmt"

	"quiz-relay/domain"
	"quiz-relay/errors"
)

// Frame is the wire envelope in both directions: an event name and an opaque
// payload.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type joinRoomData struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type startQuizData struct {
	RoomID string         `json:"roomId"`
	Quiz   map[string]any `json:"quizData"`
}

type submitAnswerData struct {
	RoomID     string `json:"roomId"`
	UserID     string `json:"userId"`
	QuestionID string `json:"questionId"`
	Answer     any    `json:"answer"`
}

type nextQuestionData struct {
	RoomID        string `json:"roomId"`
	QuestionIndex int    `json:"questionIndex"`
}

type endQuizData struct {
	RoomID  string `json:"roomId"`
	Results any    `json:"results"`
}

// DecodeCommand turns one raw inbound frame into a typed command for the
// given connection. Unknown event names and unparseable payloads are
// reported, not relayed; field-level validation stays with the dispatcher.
func DecodeCommand(connectionID string, raw []byte) (domain.Command, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedData, err)
	}

	switch frame.Event {
	case "join-room":
		var data joinRoomData
		if err := unmarshalData(frame.Data, &data); err != nil {
			return nil, err
		}
		return domain.JoinRoomCommand{
			Conn:     connectionID,
			RoomID:   data.RoomID,
			UserID:   data.UserID,
			UserName: data.UserName,
		}, nil
	case "start-quiz":
		var data startQuizData
		if err := unmarshalData(frame.Data, &data); err != nil {
			return nil, err
		}
		return domain.StartQuizCommand{
			Conn:   connectionID,
			RoomID: data.RoomID,
			Quiz:   data.Quiz,
		}, nil
	case "submit-answer":
		var data submitAnswerData
		if err := unmarshalData(frame.Data, &data); err != nil {
			return nil, err
		}
		return domain.SubmitAnswerCommand{
			Conn:       connectionID,
			RoomID:     data.RoomID,
			UserID:     data.UserID,
			QuestionID: data.QuestionID,
			Answer:     data.Answer,
		}, nil
	case "next-question":
		var data nextQuestionData
		if err := unmarshalData(frame.Data, &data); err != nil {
			return nil, err
		}
		return domain.NextQuestionCommand{
			Conn:          connectionID,
			RoomID:        data.RoomID,
			QuestionIndex: data.QuestionIndex,
		}, nil
	case "end-quiz":
		var data endQuizData
		if err := unmarshalData(frame.Data, &data); err != nil {
			return nil, err
		}
		return domain.EndQuizCommand{
			Conn:    connectionID,
			RoomID:  data.RoomID,
			Results: data.Results,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, frame.Event)
	}
}

func unmarshalData(raw json.RawMessage, target any) error {
	if len(raw) == 0 {
		// A frame without data is still a frame; required-field checks
		// happen downstream.
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrMalformedData, err)
	}
	return nil
}
