package domain

import "time"

// QuizSession is the mutable quiz state attached to one room. The Quiz map is
// an opaque payload supplied by whoever started the quiz; the relay never
// interprets it.
type QuizSession struct {
	RoomID          RoomID
	Quiz            map[string]any
	StartedAt       time.Time
	CurrentQuestion int
}

// Snapshot merges the opaque quiz payload with the relay-owned fields into a
// single object, which is what clients receive on quiz-started.
func (s QuizSession) Snapshot() map[string]any {
	out := make(map[string]any, len(s.Quiz)+2)
	for k, v := range s.Quiz {
		out[k] = v
	}
	out["currentQuestion"] = s.CurrentQuestion
	out["startedAt"] = s.StartedAt
	return out
}
