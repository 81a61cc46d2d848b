package domain

// Command is one inbound action decoded from a connection. Each variant
// declares its required fields with validate tags; variants without tags are
// relayed best-effort and never rejected.
type Command interface {
	// ConnectionID is the origin connection, used for error replies and
	// sender-scoped events.
	ConnectionID() string
	// Action is the wire name of the inbound event, used in logs and
	// generic failure replies.
	Action() string
}

type JoinRoomCommand struct {
	Conn     string
	RoomID   string `validate:"required"`
	UserID   string `validate:"required"`
	UserName string
}

func (c JoinRoomCommand) ConnectionID() string { return c.Conn }
func (c JoinRoomCommand) Action() string       { return "join-room" }

type StartQuizCommand struct {
	Conn   string
	RoomID string `validate:"required"`
	Quiz   map[string]any
}

func (c StartQuizCommand) ConnectionID() string { return c.Conn }
func (c StartQuizCommand) Action() string       { return "start-quiz" }

// SubmitAnswerCommand is relayed as-is, even with missing fields.
type SubmitAnswerCommand struct {
	Conn       string
	RoomID     string
	UserID     string
	QuestionID string
	Answer     any
}

func (c SubmitAnswerCommand) ConnectionID() string { return c.Conn }
func (c SubmitAnswerCommand) Action() string       { return "submit-answer" }

// NextQuestionCommand advances the session if one exists; the broadcast goes
// out either way.
type NextQuestionCommand struct {
	Conn          string
	RoomID        string
	QuestionIndex int
}

func (c NextQuestionCommand) ConnectionID() string { return c.Conn }
func (c NextQuestionCommand) Action() string       { return "next-question" }

type EndQuizCommand struct {
	Conn    string
	RoomID  string
	Results any
}

func (c EndQuizCommand) ConnectionID() string { return c.Conn }
func (c EndQuizCommand) Action() string       { return "end-quiz" }

// DisconnectCommand is synthesized by the transport exactly once per
// connection termination, never by a client frame.
type DisconnectCommand struct {
	Conn string
}

func (c DisconnectCommand) ConnectionID() string { return c.Conn }
func (c DisconnectCommand) Action() string       { return "disconnect" }
