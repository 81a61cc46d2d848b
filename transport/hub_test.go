package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"quiz-relay/domain"
	"quiz-relay/domain/event"
	"quiz-relay/runtime"
)

type chanSubmitter struct {
	commands chan domain.Command
}

func (s *chanSubmitter) Submit(cmd domain.Command) {
	s.commands <- cmd
}

type receivedFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newTestHub(t *testing.T) (*Hub, *runtime.Registry, *chanSubmitter, *httptest.Server) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := runtime.NewRegistry()
	submitter := &chanSubmitter{commands: make(chan domain.Command, 16)}
	hub := NewHub(log, registry, submitter, 16)

	server := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(server.Close)
	return hub, registry, submitter, server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func awaitCommand(t *testing.T, submitter *chanSubmitter) domain.Command {
	t.Helper()
	select {
	case cmd := <-submitter.commands:
		return cmd
	case <-time.After(time.Second):
		t.Fatal("no command arrived")
		return nil
	}
}

func TestHub_DecodesFramesIntoCommands(t *testing.T) {
	req := require.New(t)
	_, _, submitter, server := newTestHub(t)
	conn := dial(t, server)

	// When the client sends a join frame
	err := conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"join-room","data":{"roomId":"R1","userId":"u1"}}`))
	req.NoError(err)

	// Then a typed command reaches the submitter, stamped with the
	// hub-minted connection ID
	cmd := awaitCommand(t, submitter)
	join, ok := cmd.(domain.JoinRoomCommand)
	req.True(ok)
	req.Equal("R1", join.RoomID)
	req.NotEmpty(join.Conn)
}

func TestHub_SendToReachesOneConnection(t *testing.T) {
	req := require.New(t)
	hub, _, submitter, server := newTestHub(t)
	conn := dial(t, server)

	// Learn the connection ID from any inbound command
	err := conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"join-room","data":{"roomId":"R1","userId":"u1"}}`))
	req.NoError(err)
	connectionID := awaitCommand(t, submitter).ConnectionID()

	// When the relay sends an event to that connection
	req.NoError(hub.SendTo(connectionID, event.Error{Message: "nope"}))

	// Then the client reads it as a frame
	req.NoError(conn.SetReadDeadline(time.Now().Add(time.Second)))
	var frame receivedFrame
	req.NoError(conn.ReadJSON(&frame))
	req.Equal("error", frame.Event)
}

func TestHub_SendToUnknownConnectionFails(t *testing.T) {
	req := require.New(t)
	hub, _, _, _ := newTestHub(t)

	err := hub.SendTo("missing", event.Error{Message: "x"})

	req.Error(err)
}

func TestHub_BroadcastSkipsExcludedConnection(t *testing.T) {
	req := require.New(t)
	hub, registry, submitter, server := newTestHub(t)

	first := dial(t, server)
	second := dial(t, server)

	req.NoError(first.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"join-room","data":{"roomId":"R1","userId":"u1"}}`)))
	firstID := awaitCommand(t, submitter).ConnectionID()
	req.NoError(second.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"join-room","data":{"roomId":"R1","userId":"u2"}}`)))
	secondID := awaitCommand(t, submitter).ConnectionID()

	// Membership is the registry's business; wire it directly
	registry.Join("R1", domain.Participant{ConnectionID: firstID, UserID: "u1"})
	registry.Join("R1", domain.Participant{ConnectionID: secondID, UserID: "u2"})

	// When broadcasting with the first connection excluded
	hub.BroadcastToRoom("R1", event.QuestionChanged{RoomID: "R1", QuestionIndex: 1}, firstID)

	// Then the second client receives the frame
	req.NoError(second.SetReadDeadline(time.Now().Add(time.Second)))
	var frame receivedFrame
	req.NoError(second.ReadJSON(&frame))
	req.Equal("question-changed", frame.Event)

	// And the first one does not
	req.NoError(first.SetReadDeadline(time.Now().Add(200 * time.Millisecond)))
	req.Error(first.ReadJSON(&frame))
}

func TestHub_UndecodableFrameAnswersWithErrorEvent(t *testing.T) {
	req := require.New(t)
	_, _, _, server := newTestHub(t)
	conn := dial(t, server)

	// When the client sends an unknown event
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"self-destruct"}`)))

	// Then it gets an error frame back and the pipeline sees nothing
	req.NoError(conn.SetReadDeadline(time.Now().Add(time.Second)))
	var frame receivedFrame
	req.NoError(conn.ReadJSON(&frame))
	req.Equal("error", frame.Event)
}

func TestHub_SynthesizesDisconnectOnClose(t *testing.T) {
	req := require.New(t)
	_, _, submitter, server := newTestHub(t)
	conn := dial(t, server)

	req.NoError(conn.Close())

	cmd := awaitCommand(t, submitter)
	_, ok := cmd.(domain.DisconnectCommand)
	req.True(ok)

	// And exactly once
	select {
	case extra := <-submitter.commands:
		req.Failf("unexpected command", "got %T", extra)
	case <-time.After(200 * time.Millisecond):
	}
}
