package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionStore_Start_InitializesAtQuestionZero(t *testing.T) {
	req := require.New(t)
	store := NewSessionStore()
	startedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return startedAt }

	// When a quiz starts
	session := store.Start("R1", map[string]any{"title": "T"})

	// Then the session holds the payload and relay-owned fields
	req.Equal(0, session.CurrentQuestion)
	req.Equal(startedAt, session.StartedAt)
	req.Equal("T", session.Quiz["title"])

	stored, ok := store.Get("R1")
	req.True(ok)
	req.Equal(session, stored)
}

func TestSessionStore_Start_OverwritesExistingSession(t *testing.T) {
	req := require.New(t)
	store := NewSessionStore()
	store.Start("R1", map[string]any{"title": "first"})
	store.AdvanceQuestion("R1", 4)

	// When the quiz is restarted
	store.Start("R1", map[string]any{"title": "second"})

	// Then the prior state is fully replaced
	session, ok := store.Get("R1")
	req.True(ok)
	req.Equal("second", session.Quiz["title"])
	req.Equal(0, session.CurrentQuestion)
}

func TestSessionStore_Start_CopiesThePayload(t *testing.T) {
	req := require.New(t)
	store := NewSessionStore()
	quiz := map[string]any{"title": "T"}

	store.Start("R1", quiz)

	// When the caller mutates its map afterwards
	quiz["title"] = "changed"

	// Then the stored session is unaffected
	session, _ := store.Get("R1")
	req.Equal("T", session.Quiz["title"])
}

func TestSessionStore_AdvanceQuestion_SetsIndex(t *testing.T) {
	req := require.New(t)
	store := NewSessionStore()
	store.Start("R1", nil)

	store.AdvanceQuestion("R1", 2)

	session, ok := store.Get("R1")
	req.True(ok)
	req.Equal(2, session.CurrentQuestion)
}

func TestSessionStore_AdvanceQuestion_WithoutSessionIsANoop(t *testing.T) {
	req := require.New(t)
	store := NewSessionStore()

	// When advancing a room that never started a quiz
	store.AdvanceQuestion("R1", 3)

	// Then no session is created
	_, ok := store.Get("R1")
	req.False(ok)
}

func TestSessionStore_End_DeletesSession(t *testing.T) {
	req := require.New(t)
	store := NewSessionStore()
	store.Start("R1", nil)

	store.End("R1")

	_, ok := store.Get("R1")
	req.False(ok)

	// And ending again stays a no-op
	store.End("R1")
}

func TestSessionStore_Snapshot_MergesPayloadAndState(t *testing.T) {
	req := require.New(t)
	store := NewSessionStore()
	session := store.Start("R1", map[string]any{"title": "T"})

	snapshot := session.Snapshot()

	req.Equal("T", snapshot["title"])
	req.Equal(0, snapshot["currentQuestion"])
	req.Equal(session.StartedAt, snapshot["startedAt"])
}
