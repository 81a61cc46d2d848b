package services

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"quiz-relay/domain"
	"quiz-relay/runtime"
)

func newService(shardCount, buffer int) (*RelayService, []chan domain.Command) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	shards := make([]chan domain.Command, shardCount)
	for i := range shards {
		shards[i] = make(chan domain.Command, buffer)
	}
	return NewRelayService(log, shards, runtime.NewRegistry(), runtime.NewSessionStore()), shards
}

func TestRelayService_SubmitEnqueuesCommand(t *testing.T) {
	req := require.New(t)
	service, shards := newService(1, 1)

	service.Submit(domain.JoinRoomCommand{Conn: "c1", RoomID: "R1", UserID: "u1"})

	req.Len(shards[0], 1)
}

func TestRelayService_SameConnectionStaysOnOneShard(t *testing.T) {
	req := require.New(t)
	service, shards := newService(4, 16)

	// When one connection races a join against its own disconnect
	for i := 0; i < 8; i++ {
		conn := fmt.Sprintf("conn-%d", i)
		service.Submit(domain.JoinRoomCommand{Conn: conn, RoomID: "R1", UserID: "u1"})
		service.Submit(domain.DisconnectCommand{Conn: conn})
	}

	// Then every connection lands on exactly one shard, join before
	// disconnect, so one worker handles its commands in arrival order
	shardOf := map[string]int{}
	actions := map[string][]string{}
	for i, shard := range shards {
		for len(shard) > 0 {
			cmd := <-shard
			if seen, ok := shardOf[cmd.ConnectionID()]; ok {
				req.Equal(seen, i)
			}
			shardOf[cmd.ConnectionID()] = i
			actions[cmd.ConnectionID()] = append(actions[cmd.ConnectionID()], cmd.Action())
		}
	}
	req.Len(actions, 8)
	for _, seq := range actions {
		req.Equal([]string{"join-room", "disconnect"}, seq)
	}
}

func TestRelayService_SubmitDropsWhenSaturated(t *testing.T) {
	req := require.New(t)
	service, shards := newService(1, 1)
	service.Submit(domain.JoinRoomCommand{Conn: "c1", RoomID: "R1", UserID: "u1"})

	// When the shard is already full
	service.Submit(domain.StartQuizCommand{Conn: "c1", RoomID: "R1"})

	// Then the second command is dropped, not blocked on
	req.Len(shards[0], 1)
	cmd := <-shards[0]
	req.IsType(domain.JoinRoomCommand{}, cmd)
}

func TestRelayService_DisconnectSurvivesTransientBackpressure(t *testing.T) {
	req := require.New(t)
	service, shards := newService(1, 1)
	service.Submit(domain.JoinRoomCommand{Conn: "c1", RoomID: "R1", UserID: "u1"})

	delivered := make(chan struct{})
	go func() {
		// Waits for room on the shard; cleanup must survive a full
		// buffer that is still being drained.
		service.Submit(domain.DisconnectCommand{Conn: "c1"})
		close(delivered)
	}()

	<-shards[0]
	<-delivered
	cmd := <-shards[0]
	req.IsType(domain.DisconnectCommand{}, cmd)
}

func TestRelayService_DisconnectGivesUpOnStalledShard(t *testing.T) {
	req := require.New(t)
	service, shards := newService(1, 1)
	service.disconnectWait = 10 * time.Millisecond
	service.Submit(domain.JoinRoomCommand{Conn: "c1", RoomID: "R1", UserID: "u1"})

	// When nothing drains the shard at all
	done := make(chan struct{})
	go func() {
		service.Submit(domain.DisconnectCommand{Conn: "c1"})
		close(done)
	}()

	// Then the submit gives up instead of wedging the caller forever
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("disconnect submit never returned")
	}
	req.Len(shards[0], 1)
}

func TestRelayService_SnapshotsComeFromTheStores(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := runtime.NewRegistry()
	sessions := runtime.NewSessionStore()
	shards := []chan domain.Command{make(chan domain.Command, 1)}
	service := NewRelayService(log, shards, registry, sessions)

	registry.Join("R1", domain.Participant{ConnectionID: "c1", UserID: "u1"})
	sessions.Start("R1", map[string]any{"title": "T"})

	req.Len(service.Participants("R1"), 1)
	session, ok := service.Session("R1")
	req.True(ok)
	req.Equal("T", session.Quiz["title"])
}
