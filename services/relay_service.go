package services

import (
	"hash/fnv"
	"log/slog"
	"time"

	"quiz-relay/contract"
	"quiz-relay/domain"
)

// disconnectWait bounds how long cleanup may block on a stalled shard before
// the loss is logged instead of pinning the caller's goroutine.
const disconnectWait = 5 * time.Second

var _ contract.Submitter = (*RelayService)(nil)

// RelayService is the thin facade the transport layer talks to: commands go
// into the processing shards, read-only snapshots come straight from the
// stores.
//
// Every command of one connection is routed onto the same shard, each drained
// by a single worker, so a connection's events are handled one at a time in
// arrival order; only events from different connections interleave.
type RelayService struct {
	log            *slog.Logger
	shards         []chan domain.Command
	registry       contract.IRegistry
	sessions       contract.ISessionStore
	disconnectWait time.Duration
}

func NewRelayService(
	log *slog.Logger,
	shards []chan domain.Command,
	registry contract.IRegistry,
	sessions contract.ISessionStore,
) *RelayService {
	return &RelayService{
		log:            log,
		shards:         shards,
		registry:       registry,
		sessions:       sessions,
		disconnectWait: disconnectWait,
	}
}

// Submit hands the command to its connection's shard without blocking; when
// the shard is saturated the command is dropped with a warning rather than
// stalling the caller's read loop.
func (s *RelayService) Submit(cmd domain.Command) {
	shard := s.shards[shardIndex(cmd.ConnectionID(), len(s.shards))]
	if _, ok := cmd.(domain.DisconnectCommand); ok {
		// Registry cleanup must not be lost to transient backpressure,
		// but a stalled shard must not wedge the connection teardown
		// either.
		select {
		case shard <- cmd:
		case <-time.After(s.disconnectWait):
			s.log.Error("Shard stalled, dropping disconnect cleanup",
				"connection", cmd.ConnectionID())
		}
		return
	}
	select {
	case shard <- cmd:
	default:
		s.log.Warn("Shard full, dropping command",
			"action", cmd.Action(), "connection", cmd.ConnectionID())
	}
}

func (s *RelayService) Participants(roomID domain.RoomID) []domain.Participant {
	return s.registry.Participants(roomID)
}

func (s *RelayService) Session(roomID domain.RoomID) (domain.QuizSession, bool) {
	return s.sessions.Get(roomID)
}

func shardIndex(connectionID string, shards int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(connectionID))
	return int(h.Sum32() % uint32(shards))
}
