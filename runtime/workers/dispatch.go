package workers

import (
	"context"
	"log/slog"

	"quiz-relay/contract"
	"quiz-relay/domain"
)

// Ensure *DispatchWorker implements the contract.Worker interface at compile
// time. This prevents "type mismatch" errors from appearing late in other
// packages and acts as a static assertion of our architectural rules.
var _ contract.Worker = (*DispatchWorker)(nil)

// DispatchWorker drains one command shard into the dispatcher. Exactly one
// worker owns a shard, and the submitter keys shards by connection, which is
// what keeps a single connection's events ordered even with several workers
// running side by side.
type DispatchWorker struct {
	commands   chan domain.Command
	dispatcher contract.IDispatcher
	log        *slog.Logger
}

func NewDispatchWorker(
	commands chan domain.Command,
	dispatcher contract.IDispatcher,
	log *slog.Logger,
) *DispatchWorker {
	return &DispatchWorker{
		commands:   commands,
		dispatcher: dispatcher,
		log:        log,
	}
}

func (w *DispatchWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping dispatch worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Command channel closed")
				return nil
			}
			w.dispatcher.Handle(cmd)
		}
	}
}
