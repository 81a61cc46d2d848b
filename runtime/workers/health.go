package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"quiz-relay/contract"
	"quiz-relay/internal"
)

var _ contract.Worker = (*SelfStatsWorker)(nil)

// SelfStatsWorker samples the relay's own CPU, RSS and status on a ticker and
// publishes them to the health state.
type SelfStatsWorker struct {
	log      *slog.Logger
	state    *internal.HealthState
	interval time.Duration
}

func NewSelfStatsWorker(log *slog.Logger, state *internal.HealthState, interval time.Duration) *SelfStatsWorker {
	return &SelfStatsWorker{log: log, state: state, interval: interval}
}

func (w *SelfStatsWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping self-stats worker")
			return nil
		case <-ticker.C:
			stats, err := sampleProcess(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.state.SetProcess(stats)
		}
	}
}

func sampleProcess(p *process.Process) (internal.ProcessStats, error) {
	cpu, err := p.CPUPercent()
	if err != nil {
		return internal.ProcessStats{}, err
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return internal.ProcessStats{}, err
	}
	status, err := p.Status()
	if err != nil {
		return internal.ProcessStats{}, err
	}
	return internal.ProcessStats{CPUPercent: cpu, RSSBytes: mem.RSS, Status: status}, nil
}
