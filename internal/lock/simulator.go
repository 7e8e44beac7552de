package lock

import (
	"context"
	"sync/atomic"

	"github.com/peagah10/fechadura/internal/logger"
)

// Simulator stands in for the vendor API: every unlock succeeds with no
// network effect. Selected by configuration at startup, never mid-flight.
type Simulator struct {
	calls atomic.Int64
}

func NewSimulator() *Simulator {
	return &Simulator{}
}

func (s *Simulator) Unlock(_ context.Context, lockID string) error {
	s.calls.Add(1)
	logger.Info("simulated unlock", map[string]any{"lock_id": lockID})
	return nil
}

// Calls reports how many unlock commands the simulator has received.
func (s *Simulator) Calls() int64 {
	return s.calls.Load()
}
