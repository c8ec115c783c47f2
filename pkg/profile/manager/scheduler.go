package manager

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// RescanScheduler periodically re-runs a full profile load on a cron
// schedule, catching changes the file watcher missed (network mounts,
// replaced directories, store edits from another instance).
type RescanScheduler struct {
	cron     *cron.Cron
	schedule string
	logger   *slog.Logger
	entryID  cron.EntryID
}

// NewRescanScheduler creates a scheduler that invokes rescan on the
// given standard cron schedule (five fields).
func NewRescanScheduler(schedule string, logger *slog.Logger, rescan func(context.Context) error) (*RescanScheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "profile.rescan")

	s := &RescanScheduler{
		cron:     cron.New(),
		schedule: schedule,
		logger:   logger,
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		s.logger.Debug("scheduled profile rescan starting")
		if err := rescan(context.Background()); err != nil {
			s.logger.Error("scheduled profile rescan failed", "error", err)
			return
		}
		s.logger.Debug("scheduled profile rescan completed")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid rescan schedule %q: %w", schedule, err)
	}
	s.entryID = entryID

	return s, nil
}

// Start begins running the schedule in its own goroutine.
func (s *RescanScheduler) Start() {
	s.cron.Start()
	s.logger.Info("profile rescan scheduler started", "schedule", s.schedule)
}

// Stop stops the scheduler and waits for a running rescan to finish.
func (s *RescanScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("profile rescan scheduler stopped")
}
