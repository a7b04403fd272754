package members

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

type Scheduler interface {
	AddFunc(spec string, cmd func()) (cron.EntryID, error)
}

// StartSyncLoop schedules a full member sync on the cron spec.
func (s *Syncer) StartSyncLoop(ctx context.Context, sched Scheduler, spec string) error {
	s.log.Infow("Starting member sync loop", "schedule", spec)
	_, err := sched.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.SyncAll(ctx); err != nil {
			s.log.Errorw("Member sync failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("error while scheduling member sync %q: %w", spec, err)
	}
	return nil
}
