// Package scheduler runs periodic housekeeping inside the server process.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/iliyamo/cidade-aberta/internal/logger"
	"github.com/iliyamo/cidade-aberta/internal/repository"
)

// jobTimeout bounds a single run of any job.
const jobTimeout = 30 * time.Second

// JobFunc is one unit of scheduled work.
type JobFunc func(ctx context.Context) error

// Scheduler wraps a cron runner whose jobs log their own failures.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
}

func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:  log.WithComponent("scheduler"),
	}
}

// Add registers fn under a standard cron spec or a descriptor such as
// "@every 1h".
func (s *Scheduler) Add(spec, name string, fn JobFunc) error {
	_, err := s.cron.AddFunc(spec, func() { s.run(name, fn) })
	return err
}

func (s *Scheduler) run(name string, fn JobFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	log := s.log.WithField("job", name)
	if err := fn(ctx); err != nil {
		log.WithError(err).Error("job failed")
		return
	}
	log.WithField("took", time.Since(start).String()).Debug("job done")
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop prevents new runs and waits for running jobs up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// InviteCleanup returns a job that drops expired staff invite tokens.
func InviteCleanup(repo *repository.GestorRepo, now func() time.Time, log *logger.Logger) JobFunc {
	return func(ctx context.Context) error {
		n, err := repo.ClearExpiredInvites(ctx, now().UTC())
		if err != nil {
			return err
		}
		if n > 0 {
			log.WithField("convites", n).Info("expired invites cleared")
		}
		return nil
	}
}
