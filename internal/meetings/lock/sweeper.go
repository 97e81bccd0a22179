package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"roomly/pkg/logger"
)

type expiredLockDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper periodically deletes Mongo slot locks whose TTL has passed, which
// covers processes that crashed while holding a lock.
type Sweeper struct {
	cron    *cron.Cron
	repo    expiredLockDeleter
	timeout time.Duration
	log     *logger.Logger
}

func NewSweeper(repo expiredLockDeleter, schedule string, timeout time.Duration, log *logger.Logger) (*Sweeper, error) {
	s := &Sweeper{
		cron:    cron.New(),
		repo:    repo,
		timeout: timeout,
		log:     log,
	}

	if _, err := s.cron.AddFunc(schedule, s.Sweep); err != nil {
		return nil, fmt.Errorf("invalid lock sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Sweeper) Start() {
	s.cron.Start()
	s.log.Info("Slot lock sweeper started")
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Slot lock sweeper stopped")
}

func (s *Sweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	removed, err := s.repo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error("Failed to sweep expired slot locks", "error", err)
		return
	}
	if removed > 0 {
		s.log.Info("Swept expired slot locks", "count", removed)
	}
}
