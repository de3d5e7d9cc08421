package usecase

import (
	"context"
	"errors"
	"time"

	crondomain "github.com/blockhaven/backend/src/cron/domain"
	"github.com/blockhaven/backend/src/exchange/usecase"
	"github.com/blockhaven/backend/src/logger"
	"github.com/google/uuid"
)

const (
	jobCatalogSync   = "catalog-sync"
	jobStatusRefresh = "status-refresh"

	// Floor for lock takeover. Short-interval jobs (the 2m status refresh)
	// can legitimately run longer than one tick; a lock younger than this is
	// never treated as abandoned.
	minLockMaxAge = 10 * time.Minute
)

// Scheduler runs the periodic background jobs: the catalog sync and the
// pending-status refresh. A DB-backed lock keeps each job single-flight
// across replicas; within a process the exchange service already collapses
// concurrent syncs.
type Scheduler struct {
	exchange *usecase.Service
	locks    crondomain.JobLockRepository
	logger   *logger.Logger
	owner    uuid.UUID

	syncInterval    time.Duration
	refreshInterval time.Duration
}

func NewScheduler(
	exchange *usecase.Service,
	locks crondomain.JobLockRepository,
	logg *logger.Logger,
	syncInterval, refreshInterval time.Duration,
) *Scheduler {
	return &Scheduler{
		exchange:        exchange,
		locks:           locks,
		logger:          logg,
		owner:           uuid.New(),
		syncInterval:    syncInterval,
		refreshInterval: refreshInterval,
	}
}

// Start launches both job loops and returns immediately. The loops stop when
// ctx is cancelled. Intervals of zero disable the corresponding job.
func (s *Scheduler) Start(ctx context.Context) {
	if s.syncInterval > 0 {
		go s.loop(ctx, jobCatalogSync, s.syncInterval, s.runCatalogSync)
	}
	if s.refreshInterval > 0 {
		go s.loop(ctx, jobStatusRefresh, s.refreshInterval, s.runStatusRefresh)
	}
}

func (s *Scheduler) loop(ctx context.Context, name string, interval time.Duration, run func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runLocked(ctx, name, lockMaxAge(interval), run)
		}
	}
}

// lockMaxAge bounds how long a job lock may survive its owner. A healthy run
// finishes well within one interval, so a lock older than that belongs to a
// runner that died before releasing it.
func lockMaxAge(interval time.Duration) time.Duration {
	if interval < minLockMaxAge {
		return minLockMaxAge
	}
	return interval
}

func (s *Scheduler) runLocked(ctx context.Context, name string, maxAge time.Duration, run func(context.Context) error) {
	lock := crondomain.JobLock{Name: name, Owner: s.owner}
	if err := s.locks.Acquire(ctx, lock, maxAge); err != nil {
		if errors.Is(err, crondomain.ErrLockHeld) {
			s.logger.Debugf("job %s already running elsewhere, skipping", name)
			return
		}
		s.logger.Errorf("job %s lock acquire failed: %v", name, err)
		return
	}
	defer func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), lock); err != nil {
			s.logger.Errorf("job %s lock release failed: %v", name, err)
		}
	}()

	if err := run(ctx); err != nil {
		s.logger.Errorf("job %s failed: %v", name, err)
	}
}

func (s *Scheduler) runCatalogSync(ctx context.Context) error {
	currencies, pairs, err := s.exchange.SyncAll(ctx)
	if err != nil {
		return err
	}
	if currencies != nil {
		s.logger.Infof("scheduled currency sync: inserted=%d updated=%d", currencies.Inserted, currencies.Updated)
	}
	s.logger.Infof("scheduled pair sync: inserted=%d updated=%d", pairs.Inserted, pairs.Updated)
	return nil
}

func (s *Scheduler) runStatusRefresh(ctx context.Context) error {
	n, err := s.exchange.RefreshPendingStatuses(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Infof("refreshed %d pending exchange statuses", n)
	}
	return nil
}
