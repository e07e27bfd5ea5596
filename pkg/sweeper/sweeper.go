// Package sweeper reconciles execution records abandoned in running state.
// The engine finalizes records exactly once in the happy path; a process that
// dies mid-walk leaves its record running forever. The sweeper runs outside
// the engine, finds running records older than a cutoff, and finalizes them
// as failed.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hivecrm/flowline/pkg/persistence"
	"github.com/robfig/cron/v3"
)

// StaleReason is the error message written to reconciled execution records.
const StaleReason = "execution abandoned: engine did not finalize the record"

// DefaultStaleAfter is how long a record may stay running before the sweeper
// considers its engine dead. Generous compared to any real run.
const DefaultStaleAfter = 30 * time.Minute

// Locker serializes sweeps across replicas. Only the lock holder sweeps.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

const lockKey = "flowline:sweeper:lock"

// Sweeper periodically marks stale running executions as failed.
type Sweeper struct {
	executions persistence.ExecutionRepository
	locker     Locker
	logger     *slog.Logger
	staleAfter time.Duration
	cron       *cron.Cron
}

// NewSweeper creates a sweeper. A nil locker disables leader election, for
// single-instance deployments.
func NewSweeper(executions persistence.ExecutionRepository, locker Locker, logger *slog.Logger, staleAfter time.Duration) *Sweeper {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}

	return &Sweeper{
		executions: executions,
		locker:     locker,
		logger:     logger,
		staleAfter: staleAfter,
	}
}

// Sweep reconciles stale records once. Returns the number of records
// finalized; zero with no error when another replica holds the lock.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	if s.locker != nil {
		acquired, err := s.locker.Acquire(ctx, lockKey, s.staleAfter/2)
		if err != nil {
			return 0, fmt.Errorf("acquiring sweeper lock: %w", err)
		}

		if !acquired {
			s.logger.DebugContext(ctx, "Another sweeper replica holds the lock, skipping")

			return 0, nil
		}

		defer func() {
			if err := s.locker.Release(ctx, lockKey); err != nil {
				s.logger.WarnContext(ctx, "Failed to release sweeper lock", "error", err)
			}
		}()
	}

	cutoff := time.Now().UTC().Add(-s.staleAfter)

	reconciled, err := s.executions.MarkStaleFailed(ctx, cutoff, StaleReason)
	if err != nil {
		return 0, fmt.Errorf("marking stale executions: %w", err)
	}

	if reconciled > 0 {
		s.logger.InfoContext(ctx, "Reconciled stale executions", "count", reconciled, "cutoff", cutoff)
	}

	return reconciled, nil
}

// Start schedules sweeps on the given cron expression and blocks until the
// context is cancelled.
func (s *Sweeper) Start(ctx context.Context, schedule string) error {
	s.cron = cron.New()

	_, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.ErrorContext(ctx, "Sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	s.logger.InfoContext(ctx, "Sweeper started", "schedule", schedule, "stale_after", s.staleAfter)
	s.cron.Start()

	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	return nil
}
