package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hivecrm/flowline/pkg/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeLocker struct {
	grant    bool
	err      error
	acquired []string
	released []string
}

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.acquired = append(l.acquired, key)

	return l.grant, l.err
}

func (l *fakeLocker) Release(_ context.Context, key string) error {
	l.released = append(l.released, key)

	return nil
}

func TestSweepReconcilesStaleExecutions(t *testing.T) {
	t.Parallel()

	executions := &mocks.MockExecutionRepository{}
	executions.On("MarkStaleFailed", mock.Anything, mock.AnythingOfType("time.Time"), StaleReason).
		Return(int64(3), nil)

	s := NewSweeper(executions, nil, slog.Default(), time.Hour)

	reconciled, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), reconciled)

	// Cutoff is staleAfter in the past.
	cutoff, ok := executions.Calls[0].Arguments.Get(1).(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().UTC().Add(-time.Hour), cutoff, 5*time.Second)
}

func TestSweepSkipsWithoutLock(t *testing.T) {
	t.Parallel()

	executions := &mocks.MockExecutionRepository{}
	locker := &fakeLocker{grant: false}

	s := NewSweeper(executions, locker, slog.Default(), time.Hour)

	reconciled, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, reconciled)

	executions.AssertNotCalled(t, "MarkStaleFailed", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, locker.released)
}

func TestSweepReleasesLockAfterSweep(t *testing.T) {
	t.Parallel()

	executions := &mocks.MockExecutionRepository{}
	executions.On("MarkStaleFailed", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

	locker := &fakeLocker{grant: true}

	s := NewSweeper(executions, locker, slog.Default(), time.Hour)

	_, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{lockKey}, locker.acquired)
	assert.Equal(t, []string{lockKey}, locker.released)
}

func TestSweepPropagatesStoreError(t *testing.T) {
	t.Parallel()

	executions := &mocks.MockExecutionRepository{}
	executions.On("MarkStaleFailed", mock.Anything, mock.Anything, mock.Anything).
		Return(int64(0), errors.New("connection refused"))

	s := NewSweeper(executions, nil, slog.Default(), 0)

	_, err := s.Sweep(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestStartRejectsBadSchedule(t *testing.T) {
	t.Parallel()

	s := NewSweeper(&mocks.MockExecutionRepository{}, nil, slog.Default(), time.Hour)

	err := s.Start(context.Background(), "not a cron expression")
	assert.Error(t, err)
}
