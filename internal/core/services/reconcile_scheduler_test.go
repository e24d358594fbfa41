package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/payledger/internal/core/domain"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
	"github.com/SscSPs/payledger/internal/core/services"
)

func schedulerOpts(limit int) portssvc.RunOptions {
	return portssvc.RunOptions{Limit: limit, TriggerSource: services.TriggerScheduler}
}

func TestScheduler_TickRunsUnderLock(t *testing.T) {
	runner := new(MockReconciliationRunner)
	runner.On("Run", mock.Anything, schedulerOpts(50)).Return(&domain.ReconciliationRun{ID: "run-1"}, nil).Once()
	locker := newFakeLocker()

	s := services.NewReconcileScheduler(runner, locker, time.Minute, 50)
	assert.True(t, s.Tick(context.Background()))
	assert.Equal(t, 1, locker.released)
	runner.AssertExpectations(t)
}

func TestScheduler_TickSkipsWhenLockHeld(t *testing.T) {
	runner := new(MockReconciliationRunner)
	locker := newFakeLocker()
	release, ok, err := locker.TryLock(context.Background(), "payledger:reconciliation:scheduler", time.Minute)
	assert.NoError(t, err)
	assert.True(t, ok)

	s := services.NewReconcileScheduler(runner, locker, time.Minute, 50)
	assert.False(t, s.Tick(context.Background()))
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)

	assert.NoError(t, release(context.Background()))
}

func TestScheduler_TickSkipsWhenLockerFails(t *testing.T) {
	runner := new(MockReconciliationRunner)
	locker := newFakeLocker()
	locker.err = errors.New("redis: connection refused")

	s := services.NewReconcileScheduler(runner, locker, time.Minute, 50)
	assert.False(t, s.Tick(context.Background()))
	runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestScheduler_TickWithoutLocker(t *testing.T) {
	runner := new(MockReconciliationRunner)
	runner.On("Run", mock.Anything, schedulerOpts(0)).Return(nil, errors.New("boom")).Once()

	s := services.NewReconcileScheduler(runner, nil, time.Minute, 0)
	assert.True(t, s.Tick(context.Background()))
	runner.AssertExpectations(t)
}

func TestScheduler_StartStopsWithContext(t *testing.T) {
	runner := new(MockReconciliationRunner)
	runner.On("Run", mock.Anything, mock.Anything).Return(&domain.ReconciliationRun{}, nil).Maybe()

	s := services.NewReconcileScheduler(runner, nil, 10*time.Millisecond, 10)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
