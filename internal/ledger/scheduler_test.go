package ledger

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkotenko/cashtrack/pkg/logger"
)

// fakeRunner records cascade invocations and fails a configurable number of
// times per key before succeeding.
type fakeRunner struct {
	mu       sync.Mutex
	calls    []cascadeJob
	failures map[cascadeJob]int
	done     chan struct{}
}

func newFakeRunner(buffer int) *fakeRunner {
	return &fakeRunner{
		failures: make(map[cascadeJob]int),
		done:     make(chan struct{}, buffer),
	}
}

func (r *fakeRunner) Cascade(_ context.Context, walletID uuid.UUID, start Month) error {
	job := cascadeJob{walletID: walletID, start: start}

	r.mu.Lock()
	r.calls = append(r.calls, job)
	remaining := r.failures[job]
	if remaining > 0 {
		r.failures[job] = remaining - 1
	}
	r.mu.Unlock()

	if remaining > 0 {
		return errors.New("transient failure")
	}
	r.done <- struct{}{}
	return nil
}

func (r *fakeRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func waitFor(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for cascade %d of %d", i+1, n)
		}
	}
}

func startScheduler(t *testing.T, cfg SchedulerConfig, runner CascadeRunner) *Scheduler {
	t.Helper()
	sched := NewScheduler(cfg, runner, logger.New("test", io.Discard))
	go sched.Run(context.Background())
	t.Cleanup(sched.Stop)
	return sched
}

func TestScheduler_RunsScheduledCascade(t *testing.T) {
	runner := newFakeRunner(1)
	sched := startScheduler(t, SchedulerConfig{Workers: 1, QueueSize: 8}, runner)

	walletID := uuid.New()
	month := NewMonth(2026, time.March)
	sched.Schedule(walletID, month)

	waitFor(t, runner.done, 1)
	assert.Equal(t, []cascadeJob{{walletID: walletID, start: month}}, runner.calls)
}

func TestScheduler_CoalescesDuplicateKeys(t *testing.T) {
	runner := newFakeRunner(4)
	sched := NewScheduler(SchedulerConfig{Workers: 1, QueueSize: 8}, runner, logger.New("test", io.Discard))

	walletID := uuid.New()
	month := NewMonth(2026, time.March)

	// Enqueue before any worker runs so the duplicates meet a waiting key
	sched.Schedule(walletID, month)
	sched.Schedule(walletID, month)
	sched.Schedule(walletID, month)
	sched.Schedule(walletID, month.Next())

	go sched.Run(context.Background())
	defer sched.Stop()

	waitFor(t, runner.done, 2)
	assert.Equal(t, 2, runner.callCount())
}

func TestScheduler_RetriesTransientFailures(t *testing.T) {
	runner := newFakeRunner(1)
	walletID := uuid.New()
	month := NewMonth(2026, time.March)
	runner.failures[cascadeJob{walletID: walletID, start: month}] = 2

	sched := startScheduler(t, SchedulerConfig{
		Workers:     1,
		QueueSize:   8,
		MaxAttempts: 3,
		RetryDelay:  time.Millisecond,
	}, runner)

	sched.Schedule(walletID, month)

	waitFor(t, runner.done, 1)
	assert.Equal(t, 3, runner.callCount())
}

func TestScheduler_GivesUpAfterMaxAttempts(t *testing.T) {
	runner := newFakeRunner(1)
	walletID := uuid.New()
	month := NewMonth(2026, time.March)
	other := uuid.New()
	runner.failures[cascadeJob{walletID: walletID, start: month}] = 100

	sched := startScheduler(t, SchedulerConfig{
		Workers:     1,
		QueueSize:   8,
		MaxAttempts: 2,
		RetryDelay:  time.Millisecond,
	}, runner)

	sched.Schedule(walletID, month)
	// A subsequent healthy job proves the worker survived the exhausted one
	sched.Schedule(other, month)

	waitFor(t, runner.done, 1)

	runner.mu.Lock()
	defer runner.mu.Unlock()
	failing := 0
	for _, job := range runner.calls {
		if job.walletID == walletID {
			failing++
		}
	}
	assert.Equal(t, 2, failing)
}

func TestScheduler_DropsWhenQueueFull(t *testing.T) {
	runner := newFakeRunner(8)
	// Not running: jobs accumulate in the channel
	sched := NewScheduler(SchedulerConfig{Workers: 1, QueueSize: 2}, runner, logger.New("test", io.Discard))

	walletID := uuid.New()
	base := NewMonth(2020, time.January)
	for i := 0; i < 5; i++ {
		m := base
		for j := 0; j < i; j++ {
			m = m.Next()
		}
		sched.Schedule(walletID, m)
	}

	// Only the first two fit; the overflow was dropped and its pending key
	// released, so re-scheduling a dropped key is not treated as a duplicate.
	assert.Len(t, sched.jobs, 2)

	dropped := cascadeJob{walletID: walletID, start: base.Next().Next()}
	sched.mu.Lock()
	_, pending := sched.pending[dropped]
	sched.mu.Unlock()
	assert.False(t, pending)
}

func TestScheduler_StopWaitsForWorkers(t *testing.T) {
	runner := newFakeRunner(1)
	sched := NewScheduler(SchedulerConfig{Workers: 2, QueueSize: 8}, runner, logger.New("test", io.Discard))

	runDone := make(chan struct{})
	go func() {
		sched.Run(context.Background())
		close(runDone)
	}()

	walletID := uuid.New()
	sched.Schedule(walletID, NewMonth(2026, time.March))
	waitFor(t, runner.done, 1)

	sched.Stop()
	select {
	case <-runDone:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}

	// Stop twice is safe
	sched.Stop()
	require.Equal(t, 1, runner.callCount())
}
