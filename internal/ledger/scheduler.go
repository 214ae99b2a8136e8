package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkotenko/cashtrack/pkg/logger"
)

// CascadeRunner executes one forward recalculation. Implemented by Service.
type CascadeRunner interface {
	Cascade(ctx context.Context, walletID uuid.UUID, start Month) error
}

// SchedulerConfig holds cascade scheduler tuning knobs.
type SchedulerConfig struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	RetryDelay  time.Duration
}

// DefaultSchedulerConfig returns the default scheduler configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Workers:     2,
		QueueSize:   256,
		MaxAttempts: 3,
		RetryDelay:  500 * time.Millisecond,
	}
}

type cascadeJob struct {
	walletID uuid.UUID
	start    Month
}

// Scheduler is the asynchronous cascade queue. Jobs are keyed by
// (wallet, startMonth): scheduling a key already waiting in the queue is a
// no-op, so overlapping cascade requests coalesce instead of running
// redundantly. Handlers retry a bounded number of times; cascades are
// idempotent so re-delivery is safe. Exhausted jobs are logged, never
// silently dropped.
type Scheduler struct {
	cfg    SchedulerConfig
	runner CascadeRunner
	log    *logger.Logger

	jobs    chan cascadeJob
	mu      sync.Mutex
	pending map[cascadeJob]struct{}
	wg      sync.WaitGroup
	stopCh  chan struct{}
	running bool
}

// NewScheduler creates a new cascade scheduler
func NewScheduler(cfg SchedulerConfig, runner CascadeRunner, log *logger.Logger) *Scheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultSchedulerConfig().Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultSchedulerConfig().QueueSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultSchedulerConfig().MaxAttempts
	}

	return &Scheduler{
		cfg:     cfg,
		runner:  runner,
		log:     log.WithField("component", "cascade-scheduler"),
		jobs:    make(chan cascadeJob, cfg.QueueSize),
		pending: make(map[cascadeJob]struct{}),
		stopCh:  make(chan struct{}),
	}
}

// Schedule enqueues a cascade for (wallet, startMonth). Duplicate keys
// already waiting are coalesced. The call never blocks the mutation path;
// when the queue is full the job is dropped with an error log and will be
// picked up by the next mutation or a manual recalculate.
func (s *Scheduler) Schedule(walletID uuid.UUID, start Month) {
	job := cascadeJob{walletID: walletID, start: start}

	s.mu.Lock()
	if _, dup := s.pending[job]; dup {
		s.mu.Unlock()
		return
	}
	s.pending[job] = struct{}{}
	s.mu.Unlock()

	select {
	case s.jobs <- job:
	default:
		s.mu.Lock()
		delete(s.pending, job)
		s.mu.Unlock()
		s.log.Error("cascade queue full, job dropped",
			"wallet_id", walletID,
			"start_month", start.String())
	}
}

// Run starts the worker pool and blocks until the context is cancelled or
// Stop is called.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.log.Info("starting cascade scheduler",
		"workers", s.cfg.Workers,
		"queue_size", s.cfg.QueueSize)

	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}

	select {
	case <-ctx.Done():
	case <-s.stopCh:
	}
	s.wg.Wait()
}

// Stop stops the scheduler and waits for in-flight cascades to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
}

func (s *Scheduler) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case job := <-s.jobs:
			// Release the key before running so a mutation landing during
			// the cascade re-enqueues instead of being swallowed.
			s.mu.Lock()
			delete(s.pending, job)
			s.mu.Unlock()

			s.runJob(ctx, job)
		}
	}
}

func (s *Scheduler) runJob(ctx context.Context, job cascadeJob) {
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		err := s.runner.Cascade(ctx, job.walletID, job.start)
		if err == nil {
			return
		}

		s.log.Warn("cascade attempt failed",
			"wallet_id", job.walletID,
			"start_month", job.start.String(),
			"attempt", attempt,
			"error", err)

		if attempt == s.cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-time.After(s.cfg.RetryDelay * time.Duration(attempt)):
		}
	}

	// Downstream months stay stale until the next cascade for this wallet.
	s.log.Error("cascade failed after retries",
		"wallet_id", job.walletID,
		"start_month", job.start.String(),
		"attempts", s.cfg.MaxAttempts)
}
