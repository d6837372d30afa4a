package expiry

import (
	"context"
	"errors"
	"sync"
	"time"

	"turfbook/pkg/logger"
)

// JobProcessor runs the sweeper on a ticker.
type JobProcessor struct {
	sweeper Sweeper
	config  *JobConfig
	now     func() time.Time
	done    chan struct{}
	once    sync.Once

	mu      sync.Mutex
	started bool
	lastRun time.Time
	lastErr error
}

// JobConfig contains configuration for the background sweep
type JobConfig struct {
	Interval time.Duration
	// RunOnStart sweeps once immediately instead of waiting for the first tick.
	RunOnStart bool
}

// DefaultJobConfig returns default job configuration
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		Interval:   5 * time.Minute,
		RunOnStart: true,
	}
}

// NewJobProcessor creates a new job processor
func NewJobProcessor(sweeper Sweeper, config *JobConfig) *JobProcessor {
	if config == nil {
		config = DefaultJobConfig()
	}
	if config.Interval <= 0 {
		config.Interval = DefaultJobConfig().Interval
	}

	return &JobProcessor{
		sweeper: sweeper,
		config:  config,
		now:     time.Now,
		done:    make(chan struct{}),
	}
}

// Start starts the sweep loop in the background
func (jp *JobProcessor) Start(ctx context.Context) {
	logger.GetDefault().InfoWithContext(ctx, "Starting expiry sweeper", map[string]interface{}{
		"interval": jp.config.Interval.String(),
	})
	jp.mu.Lock()
	jp.started = true
	jp.mu.Unlock()
	go jp.run(ctx)
}

// Stop stops the sweep loop. It is safe to call more than once.
func (jp *JobProcessor) Stop() {
	jp.once.Do(func() {
		close(jp.done)
		logger.GetDefault().Info("Expiry sweeper stopped")
	})
}

func (jp *JobProcessor) run(ctx context.Context) {
	ticker := time.NewTicker(jp.config.Interval)
	defer ticker.Stop()

	if jp.config.RunOnStart {
		jp.RunOnce(ctx)
	}

	for {
		select {
		case <-ticker.C:
			jp.RunOnce(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce performs one sweep and records its outcome.
func (jp *JobProcessor) RunOnce(ctx context.Context) []int64 {
	cancelled, err := jp.sweeper.Sweep(ctx, jp.now())

	jp.mu.Lock()
	jp.lastRun = jp.now()
	jp.lastErr = err
	jp.mu.Unlock()

	switch {
	case errors.Is(err, ErrSweepInProgress):
		logger.GetDefault().DebugWithContext(ctx, "Expiry sweep skipped, another instance holds the lock", nil)
	case err != nil:
		logger.GetDefault().ErrorWithContext(ctx, "Expiry sweep failed", err, nil)
	}
	return cancelled
}

// GetJobStatus returns the status of the background sweep
func (jp *JobProcessor) GetJobStatus() map[string]interface{} {
	jp.mu.Lock()
	defer jp.mu.Unlock()

	status := map[string]interface{}{
		"interval": jp.config.Interval.String(),
		"status":   "idle",
	}
	if jp.started {
		status["status"] = "running"
	}
	select {
	case <-jp.done:
		status["status"] = "stopped"
	default:
	}
	if !jp.lastRun.IsZero() {
		status["last_run"] = jp.lastRun
	}
	if jp.lastErr != nil {
		status["last_error"] = jp.lastErr.Error()
	}
	return status
}
