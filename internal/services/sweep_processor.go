package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SweepConfig holds configuration for the pending-sync sweep.
type SweepConfig struct {
	// PollInterval is how often to check for pending rows (default: 10s).
	PollInterval time.Duration
}

// DefaultSweepConfig returns sensible defaults.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		PollInterval: 10 * time.Second,
	}
}

// Sweeper is what the processor drives each cycle. *worker.SyncWorker
// satisfies it.
type Sweeper interface {
	StartupSyncCheck(ctx context.Context) error
	ProcessPendingCompletions(ctx context.Context) error
}

// SweepProcessor periodically mirrors completion rows the queue missed.
type SweepProcessor struct {
	sweeper Sweeper
	config  SweepConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSweepProcessor(sweeper Sweeper, config SweepConfig) *SweepProcessor {
	return &SweepProcessor{
		sweeper: sweeper,
		config:  config,
	}
}

// Start begins the sweep loop. Returns an error if already running.
func (p *SweepProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sweep processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	if err := p.sweeper.StartupSyncCheck(ctx); err != nil {
		slog.WarnContext(ctx, "Startup sync check failed", "error", err)
	}

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sweep processor started",
		"poll_interval", p.config.PollInterval)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SweepProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Sweep processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sweep processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning reports whether the loop is active.
func (p *SweepProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SweepProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.sweeper.ProcessPendingCompletions(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending sweep failed", "error", err)
			}
		}
	}
}
