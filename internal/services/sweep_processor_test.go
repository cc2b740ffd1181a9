package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSweeper struct {
	startupCalls int64
	sweepCalls   int64
}

func (f *fakeSweeper) StartupSyncCheck(context.Context) error {
	atomic.AddInt64(&f.startupCalls, 1)
	return nil
}

func (f *fakeSweeper) ProcessPendingCompletions(context.Context) error {
	atomic.AddInt64(&f.sweepCalls, 1)
	return nil
}

func TestDefaultSweepConfig(t *testing.T) {
	config := DefaultSweepConfig()
	if config.PollInterval != 10*time.Second {
		t.Errorf("expected PollInterval 10s, got %v", config.PollInterval)
	}
}

func TestSweepProcessor_IsRunning(t *testing.T) {
	processor := NewSweepProcessor(&fakeSweeper{}, DefaultSweepConfig())
	if processor.IsRunning() {
		t.Error("processor should not be running initially")
	}
}

func TestSweepProcessor_StartTwice(t *testing.T) {
	config := DefaultSweepConfig()
	config.PollInterval = 100 * time.Millisecond
	processor := NewSweepProcessor(&fakeSweeper{}, config)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := processor.Start(ctx); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	defer processor.Stop(context.Background())

	if err := processor.Start(ctx); err == nil {
		t.Error("expected error when starting already running processor")
	}
}

func TestSweepProcessor_StopNotRunning(t *testing.T) {
	processor := NewSweepProcessor(&fakeSweeper{}, DefaultSweepConfig())
	if err := processor.Stop(context.Background()); err != nil {
		t.Errorf("Stop() on idle processor error = %v", err)
	}
}

func TestSweepProcessor_RunsSweeps(t *testing.T) {
	sweeper := &fakeSweeper{}
	config := SweepConfig{PollInterval: 10 * time.Millisecond}
	processor := NewSweepProcessor(sweeper, config)

	ctx := context.Background()
	if err := processor.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	if err := processor.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if got := atomic.LoadInt64(&sweeper.startupCalls); got != 1 {
		t.Errorf("startup checks = %d, want 1", got)
	}
	if got := atomic.LoadInt64(&sweeper.sweepCalls); got == 0 {
		t.Error("expected at least one sweep cycle")
	}
	if processor.IsRunning() {
		t.Error("processor should not report running after Stop")
	}
}
