package cli

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunConcurrentAllSucceed(t *testing.T) {
	var ran atomic.Int32
	tasks := make([]task, 4)
	for i := range tasks {
		tasks[i] = func(context.Context) error {
			ran.Add(1)
			return nil
		}
	}

	if err := runConcurrent(context.Background(), len(tasks), tasks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ran.Load() != 4 {
		t.Errorf("ran %d tasks, want 4", ran.Load())
	}
}

func TestRunConcurrentFirstErrorWins(t *testing.T) {
	errB := errors.New("entry b failed")
	errD := errors.New("entry d failed")

	tasks := []task{
		func(context.Context) error { return nil },
		func(context.Context) error { return errB },
		func(context.Context) error { return nil },
		func(context.Context) error { return errD },
	}

	err := runConcurrent(context.Background(), len(tasks), tasks)
	if !errors.Is(err, errB) {
		t.Fatalf("overall error = %v, want the failure of the earliest task", err)
	}
}

func TestRunConcurrentSiblingsFinish(t *testing.T) {
	var finished atomic.Int32
	fail := errors.New("boom")

	tasks := []task{
		func(context.Context) error {
			finished.Add(1)
			return fail
		},
		func(context.Context) error {
			time.Sleep(50 * time.Millisecond)
			finished.Add(1)
			return nil
		},
		func(context.Context) error {
			time.Sleep(50 * time.Millisecond)
			finished.Add(1)
			return nil
		},
	}

	err := runConcurrent(context.Background(), len(tasks), tasks)
	if !errors.Is(err, fail) {
		t.Fatalf("overall error = %v, want %v", err, fail)
	}
	if finished.Load() != 3 {
		t.Errorf("finished %d tasks, want all 3; a failure must not cancel siblings", finished.Load())
	}
}

func TestRunConcurrentEmpty(t *testing.T) {
	if err := runConcurrent(context.Background(), 4, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunConcurrentBoundedConcurrency(t *testing.T) {
	var active, peak atomic.Int32
	tasks := make([]task, 8)
	for i := range tasks {
		tasks[i] = func(context.Context) error {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			active.Add(-1)
			return nil
		}
	}

	if err := runConcurrent(context.Background(), 2, tasks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak.Load() > 2 {
		t.Errorf("observed %d concurrent tasks, want at most 2", peak.Load())
	}
}
