package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestImportHeightsReportsProgress(t *testing.T) {
	p := New(4)

	var processed atomic.Int64
	progress, done := p.ImportHeights(context.Background(), []uint64{1, 2, 3, 4, 5}, func(ctx context.Context, h uint64) error {
		processed.Add(1)
		return nil
	})

	seen := map[uint64]bool{}
	for pr := range progress {
		if pr.Err != nil {
			t.Fatalf("unexpected error for height %d: %v", pr.Height, pr.Err)
		}
		seen[pr.Height] = true
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected pool error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for pool completion")
	}

	if processed.Load() != 5 {
		t.Fatalf("expected 5 jobs processed, got %d", processed.Load())
	}
	if len(seen) != 5 {
		t.Fatalf("expected progress for 5 heights, got %d", len(seen))
	}
}

func TestImportHeightsStopsOnFirstError(t *testing.T) {
	p := New(1)

	boom := errors.New("boom")
	progress, done := p.ImportHeights(context.Background(), []uint64{1, 2, 3}, func(ctx context.Context, h uint64) error {
		if h == 1 {
			return boom
		}
		return nil
	})

	for range progress {
	}

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected pool to report the job error")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for pool completion")
	}
}

func TestImportHeightsRecoversPanic(t *testing.T) {
	p := New(1)

	progress, done := p.ImportHeights(context.Background(), []uint64{1}, func(ctx context.Context, h uint64) error {
		panic("kaboom")
	})

	pr := <-progress
	if pr.Err == nil {
		t.Fatal("expected panic to surface as an error on the progress channel")
	}

	if err := <-done; err == nil {
		t.Fatal("expected pool to report the recovered panic as an error")
	}
}
