// Package workerpool runs the sync orchestrator's bulk block imports across
// a bounded set of goroutines, reusing pkg/workerpool's generic fan-out and
// adding the progress reporting and panic recovery a long-running import
// needs.
package workerpool

import (
	"context"
	"fmt"
	"sync/atomic"

	pkgworkerpool "github.com/xloem/vartex/pkg/workerpool"
)

// Progress is broadcast once per completed job.
type Progress struct {
	Height uint64
	Err    error
}

// Pool imports a set of heights with bounded concurrency, reporting
// progress on a channel in place of the IPC messages a subprocess worker
// pool would send.
type Pool struct {
	workerCount int
	txInFlight  atomic.Int64
}

// New constructs a Pool with workerCount concurrent workers.
func New(workerCount int) *Pool {
	return &Pool{workerCount: workerCount}
}

// TxInFlight reports how many import jobs are currently running; the
// counter spans each whole job, not only its transaction fetches.
func (p *Pool) TxInFlight() int64 {
	return p.txInFlight.Load()
}

// ImportHeights runs importOne over heights with bounded concurrency,
// streaming one Progress per completed height on the returned channel.
// The channel is closed once every height has been attempted or the pool
// stops early on the first error.
func (p *Pool) ImportHeights(ctx context.Context, heights []uint64, importOne func(context.Context, uint64) error) (<-chan Progress, <-chan error) {
	progress := make(chan Progress, len(heights))
	done := make(chan error, 1)

	go func() {
		defer close(progress)

		err := pkgworkerpool.Process(ctx, p.workerCount, heights, func(ctx context.Context, height uint64) error {
			p.txInFlight.Add(1)
			defer p.txInFlight.Add(-1)

			jobErr := p.runJob(ctx, height, importOne)
			progress <- Progress{Height: height, Err: jobErr}
			return jobErr
		}, nil)

		done <- err
		close(done)
	}()

	return progress, done
}

// runJob recovers a panicking job instead of letting it take down the
// whole pool, matching the recovery-interceptor idiom the api-gateway uses
// for inbound RPCs, just applied to an outbound job instead.
func (p *Pool) runJob(ctx context.Context, height uint64, importOne func(context.Context, uint64) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("import height %d panicked: %v", height, r)
		}
	}()
	return importOne(ctx, height)
}
