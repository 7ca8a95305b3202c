package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/docufield/invoice-extract/internal/async"
	"github.com/docufield/invoice-extract/internal/detect"
	"github.com/docufield/invoice-extract/internal/entity"
)

func TestQueueProcessesAllJobs(t *testing.T) {
	var processed atomic.Int64
	q := async.NewExtractQueue(func(_ context.Context, f entity.RawFile) (*detect.ParseResult, error) {
		processed.Add(1)
		return &detect.ParseResult{DetectorUsed: "stub", Invoices: []entity.Invoice{{SourceFile: f.Name}}}, nil
	}, nil, async.WithWorkers(3), async.WithQueueSize(8))

	const n = 20
	for i := 0; i < n; i++ {
		if err := q.Enqueue(context.Background(), async.Job{File: entity.RawFile{Name: "doc.json"}}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	if got := processed.Load(); got != n {
		t.Fatalf("processed = %d, want %d", got, n)
	}
	results := q.Results()
	if len(results) != n {
		t.Fatalf("results = %d, want %d", len(results), n)
	}
	for _, r := range results {
		if r.Err != nil || r.Parsed == nil || r.TraceID == "" {
			t.Fatalf("bad result: %+v", r)
		}
	}
}

func TestQueueRecordsFailures(t *testing.T) {
	boom := errors.New("boom")
	q := async.NewExtractQueue(func(context.Context, entity.RawFile) (*detect.ParseResult, error) {
		return nil, boom
	}, nil, async.WithWorkers(1))

	_ = q.Enqueue(context.Background(), async.Job{File: entity.RawFile{Name: "bad.json"}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	results := q.Results()
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if !errors.Is(results[0].Err, boom) {
		t.Fatalf("err = %v, want boom", results[0].Err)
	}
}

func TestEnqueueDuringShutdown(t *testing.T) {
	gate := make(chan struct{})
	q := async.NewExtractQueue(func(context.Context, entity.RawFile) (*detect.ParseResult, error) {
		<-gate
		return &detect.ParseResult{}, nil
	}, nil, async.WithWorkers(1), async.WithQueueSize(1))

	// worker takes the first job and blocks on the gate, the second fills the
	// buffer, so the third Enqueue blocks applying backpressure
	_ = q.Enqueue(context.Background(), async.Job{File: entity.RawFile{Name: "a.json"}})
	_ = q.Enqueue(context.Background(), async.Job{File: entity.RawFile{Name: "b.json"}})

	enqueued := make(chan struct{})
	go func() {
		_ = q.Enqueue(context.Background(), async.Job{File: entity.RawFile{Name: "c.json"}})
		close(enqueued)
	}()

	shutdownDone := make(chan struct{})
	go func() {
		time.Sleep(50 * time.Millisecond) // let the third Enqueue block first
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		q.Shutdown(ctx)
		close(shutdownDone)
	}()

	time.Sleep(100 * time.Millisecond) // Shutdown now waits behind the blocked Enqueue
	close(gate)

	select {
	case <-enqueued:
	case <-time.After(5 * time.Second):
		t.Fatal("blocked enqueue never completed")
	}
	select {
	case <-shutdownDone:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown never completed")
	}

	if got := len(q.Results()); got != 3 {
		t.Fatalf("results = %d, want 3", got)
	}
}

func TestShutdownDrainsBeyondPerJobTimeout(t *testing.T) {
	// a single worker serialises the batch: total drain time is several times
	// one job's duration, and Shutdown must still wait for every result
	q := async.NewExtractQueue(func(_ context.Context, f entity.RawFile) (*detect.ParseResult, error) {
		time.Sleep(40 * time.Millisecond)
		return &detect.ParseResult{DetectorUsed: f.Name}, nil
	}, nil, async.WithWorkers(1), async.WithProcessTimeout(60*time.Millisecond))

	for i := 0; i < 5; i++ {
		_ = q.Enqueue(context.Background(), async.Job{File: entity.RawFile{Name: "doc.json"}})
	}
	q.Shutdown(context.Background())

	results := q.Results()
	if len(results) != 5 {
		t.Fatalf("results = %d, want 5", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("job failed: %v", r.Err)
		}
	}
}

func TestEnqueueAfterShutdownIsNoop(t *testing.T) {
	q := async.NewExtractQueue(func(context.Context, entity.RawFile) (*detect.ParseResult, error) {
		return &detect.ParseResult{}, nil
	}, nil, async.WithWorkers(1))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	if err := q.Enqueue(context.Background(), async.Job{File: entity.RawFile{Name: "late.json"}}); err != nil {
		t.Fatalf("enqueue after shutdown: %v", err)
	}
	if len(q.Results()) != 0 {
		t.Fatalf("late job must not be processed")
	}
}
