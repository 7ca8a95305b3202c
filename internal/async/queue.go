package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docufield/invoice-extract/internal/detect"
	"github.com/docufield/invoice-extract/internal/entity"
)

// Job is one document to extract. TraceID ties worker log lines back to the
// submission.
type Job struct {
	File        entity.RawFile
	SubmittedAt time.Time
	TraceID     string
}

// Result pairs a processed file with its extraction outcome.
type Result struct {
	File    string
	TraceID string
	Parsed  *detect.ParseResult
	Err     error
}

// ExtractFunc runs the extraction for a single document.
type ExtractFunc func(ctx context.Context, file entity.RawFile) (*detect.ParseResult, error)

// ExtractQueue fans documents out to a bounded worker pool. Extractions are
// independent per document, so workers share nothing but the job channel.
type ExtractQueue struct {
	extract ExtractFunc
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu      sync.Mutex
	closed  bool
	results []Result
}

type Option func(*ExtractQueue)

func WithWorkers(n int) Option {
	return func(q *ExtractQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ExtractQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ExtractQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewExtractQueue(extract ExtractFunc, logger *slog.Logger, opts ...Option) *ExtractQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ExtractQueue{
		extract: extract,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ExtractQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					parsed, err := q.extract(ctx, job.File)
					cancel()

					if err != nil {
						q.logger.Error("extraction failed",
							"worker_id", workerID, "file", job.File.Name, "trace_id", job.TraceID, "error", err)
					} else {
						q.logger.Info("extracted file",
							"worker_id", workerID, "file", job.File.Name, "trace_id", job.TraceID,
							"detector", parsed.DetectorUsed, "invoices", len(parsed.Invoices))
					}

					q.mu.Lock()
					q.results = append(q.results, Result{
						File:    job.File.Name,
						TraceID: job.TraceID,
						Parsed:  parsed,
						Err:     err,
					})
					q.mu.Unlock()
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue submits a document. A zero TraceID is filled in. Blocks when the
// queue is full (backpressure), and is a logged no-op after Shutdown. The
// mutex is held across the send so Shutdown cannot close the channel under a
// blocked Enqueue.
func (q *ExtractQueue) Enqueue(_ context.Context, job Job) error {
	if job.TraceID == "" {
		job.TraceID = uuid.New().String()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "file", job.File.Name)
		return nil
	}

	select {
	case q.ch <- job:
		q.logger.Debug("queued file", "file", job.File.Name, "trace_id", job.TraceID)
	default:
		q.logger.Warn("queue full, applying backpressure", "file", job.File.Name)
		q.ch <- job
	}
	return nil
}

// Shutdown stops intake and waits for in-flight work, bounded by ctx.
func (q *ExtractQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}

// Results returns a snapshot of completed work. Call after Shutdown for the
// full batch.
func (q *ExtractQueue) Results() []Result {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Result, len(q.results))
	copy(out, q.results)
	return out
}
