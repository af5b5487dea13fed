package handler

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/philipp01105/insightslog/core"
)

// Client is the external telemetry SDK that transmits finished records.
// Implementations own network transport and retries.
type Client interface {
	TrackTrace(ctx context.Context, trace core.TraceTelemetry) error
	TrackException(ctx context.Context, exception core.ExceptionTelemetry) error
	Flush(ctx context.Context) error
}

// TelemetryConfig holds configuration for the batching telemetry handler
type TelemetryConfig struct {
	// Client receives the batched records (required)
	Client Client
	// BufferSize is the size of the async queue (default: 1000)
	BufferSize int
	// MaxBatchSize triggers a flush once this many records are pending (default: 100)
	MaxBatchSize int
	// FlushInterval is the longest a record waits before being sent (default: 15s)
	FlushInterval time.Duration
	// OverflowPolicy defines per-severity overflow behavior (default: DefaultSeverityPolicy)
	OverflowPolicy map[core.Severity]OverflowPolicy
	// BlockTimeout is the timeout for blocking overflow policy (default: 100ms)
	BlockTimeout time.Duration
	// DrainTimeout bounds draining and the final flush on Close (default: 5s)
	DrainTimeout time.Duration
	// Logger receives delivery failures (default: no-op)
	Logger *zap.Logger
}

// TelemetryHandler queues records and forwards them to a Client in batches.
// Each record is sent once; failures are counted and logged, never retried.
type TelemetryHandler struct {
	client        Client
	queue         *queue
	maxBatch      int
	flushInterval time.Duration
	drainTimeout  time.Duration
	stats         *Stats
	log           *zap.Logger
	flushReq      chan chan error
	wg            sync.WaitGroup
	closeErr      error
}

// NewTelemetryHandler creates and starts a batching telemetry handler
func NewTelemetryHandler(cfg TelemetryConfig) (*TelemetryHandler, error) {
	if cfg.Client == nil {
		return nil, errors.New("handler: telemetry client is required")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 15 * time.Second
	}
	if cfg.OverflowPolicy == nil {
		cfg.OverflowPolicy = DefaultSeverityPolicy()
	}
	if cfg.BlockTimeout == 0 {
		cfg.BlockTimeout = 100 * time.Millisecond
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	h := &TelemetryHandler{
		client:        cfg.Client,
		maxBatch:      cfg.MaxBatchSize,
		flushInterval: cfg.FlushInterval,
		drainTimeout:  cfg.DrainTimeout,
		stats:         NewStats(),
		log:           cfg.Logger,
		flushReq:      make(chan chan error),
	}
	h.queue = newQueue(cfg.BufferSize, cfg.OverflowPolicy, cfg.BlockTimeout, h.stats)
	h.queue.direct = func(entry *core.Entry) error {
		return h.deliver(context.Background(), entry)
	}
	h.queue.rejected = func(*core.Entry) error { return ErrClosed }

	h.wg.Add(1)
	go h.process()
	return h, nil
}

// Handle queues a record for the next batch
func (h *TelemetryHandler) Handle(entry *core.Entry) error {
	return h.queue.push(entry)
}

// CanRecycleEntry returns false because records are sent after Handle returns
func (h *TelemetryHandler) CanRecycleEntry() bool {
	return false
}

// Flush sends every record queued before the call and flushes the client.
func (h *TelemetryHandler) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case h.flushReq <- reply:
	case <-h.queue.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a snapshot of the current statistics
func (h *TelemetryHandler) Stats() Snapshot {
	return h.stats.GetSnapshot()
}

// Close drains the queue, sends the final batch and flushes the client.
// Calling Close again returns the result of the first call.
func (h *TelemetryHandler) Close() error {
	h.queue.shutdown()
	h.wg.Wait()
	return h.closeErr
}

func (h *TelemetryHandler) process() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.flushInterval)
	defer ticker.Stop()

	batch := make([]*core.Entry, 0, h.maxBatch)
	for {
		select {
		case entry := <-h.queue.ch:
			batch = append(batch, entry)
			if len(batch) >= h.maxBatch {
				batch = h.send(context.Background(), batch, false)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				batch = h.send(context.Background(), batch, true)
			}
		case reply := <-h.flushReq:
			batch = h.collect(batch)
			h.send(context.Background(), batch, false)
			batch = batch[:0]
			reply <- h.client.Flush(context.Background())
		case <-h.queue.done:
			ctx, cancel := context.WithTimeout(context.Background(), h.drainTimeout)
			h.queue.drain(h.drainTimeout, func(entry *core.Entry) { batch = append(batch, entry) })
			err := h.sendAll(ctx, batch)
			h.closeErr = multierr.Append(err, h.client.Flush(ctx))
			cancel()
			return
		}
	}
}

// collect moves everything currently queued into batch without blocking.
func (h *TelemetryHandler) collect(batch []*core.Entry) []*core.Entry {
	for {
		select {
		case entry := <-h.queue.ch:
			batch = append(batch, entry)
		default:
			return batch
		}
	}
}

// send delivers batch and returns it emptied for reuse. When flush is set
// the client is flushed after the batch.
func (h *TelemetryHandler) send(ctx context.Context, batch []*core.Entry, flush bool) []*core.Entry {
	_ = h.sendAll(ctx, batch)
	if flush {
		if err := h.client.Flush(ctx); err != nil {
			h.log.Warn("telemetry flush failed", zap.Error(err))
		}
	}
	clear(batch)
	return batch[:0]
}

func (h *TelemetryHandler) sendAll(ctx context.Context, batch []*core.Entry) error {
	var err error
	for _, entry := range batch {
		err = multierr.Append(err, h.deliver(ctx, entry))
	}
	return err
}

// deliver sends a single record to the client.
func (h *TelemetryHandler) deliver(ctx context.Context, entry *core.Entry) error {
	var err error
	switch entry.Kind {
	case core.ExceptionKind:
		err = h.client.TrackException(ctx, entry.ExceptionTelemetry())
	default:
		err = h.client.TrackTrace(ctx, entry.Trace())
	}
	if err != nil {
		h.stats.AddFailed(1)
		h.log.Warn("telemetry delivery failed",
			zap.Stringer("kind", entry.Kind),
			zap.String("category", entry.Category),
			zap.Error(err))
		return errors.Wrapf(err, "deliver %s record", entry.Kind)
	}
	h.stats.IncrementProcessed()
	return nil
}
