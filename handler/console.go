package handler

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/philipp01105/insightslog/core"
	"github.com/philipp01105/insightslog/formatter"
)

// ConsoleHandler writes formatted telemetry records to stdout or any io.Writer
type ConsoleHandler struct {
	writer          io.Writer
	formatter       formatter.Formatter
	writerFormatter formatter.WriterFormatter
	async           bool
	queue           *queue
	wg              sync.WaitGroup
	mu              sync.Mutex
	stats           *Stats
	drainTimeout    time.Duration
}

// ConsoleConfig holds configuration for console handler
type ConsoleConfig struct {
	// Writer to write to (default: os.Stdout)
	Writer io.Writer
	// Formatter to use (default: TextFormatter)
	Formatter formatter.Formatter
	// Async enables asynchronous logging
	Async bool
	// BufferSize is the size of the async queue (default: 1000)
	BufferSize int
	// OverflowPolicy defines per-severity overflow behavior (default: DefaultSeverityPolicy)
	OverflowPolicy map[core.Severity]OverflowPolicy
	// BlockTimeout is the timeout for blocking overflow policy (default: 100ms)
	BlockTimeout time.Duration
	// DrainTimeout is the timeout for draining queue on Close (default: 5s)
	DrainTimeout time.Duration
}

// NewConsoleHandler creates a new console handler
func NewConsoleHandler(cfg ConsoleConfig) *ConsoleHandler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
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

	h := &ConsoleHandler{
		writer:       cfg.Writer,
		formatter:    cfg.Formatter,
		async:        cfg.Async,
		stats:        NewStats(),
		drainTimeout: cfg.DrainTimeout,
	}

	// Cache WriterFormatter for zero-alloc path
	h.writerFormatter, _ = cfg.Formatter.(formatter.WriterFormatter)

	if h.async {
		h.queue = newQueue(cfg.BufferSize, cfg.OverflowPolicy, cfg.BlockTimeout, h.stats)
		h.queue.direct = h.write
		// Late records are still written, synchronously
		h.queue.rejected = h.write
		h.wg.Add(1)
		go h.process()
	}

	return h
}

// Handle processes a telemetry record
func (h *ConsoleHandler) Handle(entry *core.Entry) error {
	if !h.async {
		return h.write(entry)
	}
	return h.queue.push(entry)
}

// write formats and writes an entry
func (h *ConsoleHandler) write(entry *core.Entry) error {
	if h.writerFormatter != nil {
		h.mu.Lock()
		err := h.writerFormatter.FormatTo(entry, h.writer)
		h.mu.Unlock()
		h.count(err)
		return err
	}

	data, err := h.formatter.Format(entry)
	if err != nil {
		h.count(err)
		return err
	}

	h.mu.Lock()
	_, err = h.writer.Write(data)
	h.mu.Unlock()

	h.count(err)
	return err
}

func (h *ConsoleHandler) count(err error) {
	if err != nil {
		h.stats.AddFailed(1)
		return
	}
	h.stats.IncrementProcessed()
}

// CanRecycleEntry returns true if the caller can recycle the entry after Handle returns
func (h *ConsoleHandler) CanRecycleEntry() bool {
	return !h.async
}

// process handles async record processing
func (h *ConsoleHandler) process() {
	defer h.wg.Done()

	for {
		select {
		case entry := <-h.queue.ch:
			_ = h.write(entry)
			// Batch drain: process additional queued entries without blocking
		batchDrain:
			for {
				select {
				case entry := <-h.queue.ch:
					_ = h.write(entry)
				default:
					break batchDrain
				}
			}
		case <-h.queue.done:
			// Drain remaining entries with timeout
			h.queue.drain(h.drainTimeout, func(entry *core.Entry) { _ = h.write(entry) })
			return
		}
	}
}

// Stats returns a snapshot of the current statistics
func (h *ConsoleHandler) Stats() Snapshot {
	return h.stats.GetSnapshot()
}

// Close closes the handler, draining the queue when async
func (h *ConsoleHandler) Close() error {
	if h.async && h.queue.shutdown() {
		h.wg.Wait()
	}
	return nil
}
