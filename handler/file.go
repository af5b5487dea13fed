package handler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/trickstertwo/xclock"
	"go.uber.org/multierr"

	"github.com/philipp01105/insightslog/core"
	"github.com/philipp01105/insightslog/formatter"
)

// FileHandler appends formatted telemetry records to a file with rotation support
type FileHandler struct {
	filename        string
	file            *os.File
	formatter       formatter.Formatter
	writerFormatter formatter.WriterFormatter
	async           bool
	queue           *queue
	wg              sync.WaitGroup
	mu              sync.Mutex
	maxSize         int64
	maxAge          time.Duration
	maxBackups      int
	currentSize     int64
	lastRotateTime  time.Time
	stats           *Stats
	drainTimeout    time.Duration
	closed          bool
}

// FileConfig holds configuration for file handler
type FileConfig struct {
	// Filename is the path to the output file
	Filename string
	// Formatter to use (default: JSONFormatter)
	Formatter formatter.Formatter
	// Async enables asynchronous writes
	Async bool
	// BufferSize is the size of the async queue (default: 1000)
	BufferSize int
	// MaxSize is the maximum size in bytes before rotation (0 = no size rotation)
	MaxSize int64
	// MaxAge is the maximum age of the current file before rotation (0 = no time rotation)
	MaxAge time.Duration
	// MaxBackups is the maximum number of rotated files to retain (0 = keep all)
	MaxBackups int
	// OverflowPolicy defines per-severity overflow behavior (default: DefaultSeverityPolicy)
	OverflowPolicy map[core.Severity]OverflowPolicy
	// BlockTimeout is the timeout for blocking overflow policy (default: 100ms)
	BlockTimeout time.Duration
	// DrainTimeout is the timeout for draining queue on Close (default: 5s)
	DrainTimeout time.Duration
}

// NewFileHandler creates a new file handler
func NewFileHandler(cfg FileConfig) (*FileHandler, error) {
	if cfg.Filename == "" {
		return nil, errors.New("handler: filename is required")
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewJSONFormatter(formatter.Config{})
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

	if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0o755); err != nil {
		return nil, errors.Wrap(err, "create log directory")
	}

	file, err := openAppend(cfg.Filename)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(err, "stat %s", cfg.Filename)
	}

	h := &FileHandler{
		filename:       cfg.Filename,
		file:           file,
		formatter:      cfg.Formatter,
		async:          cfg.Async,
		maxSize:        cfg.MaxSize,
		maxAge:         cfg.MaxAge,
		maxBackups:     cfg.MaxBackups,
		currentSize:    info.Size(),
		lastRotateTime: xclock.Now(),
		stats:          NewStats(),
		drainTimeout:   cfg.DrainTimeout,
	}

	// Cache WriterFormatter for zero-alloc path
	h.writerFormatter, _ = cfg.Formatter.(formatter.WriterFormatter)

	if h.async {
		h.queue = newQueue(cfg.BufferSize, cfg.OverflowPolicy, cfg.BlockTimeout, h.stats)
		h.queue.direct = h.write
		h.queue.rejected = func(*core.Entry) error { return ErrClosed }
		h.wg.Add(1)
		go h.process()
	}

	return h, nil
}

func openAppend(name string) (*os.File, error) {
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", name)
	}
	return file, nil
}

// Handle processes a telemetry record
func (h *FileHandler) Handle(entry *core.Entry) error {
	if !h.async {
		return h.write(entry)
	}
	return h.queue.push(entry)
}

// write formats and writes an entry
func (h *FileHandler) write(entry *core.Entry) error {
	data, err := h.formatter.Format(entry)
	if err != nil {
		h.stats.AddFailed(1)
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}

	if err := h.rotateIfNeeded(); err != nil {
		h.stats.AddFailed(1)
		return err
	}

	n, err := h.file.Write(data)
	h.currentSize += int64(n)
	if err != nil {
		h.stats.AddFailed(1)
		return errors.Wrapf(err, "write %s", h.filename)
	}
	h.stats.IncrementProcessed()
	return nil
}

// CanRecycleEntry returns true if the caller can recycle the entry after Handle returns
func (h *FileHandler) CanRecycleEntry() bool {
	return !h.async
}

// rotateIfNeeded checks and performs rotation if needed
func (h *FileHandler) rotateIfNeeded() error {
	needRotate := h.maxSize > 0 && h.currentSize >= h.maxSize
	if h.maxAge > 0 && xclock.Now().Sub(h.lastRotateTime) >= h.maxAge {
		needRotate = true
	}
	if !needRotate {
		return nil
	}
	return h.rotate()
}

// rotate moves the current file aside and opens a fresh one
func (h *FileHandler) rotate() error {
	if err := h.file.Sync(); err != nil {
		return errors.Wrap(err, "sync before rotation")
	}
	if err := h.file.Close(); err != nil {
		return errors.Wrap(err, "close before rotation")
	}

	now := xclock.Now()
	rotatedName := fmt.Sprintf("%s.%s", h.filename, now.Format("2006-01-02T15-04-05.000000000"))

	if err := os.Rename(h.filename, rotatedName); err != nil {
		// Keep writing to the original file
		file, openErr := openAppend(h.filename)
		if openErr != nil {
			return multierr.Append(errors.Wrap(err, "rotate"), openErr)
		}
		h.file = file
		return errors.Wrap(err, "rotate")
	}

	if h.maxBackups > 0 {
		h.cleanupOldBackups()
	}

	file, err := openAppend(h.filename)
	if err != nil {
		return err
	}

	h.file = file
	h.currentSize = 0
	h.lastRotateTime = now
	return nil
}

// Backups returns the rotated files of this handler, oldest first.
func (h *FileHandler) Backups() []string {
	base := filepath.Base(h.filename)
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(h.filename), base+".*"))
	if err != nil {
		return nil
	}

	var backups []string
	for _, match := range matches {
		if strings.HasPrefix(filepath.Base(match), base+".") {
			backups = append(backups, match)
		}
	}
	// Rotation suffixes are timestamps, so lexical order is age order
	sort.Strings(backups)
	return backups
}

// cleanupOldBackups removes the oldest backups beyond MaxBackups
func (h *FileHandler) cleanupOldBackups() {
	backups := h.Backups()
	if len(backups) <= h.maxBackups {
		return
	}
	for _, file := range backups[:len(backups)-h.maxBackups] {
		if err := os.Remove(file); err != nil {
			return
		}
	}
}

// process handles async record processing
func (h *FileHandler) process() {
	defer h.wg.Done()

	for {
		select {
		case entry := <-h.queue.ch:
			_ = h.write(entry)
		case <-h.queue.done:
			h.queue.drain(h.drainTimeout, func(entry *core.Entry) { _ = h.write(entry) })
			return
		}
	}
}

// Stats returns a snapshot of the current statistics
func (h *FileHandler) Stats() Snapshot {
	return h.stats.GetSnapshot()
}

// Close drains pending records, syncs and closes the file
func (h *FileHandler) Close() error {
	if h.async && h.queue.shutdown() {
		h.wg.Wait()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	syncErr := h.file.Sync()
	closeErr := h.file.Close()
	if syncErr != nil {
		return errors.Wrapf(syncErr, "sync %s", h.filename)
	}
	return errors.Wrapf(closeErr, "close %s", h.filename)
}
