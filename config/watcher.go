package config

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/philipp01105/insightslog/options"
)

// DefaultWatchInterval is the polling period used when WatcherConfig leaves
// Interval unset.
const DefaultWatchInterval = 2 * time.Second

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	Loader   Loader
	Path     string
	Monitor  *options.Monitor
	Interval time.Duration
	Logger   *zap.Logger
}

// Watcher polls a config file and publishes the logging section into a
// Monitor whenever the file changes. A file that fails to load leaves the
// previous options in effect.
type Watcher struct {
	loader   Loader
	path     string
	monitor  *options.Monitor
	interval time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	modTime time.Time
	size    int64
}

// NewWatcher validates cfg and returns a watcher. The file's current state
// is recorded so the first Poll only reloads after a change.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, errors.New("config: watcher requires a path")
	}
	if cfg.Monitor == nil {
		return nil, errors.New("config: watcher requires a monitor")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultWatchInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	w := &Watcher{
		loader:   cfg.Loader,
		path:     cfg.Path,
		monitor:  cfg.Monitor,
		interval: cfg.Interval,
		log:      cfg.Logger,
	}
	if fi, err := os.Stat(cfg.Path); err == nil {
		w.modTime = fi.ModTime()
		w.size = fi.Size()
	}
	return w, nil
}

// Poll checks the file once. It reports whether new options were published.
func (w *Watcher) Poll() (bool, error) {
	fi, err := os.Stat(w.path)
	if err != nil {
		w.log.Warn("config watcher stat failed", zap.String("path", w.path), zap.Error(err))
		return false, errors.Wrapf(err, "config: stat %s", w.path)
	}

	w.mu.Lock()
	unchanged := fi.ModTime().Equal(w.modTime) && fi.Size() == w.size
	if !unchanged {
		w.modTime = fi.ModTime()
		w.size = fi.Size()
	}
	w.mu.Unlock()
	if unchanged {
		return false, nil
	}

	cfg, err := w.loader.Load(w.path)
	if err != nil {
		w.log.Warn("config reload failed, keeping previous options",
			zap.String("path", w.path), zap.Error(err))
		return false, err
	}

	next := cfg.Logging
	next.Enrich = w.monitor.Current().Enrich
	w.monitor.Set(next)
	w.log.Debug("config reloaded",
		zap.String("path", w.path),
		zap.Bool("include_category_name", next.IncludeCategoryName),
		zap.Bool("include_scopes", next.IncludeScopes))
	return true, nil
}

// Run polls until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_, _ = w.Poll()
		}
	}
}
