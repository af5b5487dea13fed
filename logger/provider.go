package logger

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/philipp01105/insightslog/handler"
	"github.com/philipp01105/insightslog/options"
	"github.com/philipp01105/insightslog/scope"
)

// ErrNoSink is returned by Build when no sink was configured.
var ErrNoSink = errors.New("logger: no sink configured")

// Provider creates and caches one Logger per category and keeps every
// cached Logger in sync with the current options and scope provider.
type Provider struct {
	sink handler.Handler
	diag *zap.Logger

	loggers sync.Map // category -> *Logger

	// mu serializes logger construction with settings changes so a new
	// logger can never miss an update.
	mu      sync.Mutex
	current atomic.Pointer[settings]

	unsubscribe func()
	disposed    atomic.Bool
}

// Logger returns the logger for category, creating it on first use.
// Concurrent callers asking for the same category get the same instance.
func (p *Provider) Logger(category string) *Logger {
	if l, ok := p.loggers.Load(category); ok {
		return l.(*Logger)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.loggers.Load(category); ok {
		return l.(*Logger)
	}
	l := newLogger(category, p.sink, p.diag, p.current.Load())
	p.loggers.Store(category, l)
	return l
}

// Options returns the options currently applied to every logger.
func (p *Provider) Options() options.Options {
	return p.current.Load().opts
}

// ScopeProvider returns the scope provider currently used by every logger.
func (p *Provider) ScopeProvider() scope.Provider {
	return p.current.Load().scopes
}

// SetScopeProvider replaces the scope provider of the provider and of
// every cached logger.
func (p *Provider) SetScopeProvider(sp scope.Provider) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.publish(&settings{opts: p.current.Load().opts, scopes: sp})
}

// ReloadOptions replaces the options of the provider and of every cached
// logger. Existing loggers apply them from their next call on.
func (p *Provider) ReloadOptions(o options.Options) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.publish(&settings{opts: o, scopes: p.current.Load().scopes})
	p.diag.Debug("logger options reloaded",
		zap.Bool("include_category_name", o.IncludeCategoryName),
		zap.Bool("include_scopes", o.IncludeScopes),
		zap.Bool("enrich", o.Enrich != nil))
}

// publish must be called with mu held.
func (p *Provider) publish(s *settings) {
	p.current.Store(s)
	p.loggers.Range(func(_, v any) bool {
		v.(*Logger).settings.Store(s)
		return true
	})
}

// Len returns the number of cached loggers.
func (p *Provider) Len() int {
	n := 0
	p.loggers.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close releases the subscription to the options source. It is safe to
// call more than once. Cached loggers keep working and the sink is left
// open; the caller owns the sink's lifetime.
func (p *Provider) Close() error {
	if !p.disposed.CompareAndSwap(false, true) {
		return nil
	}
	if p.unsubscribe != nil {
		p.unsubscribe()
	}
	return nil
}

// Builder provides a fluent API for building Provider instances
type Builder struct {
	sink   handler.Handler
	opts   options.Options
	source options.Source
	scopes scope.Provider
	diag   *zap.Logger
}

// NewBuilder creates a new provider builder with default options and a
// context-backed scope provider.
func NewBuilder() *Builder {
	return &Builder{
		opts:   options.Default(),
		scopes: scope.NewContextProvider(),
	}
}

// WithSink sets the handler that receives every record
func (b *Builder) WithSink(h handler.Handler) *Builder {
	b.sink = h
	return b
}

// WithOptions sets the initial options
func (b *Builder) WithOptions(o options.Options) *Builder {
	b.opts = o
	return b
}

// WithOptionsSource takes the initial options from src and reloads on
// every change it publishes until the provider is closed.
func (b *Builder) WithOptionsSource(src options.Source) *Builder {
	b.source = src
	return b
}

// WithScopeProvider sets the scope provider (nil disables scopes)
func (b *Builder) WithScopeProvider(sp scope.Provider) *Builder {
	b.scopes = sp
	return b
}

// WithDiagnostics sets the logger that receives internal failures such as
// sink errors (default: no-op)
func (b *Builder) WithDiagnostics(l *zap.Logger) *Builder {
	b.diag = l
	return b
}

// Build creates the Provider instance
func (b *Builder) Build() (*Provider, error) {
	if b.sink == nil {
		return nil, ErrNoSink
	}
	diag := b.diag
	if diag == nil {
		diag = zap.NewNop()
	}

	p := &Provider{sink: b.sink, diag: diag}
	p.current.Store(&settings{opts: b.opts, scopes: b.scopes})
	if b.source != nil {
		// Subscribe before reading the snapshot so a change published in
		// between is not lost.
		p.unsubscribe = b.source.OnChange(p.ReloadOptions)
		p.mu.Lock()
		p.publish(&settings{opts: b.source.Current(), scopes: b.scopes})
		p.mu.Unlock()
	}
	return p, nil
}
