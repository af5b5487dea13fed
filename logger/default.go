package logger

import (
	"sync"

	"github.com/philipp01105/insightslog/formatter"
	"github.com/philipp01105/insightslog/handler"
)

var (
	defaultProvider *Provider
	defaultOnce     sync.Once
	defaultMu       sync.RWMutex
)

func initDefault() {
	h := handler.NewConsoleHandler(handler.ConsoleConfig{
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})
	// Cannot fail: the sink is set
	p, _ := NewBuilder().WithSink(h).Build()
	defaultProvider = p
}

// Default returns the default provider. Unless replaced with SetDefault it
// writes text records synchronously to stdout.
func Default() *Provider {
	defaultOnce.Do(func() {
		defaultMu.Lock()
		defer defaultMu.Unlock()
		if defaultProvider == nil {
			initDefault()
		}
	})
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultProvider
}

// SetDefault sets the default provider
func SetDefault(p *Provider) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultProvider = p
}

// For returns the logger for category from the default provider
func For(category string) *Logger {
	return Default().Logger(category)
}
