package logger

import (
	"context"
	"log/slog"

	"github.com/philipp01105/insightslog/core"
	"github.com/philipp01105/insightslog/scope"
)

// SlogHandler is an adapter that implements slog.Handler on top of a Logger,
// so code written against log/slog produces telemetry records.
//
// Attributes become a structured scope around the call; the first
// error-valued attribute becomes the record's exception instead.
type SlogHandler struct {
	logger  *Logger
	attrs   []core.Property
	errAttr error
	group   string
}

// NewSlogHandler creates a new slog.Handler adapter wrapping the given Logger.
func NewSlogHandler(l *Logger) *SlogHandler {
	return &SlogHandler{logger: l}
}

// Enabled reports whether the handler handles records at the given level.
func (s *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return s.logger.Enabled(slogLevelToCore(level))
}

// Handle converts a slog.Record into a log call on the wrapped Logger.
func (s *SlogHandler) Handle(ctx context.Context, record slog.Record) error {
	props := make([]core.Property, len(s.attrs), len(s.attrs)+record.NumAttrs())
	copy(props, s.attrs)
	err := s.errAttr

	record.Attrs(func(a slog.Attr) bool {
		props, err = appendAttr(props, err, s.group, a)
		return true
	})

	if len(props) > 0 {
		var end func()
		ctx, end = s.logger.BeginScope(ctx, scope.Props(props...))
		defer end()
	}
	s.logger.Log(ctx, slogLevelToCore(record.Level), core.EventID{}, err, record.Message)
	return nil
}

// WithAttrs returns a new SlogHandler with additional attributes.
func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]core.Property, len(s.attrs), len(s.attrs)+len(attrs))
	copy(newAttrs, s.attrs)
	err := s.errAttr
	for _, a := range attrs {
		newAttrs, err = appendAttr(newAttrs, err, s.group, a)
	}
	return &SlogHandler{
		logger:  s.logger,
		attrs:   newAttrs,
		errAttr: err,
		group:   s.group,
	}
}

// WithGroup returns a new SlogHandler with the given group name.
func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	newGroup := name
	if s.group != "" {
		newGroup = s.group + "." + name
	}
	return &SlogHandler{
		logger:  s.logger,
		attrs:   s.attrs,
		errAttr: s.errAttr,
		group:   newGroup,
	}
}

// slogLevelToCore converts a slog.Level to a core.Level.
func slogLevelToCore(level slog.Level) core.Level {
	switch {
	case level >= slog.LevelError+4:
		return core.CriticalLevel
	case level >= slog.LevelError:
		return core.ErrorLevel
	case level >= slog.LevelWarn:
		return core.WarningLevel
	case level >= slog.LevelInfo:
		return core.InformationLevel
	case level >= slog.LevelDebug:
		return core.DebugLevel
	default:
		return core.TraceLevel
	}
}

// appendAttr flattens a into props, prefixing keys with group. The first
// error value seen is returned as err instead of becoming a property.
func appendAttr(props []core.Property, err error, group string, a slog.Attr) ([]core.Property, error) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return props, err
	}

	key := a.Key
	if group != "" && key != "" {
		key = group + "." + key
	} else if key == "" {
		key = group
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		for _, ga := range a.Value.Group() {
			props, err = appendAttr(props, err, key, ga)
		}
		return props, err
	case slog.KindAny:
		if e, ok := a.Value.Any().(error); ok && err == nil {
			return props, e
		}
	}
	return append(props, core.Property{Key: key, Value: a.Value.Any()}), err
}
