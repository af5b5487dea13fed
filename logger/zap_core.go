package logger

import (
	"context"

	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/insightslog/core"
	"github.com/philipp01105/insightslog/scope"
)

// defaultZapCategory names records from unnamed zap loggers.
const defaultZapCategory = "zap"

// zapCore is a zapcore.Core that turns zap entries into telemetry records.
type zapCore struct {
	zapcore.LevelEnabler
	provider *Provider
	fields   []zapcore.Field
}

// NewZapCore returns a zapcore.Core that logs through p. The zap logger
// name selects the category. Fields become a structured scope around the
// call; the first error field becomes the record's exception.
//
//	log := zap.New(logger.NewZapCore(provider, zapcore.DebugLevel)).Named("billing")
func NewZapCore(p *Provider, enab zapcore.LevelEnabler) zapcore.Core {
	if enab == nil {
		enab = zapcore.DebugLevel
	}
	return &zapCore{LevelEnabler: enab, provider: p}
}

func (c *zapCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &zapCore{
		LevelEnabler: c.LevelEnabler,
		provider:     c.provider,
		fields:       make([]zapcore.Field, 0, len(c.fields)+len(fields)),
	}
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return clone
}

func (c *zapCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *zapCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	category := ent.LoggerName
	if category == "" {
		category = defaultZapCategory
	}
	l := c.provider.Logger(category)

	var err error
	props := make([]core.Property, 0, len(c.fields)+len(fields))
	props, err = appendZapFields(props, err, c.fields)
	props, err = appendZapFields(props, err, fields)

	ctx := context.Background()
	if len(props) > 0 {
		var end func()
		ctx, end = l.BeginScope(ctx, scope.Props(props...))
		defer end()
	}
	l.Log(ctx, zapLevelToCore(ent.Level), core.EventID{}, err, ent.Message)
	return nil
}

func (c *zapCore) Sync() error {
	return nil
}

// appendZapFields encodes each field on its own so the resulting
// properties keep field order. The first error field is returned as err.
func appendZapFields(props []core.Property, err error, fields []zapcore.Field) ([]core.Property, error) {
	for _, f := range fields {
		if f.Type == zapcore.ErrorType && err == nil {
			if e, ok := f.Interface.(error); ok {
				err = e
				continue
			}
		}
		enc := zapcore.NewMapObjectEncoder()
		f.AddTo(enc)
		for k, v := range enc.Fields {
			props = append(props, core.Property{Key: k, Value: v})
		}
	}
	return props, err
}

// zapLevelToCore converts a zapcore.Level to a core.Level.
func zapLevelToCore(level zapcore.Level) core.Level {
	switch {
	case level >= zapcore.DPanicLevel:
		return core.CriticalLevel
	case level >= zapcore.ErrorLevel:
		return core.ErrorLevel
	case level >= zapcore.WarnLevel:
		return core.WarningLevel
	case level >= zapcore.InfoLevel:
		return core.InformationLevel
	case level >= zapcore.DebugLevel:
		return core.DebugLevel
	default:
		return core.TraceLevel
	}
}
