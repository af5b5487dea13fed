package config

import (
	"io"

	"github.com/cockroachdb/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/philipp01105/insightslog/formatter"
	"github.com/philipp01105/insightslog/handler"
)

// NewSink builds the handler described by t. Console output goes to w.
// When t lists tee sinks, the result fans every record out to all of them.
func (t Transport) NewSink(w io.Writer) (handler.Handler, error) {
	primary, err := t.newSink(w)
	if err != nil || len(t.Tee) == 0 {
		return primary, err
	}

	sinks := []handler.Handler{primary}
	for _, tee := range t.Tee {
		h, err := tee.NewSink(w)
		if err != nil {
			return nil, multierr.Append(err, handler.NewMultiHandler(sinks...).Close())
		}
		sinks = append(sinks, h)
	}
	return handler.NewMultiHandler(sinks...), nil
}

func (t Transport) newSink(w io.Writer) (handler.Handler, error) {
	policies, err := t.OverflowPolicies()
	if err != nil {
		return nil, err
	}
	f := formatter.New(t.Format, formatter.Config{})

	switch t.Sink {
	case "console":
		return handler.NewConsoleHandler(handler.ConsoleConfig{
			Writer:         w,
			Formatter:      f,
			Async:          t.Async,
			BufferSize:     t.BufferSize,
			OverflowPolicy: policies,
			BlockTimeout:   t.BlockTimeout,
			DrainTimeout:   t.DrainTimeout,
		}), nil
	case "file":
		return handler.NewFileHandler(handler.FileConfig{
			Filename:       t.File,
			Formatter:      f,
			Async:          t.Async,
			BufferSize:     t.BufferSize,
			MaxSize:        t.MaxSize,
			MaxAge:         t.MaxAge,
			MaxBackups:     t.MaxBackups,
			OverflowPolicy: policies,
			BlockTimeout:   t.BlockTimeout,
			DrainTimeout:   t.DrainTimeout,
		})
	default:
		return nil, errors.Newf("config: unknown sink %q", t.Sink)
	}
}

// NewTelemetrySink builds a batching handler that forwards to client using
// the queue and batch settings of t.
func (t Transport) NewTelemetrySink(client handler.Client, diag *zap.Logger) (*handler.TelemetryHandler, error) {
	policies, err := t.OverflowPolicies()
	if err != nil {
		return nil, err
	}
	return handler.NewTelemetryHandler(handler.TelemetryConfig{
		Client:         client,
		BufferSize:     t.BufferSize,
		MaxBatchSize:   t.BatchSize,
		FlushInterval:  t.FlushInterval,
		OverflowPolicy: policies,
		BlockTimeout:   t.BlockTimeout,
		DrainTimeout:   t.DrainTimeout,
		Logger:         diag,
	})
}
