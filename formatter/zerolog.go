package formatter

import (
	"bytes"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/philipp01105/insightslog/core"
)

// ZerologFormatter renders telemetry records through a zerolog JSON
// encoder. Output uses zerolog's field names ("level", "time", "message")
// so records can be consumed by existing zerolog tooling.
type ZerologFormatter struct {
	Config
}

// NewZerologFormatter creates a new zerolog-backed formatter
func NewZerologFormatter(cfg Config) *ZerologFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339Nano
	}
	return &ZerologFormatter{Config: cfg}
}

// Format formats an entry as a zerolog JSON line
func (f *ZerologFormatter) Format(entry *core.Entry) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.encode(entry, buf)

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo formats an entry and writes it directly to the writer
func (f *ZerologFormatter) FormatTo(entry *core.Entry, w io.Writer) error {
	buf := getBuffer()

	f.encode(entry, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

func (f *ZerologFormatter) encode(entry *core.Entry, buf *bytes.Buffer) {
	zl := zerolog.New(buf)
	ev := zl.WithLevel(zerologLevel(entry.Severity))
	ev.Str(zerolog.TimestampFieldName, entry.Time.Format(f.TimestampFormat))
	ev.Str("kind", entry.Kind.String())
	if entry.Category != "" {
		ev.Str("category", entry.Category)
	}
	if entry.Kind == core.ExceptionKind && entry.Exception != nil {
		ev.Str("id", entry.ID)
		ev.Dict("exception", zerolog.Dict().
			Str("name", entry.Exception.Name).
			Str("message", entry.Exception.Message).
			Str("stack", entry.Exception.Stack))
	}
	if !f.OmitProperties && entry.Properties.Len() > 0 {
		fields := make([]any, 0, 2*entry.Properties.Len())
		entry.Properties.Range(func(key string, value any) bool {
			fields = append(fields, key, value)
			return true
		})
		ev.Dict("properties", zerolog.Dict().Fields(fields))
	}
	ev.Msg(entry.Message)
}

// zerologLevel maps telemetry severities onto zerolog levels. Critical is
// labelled fatal; WithLevel never exits.
func zerologLevel(s core.Severity) zerolog.Level {
	switch s {
	case core.Verbose:
		return zerolog.TraceLevel
	case core.Information:
		return zerolog.InfoLevel
	case core.Warning:
		return zerolog.WarnLevel
	case core.Error:
		return zerolog.ErrorLevel
	case core.Critical:
		return zerolog.FatalLevel
	default:
		return zerolog.NoLevel
	}
}
