package formatter

import (
	"bytes"
	"io"
	"time"

	"github.com/philipp01105/insightslog/core"
)

// TextFormatter formats telemetry records as human-readable text
type TextFormatter struct {
	Config
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(cfg Config) *TextFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339
	}
	return &TextFormatter{Config: cfg}
}

// Format formats an entry as text
func (f *TextFormatter) Format(entry *core.Entry) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.formatToBuffer(entry, buf)

	// Copy buffer content to return
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo formats an entry and writes it directly to the writer
func (f *TextFormatter) FormatTo(entry *core.Entry, w io.Writer) error {
	buf := getBuffer()

	f.formatToBuffer(entry, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// pre-formatted severity strings to avoid multiple WriteString calls
var severityBrackets = [...]string{
	core.Verbose:     " [Verbose] ",
	core.Information: " [Information] ",
	core.Warning:     " [Warning] ",
	core.Error:       " [Error] ",
	core.Critical:    " [Critical] ",
}

// formatToBuffer writes the formatted entry into the given buffer
func (f *TextFormatter) formatToBuffer(entry *core.Entry, buf *bytes.Buffer) {
	// Timestamp - use AppendFormat to avoid string allocation
	buf.Write(entry.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))

	if entry.Severity >= 0 && int(entry.Severity) < len(severityBrackets) {
		buf.WriteString(severityBrackets[entry.Severity])
	} else {
		buf.WriteString(" [Unknown] ")
	}

	if entry.Category != "" {
		buf.WriteString(entry.Category)
		buf.WriteString(": ")
	}

	if entry.Kind == core.ExceptionKind && entry.Exception != nil {
		buf.WriteString(entry.Exception.Name)
		buf.WriteString(": ")
		buf.WriteString(entry.Exception.Message)
	} else {
		buf.WriteString(entry.Message)
	}

	if !f.OmitProperties {
		entry.Properties.Range(func(key string, value any) bool {
			buf.WriteByte(' ')
			buf.WriteString(key)
			buf.WriteByte('=')
			buf.WriteString(core.Stringify(value))
			return true
		})
	}

	buf.WriteByte('\n')
}
