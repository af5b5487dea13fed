package formatter

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/philipp01105/insightslog/core"
)

// JSONFormatter formats telemetry records as one JSON object per line
type JSONFormatter struct {
	Config
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(cfg Config) *JSONFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339Nano
	}
	return &JSONFormatter{Config: cfg}
}

// Format formats an entry as JSON
func (f *JSONFormatter) Format(entry *core.Entry) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.formatJSONToBuffer(entry, buf)

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo formats an entry as JSON and writes it directly to the writer
func (f *JSONFormatter) FormatTo(entry *core.Entry, w io.Writer) error {
	buf := getBuffer()

	f.formatJSONToBuffer(entry, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// formatJSONToBuffer builds the JSON envelope manually into the buffer
func (f *JSONFormatter) formatJSONToBuffer(entry *core.Entry, buf *bytes.Buffer) {
	buf.WriteByte('{')

	buf.WriteString(`"time":"`)
	buf.Write(entry.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))
	buf.WriteByte('"')

	buf.WriteString(`,"kind":"`)
	buf.WriteString(entry.Kind.String())
	buf.WriteString(`","severityLevel":"`)
	buf.WriteString(entry.Severity.String())
	buf.WriteByte('"')

	if entry.Category != "" {
		buf.WriteString(`,"category":"`)
		appendJSONString(buf, entry.Category)
		buf.WriteByte('"')
	}

	if entry.Kind == core.ExceptionKind {
		buf.WriteString(`,"id":"`)
		appendJSONString(buf, entry.ID)
		buf.WriteByte('"')
		if ex := entry.Exception; ex != nil {
			buf.WriteString(`,"exception":{"name":"`)
			appendJSONString(buf, ex.Name)
			buf.WriteString(`","message":"`)
			appendJSONString(buf, ex.Message)
			buf.WriteByte('"')
			if ex.Stack != "" {
				buf.WriteString(`,"stack":"`)
				appendJSONString(buf, ex.Stack)
				buf.WriteByte('"')
			}
			buf.WriteByte('}')
		}
	} else {
		buf.WriteString(`,"message":"`)
		appendJSONString(buf, entry.Message)
		buf.WriteByte('"')
	}

	if !f.OmitProperties && entry.Properties.Len() > 0 {
		buf.WriteString(`,"properties":{`)
		first := true
		entry.Properties.Range(func(key string, value any) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			buf.WriteByte('"')
			appendJSONString(buf, key)
			buf.WriteString(`":`)
			appendJSONValue(buf, value)
			return true
		})
		buf.WriteByte('}')
	}

	buf.WriteString("}\n")
}

// appendJSONString writes a JSON-escaped string (without surrounding quotes) to the buffer
func appendJSONString(buf *bytes.Buffer, s string) {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		// Flush unescaped prefix
		if start < i {
			buf.WriteString(s[start:i])
		}
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexChars[c>>4])
			buf.WriteByte(hexChars[c&0x0f])
		}
		start = i + 1
	}
	// Flush remaining
	if start < len(s) {
		buf.WriteString(s[start:])
	}
}

var hexChars = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}

// appendJSONValue writes a JSON-encoded property value to the buffer.
// Common scalar types take a fast path; everything else goes through
// encoding/json and falls back to its string form.
func appendJSONValue(buf *bytes.Buffer, value any) {
	switch v := value.(type) {
	case nil:
		buf.WriteString("null")
	case string:
		buf.WriteByte('"')
		appendJSONString(buf, v)
		buf.WriteByte('"')
	case int:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(v), 10))
	case int64:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), v, 10))
	case int32:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(v), 10))
	case uint64:
		buf.Write(strconv.AppendUint(buf.AvailableBuffer(), v, 10))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf.WriteByte('"')
			buf.WriteString(core.Stringify(v))
			buf.WriteByte('"')
			return
		}
		buf.Write(strconv.AppendFloat(buf.AvailableBuffer(), v, 'f', -1, 64))
	case bool:
		buf.Write(strconv.AppendBool(buf.AvailableBuffer(), v))
	case time.Time:
		buf.WriteByte('"')
		buf.Write(v.AppendFormat(buf.AvailableBuffer(), time.RFC3339Nano))
		buf.WriteByte('"')
	case time.Duration:
		buf.WriteByte('"')
		buf.WriteString(v.String())
		buf.WriteByte('"')
	case error:
		buf.WriteByte('"')
		appendJSONString(buf, v.Error())
		buf.WriteByte('"')
	default:
		data, err := json.Marshal(v)
		if err != nil {
			buf.WriteByte('"')
			appendJSONString(buf, core.Stringify(v))
			buf.WriteByte('"')
			return
		}
		buf.Write(data)
	}
}
