package template

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/philipp01105/insightslog/core"
)

// OriginalFormatKey is the reserved property that carries the template text.
const OriginalFormatKey = "OriginalFormat"

// maxCached bounds the number of parsed templates kept in the cache.
const maxCached = 1024

// segment is either a literal run of text or a hole.
type segment struct {
	literal string
	hole    bool
	name    string
	align   int
	raw     string // hole text including braces, written back when unbound
}

// Template is a parsed message template. It is immutable and safe for
// concurrent use.
type Template struct {
	text     string
	segments []segment
	names    []string // distinct hole names in first-occurrence order
	holes    int
}

var (
	cache     sync.Map // string -> *Template
	cacheSize atomic.Int64
)

// Parse parses text, reusing a cached result when one exists.
func Parse(text string) *Template {
	if t, ok := cache.Load(text); ok {
		return t.(*Template)
	}
	t := parse(text)
	if cacheSize.Load() < maxCached {
		if _, loaded := cache.LoadOrStore(text, t); !loaded {
			cacheSize.Add(1)
		}
	}
	return t
}

// Text returns the unmodified template text.
func (t *Template) Text() string { return t.text }

// Names returns the distinct hole names in first-occurrence order.
func (t *Template) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Format renders text with args. See Template.Render.
func Format(text string, args []any) (string, []core.Property) {
	return Parse(text).Render(args)
}

// Render substitutes args into the holes and returns the message together
// with one property per distinct hole name (last value wins, first
// occurrence order) and the trailing OriginalFormat property.
func (t *Template) Render(args []any) (string, []core.Property) {
	props := make([]core.Property, 0, len(t.names)+1)
	if t.holes == 0 {
		return t.text, append(props, core.Property{Key: OriginalFormatKey, Value: t.text})
	}

	index := make(map[string]int, len(t.names))
	var sb strings.Builder
	sb.Grow(len(t.text) + 16*t.holes)

	pos := 0
	for _, seg := range t.segments {
		if !seg.hole {
			sb.WriteString(seg.literal)
			continue
		}
		if pos >= len(args) {
			sb.WriteString(seg.raw)
			pos++
			continue
		}
		value := core.Stringify(args[pos])
		pos++
		sb.WriteString(pad(value, seg.align))

		if seg.name == OriginalFormatKey {
			continue
		}
		if i, ok := index[seg.name]; ok {
			props[i].Value = value
			continue
		}
		index[seg.name] = len(props)
		props = append(props, core.Property{Key: seg.name, Value: value})
	}

	return sb.String(), append(props, core.Property{Key: OriginalFormatKey, Value: t.text})
}

// pad aligns s to align runes.
func pad(s string, align int) string {
	n := utf8.RuneCountInString(s)
	switch {
	case align > 0 && n < align:
		return strings.Repeat(" ", align-n) + s
	case align < 0 && n < -align:
		return s + strings.Repeat(" ", -align-n)
	default:
		return s
	}
}

func parse(text string) *Template {
	t := &Template{text: text}
	seen := make(map[string]struct{})

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '{' && i+1 < len(text) && text[i+1] == '{':
			lit.WriteByte('{')
			i++
		case c == '}' && i+1 < len(text) && text[i+1] == '}':
			lit.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				// Unclosed brace, the rest is literal
				lit.WriteString(text[i:])
				i = len(text)
				continue
			}
			if strings.IndexByte(text[i+1:i+1+end], '{') >= 0 {
				// The hole restarts at the inner brace
				lit.WriteByte('{')
				continue
			}
			raw := text[i : i+end+2]
			name, align := parseHole(raw[1 : len(raw)-1])
			if name == "" {
				lit.WriteString(raw)
				i += end + 1
				continue
			}
			flush()
			t.segments = append(t.segments, segment{hole: true, name: name, align: align, raw: raw})
			t.holes++
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				t.names = append(t.names, name)
			}
			i += end + 1
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return t
}

// parseHole splits "name,alignment:format" into the name and alignment.
func parseHole(s string) (string, int) {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	align := 0
	if i := strings.IndexByte(s, ','); i >= 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(s[i+1:])); err == nil {
			align = n
		}
		s = s[:i]
	}
	return strings.TrimSpace(s), align
}
