package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Property is a single key/value pair of a property bag.
type Property struct {
	Key   string
	Value any
}

// PropertyBag is an insertion-ordered map of telemetry properties.
// Keys are unique: setting an existing key replaces its value but keeps
// the position of the first insertion.
//
// A PropertyBag is not safe for concurrent mutation. Loggers build one per
// call and hand it off; readers downstream must treat it as read-only.
type PropertyBag struct {
	keys   []string
	values map[string]any
}

// NewPropertyBag creates an empty bag with room for n properties.
func NewPropertyBag(n int) *PropertyBag {
	return &PropertyBag{
		keys:   make([]string, 0, n),
		values: make(map[string]any, n),
	}
}

// Set stores value under key.
func (b *PropertyBag) Set(key string, value any) {
	if _, ok := b.values[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.values[key] = value
}

// Append sets every property in order.
func (b *PropertyBag) Append(props ...Property) {
	for _, p := range props {
		b.Set(p.Key, p.Value)
	}
}

// Get returns the value stored under key.
func (b *PropertyBag) Get(key string) (any, bool) {
	if b == nil {
		return nil, false
	}
	v, ok := b.values[key]
	return v, ok
}

// Len returns the number of distinct keys.
func (b *PropertyBag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.keys)
}

// Keys returns the keys in first-insertion order.
func (b *PropertyBag) Keys() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

// Range calls fn for every property in order until fn returns false.
func (b *PropertyBag) Range(fn func(key string, value any) bool) {
	if b == nil {
		return
	}
	for _, k := range b.keys {
		if !fn(k, b.values[k]) {
			return
		}
	}
}

// Properties returns a copy of the bag as an ordered slice.
func (b *PropertyBag) Properties() []Property {
	if b == nil {
		return nil
	}
	out := make([]Property, len(b.keys))
	for i, k := range b.keys {
		out[i] = Property{Key: k, Value: b.values[k]}
	}
	return out
}

// MarshalJSON encodes the bag as a JSON object in insertion order.
func (b *PropertyBag) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range b.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(b.values[k])
		if err != nil {
			// Values that cannot be encoded fall back to their string form
			val, _ = json.Marshal(Stringify(b.values[k]))
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Stringify renders v independent of locale. nil renders as "".
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case time.Duration:
		return x.String()
	case []byte:
		return string(x)
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}
