package scope

import (
	"fmt"
	"sort"

	"github.com/philipp01105/insightslog/core"
)

// Value is a single scope: plain text or structured properties.
type Value struct {
	text       string
	props      []core.Property
	structured bool
}

// Text creates a plain scope.
func Text(s string) Value {
	return Value{text: s}
}

// Props creates a structured scope that keeps the given order.
func Props(props ...core.Property) Value {
	cp := make([]core.Property, len(props))
	copy(cp, props)
	return Value{props: cp, structured: true}
}

// Map creates a structured scope from a map. Keys are sorted so the
// resulting property order is deterministic.
func Map(m map[string]any) Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	props := make([]core.Property, len(keys))
	for i, k := range keys {
		props[i] = core.Property{Key: k, Value: m[k]}
	}
	return Value{props: props, structured: true}
}

// From converts an arbitrary scope state into a Value. Property lists and
// string-keyed maps become structured scopes; everything else is rendered
// into a plain scope.
func From(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case string:
		return Text(x)
	case core.Property:
		return Props(x)
	case []core.Property:
		return Props(x...)
	case map[string]any:
		return Map(x)
	case map[string]string:
		m := make(map[string]any, len(x))
		for k, s := range x {
			m[k] = s
		}
		return Map(m)
	case fmt.Stringer:
		return Text(x.String())
	default:
		return Text(core.Stringify(x))
	}
}

// Structured reports whether the scope carries properties instead of text.
func (v Value) Structured() bool { return v.structured }

// String returns the text of a plain scope.
func (v Value) String() string { return v.text }

// Properties returns the properties of a structured scope.
func (v Value) Properties() []core.Property { return v.props }
