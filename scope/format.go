package scope

import (
	"context"
	"strings"

	"github.com/philipp01105/insightslog/core"
)

// PathSeparator prefixes every plain scope in a scope path.
const PathSeparator = " => "

// Format builds the scope path and the merged structured properties for
// the scopes active in ctx. Structured scopes are merged outer to inner;
// an inner scope overwrites an outer one with the same key.
func Format(ctx context.Context, p Provider) (string, []core.Property) {
	if p == nil {
		return "", nil
	}

	var (
		path  strings.Builder
		props []core.Property
		index map[string]int
	)
	p.ForEach(ctx, func(v Value) {
		if !v.Structured() {
			path.WriteString(PathSeparator)
			path.WriteString(v.String())
			return
		}
		for _, prop := range v.Properties() {
			if index == nil {
				index = make(map[string]int)
			}
			if i, ok := index[prop.Key]; ok {
				props[i].Value = prop.Value
				continue
			}
			index[prop.Key] = len(props)
			props = append(props, prop)
		}
	})
	return path.String(), props
}
