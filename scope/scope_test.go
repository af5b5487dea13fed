package scope

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipp01105/insightslog/core"
)

func TestFormat_PlainScopesBuildPath(t *testing.T) {
	p := NewContextProvider()
	ctx := context.Background()

	ctx, releaseOuter := p.Push(ctx, Text("Outer Scope"))
	defer releaseOuter()
	ctx, releaseMiddle := p.Push(ctx, Text("Middle Scope"))
	defer releaseMiddle()
	ctx, releaseInner := p.Push(ctx, Text("Inner Scope"))
	defer releaseInner()

	path, props := Format(ctx, p)

	assert.Equal(t, " => Outer Scope => Middle Scope => Inner Scope", path)
	assert.Empty(t, props)
}

func TestFormat_StructuredScope(t *testing.T) {
	p := NewContextProvider()
	ctx, release := p.Push(context.Background(), Props(
		core.Property{Key: "Key1", Value: "Val1"},
		core.Property{Key: "Key2", Value: "Val2"},
	))
	defer release()

	path, props := Format(ctx, p)

	assert.Empty(t, path)
	assert.Equal(t, []core.Property{
		{Key: "Key1", Value: "Val1"},
		{Key: "Key2", Value: "Val2"},
	}, props)
}

func TestFormat_InnerStructuredWins(t *testing.T) {
	p := NewContextProvider()
	ctx, _ := p.Push(context.Background(), Props(
		core.Property{Key: "Tenant", Value: "outer"},
		core.Property{Key: "Region", Value: "eu"},
	))
	ctx, _ = p.Push(ctx, Text("request"))
	ctx, _ = p.Push(ctx, Props(core.Property{Key: "Tenant", Value: "inner"}))

	path, props := Format(ctx, p)

	assert.Equal(t, " => request", path)
	assert.Equal(t, []core.Property{
		{Key: "Tenant", Value: "inner"},
		{Key: "Region", Value: "eu"},
	}, props)
}

func TestFormat_NoScopes(t *testing.T) {
	path, props := Format(context.Background(), NewContextProvider())
	assert.Empty(t, path)
	assert.Empty(t, props)

	path, props = Format(context.Background(), nil)
	assert.Empty(t, path)
	assert.Empty(t, props)
}

func TestPush_ReleaseIsIdempotent(t *testing.T) {
	p := NewContextProvider()
	ctx, releaseOuter := p.Push(context.Background(), Text("outer"))
	inner, releaseInner := p.Push(ctx, Text("inner"))

	require.Equal(t, 2, p.Depth(inner))

	releaseInner()
	releaseInner()
	assert.Equal(t, 1, p.Depth(inner))
	assert.Equal(t, 1, p.Depth(ctx))

	releaseOuter()
	assert.Equal(t, 0, p.Depth(inner))
}

func TestPush_ReleaseOnPanic(t *testing.T) {
	p := NewContextProvider()
	var captured context.Context

	func() {
		defer func() { _ = recover() }()
		ctx, release := p.Push(context.Background(), Text("doomed"))
		defer release()
		captured = ctx
		panic("boom")
	}()

	assert.Equal(t, 0, p.Depth(captured))
}

func TestPush_ConcurrentContextsAreIsolated(t *testing.T) {
	p := NewContextProvider()
	root, release := p.Push(context.Background(), Text("root"))
	defer release()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx, done := p.Push(root, Text(fmt.Sprintf("worker-%d", i)))
			defer done()

			path, _ := Format(ctx, p)
			assert.Equal(t, fmt.Sprintf(" => root => worker-%d", i), path)
		}(i)
	}
	wg.Wait()

	path, _ := Format(root, p)
	assert.Equal(t, " => root", path)
}

func TestFrom(t *testing.T) {
	assert.Equal(t, Text("plain"), From("plain"))
	assert.True(t, From(map[string]any{"b": 1, "a": 2}).Structured())
	assert.Equal(t, []core.Property{{Key: "a", Value: 2}, {Key: "b", Value: 1}},
		From(map[string]any{"b": 1, "a": 2}).Properties())
	assert.Equal(t, []core.Property{{Key: "k", Value: "v"}},
		From(map[string]string{"k": "v"}).Properties())
	assert.Equal(t, "42", From(42).String())
	assert.False(t, From(42).Structured())

	v := Props(core.Property{Key: "x", Value: 1})
	assert.Equal(t, v, From(v))
}
