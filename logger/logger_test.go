package logger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trickstertwo/xclock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/philipp01105/insightslog/core"
	"github.com/philipp01105/insightslog/options"
	"github.com/philipp01105/insightslog/scope"
)

// recordingSink keeps a copy of every record it receives.
type recordingSink struct {
	mu      sync.Mutex
	entries []core.Entry
	err     error
}

func (s *recordingSink) Handle(e *core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *e)
	return s.err
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *recordingSink) Last(t *testing.T) core.Entry {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.entries, "no record reached the sink")
	return s.entries[len(s.entries)-1]
}

type InvalidOperationError struct {
	msg string
}

func (e *InvalidOperationError) Error() string { return e.msg }

type panicStringer struct{}

func (panicStringer) String() string { panic("broken stringer") }

func newProvider(t *testing.T, opts options.Options) (*Provider, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	p, err := NewBuilder().WithSink(sink).WithOptions(opts).Build()
	require.NoError(t, err)
	return p, sink
}

func noExtras() options.Options {
	return options.Options{}
}

func TestBuild_RequiresSink(t *testing.T) {
	_, err := NewBuilder().Build()
	assert.ErrorIs(t, err, ErrNoSink)
}

func TestLog_OneSinkCallPerLevel(t *testing.T) {
	p, sink := newProvider(t, options.Default())
	l := p.Logger("levels")

	levels := []core.Level{TraceLevel, DebugLevel, InformationLevel, WarningLevel, ErrorLevel, CriticalLevel}
	for i, level := range levels {
		l.Log(context.Background(), level, core.EventID{}, nil, "message")
		assert.Equal(t, i+1, sink.Len(), "level %s", level)
		assert.Equal(t, core.ToSeverity(level), sink.Last(t).Severity)
	}
}

func TestLog_NoneIsFiltered(t *testing.T) {
	p, sink := newProvider(t, options.Options{
		IncludeCategoryName: true,
		IncludeScopes:       true,
		Enrich:              func(*core.PropertyBag) { t.Fatal("enrich called for None") },
	})
	l := p.Logger("none")

	l.Log(context.Background(), NoneLevel, core.EventID{ID: 1}, errors.New("ignored"), "{a}", 1)

	assert.Equal(t, 0, sink.Len())
	assert.False(t, l.Enabled(NoneLevel))
	assert.True(t, l.Enabled(TraceLevel))
}

func TestLog_TemplateOnly(t *testing.T) {
	p, sink := newProvider(t, noExtras())

	p.Logger("cat").Info(context.Background(), "Hello")

	e := sink.Last(t)
	assert.Equal(t, core.TraceKind, e.Kind)
	assert.Equal(t, "Hello", e.Message)
	assert.Equal(t, []string{"OriginalFormat"}, e.Properties.Keys())
	v, _ := e.Properties.Get("OriginalFormat")
	assert.Equal(t, "Hello", v)
}

func TestLog_CategoryWithoutScopes(t *testing.T) {
	p, sink := newProvider(t, options.Options{IncludeCategoryName: true})
	ctx, end := p.Logger("orders").BeginScope(context.Background(), "ignored scope")
	defer end()

	p.Logger("orders").Info(ctx, "Hello")

	e := sink.Last(t)
	assert.Equal(t, "Hello", e.Message)
	assert.Equal(t, []string{"CategoryName", "OriginalFormat"}, e.Properties.Keys())
	v, _ := e.Properties.Get("CategoryName")
	assert.Equal(t, "orders", v)
	assert.Equal(t, "orders", e.Category)
}

func TestLog_NestedPlainScopes(t *testing.T) {
	p, sink := newProvider(t, options.Options{IncludeScopes: true})
	l := p.Logger("scopes")

	ctx, endOuter := l.BeginScope(context.Background(), "Outer Scope")
	defer endOuter()
	ctx, endMiddle := l.BeginScope(ctx, "Middle Scope")
	defer endMiddle()
	ctx, endInner := l.BeginScope(ctx, "Inner Scope")
	defer endInner()

	l.Info(ctx, "Test message")

	e := sink.Last(t)
	assert.Equal(t, " => Outer Scope => Middle Scope => Inner Scope => Test message", e.Message)
	assert.Equal(t, []string{"OriginalFormat"}, e.Properties.Keys())
}

func TestLog_StructuredScope(t *testing.T) {
	p, sink := newProvider(t, options.Options{IncludeScopes: true})
	l := p.Logger("scopes")

	ctx, end := l.BeginScope(context.Background(), []core.Property{
		String("Key1", "Val1"),
		String("Key2", "Val2"),
	})
	defer end()

	l.Info(ctx, "Test message")

	e := sink.Last(t)
	assert.Equal(t, "Test message", e.Message)
	assert.Equal(t, []string{"Key1", "Key2", "OriginalFormat"}, e.Properties.Keys())
	v, _ := e.Properties.Get("Key2")
	assert.Equal(t, "Val2", v)
}

func TestLog_ReleasedScopeIsHidden(t *testing.T) {
	p, sink := newProvider(t, options.Options{IncludeScopes: true})
	l := p.Logger("scopes")

	ctx, end := l.BeginScope(context.Background(), "Gone")
	end()
	end()

	l.Info(ctx, "after")
	assert.Equal(t, "after", sink.Last(t).Message)
}

func TestLog_TemplateArguments(t *testing.T) {
	p, sink := newProvider(t, noExtras())

	p.Logger("chat").Info(context.Background(),
		"{SourceUserId} sent a message to {DestinationUserId}", 1234, 4321)

	e := sink.Last(t)
	assert.Equal(t, "1234 sent a message to 4321", e.Message)
	assert.Equal(t, []core.Property{
		{Key: "SourceUserId", Value: "1234"},
		{Key: "DestinationUserId", Value: "4321"},
		{Key: "OriginalFormat", Value: "{SourceUserId} sent a message to {DestinationUserId}"},
	}, e.Properties.Properties())
}

func TestLog_EventID(t *testing.T) {
	p, sink := newProvider(t, noExtras())

	p.Logger("events").Log(context.Background(), InformationLevel, EventID{ID: 1234, Name: "Name"}, nil, "Test message")

	e := sink.Last(t)
	assert.Equal(t, []core.Property{
		{Key: "EventId", Value: "1234"},
		{Key: "EventName", Value: "Name"},
		{Key: "OriginalFormat", Value: "Test message"},
	}, e.Properties.Properties())
}

func TestLog_PropertyOrder(t *testing.T) {
	p, sink := newProvider(t, options.Options{
		IncludeCategoryName: true,
		IncludeScopes:       true,
		Enrich: func(b *core.PropertyBag) {
			b.Set("EnrichedKey", "EnrichedValue")
		},
	})
	l := p.Logger("order")

	ctx, end := l.BeginScope(context.Background(), map[string]any{"Tenant": "acme"})
	defer end()

	l.Log(ctx, WarningLevel, EventID{ID: 7}, nil, "Charged {Amount}", 12.5)

	e := sink.Last(t)
	assert.Equal(t, []string{"Tenant", "CategoryName", "EventId", "EventName", "Amount", "OriginalFormat", "EnrichedKey"},
		e.Properties.Keys())
}

func TestLog_EnrichCannotReplaceOriginalFormat(t *testing.T) {
	p, sink := newProvider(t, options.Options{
		Enrich: func(b *core.PropertyBag) {
			b.Set("OriginalFormat", "tampered")
			b.Set("EnrichedKey", "EnrichedValue")
		},
	})

	p.Logger("enrich").Info(context.Background(), "Test {Value}", 1)

	e := sink.Last(t)
	assert.Equal(t, []string{"Value", "OriginalFormat", "EnrichedKey"}, e.Properties.Keys())
	v, _ := e.Properties.Get("OriginalFormat")
	assert.Equal(t, "Test {Value}", v)
}

func TestLog_EnrichPanicPropagates(t *testing.T) {
	p, sink := newProvider(t, options.Options{
		Enrich: func(*core.PropertyBag) { panic("enricher bug") },
	})

	assert.PanicsWithValue(t, "enricher bug", func() {
		p.Logger("enrich").Info(context.Background(), "boom")
	})
	assert.Equal(t, 0, sink.Len())
}

func TestLog_RenderPanicDegrades(t *testing.T) {
	p, sink := newProvider(t, noExtras())

	assert.NotPanics(t, func() {
		p.Logger("render").Info(context.Background(), "Value {V}", panicStringer{})
	})

	e := sink.Last(t)
	assert.Equal(t, "Value {V}", e.Message)
	assert.Equal(t, []string{"OriginalFormat"}, e.Properties.Keys())
}

func TestLog_Exception(t *testing.T) {
	p, sink := newProvider(t, options.Default())

	err := &InvalidOperationError{msg: "Invalid state"}
	p.Logger("errors").Error(context.Background(), err, "Operation failed")

	e := sink.Last(t)
	assert.Equal(t, core.ExceptionKind, e.Kind)
	require.NotNil(t, e.Exception)
	assert.Equal(t, "InvalidOperationError", e.Exception.Name)
	assert.Equal(t, "Invalid state", e.Exception.Message)
	assert.Equal(t, core.Error, e.Severity)
	assert.Equal(t, "0", e.ID)
	assert.Equal(t, []string{"CategoryName", "OriginalFormat"}, e.Properties.Keys())
}

type codeError struct {
	code int
}

func (e *codeError) Error() string { return fmt.Sprintf("code %d", e.code) }

func TestLog_TypedNilErrorDegrades(t *testing.T) {
	obsCore, logs := observer.New(zapcore.WarnLevel)
	sink := &recordingSink{}
	p, err := NewBuilder().
		WithSink(sink).
		WithOptions(noExtras()).
		WithDiagnostics(zap.New(obsCore)).
		Build()
	require.NoError(t, err)

	var nilErr *codeError
	assert.NotPanics(t, func() {
		p.Logger("errors").Error(context.Background(), error(nilErr), "failed")
	})

	require.Equal(t, 1, sink.Len())
	e := sink.Last(t)
	assert.Equal(t, core.ExceptionKind, e.Kind)
	require.NotNil(t, e.Exception)
	assert.Equal(t, "codeError", e.Exception.Name)
	assert.Equal(t, "<nil>", e.Exception.Message)
	assert.Equal(t, "failed", e.Message)
	assert.Equal(t, []string{"OriginalFormat"}, e.Properties.Keys())

	require.Equal(t, 1, logs.FilterMessage("error description failed").Len())
	assert.Equal(t, "*logger.codeError", logs.All()[0].ContextMap()["type"])
}

func TestLog_ErrorWithoutErrIsTrace(t *testing.T) {
	p, sink := newProvider(t, options.Default())

	p.Logger("errors").Critical(context.Background(), nil, "Just text")

	e := sink.Last(t)
	assert.Equal(t, core.TraceKind, e.Kind)
	assert.Equal(t, core.Critical, e.Severity)
	assert.Nil(t, e.Exception)
}

func TestLog_UsesClock(t *testing.T) {
	old := xclock.Default()
	defer xclock.SetDefault(old)
	ft := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	xclock.SetDefault(xclock.NewFrozen(ft))

	p, sink := newProvider(t, noExtras())
	p.Logger("clock").Info(context.Background(), "tick")

	assert.True(t, sink.Last(t).Time.Equal(ft))
}

func TestLog_SinkErrorGoesToDiagnostics(t *testing.T) {
	obsCore, logs := observer.New(zapcore.WarnLevel)
	sink := &recordingSink{err: errors.New("sink down")}
	p, err := NewBuilder().
		WithSink(sink).
		WithDiagnostics(zap.New(obsCore)).
		Build()
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		p.Logger("diag").Info(context.Background(), "lost")
	})

	require.Equal(t, 1, logs.FilterMessage("telemetry sink rejected record").Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "diag", fields["category"])
	assert.Equal(t, "sink down", fields["error"])
}

func TestProvider_SameLoggerPerCategory(t *testing.T) {
	p, _ := newProvider(t, options.Default())

	const n = 64
	var (
		wg  sync.WaitGroup
		got [n]*Logger
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			got[i] = p.Logger("shared")
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, got[0], got[i])
	}
	assert.Equal(t, 1, p.Len())
	assert.NotSame(t, got[0], p.Logger("other"))
}

func TestProvider_ReloadUpdatesExistingLoggers(t *testing.T) {
	p, sink := newProvider(t, noExtras())
	l := p.Logger("reload")

	l.Info(context.Background(), "before")
	assert.Equal(t, []string{"OriginalFormat"}, sink.Last(t).Properties.Keys())

	p.ReloadOptions(options.Options{IncludeCategoryName: true})
	l.Info(context.Background(), "after")

	assert.Same(t, l, p.Logger("reload"))
	assert.Equal(t, []string{"CategoryName", "OriginalFormat"}, sink.Last(t).Properties.Keys())
	assert.True(t, p.Options().IncludeCategoryName)
}

func TestProvider_OptionsSource(t *testing.T) {
	monitor := options.NewMonitor(options.Options{})
	sink := &recordingSink{}
	p, err := NewBuilder().WithSink(sink).WithOptionsSource(monitor).Build()
	require.NoError(t, err)
	l := p.Logger("source")

	monitor.Set(options.Options{IncludeCategoryName: true})
	l.Info(context.Background(), "reloaded")
	assert.Equal(t, []string{"CategoryName", "OriginalFormat"}, sink.Last(t).Properties.Keys())

	require.NoError(t, p.Close())
	assert.Equal(t, 0, monitor.Subscribers())

	// Changes after Close are no longer applied
	monitor.Set(options.Options{})
	l.Info(context.Background(), "closed")
	assert.Equal(t, []string{"CategoryName", "OriginalFormat"}, sink.Last(t).Properties.Keys())
}

// lateSource publishes next while a subscription is being registered, the
// way a concurrent writer can slip in between reading and subscribing.
type lateSource struct {
	*options.Monitor
	next options.Options
}

func (s *lateSource) OnChange(fn func(options.Options)) func() {
	s.Monitor.Set(s.next)
	return s.Monitor.OnChange(fn)
}

func TestProvider_OptionsSourceChangeDuringBuild(t *testing.T) {
	src := &lateSource{
		Monitor: options.NewMonitor(options.Options{}),
		next:    options.Options{IncludeCategoryName: true},
	}
	sink := &recordingSink{}
	p, err := NewBuilder().WithSink(sink).WithOptionsSource(src).Build()
	require.NoError(t, err)

	assert.True(t, p.Options().IncludeCategoryName)
	p.Logger("late").Info(context.Background(), "built")
	assert.Equal(t, []string{"CategoryName", "OriginalFormat"}, sink.Last(t).Properties.Keys())
}

func TestProvider_CloseIsIdempotent(t *testing.T) {
	p, sink := newProvider(t, options.Default())
	l := p.Logger("dispose")

	for i := 0; i < 3; i++ {
		assert.NoError(t, p.Close())
	}

	l.Info(context.Background(), "still works")
	assert.Equal(t, 1, sink.Len())
	assert.Same(t, l, p.Logger("dispose"))
}

func TestProvider_SetScopeProvider(t *testing.T) {
	p, sink := newProvider(t, options.Options{IncludeScopes: true})
	l := p.Logger("scopes")

	ctx, end := l.BeginScope(context.Background(), "Active")
	defer end()

	p.SetScopeProvider(nil)
	l.Info(ctx, "no provider")
	assert.Equal(t, "no provider", sink.Last(t).Message)

	_, noop := l.BeginScope(ctx, "ignored")
	noop()

	p.SetScopeProvider(scope.NewContextProvider())
	l.Info(ctx, "provider back")
	assert.Equal(t, " => Active => provider back", sink.Last(t).Message)
	assert.NotNil(t, p.ScopeProvider())
}

func TestLog_ConcurrentScopesAreIsolated(t *testing.T) {
	p, sink := newProvider(t, options.Options{IncludeScopes: true})
	l := p.Logger("concurrent")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx, end := l.BeginScope(context.Background(), fmt.Sprintf("worker-%d", i))
			defer end()
			l.Info(ctx, "done")
		}(i)
	}
	wg.Wait()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.entries, 16)
	for _, e := range sink.entries {
		assert.Regexp(t, `^ => worker-\d+ => done$`, e.Message)
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, TraceLevel, ParseLevel("verbose"))
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, InformationLevel, ParseLevel("Information"))
	assert.Equal(t, WarningLevel, ParseLevel("warn"))
	assert.Equal(t, ErrorLevel, ParseLevel("ERROR"))
	assert.Equal(t, CriticalLevel, ParseLevel("critical"))
	assert.Equal(t, NoneLevel, ParseLevel("none"))
	assert.Equal(t, InformationLevel, ParseLevel("bogus"))
}

func TestDefaultProvider(t *testing.T) {
	old := Default()
	defer SetDefault(old)

	p, sink := newProvider(t, noExtras())
	SetDefault(p)

	For("default").Info(context.Background(), "via default")
	assert.Equal(t, "via default", sink.Last(t).Message)
}
