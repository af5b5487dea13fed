package logger

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"sync/atomic"

	"github.com/trickstertwo/xclock"
	"go.uber.org/zap"

	"github.com/philipp01105/insightslog/core"
	"github.com/philipp01105/insightslog/handler"
	"github.com/philipp01105/insightslog/options"
	"github.com/philipp01105/insightslog/scope"
	"github.com/philipp01105/insightslog/template"
)

// Reserved property keys added by a Logger.
const (
	CategoryNameKey = "CategoryName"
	EventIDKey      = "EventId"
	EventNameKey    = "EventName"
)

// exceptionID is the record id attached to every exception record.
const exceptionID = "0"

// settings is the immutable view of provider state a Logger reads per call.
type settings struct {
	opts   options.Options
	scopes scope.Provider
}

// Logger translates log calls of one category into telemetry records.
// It is safe for concurrent use. Its settings are replaced as a whole by
// the owning Provider, so a call never observes a partial update.
type Logger struct {
	category string
	sink     handler.Handler
	recycle  bool
	diag     *zap.Logger
	settings atomic.Pointer[settings]
}

func newLogger(category string, sink handler.Handler, diag *zap.Logger, s *settings) *Logger {
	l := &Logger{
		category: category,
		sink:     sink,
		recycle:  handler.CanRecycle(sink),
		diag:     diag,
	}
	l.settings.Store(s)
	return l
}

// Category returns the category name the logger was created for.
func (l *Logger) Category() string {
	return l.category
}

// Enabled reports whether a call at level produces a record.
func (l *Logger) Enabled(level core.Level) bool {
	return level != core.NoneLevel
}

// BeginScope pushes state onto the scope stack carried by ctx. Strings and
// other scalars become plain scopes that decorate the message; properties
// and string-keyed maps become structured scopes. The returned function
// retires exactly this scope and is safe to call more than once:
//
//	ctx, end := log.BeginScope(ctx, "Checkout")
//	defer end()
func (l *Logger) BeginScope(ctx context.Context, state any) (context.Context, func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	s := l.settings.Load()
	if s.scopes == nil {
		return ctx, func() {}
	}
	return s.scopes.Push(ctx, scope.From(state))
}

// Log renders template with args and hands one record to the sink. A
// non-nil err turns the record into an exception record. Calls at
// NoneLevel are dropped without any work.
func (l *Logger) Log(ctx context.Context, level core.Level, eventID core.EventID, err error, tmpl string, args ...any) {
	if level == core.NoneLevel {
		return
	}
	l.log(ctx, level, eventID, err, tmpl, args)
}

func (l *Logger) log(ctx context.Context, level core.Level, eventID core.EventID, err error, tmpl string, args []any) {
	s := l.settings.Load()

	var (
		path       string
		scopeProps []core.Property
	)
	if s.opts.IncludeScopes && s.scopes != nil {
		path, scopeProps = scope.Format(ctx, s.scopes)
	}

	message, argProps := l.render(tmpl, args)

	bag := core.NewPropertyBag(len(scopeProps) + len(argProps) + 3)
	bag.Append(scopeProps...)
	if s.opts.IncludeCategoryName {
		bag.Set(CategoryNameKey, l.category)
	}
	if !eventID.IsZero() {
		bag.Set(EventIDKey, strconv.Itoa(eventID.ID))
		bag.Set(EventNameKey, eventID.Name)
	}
	bag.Append(argProps...)
	if s.opts.Enrich != nil {
		s.opts.Enrich(bag)
		bag.Set(template.OriginalFormatKey, tmpl)
	}

	if path != "" {
		message = path + scope.PathSeparator + message
	}

	entry := core.GetEntry()
	entry.Time = xclock.Now()
	entry.Severity = core.ToSeverity(level)
	entry.Message = message
	entry.Category = l.category
	entry.Properties = bag
	if err != nil {
		entry.Kind = core.ExceptionKind
		entry.Exception = l.errorInfo(err)
		entry.ID = exceptionID
	}

	if herr := l.sink.Handle(entry); herr != nil {
		l.diag.Warn("telemetry sink rejected record",
			zap.String("category", l.category),
			zap.Stringer("kind", entry.Kind),
			zap.Error(herr))
	}

	if l.recycle {
		core.PutEntry(entry)
	}
}

// render formats the template. A panic raised while stringifying an
// argument degrades to the raw template.
func (l *Logger) render(tmpl string, args []any) (message string, props []core.Property) {
	defer func() {
		if r := recover(); r != nil {
			l.diag.Warn("message template rendering failed",
				zap.String("category", l.category),
				zap.String("template", tmpl),
				zap.Any("panic", r))
			message = tmpl
			props = []core.Property{{Key: template.OriginalFormatKey, Value: tmpl}}
		}
	}()
	return template.Format(tmpl, args)
}

// errorInfo describes err. A panic raised by the error's own methods, as a
// typed nil pointer does, degrades to the type name.
func (l *Logger) errorInfo(err error) (info *core.ErrorInfo) {
	defer func() {
		if r := recover(); r != nil {
			l.diag.Warn("error description failed",
				zap.String("category", l.category),
				zap.String("type", fmt.Sprintf("%T", err)),
				zap.Any("panic", r))
			info = &core.ErrorInfo{Name: core.TypeName(err), Message: nilErrorMessage(err, r)}
		}
	}()
	return core.NewErrorInfo(err)
}

func nilErrorMessage(err error, recovered any) string {
	if v := reflect.ValueOf(err); v.Kind() == reflect.Pointer && v.IsNil() {
		return "<nil>"
	}
	return fmt.Sprint(recovered)
}

// Trace logs a Trace level message
func (l *Logger) Trace(ctx context.Context, tmpl string, args ...any) {
	l.log(ctx, core.TraceLevel, core.EventID{}, nil, tmpl, args)
}

// Debug logs a Debug level message
func (l *Logger) Debug(ctx context.Context, tmpl string, args ...any) {
	l.log(ctx, core.DebugLevel, core.EventID{}, nil, tmpl, args)
}

// Info logs an Information level message
func (l *Logger) Info(ctx context.Context, tmpl string, args ...any) {
	l.log(ctx, core.InformationLevel, core.EventID{}, nil, tmpl, args)
}

// Warn logs a Warning level message
func (l *Logger) Warn(ctx context.Context, tmpl string, args ...any) {
	l.log(ctx, core.WarningLevel, core.EventID{}, nil, tmpl, args)
}

// Error logs an Error level message. A non-nil err produces an exception record.
func (l *Logger) Error(ctx context.Context, err error, tmpl string, args ...any) {
	l.log(ctx, core.ErrorLevel, core.EventID{}, err, tmpl, args)
}

// Critical logs a Critical level message. A non-nil err produces an exception record.
func (l *Logger) Critical(ctx context.Context, err error, tmpl string, args ...any) {
	l.log(ctx, core.CriticalLevel, core.EventID{}, err, tmpl, args)
}
