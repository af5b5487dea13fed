// Package logger is the public API of insightslog. It turns structured log
// calls into telemetry records and hands them to a handler.Handler.
//
// A Provider owns one Logger per category. Loggers are created on first
// use and cached for the life of the provider; concurrent requests for the
// same category always observe the same instance:
//
//	p, err := logger.NewBuilder().
//	    WithSink(sink).
//	    WithOptionsSource(monitor).
//	    Build()
//	log := p.Logger("checkout")
//
// Every call renders a message template such as "{User} bought {Count}
// items" and builds an ordered property bag: structured scope properties,
// CategoryName, EventId and EventName, the template arguments, and finally
// OriginalFormat carrying the unmodified template. An options Enrich hook
// runs last and may add keys, but OriginalFormat always keeps the template
// text. A non-nil error turns the record into an exception record.
//
// Scopes travel in the context.Context passed to every call:
//
//	ctx, end := log.BeginScope(ctx, "Checkout")
//	defer end()
//	log.Info(ctx, "Paid {Amount}", 12.5)
//
// Plain scopes decorate the message (" => Checkout => Paid 12.5");
// structured scopes ([]core.Property or map[string]any) contribute
// properties instead.
//
// Options reloads replace a Logger's settings atomically, so existing
// loggers pick up changes on their next call without being recreated.
// Failures reported by the sink go to the diagnostics zap logger and are
// never returned to the caller.
//
// NewSlogHandler and NewZapCore let code written against log/slog or zap
// produce the same records.
package logger
