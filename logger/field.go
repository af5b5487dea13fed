package logger

import (
	"time"

	"github.com/philipp01105/insightslog/core"
)

// Property helpers for structured scopes:
//
//	ctx, end := log.BeginScope(ctx, []core.Property{
//	    logger.String("OrderId", id),
//	    logger.Int("Items", n),
//	})

// String creates a string property
func String(key, val string) core.Property {
	return core.Property{Key: key, Value: val}
}

// Int creates an int property
func Int(key string, val int) core.Property {
	return core.Property{Key: key, Value: val}
}

// Int64 creates an int64 property
func Int64(key string, val int64) core.Property {
	return core.Property{Key: key, Value: val}
}

// Float64 creates a float64 property
func Float64(key string, val float64) core.Property {
	return core.Property{Key: key, Value: val}
}

// Bool creates a bool property
func Bool(key string, val bool) core.Property {
	return core.Property{Key: key, Value: val}
}

// Time creates a time property
func Time(key string, val time.Time) core.Property {
	return core.Property{Key: key, Value: val}
}

// Duration creates a duration property
func Duration(key string, val time.Duration) core.Property {
	return core.Property{Key: key, Value: val}
}

// Any creates a property with any value
func Any(key string, val any) core.Property {
	return core.Property{Key: key, Value: val}
}
