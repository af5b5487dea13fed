package logger

import (
	"strings"

	"github.com/philipp01105/insightslog/core"
)

// Level Re-export type and constants for convenience
type Level = core.Level

const (
	TraceLevel       = core.TraceLevel
	DebugLevel       = core.DebugLevel
	InformationLevel = core.InformationLevel
	WarningLevel     = core.WarningLevel
	ErrorLevel       = core.ErrorLevel
	CriticalLevel    = core.CriticalLevel
	NoneLevel        = core.NoneLevel
)

// EventID Re-export for convenience
type EventID = core.EventID

// ParseLevel converts a string to a Level. Unknown names yield
// InformationLevel.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE", "VERBOSE":
		return TraceLevel
	case "DEBUG":
		return DebugLevel
	case "INFO", "INFORMATION":
		return InformationLevel
	case "WARN", "WARNING":
		return WarningLevel
	case "ERROR":
		return ErrorLevel
	case "CRITICAL", "FATAL":
		return CriticalLevel
	case "NONE", "OFF":
		return NoneLevel
	default:
		return InformationLevel
	}
}
