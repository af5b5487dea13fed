package core

// Level is the severity of a log call as seen by the host logging API.
type Level int8

const (
	// TraceLevel for the most detailed diagnostic messages
	TraceLevel Level = iota
	// DebugLevel for debugging information
	DebugLevel
	// InformationLevel for the general flow of the application
	InformationLevel
	// WarningLevel for unexpected but recoverable events
	WarningLevel
	// ErrorLevel for failures of the current operation
	ErrorLevel
	// CriticalLevel for failures that require immediate attention
	CriticalLevel
	// NoneLevel disables logging; calls at this level are dropped
	NoneLevel
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "Trace"
	case DebugLevel:
		return "Debug"
	case InformationLevel:
		return "Information"
	case WarningLevel:
		return "Warning"
	case ErrorLevel:
		return "Error"
	case CriticalLevel:
		return "Critical"
	case NoneLevel:
		return "None"
	default:
		return "Unknown"
	}
}

// Severity is the telemetry backend's own importance scale.
type Severity int8

const (
	Verbose Severity = iota
	Information
	Warning
	Error
	Critical
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case Verbose:
		return "Verbose"
	case Information:
		return "Information"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	case Critical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// ToSeverity maps a host level onto the telemetry severity scale.
// Levels outside the known range map to Verbose. NoneLevel also maps to
// Verbose, but loggers drop such calls before asking.
func ToSeverity(l Level) Severity {
	switch l {
	case TraceLevel, DebugLevel:
		return Verbose
	case InformationLevel:
		return Information
	case WarningLevel:
		return Warning
	case ErrorLevel:
		return Error
	case CriticalLevel:
		return Critical
	default:
		return Verbose
	}
}

// EventID identifies a logged event. The zero value means "no event".
type EventID struct {
	ID   int
	Name string
}

// IsZero reports whether the event id carries neither a number nor a name.
func (e EventID) IsZero() bool {
	return e.ID == 0 && e.Name == ""
}
