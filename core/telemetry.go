package core

// TraceTelemetry is the payload of a trace record.
type TraceTelemetry struct {
	Message    string       `json:"message"`
	Severity   Severity     `json:"severityLevel"`
	Properties *PropertyBag `json:"properties,omitempty"`
}

// ExceptionTelemetry is the payload of an exception record.
type ExceptionTelemetry struct {
	Exception  *ErrorInfo   `json:"exception"`
	ID         string       `json:"id"`
	Severity   Severity     `json:"severityLevel"`
	Properties *PropertyBag `json:"properties,omitempty"`
}
