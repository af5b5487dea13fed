package core

import (
	"testing"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{TraceLevel, "Trace"},
		{DebugLevel, "Debug"},
		{InformationLevel, "Information"},
		{WarningLevel, "Warning"},
		{ErrorLevel, "Error"},
		{CriticalLevel, "Critical"},
		{NoneLevel, "None"},
		{Level(42), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToSeverity(t *testing.T) {
	tests := []struct {
		level Level
		want  Severity
	}{
		{TraceLevel, Verbose},
		{DebugLevel, Verbose},
		{InformationLevel, Information},
		{WarningLevel, Warning},
		{ErrorLevel, Error},
		{CriticalLevel, Critical},
		{Level(99), Verbose},
		{Level(-3), Verbose},
	}

	for _, tt := range tests {
		t.Run(tt.level.String()+"->"+tt.want.String(), func(t *testing.T) {
			if got := ToSeverity(tt.level); got != tt.want {
				t.Errorf("ToSeverity(%d) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestEventID_IsZero(t *testing.T) {
	if !(EventID{}).IsZero() {
		t.Error("zero EventID should report IsZero")
	}
	if (EventID{ID: 1}).IsZero() {
		t.Error("EventID with id should not be zero")
	}
	if (EventID{Name: "n"}).IsZero() {
		t.Error("EventID with name should not be zero")
	}
}

func TestEntryPool(t *testing.T) {
	// Get an entry from the pool
	e1 := GetEntry()
	if e1 == nil {
		t.Fatal("GetEntry() returned nil")
	}

	// Add some data
	e1.Message = "test"
	e1.Kind = ExceptionKind
	e1.Properties = NewPropertyBag(1)
	e1.Properties.Set("test", "value")

	// Return to pool
	PutEntry(e1)

	// Get another entry
	e2 := GetEntry()
	if e2 == nil {
		t.Fatal("GetEntry() returned nil after PutEntry()")
	}

	// Verify it's clean
	if e2.Message != "" {
		t.Errorf("Expected empty message after pool reset, got %q", e2.Message)
	}
	if e2.Properties != nil {
		t.Errorf("Expected nil properties after pool reset, got %d entries", e2.Properties.Len())
	}
	if e2.Kind != TraceKind {
		t.Errorf("Expected trace kind after pool reset, got %v", e2.Kind)
	}
}

func TestEntry_Telemetry(t *testing.T) {
	bag := NewPropertyBag(1)
	bag.Set("OriginalFormat", "boom")

	e := &Entry{
		Kind:       ExceptionKind,
		Severity:   Error,
		Exception:  &ErrorInfo{Name: "X", Message: "boom"},
		ID:         "0",
		Properties: bag,
	}
	ex := e.ExceptionTelemetry()
	if ex.ID != "0" || ex.Severity != Error || ex.Exception.Message != "boom" {
		t.Errorf("unexpected exception payload: %+v", ex)
	}
	if ex.Properties != bag {
		t.Error("exception payload should share the entry bag")
	}

	e.Kind = TraceKind
	e.Message = "hello"
	tr := e.Trace()
	if tr.Message != "hello" || tr.Severity != Error {
		t.Errorf("unexpected trace payload: %+v", tr)
	}
}

func BenchmarkGetEntry(b *testing.B) {
	for i := 0; i < b.N; i++ {
		e := GetEntry()
		PutEntry(e)
	}
}
