package record

import "time"

// LogRecord is one entry handed to the target by the host logging pipeline.
//
// Payload is polymorphic: a string, a *document.Document or map[string]any
// (structured mapping), an error, or any other value. Trace and Duration are
// optional and are left out of the normalized document when unset.
type LogRecord struct {
	Payload   any
	Level     Level
	Category  string
	Timestamp time.Time
	Trace     []Frame
	Duration  *float64
}

// Frame is one entry of a stack trace.
type Frame struct {
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Function string `json:"function,omitempty"`
}

// New is a shorthand for a record without trace or duration.
func New(payload any, level Level, category string, ts time.Time) LogRecord {
	return LogRecord{
		Payload:   payload,
		Level:     level,
		Category:  category,
		Timestamp: ts,
	}
}

// WithDuration returns a copy of r carrying a profiling duration.
func (r LogRecord) WithDuration(d float64) LogRecord {
	r.Duration = &d
	return r
}
