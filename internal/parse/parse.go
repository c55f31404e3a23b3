// Package parse turns raw log lines from sources into log records.
package parse

import (
	"strings"
	"time"

	"logtarget/internal/document"
	"logtarget/internal/record"
)

// Defaults fill record metadata a line does not carry itself.
type Defaults struct {
	Category string
	Level    record.Level
}

// Line converts one raw line. A JSON object becomes a structured mapping
// payload with its level, category and timestamp lifted into the record;
// anything else is plain text. now is used when the line has no timestamp.
func Line(line string, def Defaults, now time.Time) record.LogRecord {
	rec := record.LogRecord{
		Level:     def.Level,
		Category:  def.Category,
		Timestamp: now,
	}
	if rec.Level == 0 {
		rec.Level = record.LevelInfo
	}

	s := strings.TrimSpace(line)
	if strings.HasPrefix(s, "{") {
		if d, err := document.Parse([]byte(s)); err == nil {
			ParseJSON(&rec, d)
			return rec
		}
	}
	ParsePlain(&rec, s)
	return rec
}
