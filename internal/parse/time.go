package parse

import (
	"time"

	"logtarget/internal/document"
	"logtarget/internal/record"
)

// applyTimestamp takes the first parseable timestamp field out of d.
// Strings are RFC 3339; numbers are Unix seconds.
func applyTimestamp(rec *record.LogRecord, d *document.Document) {
	for _, key := range []string{"ts", "time", "@timestamp", "timestamp"} {
		v, ok := d.Get(key)
		if !ok {
			continue
		}
		if t, ok := toTime(v); ok {
			rec.Timestamp = t
			d.Delete(key)
			return
		}
	}
}

func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, x); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339, x); err == nil {
			return t, true
		}
	case int64:
		return time.Unix(x, 0), true
	case float64:
		sec := int64(x)
		return time.Unix(sec, int64((x-float64(sec))*float64(time.Second))), true
	}
	return time.Time{}, false
}
