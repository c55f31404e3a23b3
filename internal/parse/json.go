package parse

import (
	"logtarget/internal/document"
	"logtarget/internal/record"
)

// ParseJSON uses d as the payload of rec after moving recognised metadata
// out of it. "message"/"msg" is renamed to "@message" when there is none.
func ParseJSON(rec *record.LogRecord, d *document.Document) {
	applyTimestamp(rec, d)

	for _, key := range []string{"level", "log.level", "severity"} {
		if s, ok := stringVal(d, key); ok {
			if l, ok := record.ParseLevel(s); ok {
				rec.Level = l
				d.Delete(key)
				break
			}
		}
	}
	if logObj, ok := d.Get("log"); ok {
		if nested, ok := logObj.(*document.Document); ok {
			if s, ok := stringVal(nested, "level"); ok {
				if l, ok := record.ParseLevel(s); ok {
					rec.Level = l
				}
			}
		}
	}

	for _, key := range []string{"category", "logger", "log.logger"} {
		if s, ok := stringVal(d, key); ok {
			rec.Category = s
			d.Delete(key)
			break
		}
	}

	if !d.Has("@message") {
		for _, key := range []string{"message", "msg"} {
			if s, ok := stringVal(d, key); ok {
				d.Delete(key)
				d.Set("@message", s)
				break
			}
		}
	}

	rec.Payload = d
}

func stringVal(d *document.Document, key string) (string, bool) {
	v, ok := d.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
