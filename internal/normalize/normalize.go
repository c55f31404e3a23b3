// Package normalize turns log records of any payload shape into documents
// ready for indexing.
package normalize

import (
	"time"

	"logtarget/internal/document"
	"logtarget/internal/record"
)

// Reserved keys set by Normalize itself. Payload and context never win over
// them.
const (
	KeyMessage   = "@message"
	KeyLevel     = "level"
	KeyCategory  = "category"
	KeyTimestamp = "@timestamp"
	KeyTrace     = "trace"
	KeyDuration  = "duration"
	KeyInfo      = "info"
)

type Options struct {
	// BasePath is stripped from error source files when building "unique".
	BasePath string
	// Prefix, when set, yields a per-record string stored under "info".
	Prefix func(record.LogRecord) string
}

type Normalizer struct {
	opts Options
}

func New(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Normalize builds the document for rec. Context entries are merged over the
// payload fields and under the reserved fields; context can never replace
// "@message". The result depends only on its inputs: "@timestamp" is the
// record's own timestamp.
func (n *Normalizer) Normalize(rec record.LogRecord, context *document.Document) *document.Document {
	doc := n.Payload(rec.Payload)

	context.Range(func(k string, v any) bool {
		switch k {
		case KeyMessage, KeyLevel, KeyCategory, KeyTimestamp:
		default:
			doc.Set(k, document.Encodable(v))
		}
		return true
	})

	doc.Set(KeyLevel, rec.Level.Name())
	doc.Set(KeyCategory, rec.Category)
	doc.Set(KeyTimestamp, FormatTimestamp(rec.Timestamp))

	if len(rec.Trace) > 0 {
		doc.Set(KeyTrace, rec.Trace)
	}
	if rec.Duration != nil {
		doc.Set(KeyDuration, document.Encodable(*rec.Duration))
	}
	if n.opts.Prefix != nil {
		if p := n.opts.Prefix(rec); p != "" {
			doc.Set(KeyInfo, p)
		}
	}
	return doc
}

// FormatTimestamp renders t as ISO-8601 with its own zone offset.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}
