// Package target buffers log records as documents and flushes them to an
// exporter, falling back to an emergency recorder when the export fails.
//
// A Target is not safe for concurrent use. The host must serialize calls to
// Collect and Close.
package target

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"

	"logtarget/internal/document"
	"logtarget/internal/emergency"
	"logtarget/internal/export"
	"logtarget/internal/metrics"
	"logtarget/internal/record"
)

type Normalizer interface {
	Normalize(rec record.LogRecord, context *document.Document) *document.Document
}

type ContextSource interface {
	Context(ctx context.Context) *document.Document
}

type EmergencyRecorder interface {
	Record(e emergency.Entry) error
}

type Options struct {
	// ExportInterval is the buffered document count that triggers a flush.
	// Zero disables count-based flushes; only final flushes happen.
	ExportInterval int
	Levels         record.Mask
	Categories     []string
	Except         []string
}

type Target struct {
	opts       Options
	filter     FilterFunc
	normalizer Normalizer
	context    ContextSource
	exporter   export.Exporter
	recorder   EmergencyRecorder
	metrics    *metrics.Metrics
	logger     *slog.Logger
	newID      func() string

	buffer []*document.Document
}

type Option func(*Target)

func WithFilter(f FilterFunc) Option {
	return func(t *Target) { t.filter = f }
}

func WithContext(c ContextSource) Option {
	return func(t *Target) { t.context = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Target) { t.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Target) { t.logger = l }
}

// WithFlushID replaces the UUID generator used to tag each flush.
func WithFlushID(fn func() string) Option {
	return func(t *Target) { t.newID = fn }
}

func New(opts Options, n Normalizer, exp export.Exporter, rec EmergencyRecorder, options ...Option) *Target {
	t := &Target{
		opts:       opts,
		filter:     FilterRecords,
		normalizer: n,
		exporter:   exp,
		recorder:   rec,
		logger:     slog.Default(),
		newID:      uuid.NewString,
	}
	for _, o := range options {
		o(t)
	}
	return t
}

// Collect filters records, normalizes the accepted ones into the buffer and
// flushes when final is set or the buffer reached ExportInterval. Failures
// end up in the emergency recorder; nothing is returned to the caller.
func (t *Target) Collect(ctx context.Context, records []record.LogRecord, final bool) {
	defer t.recoverPanic()

	accepted := t.filter(records, t.opts.Levels, t.opts.Categories, t.opts.Except)
	if len(accepted) > 0 {
		var c *document.Document
		if t.context != nil {
			c = t.context.Context(ctx)
		}
		for _, rec := range accepted {
			t.buffer = append(t.buffer, t.normalizer.Normalize(rec, c))
		}
		t.metrics.Collected(len(accepted))
	}

	count := len(t.buffer)
	if count > 0 && (final || (t.opts.ExportInterval > 0 && count >= t.opts.ExportInterval)) {
		t.flush(ctx)
	}
	t.metrics.BufferSize(len(t.buffer))
}

// Close flushes whatever is buffered.
func (t *Target) Close(ctx context.Context) {
	t.Collect(ctx, nil, true)
}

// Len returns the number of buffered documents.
func (t *Target) Len() int { return len(t.buffer) }

// Buffered returns a copy of the buffer.
func (t *Target) Buffered() []*document.Document {
	out := make([]*document.Document, len(t.buffer))
	copy(out, t.buffer)
	return out
}

// flush exports the whole buffer and clears it whatever the outcome. A
// repeatedly failing backend therefore loses documents from the buffer; the
// emergency file is the only copy left.
func (t *Target) flush(ctx context.Context) {
	batch := t.buffer
	defer func() { t.buffer = nil }()

	flushID := t.newID()
	t.metrics.Flushed()

	out := t.exporter.Export(ctx, batch)
	t.metrics.Exported(out.Sent)
	t.metrics.ItemFailures(len(out.Failures))

	for _, f := range out.Failures {
		t.record(emergency.Entry{
			Data:         itemFailureData(out.Destination, f, flushID),
			IncludeQueue: true,
			Queue:        batch,
		})
	}

	if out.Fault != nil {
		t.metrics.TransportFailure()
		t.record(emergency.Entry{Data: faultData(out.Destination, out.Fault, flushID)})
	}

	t.logger.Info("flushed",
		"flush_id", flushID,
		"documents", len(batch),
		"sent", out.Sent,
		"failed", len(out.Failures),
		"aborted", out.Fault != nil,
	)
}

func (t *Target) record(e emergency.Entry) {
	err := t.recorder.Record(e)
	t.metrics.EmergencyWrite(err)
	if err != nil {
		t.logger.Error("emergency record lost", "error", err)
	}
}

// recoverPanic keeps a panicking normalizer or exporter from reaching the
// host. The panic is written as a banner record.
func (t *Target) recoverPanic() {
	r := recover()
	if r == nil {
		return
	}
	inner := document.New()
	inner.Set("error", fmt.Sprint(r))
	inner.Set("trace", strings.Split(strings.TrimSpace(string(debug.Stack())), "\n"))
	data := document.New()
	data.Set("targetPanic", inner)
	t.logger.Error("target panic", "error", r)
	t.record(emergency.Entry{Data: data})
}

func itemFailureData(dest export.Destination, f export.ItemFailure, flushID string) *document.Document {
	data := document.New()
	data.Set("index", dest.Index)
	data.Set("type", dest.Type)
	data.Set("message", f.Document)
	data.Set("elasticResult", f.Response)
	if f.Err != nil {
		data.Set("error", f.Err.Error())
	}
	data.Set("flushId", flushID)
	return data
}

func faultData(dest export.Destination, f *export.Fault, flushID string) *document.Document {
	inner := document.New()
	inner.Set("index", dest.Index)
	inner.Set("type", dest.Type)
	inner.Set("error", f.Err.Error())
	inner.Set("errorNumber", f.Code)
	inner.Set("trace", f.Stack)
	data := document.New()
	data.Set("elasticExportError", inner)
	data.Set("flushId", flushID)
	return data
}
