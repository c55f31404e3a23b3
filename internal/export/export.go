// Package export ships document batches to the indexing backend and reports
// what failed, item by item or for the whole transport.
package export

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"
	"syscall"

	"logtarget/internal/document"
)

// Exporter writes a batch. Export never returns an error: every failure is
// described in the Outcome.
type Exporter interface {
	Destination() Destination
	Export(ctx context.Context, batch []*document.Document) Outcome
}

// Destination is the two-part address of the collection documents go to.
type Destination struct {
	Index string
	Type  string
}

// ItemFailure is a document the backend did not acknowledge. The rest of
// the batch is still attempted.
type ItemFailure struct {
	Position int
	Document *document.Document
	// Response is the decoded backend reply, nil if the document could not
	// be encoded.
	Response any
	Status   int
	Err      error
}

// Fault is a transport-level failure. It ends the batch: documents after
// Position were not attempted.
type Fault struct {
	Err      error
	Code     int
	Stack    []string
	Position int
}

func (f *Fault) Error() string { return f.Err.Error() }

type Outcome struct {
	Destination Destination
	Attempted   int
	Sent        int
	Failures    []ItemFailure
	Fault       *Fault
}

// OK reports whether every document was acknowledged.
func (o Outcome) OK() bool {
	return o.Fault == nil && len(o.Failures) == 0
}

func newFault(err error, position int) *Fault {
	return &Fault{
		Err:      err,
		Code:     ErrorCode(err),
		Stack:    strings.Split(strings.TrimSpace(string(debug.Stack())), "\n"),
		Position: position,
	}
}

// ErrorCode extracts a numeric code from err: an explicit Code() or
// ErrorCode() method, an HTTP status of a malformed response, or an errno.
// Zero when there is none.
func ErrorCode(err error) int {
	var c interface{ Code() int }
	if errors.As(err, &c) {
		return c.Code()
	}
	var ec interface{ ErrorCode() int }
	if errors.As(err, &ec) {
		return ec.ErrorCode()
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return 0
}
