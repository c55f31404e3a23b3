package export

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"

	"logtarget/internal/document"
)

// Stdout writes documents as JSON lines and acknowledges every one it could
// write. Useful for dry runs.
type Stdout struct {
	w      io.Writer
	pretty bool
	dest   Destination
}

// NewStdout writes to w, or os.Stdout when w is nil.
func NewStdout(w io.Writer, pretty bool, dest Destination) *Stdout {
	if w == nil {
		w = os.Stdout
	}
	return &Stdout{w: w, pretty: pretty, dest: dest}
}

func (s *Stdout) Destination() Destination { return s.dest }

func (s *Stdout) Export(_ context.Context, batch []*document.Document) Outcome {
	out := Outcome{Destination: s.dest}

	for i, doc := range batch {
		out.Attempted++

		line, err := doc.MarshalJSON()
		if err != nil {
			out.Failures = append(out.Failures, ItemFailure{Position: i, Document: doc, Err: err})
			continue
		}
		if s.pretty {
			var buf bytes.Buffer
			if err := json.Indent(&buf, line, "", "  "); err == nil {
				line = buf.Bytes()
			}
		}
		if _, err := s.w.Write(append(line, '\n')); err != nil {
			out.Fault = newFault(err, i)
			return out
		}
		out.Sent++
	}
	return out
}
