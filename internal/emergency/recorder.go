// Package emergency appends failed exports to a local file so operators can
// recover them.
package emergency

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"logtarget/internal/document"
)

// Border is the line written above and below a banner record.
const Border = "#########################################"

// KeyQueue holds the still-buffered documents in a record written with the
// queue attached.
const KeyQueue = "messageQueue"

// Entry is one emergency record.
type Entry struct {
	Data *document.Document
	// IncludeQueue attaches Queue under "messageQueue" and writes the record
	// bare. Without it the record is wrapped in the banner.
	IncludeQueue bool
	Queue        []*document.Document
}

// Render returns the exact bytes appended to the sink for e. Values that
// cannot be encoded as JSON are written as their %v text.
func Render(e Entry) ([]byte, error) {
	data := e.Data.Encodable()
	if e.IncludeQueue {
		queue := make([]*document.Document, 0, len(e.Queue))
		for _, d := range e.Queue {
			queue = append(queue, d.Encodable())
		}
		data.Set(KeyQueue, queue)
	}
	b, err := data.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode emergency record: %w", err)
	}
	if e.IncludeQueue {
		return b, nil
	}
	return []byte(fmt.Sprintf("\n%s\n%s\n%s\n", Border, b, Border)), nil
}

// FileRecorder appends entries to a file. It never truncates the file.
type FileRecorder struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileRecorder resolves file through aliases; the file itself is created
// on first write.
func NewFileRecorder(file string, aliases map[string]string, logger *slog.Logger) (*FileRecorder, error) {
	path, err := ResolvePath(file, aliases)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileRecorder{path: path, logger: logger}, nil
}

func (r *FileRecorder) Path() string { return r.path }

// Record appends e. A write failure is returned once and not retried.
func (r *FileRecorder) Record(e Entry) error {
	text, err := Render(e)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0750); err != nil {
		return fmt.Errorf("create emergency dir: %w", err)
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		return fmt.Errorf("open emergency file: %w", err)
	}
	if _, err := f.Write(text); err != nil {
		f.Close()
		return fmt.Errorf("write emergency file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close emergency file: %w", err)
	}

	r.logger.Warn("emergency record written", "path", r.path, "bytes", len(text), "queue", e.IncludeQueue)
	return nil
}
