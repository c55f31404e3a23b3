package sources

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"logtarget/internal/parse"
	"logtarget/internal/record"
)

// StdinSource reads lines until EOF. Reader defaults to os.Stdin.
type StdinSource struct {
	Reader   io.Reader
	Defaults parse.Defaults
}

// Run returns as soon as ctx is done, even while a read is blocked. The
// reading goroutine then exits at the next line or EOF.
func (s *StdinSource) Run(ctx context.Context, out chan<- record.LogRecord) error {
	r := s.Reader
	if r == nil {
		r = os.Stdin
	}

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		reader := bufio.NewScanner(r)
		reader.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for reader.Scan() {
			select {
			case lines <- reader.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- reader.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return err
		case line := <-lines:
			if line == "" {
				continue
			}
			if !send(ctx, out, parse.Line(line, s.Defaults, time.Now().UTC())) {
				return nil
			}
		}
	}
}
