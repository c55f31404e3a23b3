package sources

import (
	"context"
	"log/slog"
	"time"

	"github.com/hpcloud/tail"

	"logtarget/internal/parse"
	"logtarget/internal/record"
)

// FileSource follows a file like tail -F, surviving rotation and waiting
// for the file to appear.
type FileSource struct {
	Path     string
	Defaults parse.Defaults
	Logger   *slog.Logger
}

func (fs *FileSource) Run(ctx context.Context, out chan<- record.LogRecord) error {
	t, err := tail.TailFile(fs.Path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return err
	}
	defer t.Cleanup()

	logger := loggerOr(fs.Logger).With("source", SourceFile, "path", fs.Path)
	logger.Info("source started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("source stopping")
			_ = t.Stop()
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return nil
			}
			if line.Err != nil {
				logger.Warn("tail line error", "err", line.Err)
				continue
			}
			if line.Text == "" {
				continue
			}
			if !send(ctx, out, parse.Line(line.Text, fs.Defaults, time.Now())) {
				_ = t.Stop()
				return nil
			}
		}
	}
}
