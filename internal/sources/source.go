// Package sources feed log records from files, stdin and containers.
package sources

import (
	"context"
	"fmt"
	"log/slog"

	"logtarget/internal/config"
	"logtarget/internal/parse"
	"logtarget/internal/record"
)

const (
	SourceFile   = config.SourceFile
	SourceStdin  = config.SourceStdin
	SourceDocker = config.SourceDocker
)

// Source pushes records into out until its input ends or ctx is cancelled.
type Source interface {
	Run(ctx context.Context, out chan<- record.LogRecord) error
}

// FromConfig builds the source described by cfg. name is used as the
// default category.
func FromConfig(name string, cfg config.SourceConfig, logger *slog.Logger) (Source, error) {
	def := parse.Defaults{Category: cfg.Category}
	if def.Category == "" {
		def.Category = name
	}
	if cfg.Level != "" {
		l, ok := record.ParseLevel(cfg.Level)
		if !ok {
			return nil, fmt.Errorf("source %q: unknown level %q", name, cfg.Level)
		}
		def.Level = l
	}

	switch cfg.Type {
	case SourceFile:
		return &FileSource{Path: cfg.Path, Defaults: def, Logger: logger}, nil
	case SourceStdin:
		return &StdinSource{Defaults: def}, nil
	case SourceDocker:
		return &DockerSource{ContainerID: cfg.ContainerID, Defaults: def, Logger: logger}, nil
	}
	return nil, fmt.Errorf("source %q: unknown type %q", name, cfg.Type)
}

func send(ctx context.Context, out chan<- record.LogRecord, rec record.LogRecord) bool {
	select {
	case out <- rec:
		return true
	case <-ctx.Done():
		return false
	}
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
