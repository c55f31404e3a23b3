package sources

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"logtarget/internal/parse"
	"logtarget/internal/record"
)

// DockerSource follows the stdout and stderr of one container. Category
// defaults to "docker.<id>" when Defaults carry none.
type DockerSource struct {
	ContainerID string
	Defaults    parse.Defaults
	Logger      *slog.Logger
}

func (ds *DockerSource) Run(ctx context.Context, out chan<- record.LogRecord) error {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return err
	}
	defer cli.Close()

	logger := loggerOr(ds.Logger).With("source", SourceDocker, "container", ds.ContainerID)
	logger.Info("source started")

	reader, err := cli.ContainerLogs(ctx, ds.ContainerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
		Timestamps: false,
	})
	if err != nil {
		return err
	}
	defer reader.Close()

	stdoutReader, stdoutWriter := io.Pipe()
	go func() {
		_, err := stdcopy.StdCopy(stdoutWriter, stdoutWriter, reader)
		stdoutWriter.CloseWithError(err)
	}()
	defer stdoutReader.Close()

	def := ds.Defaults
	if def.Category == "" {
		def.Category = "docker." + shortID(ds.ContainerID)
	}

	scanner := bufio.NewScanner(stdoutReader)
	for scanner.Scan() {
		msg := scanner.Text()
		if msg == "" {
			continue
		}
		if !send(ctx, out, parse.Line(msg, def, time.Now())) {
			return nil
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, context.Canceled) {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	logger.Info("source finished")
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
