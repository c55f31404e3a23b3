package sources

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"logtarget/internal/config"
	"logtarget/internal/document"
	"logtarget/internal/parse"
	"logtarget/internal/record"
)

func TestStdinSource(t *testing.T) {
	in := strings.NewReader("hello from stdin\n\n{\"level\":\"error\",\"msg\":\"bad\"}\n")
	src := &StdinSource{Reader: in, Defaults: parse.Defaults{Category: "stdin-service"}}
	out := make(chan record.LogRecord, 4)

	if err := src.Run(context.Background(), out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(out)

	var got []record.LogRecord
	for rec := range out {
		got = append(got, rec)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 records, got %d", len(got))
	}
	if got[0].Payload != "hello from stdin" {
		t.Errorf("got %v", got[0].Payload)
	}
	if got[1].Level != record.LevelError {
		t.Errorf("want error level, got %v", got[1].Level)
	}
	if _, ok := got[1].Payload.(*document.Document); !ok {
		t.Errorf("want document payload, got %T", got[1].Payload)
	}
}

func TestStdinSource_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &StdinSource{Reader: strings.NewReader("a\nb\n")}
	out := make(chan record.LogRecord)
	if err := src.Run(ctx, out); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStdinSource_CancelWhileReadBlocked(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	src := &StdinSource{Reader: pr}
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx, make(chan record.LogRecord)) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestFromConfig(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.SourceConfig
		wantErr bool
	}{
		{"file", config.SourceConfig{Type: SourceFile, Path: "/tmp/x.log"}, false},
		{"stdin", config.SourceConfig{Type: SourceStdin, Level: "warn"}, false},
		{"docker", config.SourceConfig{Type: SourceDocker, ContainerID: "abc"}, false},
		{"bad-type", config.SourceConfig{Type: "kafka"}, true},
		{"bad-level", config.SourceConfig{Type: SourceStdin, Level: "loud"}, true},
	}
	for _, c := range cases {
		src, err := FromConfig(c.name, c.cfg, nil)
		if c.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", c.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", c.name, err)
			continue
		}
		if src == nil {
			t.Errorf("%s: nil source", c.name)
		}
	}

	src, _ := FromConfig("api", config.SourceConfig{Type: SourceStdin, Level: "warn"}, nil)
	s := src.(*StdinSource)
	if s.Defaults.Category != "api" || s.Defaults.Level != record.LevelWarning {
		t.Errorf("defaults: got %+v", s.Defaults)
	}
}
