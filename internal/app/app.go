// Package app wires configuration into a running log target.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"logtarget/internal/config"
	"logtarget/internal/emergency"
	"logtarget/internal/enrich"
	"logtarget/internal/environ"
	"logtarget/internal/export"
	"logtarget/internal/metrics"
	"logtarget/internal/normalize"
	"logtarget/internal/pipeline"
	"logtarget/internal/record"
	"logtarget/internal/sources"
	"logtarget/internal/target"
)

type App struct {
	cfg    *config.Config
	logger *slog.Logger
	env    environ.Provider
}

func New(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{cfg: cfg, logger: logger}
}

// NewLogger builds the process logger from the log section.
func NewLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("log target starting", "backend", a.cfg.Backend.Type, "sources", len(a.cfg.Sources))

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}
	if a.cfg.Metrics.Listen != "" {
		stop := a.serveMetrics(reg)
		defer stop()
	}

	tgt, err := a.BuildTarget(m)
	defer a.Close()
	if err != nil {
		return err
	}

	srcs, err := a.buildSources()
	if err != nil {
		return err
	}

	p := &pipeline.Pipeline{
		Sources:       srcs,
		Target:        tgt,
		FlushInterval: a.cfg.Host.FlushInterval,
		FlushRecords:  a.cfg.Host.FlushRecords,
		Logger:        a.logger,
	}
	err = p.Run(ctx)

	a.logger.Info("log target stopped")
	return err
}

// BuildTarget assembles the target and its collaborators. m may be nil.
func (a *App) BuildTarget(m *metrics.Metrics) (*target.Target, error) {
	cfg := a.cfg

	levels, err := cfg.Target.LevelMask()
	if err != nil {
		return nil, err
	}

	env, err := environ.FromConfig(cfg.Environment)
	if err != nil {
		return nil, err
	}
	a.env = env
	enricher := enrich.New(enrich.Options{
		Static:  cfg.Target.Context.Document(),
		LogUser: cfg.Target.LogUser,
		LogVars: cfg.Target.LogVars,
	}, env)

	exp, err := a.buildExporter()
	if err != nil {
		return nil, err
	}

	rec, err := emergency.NewFileRecorder(cfg.Emergency.File, cfg.Emergency.Aliases, a.logger)
	if err != nil {
		return nil, fmt.Errorf("emergency: %w", err)
	}
	a.logger.Debug("emergency file", "path", rec.Path())

	return target.New(target.Options{
		ExportInterval: cfg.Target.ExportInterval,
		Levels:         levels,
		Categories:     cfg.Target.Categories,
		Except:         cfg.Target.Except,
	},
		normalize.New(normalize.Options{
			BasePath: cfg.Target.BasePath,
			Prefix:   prefix(cfg.Target.Prefix, env),
		}),
		exp,
		rec,
		target.WithContext(enricher),
		target.WithMetrics(m),
		target.WithLogger(a.logger),
	), nil
}

// Close releases what BuildTarget acquired.
func (a *App) Close() error {
	if a.env == nil {
		return nil
	}
	err := environ.Close(a.env)
	a.env = nil
	return err
}

// prefix builds the "info" prefix from tmpl. "userId" comes from the user
// identity, other names from environment variables.
func prefix(tmpl string, env environ.Provider) func(record.LogRecord) string {
	if tmpl == "" {
		return nil
	}
	return normalize.PrefixTemplate(tmpl, func(name string) (string, bool) {
		ctx := context.Background()
		if name == enrich.KeyUserID {
			return env.UserID(ctx)
		}
		v, ok := env.Var(ctx, name)
		if !ok {
			return "", false
		}
		return normalize.Stringify(v), true
	})
}

func (a *App) buildExporter() (export.Exporter, error) {
	b := a.cfg.Backend
	switch b.Type {
	case config.BackendElasticsearch:
		return export.NewElastic(export.ElasticOptions{
			Endpoint: b.Endpoint,
			Index:    b.Index,
			DocType:  b.DocType,
			Timeout:  b.Timeout,
			Compress: b.Compress,
			Username: b.Username,
			Password: b.Password,
			APIKey:   b.APIKey,
		}, a.logger), nil
	case config.BackendStdout:
		return export.NewStdout(os.Stdout, b.Pretty, export.Destination{Index: b.Index, Type: b.DocType}), nil
	}
	return nil, fmt.Errorf("backend: unknown type '%s'", b.Type)
}

// buildSources creates sources in name order.
func (a *App) buildSources() ([]sources.Source, error) {
	names := make([]string, 0, len(a.cfg.Sources))
	for name := range a.cfg.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []sources.Source
	for _, name := range names {
		s, err := sources.FromConfig(name, a.cfg.Sources[name], a.logger)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (a *App) serveMetrics(reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              a.cfg.Metrics.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info("metrics listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "err", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// Describe summarises the effective configuration for logs and the CLI.
func Describe(cfg *config.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "backend=%s", cfg.Backend.Type)
	if cfg.Backend.Type == config.BackendElasticsearch {
		fmt.Fprintf(&b, " endpoint=%s index=%s type=%s", cfg.Backend.Endpoint, cfg.Backend.Index, cfg.Backend.DocType)
	}
	fmt.Fprintf(&b, " export_interval=%d emergency=%s", cfg.Target.ExportInterval, cfg.Emergency.File)
	return b.String()
}
