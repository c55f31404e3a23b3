// Package pipeline drives a log target the way a host logging framework
// would: records from all sources are batched and handed to the target
// from a single goroutine, with one final collect on shutdown.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"logtarget/internal/record"
	"logtarget/internal/sources"
)

// Collector is the target side of the pipeline. Calls are serialized.
type Collector interface {
	Collect(ctx context.Context, records []record.LogRecord, final bool)
}

type Pipeline struct {
	Sources []sources.Source
	Target  Collector

	// FlushInterval hands pending records to the target periodically.
	// Zero disables the timer.
	FlushInterval time.Duration
	// FlushRecords hands pending records over once this many are queued.
	// Zero disables the count trigger.
	FlushRecords int

	Logger *slog.Logger
}

// Run blocks until every source has finished or ctx is cancelled, then
// performs the final collect. The first source error is returned.
//
// On cancel Run keeps reading until every source has returned, so records
// sent during shutdown still reach the final collect. Sources must return
// once ctx is done.
func (p *Pipeline) Run(ctx context.Context) error {
	if len(p.Sources) == 0 {
		return fmt.Errorf("pipeline: no sources provided")
	}
	if p.Target == nil {
		return fmt.Errorf("pipeline: no target provided")
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	recCh := make(chan record.LogRecord, 100)
	errCh := make(chan error, len(p.Sources))
	var wg sync.WaitGroup

	for _, src := range p.Sources {
		s := src
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Run(ctx, recCh); err != nil && ctx.Err() == nil && !errors.Is(err, context.Canceled) {
				logger.Error("source failed", "err", err)
				errCh <- err
			}
		}()
	}
	go func() {
		wg.Wait()
		close(recCh)
	}()

	var tick <-chan time.Time
	if p.FlushInterval > 0 {
		ticker := time.NewTicker(p.FlushInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var pending []record.LogRecord
	handOver := func() {
		if len(pending) == 0 {
			return
		}
		p.Target.Collect(ctx, pending, false)
		pending = nil
	}

	for {
		select {
		case rec, ok := <-recCh:
			if !ok {
				p.final(ctx, pending, logger)
				return firstErr(errCh)
			}
			pending = append(pending, rec)
			if p.FlushRecords > 0 && len(pending) >= p.FlushRecords {
				handOver()
			}
		case <-tick:
			handOver()
		case <-ctx.Done():
			for rec := range recCh {
				pending = append(pending, rec)
			}
			p.final(ctx, pending, logger)
			return firstErr(errCh)
		}
	}
}

// final runs even after cancellation so buffered documents still reach the
// exporter or the emergency file.
func (p *Pipeline) final(ctx context.Context, pending []record.LogRecord, logger *slog.Logger) {
	logger.Debug("final collect", "pending", len(pending))
	p.Target.Collect(context.WithoutCancel(ctx), pending, true)
}

func firstErr(errCh <-chan error) error {
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
