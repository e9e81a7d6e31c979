package ui

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/leapstack-labs/covidlens/internal/config"
	"github.com/leapstack-labs/covidlens/internal/engine"
)

// RunHook is called after every pipeline run, successful or not.
type RunHook func(ctx context.Context, started time.Time, res *engine.Result, err error)

// Pipeline holds the latest pipeline result of a serving session.
// A failed reload keeps the previous result and reports the failure next to it.
type Pipeline struct {
	eng    *engine.Engine
	onRun  RunHook
	logger *slog.Logger

	runMu sync.Mutex

	mu      sync.RWMutex
	res     *engine.Result
	lastErr error
}

// NewPipeline wraps an engine. The hook may be nil.
func NewPipeline(eng *engine.Engine, onRun RunHook, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{eng: eng, onRun: onRun, logger: logger}
}

// Reload runs the pipeline again. Concurrent reloads are serialized.
func (p *Pipeline) Reload(ctx context.Context) error {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	started := time.Now()
	res, err := p.eng.Run(ctx)
	if p.onRun != nil {
		p.onRun(ctx, started, res, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = err
	if err != nil {
		p.logger.Error("pipeline reload failed", slog.Any("error", err))
		return err
	}
	p.res = res
	p.logger.Info("pipeline reloaded", slog.String("run_id", res.RunID), slog.Int("dates", res.Table.Len()))
	return nil
}

// Result returns the latest successful result together with the error of the
// latest run, if it failed. Without any successful run the error is returned alone.
func (p *Pipeline) Result() (*engine.Result, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.res == nil {
		if p.lastErr == nil {
			return nil, errors.New("pipeline has not run yet")
		}
		return nil, p.lastErr
	}
	return p.res, p.lastErr
}

// Config returns the pipeline configuration the engine runs with.
func (p *Pipeline) Config() *config.PipelineConfig {
	return p.eng.Config()
}
