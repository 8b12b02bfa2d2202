package engine

import (
	"context"
	"fmt"

	"github.com/MRamiBalles/EchoesOfEternity/internal/events"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/config"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/logger"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/metrics"
)

// Engine is the central orchestrator that wires the event log and metrics to
// a puzzle session and its regeneration driver.
type Engine struct {
	cfg      config.Game
	eventLog *events.EventLog
	metrics  *metrics.Collector
	logger   *logger.Logger
	session  *Session
	ticker   *Ticker
}

// NewEngine initializes the session and its supporting systems.
// Extra options are passed to the session after the engine's own.
func NewEngine(cfg config.Game, log *logger.Logger, opts ...Option) (*Engine, error) {
	eventLog := events.NewEventLog(cfg.EventLogLimit)
	collector := metrics.NewCollector()

	sessionOpts := append([]Option{
		WithEventLog(eventLog),
		WithMetrics(collector),
		WithLogger(log),
	}, opts...)
	session, err := NewSession(cfg, sessionOpts...)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &Engine{
		cfg:      cfg,
		eventLog: eventLog,
		metrics:  collector,
		logger:   log,
		session:  session,
		ticker:   NewTicker(session, cfg.TickInterval, cfg.RegenEpsilon, collector, log),
	}, nil
}

// Start spawns the regeneration ticker. It stops when ctx is cancelled or Stop is called.
func (e *Engine) Start(ctx context.Context) {
	e.logger.Info("Starting puzzle engine...")
	go e.ticker.Start(ctx)
}

// Stop halts the regeneration ticker.
func (e *Engine) Stop() {
	e.ticker.Stop()
}

// Session exposes the puzzle session for player actions and queries.
func (e *Engine) Session() *Session {
	return e.session
}

// GetEventLog exposes the event log for subscribers and replay.
func (e *Engine) GetEventLog() *events.EventLog {
	return e.eventLog
}

// GetMetrics exposes the metrics collector.
func (e *Engine) GetMetrics() *metrics.Collector {
	return e.metrics
}

// GetTicker exposes the regeneration driver.
func (e *Engine) GetTicker() *Ticker {
	return e.ticker
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() config.Game {
	return e.cfg
}
