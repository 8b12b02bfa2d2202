package engine

import (
	"context"
	"sync"
	"time"

	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/logger"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/metrics"
)

// Clock reports the current time. Tests substitute a manual clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Ticker drives passive regeneration. It samples the clock every interval
// and forwards the elapsed time to the session once the resulting gain
// reaches epsilon; smaller gains are carried into the next sample.
// It does NOT know about fragments or patterns - only time progression.
type Ticker struct {
	session  *Session
	metrics  *metrics.Collector
	logger   *logger.Logger
	clock    Clock
	interval time.Duration
	epsilon  float64

	mu         sync.Mutex
	last       time.Time
	pending    time.Duration
	tickNumber int64

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewTicker creates a regeneration driver for session.
func NewTicker(session *Session, interval time.Duration, epsilon float64, m *metrics.Collector, log *logger.Logger) *Ticker {
	clock := systemClock{}
	return &Ticker{
		session:  session,
		metrics:  m,
		logger:   log,
		clock:    clock,
		interval: interval,
		epsilon:  epsilon,
		last:     clock.Now(),
		stopChan: make(chan struct{}),
	}
}

// SetClock replaces the time source and restarts elapsed measurement from it.
func (t *Ticker) SetClock(c Clock) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clock = c
	t.last = c.Now()
	t.pending = 0
}

// Start begins the regeneration loop. Call in a goroutine.
func (t *Ticker) Start(ctx context.Context) {
	t.logger.Infof("Regeneration ticker started (interval %v, epsilon %.3f)", t.interval, t.epsilon)

	t.mu.Lock()
	t.last = t.clock.Now()
	t.mu.Unlock()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Regeneration ticker stopped by context.")
			return
		case <-t.stopChan:
			t.logger.Info("Regeneration ticker stopped manually.")
			return
		case <-ticker.C:
			t.Step()
		}
	}
}

// Stop gracefully stops the ticker. Safe to call more than once.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
}

// Step samples the clock once and returns the energy credited, if any.
func (t *Ticker) Step() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	elapsed := now.Sub(t.last)
	t.last = now

	if elapsed < 0 {
		// Let the session apply its contract policy, then drop the sample.
		_, err := t.session.Tick(elapsed)
		t.logger.Errorf("Clock went backwards by %v: %v", -elapsed, err)
		return 0
	}

	t.pending += elapsed
	if t.session.RegenRate()*t.pending.Seconds() < t.epsilon {
		return 0
	}

	start := time.Now()
	gained, err := t.session.Tick(t.pending)
	t.pending = 0
	if err != nil {
		t.logger.Errorf("Regeneration tick failed: %v", err)
		return 0
	}

	t.tickNumber++
	t.metrics.RecordTick(time.Since(start), gained)
	return gained
}

// TickCount returns the number of ticks forwarded to the session.
func (t *Ticker) TickCount() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tickNumber
}
