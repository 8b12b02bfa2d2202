// Package metrics provides observability for the puzzle engine.
// Counters are in-process only; exposition writes to any io.Writer.
package metrics

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers engine metrics.
type Collector struct {
	// Action metrics
	Moves       int64
	Rotations   int64
	Skips       int64
	Rejections  int64
	LevelsAdded int64

	// Pattern metrics
	PatternsSolved int64
	PointsAwarded  int64

	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Energy
	EnergySpent       float64
	EnergyRegenerated float64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{StartTime: time.Now()}
}

// RecordMove records an accepted move.
func (c *Collector) RecordMove(cost int) {
	atomic.AddInt64(&c.Moves, 1)
	c.addSpent(cost)
}

// RecordRotation records an accepted rotation.
func (c *Collector) RecordRotation(cost int) {
	atomic.AddInt64(&c.Rotations, 1)
	c.addSpent(cost)
}

// RecordSkip records a paid puzzle skip.
func (c *Collector) RecordSkip(cost int) {
	atomic.AddInt64(&c.Skips, 1)
	c.addSpent(cost)
}

// RecordRejection records a rejected action.
func (c *Collector) RecordRejection() {
	atomic.AddInt64(&c.Rejections, 1)
}

// RecordLevel records a level advance.
func (c *Collector) RecordLevel() {
	atomic.AddInt64(&c.LevelsAdded, 1)
}

// RecordPattern records a settled pattern.
func (c *Collector) RecordPattern(points int) {
	atomic.AddInt64(&c.PatternsSolved, 1)
	atomic.AddInt64(&c.PointsAwarded, int64(points))
}

// RecordTick records a regeneration tick and the energy it produced.
func (c *Collector) RecordTick(latency time.Duration, gained float64) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.EnergyRegenerated += gained
	c.mu.Unlock()
}

func (c *Collector) addSpent(cost int) {
	c.mu.Lock()
	c.EnergySpent += float64(cost)
	c.mu.Unlock()
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)

	var tickAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}

	lastTick := ""
	if !c.LastTickTime.IsZero() {
		lastTick = c.LastTickTime.Format(time.RFC3339)
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"actions": map[string]interface{}{
			"moves":      atomic.LoadInt64(&c.Moves),
			"rotations":  atomic.LoadInt64(&c.Rotations),
			"skips":      atomic.LoadInt64(&c.Skips),
			"rejections": atomic.LoadInt64(&c.Rejections),
			"levels":     atomic.LoadInt64(&c.LevelsAdded),
		},

		"patterns": map[string]interface{}{
			"solved": atomic.LoadInt64(&c.PatternsSolved),
			"points": atomic.LoadInt64(&c.PointsAwarded),
		},

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      lastTick,
		},

		"energy": map[string]interface{}{
			"spent":       c.EnergySpent,
			"regenerated": c.EnergyRegenerated,
		},
	}
}

// WritePrometheus writes metrics in Prometheus text format.
func (c *Collector) WritePrometheus(w io.Writer) error {
	counter := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s counter\n", name)
		fmt.Fprintf(w, "%s %d\n\n", name, v)
	}

	fmt.Fprintf(w, "# HELP chrono_actions_total Accepted player actions\n")
	fmt.Fprintf(w, "# TYPE chrono_actions_total counter\n")
	fmt.Fprintf(w, "chrono_actions_total{action=\"move\"} %d\n", atomic.LoadInt64(&c.Moves))
	fmt.Fprintf(w, "chrono_actions_total{action=\"rotate\"} %d\n", atomic.LoadInt64(&c.Rotations))
	fmt.Fprintf(w, "chrono_actions_total{action=\"skip\"} %d\n\n", atomic.LoadInt64(&c.Skips))

	counter("chrono_rejections_total", "Rejected player actions", atomic.LoadInt64(&c.Rejections))
	counter("chrono_levels_total", "Level advances", atomic.LoadInt64(&c.LevelsAdded))
	counter("chrono_patterns_solved_total", "Patterns settled", atomic.LoadInt64(&c.PatternsSolved))
	counter("chrono_points_total", "Points awarded", atomic.LoadInt64(&c.PointsAwarded))
	counter("chrono_tick_count", "Regeneration ticks applied", atomic.LoadInt64(&c.TickCount))

	fmt.Fprintf(w, "# HELP chrono_tick_latency_max_ms Maximum tick latency\n")
	fmt.Fprintf(w, "# TYPE chrono_tick_latency_max_ms gauge\n")
	fmt.Fprintf(w, "chrono_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

	c.mu.RLock()
	defer c.mu.RUnlock()
	fmt.Fprintf(w, "# HELP chrono_energy_total Chrono-Energy flow\n")
	fmt.Fprintf(w, "# TYPE chrono_energy_total counter\n")
	fmt.Fprintf(w, "chrono_energy_total{flow=\"spent\"} %.2f\n", c.EnergySpent)
	_, err := fmt.Fprintf(w, "chrono_energy_total{flow=\"regenerated\"} %.2f\n", c.EnergyRegenerated)
	return err
}
