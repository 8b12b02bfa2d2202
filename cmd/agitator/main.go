// Package main - agitator
// "The Agitator" - soak driver for the rule engine.
// A single actor spams random actions at one session while the regeneration
// ticker runs, then prints the rejection breakdown and engine metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/MRamiBalles/EchoesOfEternity/internal/domain/rules"
	"github.com/MRamiBalles/EchoesOfEternity/internal/engine"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/config"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/logger"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/random"
)

// Config for the agitator
type Config struct {
	Game           config.Game
	ActionInterval time.Duration `env:"AGITATOR_INTERVAL" envDefault:"5ms"`
	TestDuration   time.Duration `env:"AGITATOR_DURATION" envDefault:"10s"`
	Verbose        bool          `env:"AGITATOR_VERBOSE" envDefault:"false"`
}

// Stats tracks what the actor attempted and how the engine answered.
type Stats struct {
	Attempts  int             `json:"attempts"`
	Accepted  int             `json:"accepted"`
	Rejected  map[string]int  `json:"rejected"`
	Patterns  map[string]int  `json:"patterns"`
	Latencies []time.Duration `json:"-"`
}

var rejectionCauses = []error{
	engine.ErrNotPlaying,
	engine.ErrFragmentNotFound,
	engine.ErrFragmentSolved,
	engine.ErrCellOccupied,
	engine.ErrOutOfBounds,
	engine.ErrInsufficientEnergy,
	engine.ErrInvalidRotation,
}

func main() {
	cfg, err := loadConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "agitator: %v\n", err)
		os.Exit(2)
	}

	fmt.Println("=========================================")
	fmt.Println("THE AGITATOR - Rule Engine Soak Test")
	fmt.Println("=========================================")
	fmt.Printf("Board:    %dx%d\n", cfg.Game.BoardWidth, cfg.Game.BoardHeight)
	fmt.Printf("Interval: %v\n", cfg.ActionInterval)
	fmt.Printf("Duration: %v\n", cfg.TestDuration)
	fmt.Println("=========================================")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.TestDuration)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	log := logger.NewNopLogger()
	if cfg.Verbose {
		log = logger.NewLogger()
	}

	eng, err := engine.NewEngine(cfg.Game, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "agitator: %v\n", err)
		os.Exit(1)
	}
	eng.Start(ctx)
	defer eng.Stop()

	// The actor's choices get their own stream so they do not perturb spawning.
	rng, seed, err := random.NewRand(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "agitator: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Actor seed: %d\n", seed)

	stats := agitate(ctx, eng.Session(), rng, cfg.ActionInterval)
	printResults(stats, eng)
}

func loadConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	config.BindFlags(fs, &cfg.Game)
	fs.DurationVar(&cfg.ActionInterval, "interval", cfg.ActionInterval, "Delay between actions")
	fs.DurationVar(&cfg.TestDuration, "duration", cfg.TestDuration, "Test duration")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Log session activity")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Game.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func agitate(ctx context.Context, s *engine.Session, rng *rand.Rand, interval time.Duration) *Stats {
	stats := &Stats{
		Rejected:  make(map[string]int),
		Patterns:  make(map[string]int),
		Latencies: make([]time.Duration, 0, 1024),
	}
	s.Start()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	progress := time.NewTicker(2 * time.Second)
	defer progress.Stop()

	for {
		select {
		case <-ctx.Done():
			return stats
		case <-progress.C:
			st := s.Snapshot()
			fmt.Printf("Progress: Attempts=%d Level=%d Score=%d Energy=%.1f\n", stats.Attempts, st.Level, st.Score, st.Energy)
		case <-ticker.C:
			start := time.Now()
			solved, err := act(s, rng)
			stats.Latencies = append(stats.Latencies, time.Since(start))
			stats.Attempts++
			if err != nil {
				stats.Rejected[cause(err)]++
				continue
			}
			stats.Accepted++
			for _, p := range solved {
				stats.Patterns[p.Name]++
			}
		}
	}
}

// act performs one random action. Out-of-range targets are drawn on purpose
// so every rejection path is exercised.
func act(s *engine.Session, rng *rand.Rand) ([]engine.PatternSolved, error) {
	st := s.Snapshot()
	id := rng.Intn(len(st.Fragments) + 2)

	switch roll := rng.Intn(100); {
	case roll < 55:
		return s.Move(id, rng.Intn(st.Board.Width+1), rng.Intn(st.Board.Height+1))
	case roll < 90:
		deltas := []int{90, -90, 180, 45}
		return s.Rotate(id, deltas[rng.Intn(len(deltas))])
	case roll < 95:
		if s.CanAfford(rules.ActionSkipPuzzle) {
			return s.SkipPuzzle()
		}
		return s.AdvanceLevel()
	case roll < 98:
		s.Pause()
		return nil, nil
	default:
		return s.Start(), nil
	}
}

func cause(err error) string {
	for _, c := range rejectionCauses {
		if errors.Is(err, c) {
			return c.Error()
		}
	}
	return err.Error()
}

func printResults(stats *Stats, eng *engine.Engine) {
	fmt.Println("\n=========================================")
	fmt.Println("SOAK TEST RESULTS")
	fmt.Println("=========================================")

	st := eng.Session().Snapshot()
	fmt.Printf("Attempts:  %d\n", stats.Attempts)
	fmt.Printf("Accepted:  %d\n", stats.Accepted)
	fmt.Printf("Level:     %d\n", st.Level)
	fmt.Printf("Score:     %d (%d puzzles)\n", st.Score, st.PuzzlesSolved)
	fmt.Printf("Energy:    %.2f / %.0f\n", st.Energy, st.Capacity)
	fmt.Printf("Events:    %d retained\n", eng.GetEventLog().Len())

	if len(stats.Latencies) > 0 {
		var total time.Duration
		lo, hi := stats.Latencies[0], stats.Latencies[0]
		for _, l := range stats.Latencies {
			total += l
			lo = min(lo, l)
			hi = max(hi, l)
		}
		fmt.Printf("\nAction latency:\n")
		fmt.Printf("  Min: %v\n", lo)
		fmt.Printf("  Avg: %v\n", total/time.Duration(len(stats.Latencies)))
		fmt.Printf("  Max: %v\n", hi)
	}

	// Verdict
	fmt.Println("\n-----------------------------------------")
	if st.Energy < 0 || st.Energy > st.Capacity {
		fmt.Println("TEST FAILED: energy escaped its bounds")
	} else {
		fmt.Println("TEST PASSED: energy stayed within [0, capacity]")
	}
	fmt.Println("=========================================")

	report, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(report))
	fmt.Println()
	if err := eng.GetMetrics().WritePrometheus(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "agitator: write metrics: %v\n", err)
	}
}
