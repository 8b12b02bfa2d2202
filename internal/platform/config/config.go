// Package config holds the static engine configuration, loaded once at process start.
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Game holds the tunables of a puzzle session and its regeneration driver.
type Game struct {
	BoardWidth    int     `env:"CHRONO_BOARD_WIDTH" envDefault:"6"`
	BoardHeight   int     `env:"CHRONO_BOARD_HEIGHT" envDefault:"6"`
	InitialEnergy float64 `env:"CHRONO_INITIAL_ENERGY" envDefault:"50"`
	InitialLevel  int     `env:"CHRONO_INITIAL_LEVEL" envDefault:"1"`
	Upgrades      int     `env:"CHRONO_UPGRADES" envDefault:"0"`

	// Seed for the fragment generator. Zero draws one from crypto/rand.
	Seed int64 `env:"CHRONO_SEED"`

	// TickInterval is how often the regeneration driver samples the clock.
	TickInterval time.Duration `env:"CHRONO_TICK_INTERVAL" envDefault:"100ms"`
	// RegenEpsilon is the smallest gain the driver forwards; smaller gains are carried over.
	RegenEpsilon float64 `env:"CHRONO_REGEN_EPSILON" envDefault:"0.01"`

	EventLogLimit int `env:"CHRONO_EVENT_LOG_LIMIT" envDefault:"1024"`

	// StrictContracts makes caller contract violations panic instead of being clamped.
	StrictContracts bool `env:"CHRONO_STRICT" envDefault:"false"`
}

// Default returns the built-in configuration: a 6x6 board, 50 energy, level 1.
func Default() Game {
	return Game{
		BoardWidth:    6,
		BoardHeight:   6,
		InitialEnergy: 50,
		InitialLevel:  1,
		TickInterval:  100 * time.Millisecond,
		RegenEpsilon:  0.01,
		EventLogLimit: 1024,
	}
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the game configuration from the environment and validates it.
func Load() (Game, error) {
	var cfg Game
	if err := ParseEnv(&cfg); err != nil {
		return Game{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Game{}, err
	}
	return cfg, nil
}

// BindFlags registers command-line overrides for cfg on fs. Current values become the flag defaults.
func BindFlags(fs *flag.FlagSet, cfg *Game) {
	fs.IntVar(&cfg.BoardWidth, "width", cfg.BoardWidth, "Board width in cells")
	fs.IntVar(&cfg.BoardHeight, "height", cfg.BoardHeight, "Board height in cells")
	fs.Float64Var(&cfg.InitialEnergy, "energy", cfg.InitialEnergy, "Starting Chrono-Energy")
	fs.IntVar(&cfg.InitialLevel, "level", cfg.InitialLevel, "Starting level")
	fs.IntVar(&cfg.Upgrades, "upgrades", cfg.Upgrades, "Energy upgrades owned")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Fragment generator seed (0 = random)")
	fs.DurationVar(&cfg.TickInterval, "tick", cfg.TickInterval, "Regeneration tick interval")
	fs.BoolVar(&cfg.StrictContracts, "strict", cfg.StrictContracts, "Panic on caller contract violations")
}

// Validate rejects configurations the engine cannot run with.
func (g Game) Validate() error {
	var errs []error
	if g.BoardWidth <= 0 || g.BoardHeight <= 0 {
		errs = append(errs, fmt.Errorf("board must be positive, got %dx%d", g.BoardWidth, g.BoardHeight))
	}
	if g.InitialLevel < 1 {
		errs = append(errs, fmt.Errorf("initial level must be >= 1, got %d", g.InitialLevel))
	}
	if g.InitialEnergy < 0 {
		errs = append(errs, fmt.Errorf("initial energy must be >= 0, got %v", g.InitialEnergy))
	}
	if g.Upgrades < 0 {
		errs = append(errs, fmt.Errorf("upgrades must be >= 0, got %d", g.Upgrades))
	}
	if g.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick interval must be positive, got %v", g.TickInterval))
	}
	if g.RegenEpsilon < 0 {
		errs = append(errs, fmt.Errorf("regen epsilon must be >= 0, got %v", g.RegenEpsilon))
	}
	return errors.Join(errs...)
}
