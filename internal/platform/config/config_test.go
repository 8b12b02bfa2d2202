package config

import (
	"flag"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("env defaults %+v differ from Default() %+v", cfg, Default())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHRONO_BOARD_WIDTH", "8")
	t.Setenv("CHRONO_INITIAL_ENERGY", "75.5")
	t.Setenv("CHRONO_SEED", "1234")
	t.Setenv("CHRONO_TICK_INTERVAL", "250ms")
	t.Setenv("CHRONO_STRICT", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BoardWidth != 8 || cfg.BoardHeight != 6 {
		t.Fatalf("unexpected board %dx%d", cfg.BoardWidth, cfg.BoardHeight)
	}
	if cfg.InitialEnergy != 75.5 {
		t.Fatalf("expected energy 75.5, got %v", cfg.InitialEnergy)
	}
	if cfg.Seed != 1234 || cfg.TickInterval != 250*time.Millisecond || !cfg.StrictContracts {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("CHRONO_BOARD_HEIGHT", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected validation error for zero height")
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	t.Setenv("CHRONO_INITIAL_LEVEL", "first")
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestBindFlags(t *testing.T) {
	cfg := Default()
	fs := flag.NewFlagSet("chrono", flag.ContinueOnError)
	BindFlags(fs, &cfg)
	if err := fs.Parse([]string{"-width", "4", "-seed", "7", "-tick", "1s"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.BoardWidth != 4 || cfg.Seed != 7 || cfg.TickInterval != time.Second {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.BoardHeight != 6 {
		t.Fatalf("untouched flag changed height to %d", cfg.BoardHeight)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Game)
	}{
		{"negative width", func(g *Game) { g.BoardWidth = -1 }},
		{"level zero", func(g *Game) { g.InitialLevel = 0 }},
		{"negative energy", func(g *Game) { g.InitialEnergy = -5 }},
		{"negative upgrades", func(g *Game) { g.Upgrades = -1 }},
		{"zero tick", func(g *Game) { g.TickInterval = 0 }},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
