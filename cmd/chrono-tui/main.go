// Package main is the terminal front end for Echoes of Eternity.
// It only handles dependency injection and the screen loop.
// NO game rules belong here.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/MRamiBalles/EchoesOfEternity/internal/engine"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/config"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/logger"
)

const sampleRate = beep.SampleRate(44100)

// Config holds the game tunables plus terminal-only settings.
type Config struct {
	Game    config.Game
	Sound   bool   `env:"CHRONO_SOUND" envDefault:"true"`
	LogFile string `env:"CHRONO_LOG_FILE" envDefault:"chrono.log"`
}

func main() {
	cfg, err := loadConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "chrono-tui: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "chrono-tui: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	config.BindFlags(fs, &cfg.Game)
	fs.BoolVar(&cfg.Sound, "sound", cfg.Sound, "Play a chime when a pattern is solved")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Log file (empty discards logs)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Game.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func run(cfg Config) error {
	// The screen belongs to tcell, so logs go to a file.
	var sink io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		sink = f
	}
	log := logger.NewLoggerTo(sink, sink)

	eng, err := engine.NewEngine(cfg.Game, log)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	var chime func()
	if cfg.Sound {
		if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
			// Non-fatal, the game runs without sound
			log.Warnf("Audio initialization failed: %v", err)
		} else {
			defer speaker.Close()
			chime = playChime
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)
	defer eng.Stop()

	eng.Session().Start()
	NewUI(screen, eng, chime).Run()
	return nil
}

// playChime plays a short rising two-note tone.
func playChime() {
	low, err := generators.SineTone(sampleRate, 660)
	if err != nil {
		return
	}
	high, err := generators.SineTone(sampleRate, 880)
	if err != nil {
		return
	}
	note := sampleRate.N(90 * time.Millisecond)
	speaker.Play(beep.Seq(beep.Take(note, low), beep.Take(note, high)))
}
