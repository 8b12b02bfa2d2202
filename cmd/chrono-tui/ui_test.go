package main

import (
	"flag"
	"math/rand"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/MRamiBalles/EchoesOfEternity/internal/domain/fragment"
	"github.com/MRamiBalles/EchoesOfEternity/internal/engine"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/config"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/logger"
)

func newTestUI(t *testing.T) (*UI, tcell.SimulationScreen, *int) {
	t.Helper()
	eng, err := engine.NewEngine(config.Default(), logger.NewNopLogger(),
		engine.WithRand(rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)

	chimes := new(int)
	return NewUI(screen, eng, func() { *chimes++ }), screen, chimes
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestUISelectMoveAndSolve(t *testing.T) {
	ui, screen, chimes := newTestUI(t)
	if _, err := ui.session.Place(
		fragment.Fragment{ID: 0, Type: fragment.TypePast, Position: fragment.Position{X: 0, Y: 0}, Rotation: 180, Color: "#4D96FF"},
		fragment.Fragment{ID: 1, Type: fragment.TypeFuture, Position: fragment.Position{X: 2, Y: 0}, Rotation: 180, Color: "#FF6B6B"},
	); err != nil {
		t.Fatalf("place: %v", err)
	}
	ui.handleInput(key('p'))

	// Select fragment 1 at (2,0), then carry it to (1,0).
	ui.handleInput(key('l'))
	ui.handleInput(key('l'))
	ui.handleInput(key(' '))
	if ui.selected != 1 {
		t.Fatalf("expected fragment 1 selected, got %d", ui.selected)
	}
	ui.handleInput(key('h'))
	ui.handleInput(key(' '))

	st := ui.session.Snapshot()
	if st.Score != 50 {
		t.Fatalf("expected Temporal Balance to score 50, got %d", st.Score)
	}

	ui.draw()
	if *chimes != 1 {
		t.Fatalf("expected one chime, got %d", *chimes)
	}
	if ui.notice != "Temporal Balance! +50" {
		t.Fatalf("unexpected notice %q", ui.notice)
	}

	cells, width, _ := screen.GetContents()
	c := cells[boardOriginY*width+boardOriginX]
	if len(c.Runes) == 0 || c.Runes[0] != 'P' {
		t.Fatalf("expected past glyph at board origin, got %q", c.Runes)
	}
}

func TestUIReportsRejection(t *testing.T) {
	ui, _, _ := newTestUI(t)
	if _, err := ui.session.Place(
		fragment.Fragment{ID: 0, Type: fragment.TypeVoid, Position: fragment.Position{X: 0, Y: 0}},
	); err != nil {
		t.Fatalf("place: %v", err)
	}

	// Paused: rotating is rejected and surfaced.
	ui.handleInput(key('r'))
	if ui.errText != engine.ErrNotPlaying.Error() {
		t.Fatalf("expected not-playing feedback, got %q", ui.errText)
	}
	if f, _ := ui.session.Fragment(0); f.Rotation != 0 {
		t.Fatalf("rejected rotation applied")
	}
}

func TestUICursorStaysOnBoard(t *testing.T) {
	ui, _, _ := newTestUI(t)
	for i := 0; i < 10; i++ {
		ui.handleInput(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
		ui.handleInput(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	}
	if ui.cursorX != 0 || ui.cursorY != 5 {
		t.Fatalf("cursor escaped the board: (%d,%d)", ui.cursorX, ui.cursorY)
	}
	if ui.handleInput(key('q')) {
		t.Fatalf("q should quit")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("CHRONO_SOUND", "false")
	fs := flag.NewFlagSet("chrono-tui", flag.ContinueOnError)
	cfg, err := loadConfig(fs, []string{"-height", "8", "-log", ""})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Sound || cfg.LogFile != "" || cfg.Game.BoardHeight != 8 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
