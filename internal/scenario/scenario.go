// Package scenario - scenario.go
// Acceptance harness: replays known board layouts against a real session
// and reports whether the engine reached the expected outcome.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/MRamiBalles/EchoesOfEternity/internal/domain/fragment"
	"github.com/MRamiBalles/EchoesOfEternity/internal/domain/rules"
	"github.com/MRamiBalles/EchoesOfEternity/internal/engine"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/config"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/logger"
)

// Scenario is one acceptance check.
type Scenario struct {
	Name     string
	Input    string
	Expected string
	// Config mutates the default game configuration before the session is built.
	Config func(*config.Game)
	// Play drives the session and describes what actually happened.
	Play func(s *engine.Session) (actual string, err error)
	// Check decides whether actual is acceptable.
	Check func(actual string) bool
}

// Result captures the outcome of each scenario.
type Result struct {
	ScenarioName    string
	Input           string
	ExpectedOutcome string
	ActualOutcome   string
	Passed          bool
	Reason          string
}

// Runner executes scenarios against fresh sessions.
type Runner struct {
	logger  *logger.Logger
	seed    int64
	results []Result
}

// NewRunner creates the harness. Session chatter goes to log.
func NewRunner(log *logger.Logger, seed int64) *Runner {
	return &Runner{logger: log, seed: seed}
}

// Run executes every scenario in order. It stops early if ctx is cancelled.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) []Result {
	for _, sc := range scenarios {
		if ctx.Err() != nil {
			break
		}
		r.results = append(r.results, r.runOne(sc))
	}
	return r.results
}

func (r *Runner) runOne(sc Scenario) Result {
	res := Result{ScenarioName: sc.Name, Input: sc.Input, ExpectedOutcome: sc.Expected}

	cfg := config.Default()
	if sc.Config != nil {
		sc.Config(&cfg)
	}
	s, err := engine.NewSession(cfg,
		engine.WithRand(rand.New(rand.NewSource(r.seed))),
		engine.WithLogger(r.logger),
	)
	if err != nil {
		res.Reason = "session: " + err.Error()
		return res
	}

	actual, err := sc.Play(s)
	res.ActualOutcome = actual
	if err != nil {
		res.Reason = err.Error()
		return res
	}
	if sc.Check(actual) {
		res.Passed = true
		res.Reason = "engine reached the expected outcome"
	} else {
		res.Reason = fmt.Sprintf("expected %q, got %q", sc.Expected, actual)
	}
	return res
}

// GetResults returns all results gathered so far.
func (r *Runner) GetResults() []Result {
	return r.results
}

// Report writes a human-readable summary and returns the number of failures.
func Report(w io.Writer, results []Result) int {
	failed := 0
	for _, res := range results {
		mark := "PASS"
		if !res.Passed {
			mark = "FAIL"
			failed++
		}
		fmt.Fprintf(w, "[%s] %s\n", mark, res.ScenarioName)
		fmt.Fprintf(w, "   Input:    %s\n", res.Input)
		fmt.Fprintf(w, "   Expected: %s\n", res.ExpectedOutcome)
		fmt.Fprintf(w, "   Actual:   %s\n", res.ActualOutcome)
		if !res.Passed {
			fmt.Fprintf(w, "   Reason:   %s\n", res.Reason)
		}
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "   Passed: %d\n", len(results)-failed)
	fmt.Fprintf(w, "   Failed: %d\n", failed)
	return failed
}

func equals(want string) func(string) bool {
	return func(actual string) bool { return actual == want }
}

func frag(id int, typ fragment.Type, x, y int, rot fragment.Rotation) fragment.Fragment {
	return fragment.Fragment{
		ID:       id,
		Type:     typ,
		Position: fragment.Position{X: x, Y: y},
		Rotation: rot,
		Shape:    fragment.Shapes[id%len(fragment.Shapes)],
		Color:    fragment.Palette[id%len(fragment.Palette)],
	}
}

// describe renders settled patterns as "Name+points" joined by commas, or "none".
func describe(solved []engine.PatternSolved) string {
	if len(solved) == 0 {
		return "none"
	}
	parts := make([]string, len(solved))
	for i, p := range solved {
		parts[i] = fmt.Sprintf("%s+%d", p.Name, p.Points)
	}
	return strings.Join(parts, ",")
}

// placeAndStart sets the layout and begins play. Setup must not settle anything.
func placeAndStart(s *engine.Session, frags ...fragment.Fragment) error {
	solved, err := s.Place(frags...)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	if len(solved) != 0 {
		return fmt.Errorf("setup settled %s", describe(solved))
	}
	s.Start()
	return nil
}

// Catalog returns the built-in acceptance scenarios.
func Catalog() []Scenario {
	return []Scenario{
		{
			Name:     "Chronological Sequence",
			Input:    "past(0,0) present(1,0) rot0, future moved (3,0)->(2,0) rot0",
			Expected: "Chronological Sequence+100",
			Play: func(s *engine.Session) (string, error) {
				if err := placeAndStart(s,
					frag(0, fragment.TypePast, 0, 0, 0),
					frag(1, fragment.TypePresent, 1, 0, 0),
					frag(2, fragment.TypeFuture, 3, 0, 0),
				); err != nil {
					return "", err
				}
				solved, err := s.Move(2, 2, 0)
				return describe(solved), err
			},
			Check: equals("Chronological Sequence+100"),
		},
		{
			Name:     "Misaligned Rotation",
			Input:    "past(0,0) present(1,0) rot0, future(2,0) rot90",
			Expected: "none",
			Play: func(s *engine.Session) (string, error) {
				solved, err := s.Place(
					frag(0, fragment.TypePast, 0, 0, 0),
					frag(1, fragment.TypePresent, 1, 0, 0),
					frag(2, fragment.TypeFuture, 2, 0, 90),
				)
				return describe(solved), err
			},
			Check: equals("none"),
		},
		{
			Name:     "Temporal Balance",
			Input:    "past(0,0) rot180, future rotated to 180 at (1,0)",
			Expected: "Temporal Balance+50",
			Play: func(s *engine.Session) (string, error) {
				if err := placeAndStart(s,
					frag(0, fragment.TypePast, 0, 0, 180),
					frag(1, fragment.TypeFuture, 1, 0, 90),
				); err != nil {
					return "", err
				}
				solved, err := s.Rotate(1, 90)
				return describe(solved), err
			},
			Check: equals("Temporal Balance+50"),
		},
		{
			Name:     "Temporal Balance Apart",
			Input:    "past(0,0) rot180, future(2,0) rot180",
			Expected: "none",
			Play: func(s *engine.Session) (string, error) {
				solved, err := s.Place(
					frag(0, fragment.TypePast, 0, 0, 180),
					frag(1, fragment.TypeFuture, 2, 0, 180),
				)
				return describe(solved), err
			},
			Check: equals("none"),
		},
		{
			Name:     "Paradox Resolution",
			Input:    "paradox(0,0) rot90, constant(1,0) rot180, void moved to (0,1) rot270",
			Expected: "Paradox Resolution+150",
			Play: func(s *engine.Session) (string, error) {
				if err := placeAndStart(s,
					frag(0, fragment.TypeParadox, 0, 0, 90),
					frag(1, fragment.TypeConstant, 1, 0, 180),
					frag(2, fragment.TypeVoid, 2, 0, 270),
				); err != nil {
					return "", err
				}
				solved, err := s.Move(2, 0, 1)
				return describe(solved), err
			},
			Check: equals("Paradox Resolution+150"),
		},
		{
			Name:     "Time Loop",
			Input:    "past(0,0) rot0, present(1,0) rot90, future(0,1) rot180, past rotated to 270 at (1,1)",
			Expected: "Time Loop+200",
			Play: func(s *engine.Session) (string, error) {
				if err := placeAndStart(s,
					frag(0, fragment.TypePast, 0, 0, 0),
					frag(1, fragment.TypePresent, 1, 0, 90),
					frag(2, fragment.TypeFuture, 0, 1, 180),
					frag(3, fragment.TypePast, 1, 1, 0),
				); err != nil {
					return "", err
				}
				solved, err := s.Rotate(3, -90)
				return describe(solved), err
			},
			Check: equals("Time Loop+200"),
		},
		{
			Name:     "Insufficient Energy",
			Input:    "energy 0.5 at level 1, move fragment 0 to (3,3)",
			Expected: "rejected: insufficient chrono-energy, fragment at (0,0)",
			Config:   func(g *config.Game) { g.InitialEnergy = 0.5 },
			Play: func(s *engine.Session) (string, error) {
				if err := placeAndStart(s, frag(0, fragment.TypePast, 0, 0, 0)); err != nil {
					return "", err
				}
				_, err := s.Move(0, 3, 3)
				if !errors.Is(err, engine.ErrInsufficientEnergy) {
					return "", fmt.Errorf("expected insufficient energy, got %v", err)
				}
				f, _ := s.Fragment(0)
				return fmt.Sprintf("rejected: %v, fragment at (%d,%d)", engine.ErrInsufficientEnergy, f.Position.X, f.Position.Y), nil
			},
			Check: equals("rejected: insufficient chrono-energy, fragment at (0,0)"),
		},
		{
			Name:     "Regeneration",
			Input:    "energy 50 at level 1, 10s elapsed",
			Expected: "energy 61.00",
			Play: func(s *engine.Session) (string, error) {
				s.Start()
				if _, err := s.Tick(10 * time.Second); err != nil {
					return "", err
				}
				return fmt.Sprintf("energy %.2f", s.Snapshot().Energy), nil
			},
			Check: equals("energy 61.00"),
		},
		{
			Name:     "Regeneration Cap",
			Input:    "energy 50 at level 1, 1h elapsed",
			Expected: "energy 110.00",
			Play: func(s *engine.Session) (string, error) {
				s.Start()
				if _, err := s.Tick(time.Hour); err != nil {
					return "", err
				}
				return fmt.Sprintf("energy %.2f", s.Snapshot().Energy), nil
			},
			Check: equals("energy 110.00"),
		},
		{
			Name:     "Overlapping Candidates",
			Input:    "past(0,0) future(1,0) past(2,0), all rot180",
			Expected: "2 candidates, settled [0 1]",
			Play: func(s *engine.Session) (string, error) {
				layout := []fragment.Fragment{
					frag(0, fragment.TypePast, 0, 0, 180),
					frag(1, fragment.TypeFuture, 1, 0, 180),
					frag(2, fragment.TypePast, 2, 0, 180),
				}
				candidates := rules.FindAllMatches(rules.Catalog(), layout)
				solved, err := s.Place(layout...)
				if err != nil {
					return "", err
				}
				if len(solved) != 1 {
					return "", fmt.Errorf("expected one settled pattern, got %s", describe(solved))
				}
				return fmt.Sprintf("%d candidates, settled %v", len(candidates), solved[0].FragmentIDs), nil
			},
			Check: equals("2 candidates, settled [0 1]"),
		},
		{
			Name:     "Skip Puzzle",
			Input:    "energy 50 at level 1, skip",
			Expected: "level 2, energy 26.00",
			Play: func(s *engine.Session) (string, error) {
				s.Start()
				if _, err := s.SkipPuzzle(); err != nil {
					return "", err
				}
				st := s.Snapshot()
				return fmt.Sprintf("level %d, energy %.2f", st.Level, st.Energy), nil
			},
			Check: equals("level 2, energy 26.00"),
		},
		{
			Name:     "Paused Session",
			Input:    "start, pause, advance level",
			Expected: "rejected: session is not playing",
			Play: func(s *engine.Session) (string, error) {
				s.Start()
				s.Pause()
				_, err := s.AdvanceLevel()
				if !errors.Is(err, engine.ErrNotPlaying) {
					return "", fmt.Errorf("expected not playing, got %v", err)
				}
				return "rejected: " + engine.ErrNotPlaying.Error(), nil
			},
			Check: equals("rejected: session is not playing"),
		},
	}
}
