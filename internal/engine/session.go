// Package engine - session.go
// Puzzle Session: the sole owner and mutator of board, fragments and energy.
//
// Every action runs under one mutex: affordability check, mutation and
// pattern settling are observed as a single step, and regeneration ticks
// serialize with actions. Events are published after the lock is released.
package engine

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MRamiBalles/EchoesOfEternity/internal/domain/fragment"
	"github.com/MRamiBalles/EchoesOfEternity/internal/domain/rules"
	"github.com/MRamiBalles/EchoesOfEternity/internal/events"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/config"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/logger"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/metrics"
	"github.com/MRamiBalles/EchoesOfEternity/internal/platform/random"
)

// Operation names used in rejections and logs.
const (
	OpAdvance = "advance_level"
	OpSkip    = "skip_puzzle"
	OpMove    = "move"
	OpRotate  = "rotate"
	OpPlace   = "place"
)

// noFragment marks actions without a target fragment.
const noFragment = -1

// State is a deep copy of a session at one instant.
type State struct {
	SessionID     string              `json:"session_id"`
	Board         fragment.Board      `json:"board"`
	Fragments     []fragment.Fragment `json:"fragments"` // ascending ID
	Energy        float64             `json:"energy"`
	Capacity      float64             `json:"capacity"`
	RegenRate     float64             `json:"regen_rate"`
	Level         int                 `json:"level"`
	Upgrades      int                 `json:"upgrades"`
	Score         int                 `json:"score"`
	PuzzlesSolved int                 `json:"puzzles_solved"`
	Playing       bool                `json:"playing"`
}

// Session holds one puzzle run.
type Session struct {
	mu sync.Mutex

	id            string
	cfg           config.Game
	board         fragment.Board
	fragments     map[int]*fragment.Fragment
	energy        float64
	level         int
	upgrades      int
	score         int
	puzzlesSolved int
	playing       bool
	nextID        int

	catalog  []rules.Pattern
	spawner  *SpawnSystem
	eventLog *events.EventLog
	metrics  *metrics.Collector
	logger   *logger.Logger
	seed     int64
}

// Option customizes a Session.
type Option func(*Session)

// WithRand injects the generator's random source. The configured seed is ignored.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.spawner = NewSpawnSystem(rng) }
}

// WithLogger sets the session logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithEventLog publishes session events to el.
func WithEventLog(el *events.EventLog) Option {
	return func(s *Session) { s.eventLog = el }
}

// WithMetrics records session activity on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Session) { s.metrics = c }
}

// WithCatalog replaces the pattern catalog.
func WithCatalog(catalog []rules.Pattern) Option {
	return func(s *Session) { s.catalog = catalog }
}

// NewSession creates a paused session with an empty board.
func NewSession(cfg config.Game, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}

	s := &Session{
		cfg:     cfg,
		board:   fragment.Board{Width: cfg.BoardWidth, Height: cfg.BoardHeight},
		catalog: rules.Catalog(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.spawner == nil {
		rng, seed, err := random.NewRand(cfg.Seed)
		if err != nil {
			return nil, fmt.Errorf("seed fragment generator: %w", err)
		}
		s.spawner = NewSpawnSystem(rng)
		s.seed = seed
	}
	if s.eventLog == nil {
		s.eventLog = events.NewEventLog(cfg.EventLogLimit)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewCollector()
	}
	if s.logger == nil {
		s.logger = logger.NewLogger()
	}

	s.restore()
	s.logger.Infof("Session %s created: board %dx%d, level %d, energy %.1f, seed %d",
		s.id, s.board.Width, s.board.Height, s.level, s.energy, s.seed)
	return s, nil
}

// restore puts the session back to its configured initial state.
func (s *Session) restore() {
	s.id = uuid.NewString()
	s.fragments = make(map[int]*fragment.Fragment)
	s.level = s.cfg.InitialLevel
	s.upgrades = s.cfg.Upgrades
	s.energy = min(s.cfg.InitialEnergy, rules.Capacity(s.level, s.upgrades))
	s.score = 0
	s.puzzlesSolved = 0
	s.playing = false
	s.nextID = 0
}

// ID returns the current session identity. Reset assigns a new one.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Seed returns the generator seed drawn at construction, or 0 when the
// random source was injected.
func (s *Session) Seed() int64 {
	return s.seed
}

// EventLog returns the log the session publishes to.
func (s *Session) EventLog() *events.EventLog {
	return s.eventLog
}

// Start begins or resumes play. An empty board is populated for the current level.
func (s *Session) Start() []PatternSolved {
	var solved []PatternSolved
	s.do(func(tx *txn) error {
		if s.playing {
			return nil
		}
		s.playing = true
		tx.emit(events.EventTypeSessionStarted, nil)
		s.logger.Event("SESSION_STARTED", s.id, fmt.Sprintf("Level %d | Energy %.1f", s.level, s.energy))

		if len(s.fragments) == 0 {
			tx.spawn()
			solved = tx.settle()
		}
		return nil
	})
	return solved
}

// Pause stops play. Fragments and energy are untouched.
func (s *Session) Pause() {
	s.do(func(tx *txn) error {
		if !s.playing {
			return nil
		}
		s.playing = false
		tx.emit(events.EventTypeSessionPaused, nil)
		s.logger.Event("SESSION_PAUSED", s.id, fmt.Sprintf("Score %d", s.score))
		return nil
	})
}

// Reset clears the board and restores the configured energy, level and score.
func (s *Session) Reset() {
	s.do(func(tx *txn) error {
		previous := s.id
		s.restore()
		tx.emit(events.EventTypeSessionReset, map[string]string{"previous_session_id": previous})
		s.logger.Event("SESSION_RESET", s.id, "Previous: "+previous)
		return nil
	})
}

// AdvanceLevel raises the level and spawns a fresh fragment set alongside
// the fragments already on the board.
func (s *Session) AdvanceLevel() ([]PatternSolved, error) {
	var solved []PatternSolved
	err := s.do(func(tx *txn) error {
		if !s.playing {
			return tx.reject(OpAdvance, noFragment, ErrNotPlaying)
		}
		solved = tx.advance()
		return nil
	})
	return solved, err
}

// SkipPuzzle pays the skip cost and advances the level.
func (s *Session) SkipPuzzle() ([]PatternSolved, error) {
	var solved []PatternSolved
	err := s.do(func(tx *txn) error {
		if !s.playing {
			return tx.reject(OpSkip, noFragment, ErrNotPlaying)
		}
		if !rules.HasEnough(s.energy, rules.ActionSkipPuzzle, s.level, s.upgrades) {
			return tx.reject(OpSkip, noFragment, ErrInsufficientEnergy)
		}

		cost := tx.pay(rules.ActionSkipPuzzle)
		s.metrics.RecordSkip(cost)
		tx.emit(events.EventTypePuzzleSkipped, SkipPayload{Cost: cost})
		s.logger.Event("PUZZLE_SKIPPED", s.id, fmt.Sprintf("Level %d | Cost %d", s.level, cost))

		solved = tx.advance()
		return nil
	})
	return solved, err
}

// Move places fragment id at (x, y).
func (s *Session) Move(id, x, y int) ([]PatternSolved, error) {
	var solved []PatternSolved
	err := s.do(func(tx *txn) error {
		if !s.playing {
			return tx.reject(OpMove, id, ErrNotPlaying)
		}
		f, err := s.movable(id)
		if err != nil {
			return tx.reject(OpMove, id, err)
		}
		to := fragment.Position{X: x, Y: y}
		if !s.board.Contains(to) {
			return tx.reject(OpMove, id, ErrOutOfBounds)
		}
		if other, taken := s.occupant(to); taken && other != id {
			return tx.reject(OpMove, id, ErrCellOccupied)
		}
		if !rules.HasEnough(s.energy, rules.ActionMove, s.level, s.upgrades) {
			return tx.reject(OpMove, id, ErrInsufficientEnergy)
		}

		from := f.Position
		f.Position = to
		cost := tx.pay(rules.ActionMove)
		s.metrics.RecordMove(cost)
		tx.emit(events.EventTypeFragmentMoved, MovePayload{FragmentID: id, From: from, To: to, Cost: cost})

		solved = tx.settle()
		return nil
	})
	return solved, err
}

// Rotate turns fragment id by delta degrees. delta must be a multiple of 90.
func (s *Session) Rotate(id, delta int) ([]PatternSolved, error) {
	var solved []PatternSolved
	err := s.do(func(tx *txn) error {
		if !s.playing {
			return tx.reject(OpRotate, id, ErrNotPlaying)
		}
		if delta%fragment.QuarterTurn != 0 {
			return tx.reject(OpRotate, id, ErrInvalidRotation)
		}
		f, err := s.movable(id)
		if err != nil {
			return tx.reject(OpRotate, id, err)
		}
		if !rules.HasEnough(s.energy, rules.ActionRotate, s.level, s.upgrades) {
			return tx.reject(OpRotate, id, ErrInsufficientEnergy)
		}

		from := f.Rotation
		f.Rotation = from.Add(delta)
		cost := tx.pay(rules.ActionRotate)
		s.metrics.RecordRotation(cost)
		tx.emit(events.EventTypeFragmentRotated, RotatePayload{FragmentID: id, From: from, To: f.Rotation, Cost: cost})

		solved = tx.settle()
		return nil
	})
	return solved, err
}

// Place adds explicit fragments to the board, as a level designer or test
// harness would. The batch is all or nothing. It works whether or not the
// session is playing.
func (s *Session) Place(frags ...fragment.Fragment) ([]PatternSolved, error) {
	var solved []PatternSolved
	err := s.do(func(tx *txn) error {
		ids := make(map[int]bool, len(frags))
		cells := make(map[fragment.Position]bool, len(frags))
		for _, f := range frags {
			if _, exists := s.fragments[f.ID]; exists || ids[f.ID] || f.ID < 0 {
				return tx.reject(OpPlace, f.ID, ErrDuplicateFragment)
			}
			if !s.board.Contains(f.Position) {
				return tx.reject(OpPlace, f.ID, ErrOutOfBounds)
			}
			if !f.Rotation.Valid() {
				return tx.reject(OpPlace, f.ID, ErrInvalidRotation)
			}
			if f.Solved {
				ids[f.ID] = true
				continue
			}
			if _, taken := s.occupant(f.Position); taken || cells[f.Position] {
				return tx.reject(OpPlace, f.ID, ErrCellOccupied)
			}
			ids[f.ID] = true
			cells[f.Position] = true
		}

		placed := make([]int, 0, len(frags))
		for _, f := range frags {
				f := f
				s.fragments[f.ID] = &f
			s.nextID = max(s.nextID, f.ID+1)
			placed = append(placed, f.ID)
		}
		tx.emit(events.EventTypeFragmentsSpawned, SpawnPayload{Level: s.level, FragmentIDs: placed})
		s.logger.Event("FRAGMENTS_PLACED", s.id, fmt.Sprintf("Count %d", len(placed)))

		solved = tx.settle()
		return nil
	})
	return solved, err
}

// Tick applies passive regeneration for elapsed wall-clock time and returns
// the energy gained. Paused sessions do not regenerate.
func (s *Session) Tick(elapsed time.Duration) (float64, error) {
	if elapsed < 0 {
		if s.cfg.StrictContracts {
			panic(fmt.Sprintf("engine: tick with negative elapsed %v", elapsed))
		}
		s.logger.Errorf("Tick with negative elapsed %v clamped to zero", elapsed)
		return 0, ErrNegativeElapsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return 0, nil
	}
	before := s.energy
	s.energy = rules.Accrue(s.energy, elapsed.Seconds(), s.level, s.upgrades, 0)
	return s.energy - before, nil
}

// Snapshot returns a deep copy of the session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		SessionID:     s.id,
		Board:         s.board,
		Fragments:     s.pool(),
		Energy:        s.energy,
		Capacity:      rules.Capacity(s.level, s.upgrades),
		RegenRate:     rules.RegenRate(s.level, s.upgrades),
		Level:         s.level,
		Upgrades:      s.upgrades,
		Score:         s.score,
		PuzzlesSolved: s.puzzlesSolved,
		Playing:       s.playing,
	}
}

// Fragment returns a copy of fragment id.
func (s *Session) Fragment(id int) (fragment.Fragment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.fragments[id]
	if !ok {
		return fragment.Fragment{}, false
	}
	return *f, true
}

// RegenRate returns the current regeneration in energy units per second.
func (s *Session) RegenRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rules.RegenRate(s.level, s.upgrades)
}

// CanAfford reports whether the current energy covers action.
func (s *Session) CanAfford(action rules.Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rules.HasEnough(s.energy, action, s.level, s.upgrades)
}

// pool returns the fragments by ascending ID. Caller holds mu.
func (s *Session) pool() []fragment.Fragment {
	out := make([]fragment.Fragment, 0, len(s.fragments))
	for _, f := range s.fragments {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// movable returns fragment id if it exists and is not locked. Caller holds mu.
func (s *Session) movable(id int) (*fragment.Fragment, error) {
	f, ok := s.fragments[id]
	if !ok {
		return nil, ErrFragmentNotFound
	}
	if f.Solved {
		return nil, ErrFragmentSolved
	}
	return f, nil
}

// occupant returns the unsolved fragment on p, if any. Caller holds mu.
func (s *Session) occupant(p fragment.Position) (int, bool) {
	for id, f := range s.fragments {
		if !f.Solved && f.Position == p {
			return id, true
		}
	}
	return 0, false
}

// do runs fn as one atomic action and publishes its events once the lock is released.
func (s *Session) do(fn func(tx *txn) error) error {
	tx := &txn{s: s}
	var err error
	func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		err = fn(tx)
	}()
	s.eventLog.Append(tx.events...)
	return err
}

// txn collects the events of one action while the session lock is held.
type txn struct {
	s      *Session
	events []events.GameEvent
}

func (tx *txn) emit(eventType events.EventType, payload interface{}) {
	tx.events = append(tx.events, events.NewEvent(eventType, tx.s.id, tx.s.level, payload))
}

func (tx *txn) reject(op string, id int, cause error) error {
	s := tx.s
	err := &ActionError{Op: op, FragmentID: id, Err: cause}
	s.metrics.RecordRejection()
	tx.emit(events.EventTypeActionRejected, RejectionPayload{Op: op, FragmentID: id, Reason: cause.Error()})
	s.logger.Warnf("Rejected: %v", err)
	return err
}

// pay debits the action cost and returns it.
func (tx *txn) pay(action rules.Action) int {
	s := tx.s
	cost := rules.ActionCost(action, s.level, s.upgrades)
	s.energy = rules.Debit(s.energy, action, s.level, s.upgrades)
	return cost
}

// spawn populates free cells for the current level.
func (tx *txn) spawn() {
	s := tx.s
	occupied := make(map[fragment.Position]bool, len(s.fragments))
	for _, f := range s.fragments {
		occupied[f.Position] = true
	}

	fresh := s.spawner.Generate(s.level, s.board, s.nextID, occupied)
	ids := make([]int, 0, len(fresh))
	for _, f := range fresh {
		f := f
		s.fragments[f.ID] = &f
		ids = append(ids, f.ID)
	}
	s.nextID += len(fresh)

	tx.emit(events.EventTypeFragmentsSpawned, SpawnPayload{Level: s.level, FragmentIDs: ids})
	if len(fresh) == 0 {
		s.logger.Warnf("Session %s: board full, nothing spawned for level %d", s.id, s.level)
	}
}

// advance raises the level, spawns and settles.
func (tx *txn) advance() []PatternSolved {
	s := tx.s
	from := s.level
	s.level++
	s.metrics.RecordLevel()
	tx.emit(events.EventTypeLevelAdvanced, LevelPayload{From: from, To: s.level})
	s.logger.Event("LEVEL_ADVANCED", s.id, fmt.Sprintf("Level %d -> %d", from, s.level))

	tx.spawn()
	return tx.settle()
}

// settle locks every pattern the pool completes, until none remains.
func (tx *txn) settle() []PatternSolved {
	s := tx.s
	var solved []PatternSolved
	for {
		m, ok := rules.FindMatch(s.catalog, s.pool())
		if !ok {
			return solved
		}
		for _, f := range m.Fragments {
			s.fragments[f.ID].Solved = true
		}
		s.score += m.Pattern.Points
		s.puzzlesSolved++
		s.metrics.RecordPattern(m.Pattern.Points)

		ps := PatternSolved{Name: m.Pattern.Name, Points: m.Pattern.Points, FragmentIDs: m.FragmentIDs()}
		solved = append(solved, ps)
		tx.emit(events.EventTypePatternSolved, ps)
		s.logger.Event("PATTERN_SOLVED", s.id, fmt.Sprintf("%s +%d | Fragments %v", ps.Name, ps.Points, ps.FragmentIDs))
	}
}
