// Package engine - spawn_system.go
// Spawn System: populates the board with fresh fragments when a level starts.
//
// The random source is injected so seeded sessions replay identically.
package engine

import (
	"math/rand"

	"github.com/MRamiBalles/EchoesOfEternity/internal/domain/fragment"
)

// baseSpawnCount is the fragment count before the per-level bonus.
const baseSpawnCount = 3

// SpawnSystem generates fragments with randomized attributes.
type SpawnSystem struct {
	rng *rand.Rand
}

// NewSpawnSystem creates a spawner drawing from rng.
func NewSpawnSystem(rng *rand.Rand) *SpawnSystem {
	return &SpawnSystem{rng: rng}
}

// FragmentCount is how many fragments a level spawns on an empty board:
// 3 + level, never more than half the board.
func FragmentCount(level int, board fragment.Board) int {
	return min(baseSpawnCount+level, board.Cells()/2)
}

// Generate creates fragments for level on the cells not listed in occupied.
// IDs start at nextID and increase by one. Fewer fragments are returned when
// the board has too few free cells.
func (ss *SpawnSystem) Generate(level int, board fragment.Board, nextID int, occupied map[fragment.Position]bool) []fragment.Fragment {
	free := make([]fragment.Position, 0, board.Cells())
	for y := 0; y < board.Height; y++ {
		for x := 0; x < board.Width; x++ {
			p := fragment.Position{X: x, Y: y}
			if !occupied[p] {
				free = append(free, p)
			}
		}
	}

	count := min(FragmentCount(level, board), len(free))
	spawned := make([]fragment.Fragment, 0, count)
	for i := 0; i < count; i++ {
		// Partial Fisher-Yates: draw a cell from the remaining tail.
		j := i + ss.rng.Intn(len(free)-i)
		free[i], free[j] = free[j], free[i]

		spawned = append(spawned, fragment.Fragment{
			ID:       nextID + i,
			Position: free[i],
			Rotation: fragment.Rotations[ss.rng.Intn(len(fragment.Rotations))],
			Type:     fragment.Types[ss.rng.Intn(len(fragment.Types))],
			Shape:    fragment.Shapes[ss.rng.Intn(len(fragment.Shapes))],
			Color:    fragment.Palette[ss.rng.Intn(len(fragment.Palette))],
		})
	}
	return spawned
}
