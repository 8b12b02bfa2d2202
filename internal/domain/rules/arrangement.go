package rules

import (
	"slices"

	"github.com/MRamiBalles/EchoesOfEternity/internal/domain/fragment"
)

// Arrangement is the geometric relation a pattern's fragments must satisfy.
type Arrangement string

const (
	ArrangementLinear   Arrangement = "linear"
	ArrangementTriangle Arrangement = "triangle"
	ArrangementSquare   Arrangement = "square"
	ArrangementAdjacent Arrangement = "adjacent"
)

// Holds evaluates the arrangement predicate over a set of positions.
// Unknown arrangements never hold.
func (a Arrangement) Holds(positions []fragment.Position) bool {
	switch a {
	case ArrangementLinear:
		return IsLinear(positions)
	case ArrangementTriangle:
		return IsTriangle(positions)
	case ArrangementSquare:
		return IsSquare(positions)
	case ArrangementAdjacent:
		return IsAdjacent(positions)
	default:
		return false
	}
}

// IsLinear reports whether all positions share one axis and their values on the
// other axis form a run of consecutive integers with no gaps or repeats.
func IsLinear(positions []fragment.Position) bool {
	if len(positions) == 0 {
		return false
	}

	sameX, sameY := true, true
	for _, p := range positions[1:] {
		sameX = sameX && p.X == positions[0].X
		sameY = sameY && p.Y == positions[0].Y
	}

	switch {
	case sameX:
		return consecutive(positions, func(p fragment.Position) int { return p.Y })
	case sameY:
		return consecutive(positions, func(p fragment.Position) int { return p.X })
	default:
		return false
	}
}

func consecutive(positions []fragment.Position, axis func(fragment.Position) int) bool {
	values := make([]int, len(positions))
	for i, p := range positions {
		values[i] = axis(p)
	}
	slices.Sort(values)
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1]+1 {
			return false
		}
	}
	return true
}

// IsTriangle accepts exactly three distinct positions that are not linear.
// Any non-collinear-by-IsLinear triple qualifies; no stricter shape is required.
func IsTriangle(positions []fragment.Position) bool {
	if len(positions) != 3 || distinct(positions) != 3 {
		return false
	}
	return !IsLinear(positions)
}

// IsSquare accepts exactly the four corners of a non-degenerate bounding rectangle.
func IsSquare(positions []fragment.Position) bool {
	if len(positions) != 4 || distinct(positions) != 4 {
		return false
	}

	minX, maxX := positions[0].X, positions[0].X
	minY, maxY := positions[0].Y, positions[0].Y
	for _, p := range positions[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	if minX == maxX || minY == maxY {
		return false
	}

	for _, p := range positions {
		if (p.X != minX && p.X != maxX) || (p.Y != minY && p.Y != maxY) {
			return false
		}
	}
	return true
}

// IsAdjacent reports whether every position shares an edge with at least one
// other position in the set. The set need not form a single connected component.
func IsAdjacent(positions []fragment.Position) bool {
	if len(positions) < 2 {
		return false
	}

	degree := make([]int, len(positions))
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			if positions[i].Adjacent(positions[j]) {
				degree[i]++
				degree[j]++
			}
		}
	}

	for _, d := range degree {
		if d == 0 {
			return false
		}
	}
	return true
}

func distinct(positions []fragment.Position) int {
	seen := make(map[fragment.Position]struct{}, len(positions))
	for _, p := range positions {
		seen[p] = struct{}{}
	}
	return len(seen)
}
