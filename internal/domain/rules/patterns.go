package rules

import (
	"slices"

	"github.com/MRamiBalles/EchoesOfEternity/internal/domain/fragment"
)

// Pattern is a winning configuration: a type multiset, an arrangement and,
// optionally, the rotation each type slot must have.
type Pattern struct {
	Name        string              `json:"name"`
	Types       []fragment.Type     `json:"types"`
	Arrangement Arrangement         `json:"arrangement"`
	Rotations   []fragment.Rotation `json:"rotations,omitempty"` // aligned to Types; nil = arrangement only
	Points      int                 `json:"points"`
}

// Size is the number of fragments the pattern consumes.
func (p Pattern) Size() int {
	return len(p.Types)
}

// Catalog returns the winning configurations in match-priority order.
// The slice is freshly allocated; callers may keep or modify it.
func Catalog() []Pattern {
	return []Pattern{
		{
			Name:        "Chronological Sequence",
			Types:       []fragment.Type{fragment.TypePast, fragment.TypePresent, fragment.TypeFuture},
			Arrangement: ArrangementLinear,
			Rotations:   []fragment.Rotation{fragment.Rotation0, fragment.Rotation0, fragment.Rotation0},
			Points:      100,
		},
		{
			Name:        "Paradox Resolution",
			Types:       []fragment.Type{fragment.TypeParadox, fragment.TypeConstant, fragment.TypeVoid},
			Arrangement: ArrangementTriangle,
			Rotations:   []fragment.Rotation{fragment.Rotation90, fragment.Rotation180, fragment.Rotation270},
			Points:      150,
		},
		{
			Name:        "Temporal Balance",
			Types:       []fragment.Type{fragment.TypePast, fragment.TypeFuture},
			Arrangement: ArrangementAdjacent,
			Rotations:   []fragment.Rotation{fragment.Rotation180, fragment.Rotation180},
			Points:      50,
		},
		{
			Name:        "Time Loop",
			Types:       []fragment.Type{fragment.TypePast, fragment.TypePresent, fragment.TypeFuture, fragment.TypePast},
			Arrangement: ArrangementSquare,
			Rotations:   []fragment.Rotation{fragment.Rotation0, fragment.Rotation90, fragment.Rotation180, fragment.Rotation270},
			Points:      200,
		},
	}
}

// Match pairs a pattern with the fragments that satisfied it.
type Match struct {
	Pattern   Pattern
	Fragments []fragment.Fragment
}

// FragmentIDs returns the IDs of the matched fragments in match order.
func (m Match) FragmentIDs() []int {
	ids := make([]int, len(m.Fragments))
	for i, f := range m.Fragments {
		ids[i] = f.ID
	}
	return ids
}

// Matches reports whether the candidate set satisfies the pattern: same size,
// same type multiset, arrangement holds, and every type slot finds a fragment
// with the required rotation.
func Matches(candidate []fragment.Fragment, p Pattern) bool {
	if len(candidate) != p.Size() {
		return false
	}
	if !sameTypes(candidate, p.Types) {
		return false
	}

	positions := make([]fragment.Position, len(candidate))
	for i, f := range candidate {
		positions[i] = f.Position
	}
	if !p.Arrangement.Holds(positions) {
		return false
	}

	if p.Rotations == nil {
		return true
	}
	return rotationsAligned(candidate, p)
}

func sameTypes(candidate []fragment.Fragment, required []fragment.Type) bool {
	counts := make(map[fragment.Type]int, len(required))
	for _, t := range required {
		counts[t]++
	}
	for _, f := range candidate {
		counts[f.Type]--
	}
	for _, c := range counts {
		if c != 0 {
			return false
		}
	}
	return true
}

// rotationsAligned assigns each type slot, in pattern order, the first unused
// candidate of that type and checks its rotation.
func rotationsAligned(candidate []fragment.Fragment, p Pattern) bool {
	used := make([]bool, len(candidate))
	for i, t := range p.Types {
		slot := -1
		for j, f := range candidate {
			if !used[j] && f.Type == t {
				slot = j
				break
			}
		}
		if slot < 0 {
			return false
		}
		used[slot] = true
		if candidate[slot].Rotation != p.Rotations[i] {
			return false
		}
	}
	return true
}

// FindMatch returns the first pattern, in catalog order, with the first
// matching subset of the unsolved fragments, in enumeration order.
// Fragments are enumerated by ascending ID; solved fragments are ignored.
//
// The search is C(n, k) per pattern of size k. It is only meant for the small
// pools a board produces.
func FindMatch(catalog []Pattern, pool []fragment.Fragment) (Match, bool) {
	unsolved := unsolvedByID(pool)
	for _, p := range catalog {
		var found []fragment.Fragment
		combinations(len(unsolved), p.Size(), func(idx []int) bool {
			subset := pick(unsolved, idx)
			if Matches(subset, p) {
				found = subset
				return false
			}
			return true
		})
		if found != nil {
			return Match{Pattern: p, Fragments: found}, true
		}
	}
	return Match{}, false
}

// FindAllMatches lists every pattern and subset pair that matches, in the same
// order FindMatch would discover them. Subsets may overlap.
func FindAllMatches(catalog []Pattern, pool []fragment.Fragment) []Match {
	unsolved := unsolvedByID(pool)
	var out []Match
	for _, p := range catalog {
		combinations(len(unsolved), p.Size(), func(idx []int) bool {
			subset := pick(unsolved, idx)
			if Matches(subset, p) {
				out = append(out, Match{Pattern: p, Fragments: subset})
			}
			return true
		})
	}
	return out
}

func unsolvedByID(pool []fragment.Fragment) []fragment.Fragment {
	out := make([]fragment.Fragment, 0, len(pool))
	for _, f := range pool {
		if !f.Solved {
			out = append(out, f)
		}
	}
	slices.SortStableFunc(out, func(a, b fragment.Fragment) int { return a.ID - b.ID })
	return out
}

func pick(pool []fragment.Fragment, idx []int) []fragment.Fragment {
	subset := make([]fragment.Fragment, len(idx))
	for i, j := range idx {
		subset[i] = pool[j]
	}
	return subset
}

// combinations calls visit with every k-subset of [0, n) in lexicographic
// order until visit returns false. The idx slice is reused between calls.
func combinations(n, k int, visit func(idx []int) bool) {
	if k <= 0 || k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		if !visit(idx) {
			return
		}
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
