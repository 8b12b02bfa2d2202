package rules

import (
	"slices"
	"testing"

	"github.com/MRamiBalles/EchoesOfEternity/internal/domain/fragment"
)

func frag(id int, t fragment.Type, x, y int, rot fragment.Rotation) fragment.Fragment {
	return fragment.Fragment{ID: id, Type: t, Position: fragment.Position{X: x, Y: y}, Rotation: rot}
}

func TestCatalogOrder(t *testing.T) {
	want := []string{"Chronological Sequence", "Paradox Resolution", "Temporal Balance", "Time Loop"}
	cat := Catalog()
	if len(cat) != len(want) {
		t.Fatalf("expected %d patterns, got %d", len(want), len(cat))
	}
	for i, p := range cat {
		if p.Name != want[i] {
			t.Errorf("pattern %d = %q, want %q", i, p.Name, want[i])
		}
		if len(p.Rotations) != p.Size() {
			t.Errorf("%s: rotations not aligned to types", p.Name)
		}
	}
}

func TestFindMatchChronologicalSequence(t *testing.T) {
	pool := []fragment.Fragment{
		frag(0, fragment.TypePast, 0, 0, 0),
		frag(1, fragment.TypePresent, 1, 0, 0),
		frag(2, fragment.TypeFuture, 2, 0, 0),
	}

	m, ok := FindMatch(Catalog(), pool)
	if !ok {
		t.Fatalf("expected a match")
	}
	if m.Pattern.Name != "Chronological Sequence" || m.Pattern.Points != 100 {
		t.Fatalf("matched %q (%d points)", m.Pattern.Name, m.Pattern.Points)
	}
	if !slices.Equal(m.FragmentIDs(), []int{0, 1, 2}) {
		t.Fatalf("unexpected subset %v", m.FragmentIDs())
	}
}

func TestFindMatchRotationMismatch(t *testing.T) {
	pool := []fragment.Fragment{
		frag(0, fragment.TypePast, 0, 0, 0),
		frag(1, fragment.TypePresent, 1, 0, 0),
		frag(2, fragment.TypeFuture, 2, 0, 90),
	}
	if m, ok := FindMatch(Catalog(), pool); ok {
		t.Fatalf("expected no match, got %q", m.Pattern.Name)
	}
}

func TestFindMatchTemporalBalance(t *testing.T) {
	adjacent := []fragment.Fragment{
		frag(0, fragment.TypePast, 0, 0, 180),
		frag(1, fragment.TypeFuture, 1, 0, 180),
	}
	m, ok := FindMatch(Catalog(), adjacent)
	if !ok || m.Pattern.Name != "Temporal Balance" || m.Pattern.Points != 50 {
		t.Fatalf("expected Temporal Balance, got %v %v", m.Pattern.Name, ok)
	}

	apart := []fragment.Fragment{
		frag(0, fragment.TypePast, 0, 0, 180),
		frag(1, fragment.TypeFuture, 2, 0, 180),
	}
	if _, ok := FindMatch(Catalog(), apart); ok {
		t.Fatalf("non adjacent pair must not match")
	}
}

func TestFindMatchParadoxResolution(t *testing.T) {
	pool := []fragment.Fragment{
		frag(4, fragment.TypeVoid, 1, 1, 270),
		frag(5, fragment.TypeParadox, 0, 0, 90),
		frag(6, fragment.TypeConstant, 1, 0, 180),
	}
	m, ok := FindMatch(Catalog(), pool)
	if !ok || m.Pattern.Name != "Paradox Resolution" {
		t.Fatalf("expected Paradox Resolution, got %v %v", m.Pattern.Name, ok)
	}

	pool[0].Rotation = 90
	if _, ok := FindMatch(Catalog(), pool); ok {
		t.Fatalf("wrong void rotation must not match")
	}
}

func TestTimeLoopAssignsDuplicateTypesInIDOrder(t *testing.T) {
	// The first past slot takes the lower ID, the last slot the higher one.
	pool := []fragment.Fragment{
		frag(1, fragment.TypePast, 0, 0, 0),
		frag(2, fragment.TypePresent, 1, 0, 90),
		frag(3, fragment.TypeFuture, 0, 1, 180),
		frag(4, fragment.TypePast, 1, 1, 270),
	}
	m, ok := FindMatch(Catalog(), pool)
	if !ok || m.Pattern.Name != "Time Loop" || m.Pattern.Points != 200 {
		t.Fatalf("expected Time Loop, got %v %v", m.Pattern.Name, ok)
	}

	swapped := slices.Clone(pool)
	swapped[0].Rotation, swapped[3].Rotation = 270, 0
	if _, ok := FindMatch(Catalog(), swapped); ok {
		t.Fatalf("past rotations assigned out of order must not match")
	}
}

func TestMatchesRejectsWrongMultiset(t *testing.T) {
	cat := Catalog()
	cases := []struct {
		name string
		in   []fragment.Fragment
	}{
		{"duplicate past", []fragment.Fragment{
			frag(0, fragment.TypePast, 0, 0, 0),
			frag(1, fragment.TypePast, 1, 0, 0),
			frag(2, fragment.TypeFuture, 2, 0, 0),
		}},
		{"foreign type", []fragment.Fragment{
			frag(0, fragment.TypePast, 0, 0, 0),
			frag(1, fragment.TypeVoid, 1, 0, 0),
			frag(2, fragment.TypeFuture, 2, 0, 0),
		}},
		{"wrong size", []fragment.Fragment{
			frag(0, fragment.TypePast, 0, 0, 0),
			frag(1, fragment.TypePresent, 1, 0, 0),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, p := range cat {
				if Matches(tc.in, p) {
					t.Fatalf("unexpected match with %q", p.Name)
				}
			}
		})
	}
}

func TestFindMatchNeverMatchesForeignMultisets(t *testing.T) {
	// Every rotation and a dense cluster of positions, but only paradox
	// and void fragments: no catalog multiset can be formed.
	var pool []fragment.Fragment
	id := 0
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			ty := fragment.TypeParadox
			if (x+y)%2 == 1 {
				ty = fragment.TypeVoid
			}
			pool = append(pool, frag(id, ty, x, y, fragment.Rotations[id%4]))
			id++
		}
	}
	if m, ok := FindMatch(Catalog(), pool); ok {
		t.Fatalf("unexpected match %q", m.Pattern.Name)
	}
}

func TestFindMatchSkipsSolved(t *testing.T) {
	pool := []fragment.Fragment{
		frag(0, fragment.TypePast, 0, 0, 0),
		frag(1, fragment.TypePresent, 1, 0, 0),
		frag(2, fragment.TypeFuture, 2, 0, 0),
	}
	pool[1].Solved = true
	if _, ok := FindMatch(Catalog(), pool); ok {
		t.Fatalf("solved fragments must not take part in a match")
	}
}

func TestFindMatchDeterministic(t *testing.T) {
	pool := []fragment.Fragment{
		frag(7, fragment.TypeFuture, 3, 3, 180),
		frag(2, fragment.TypePast, 2, 3, 180),
		frag(5, fragment.TypePast, 4, 3, 180),
		frag(9, fragment.TypeFuture, 3, 4, 180),
	}

	first, ok := FindMatch(Catalog(), pool)
	if !ok {
		t.Fatalf("expected a match")
	}
	// Lowest-index subset in ID order: past#2 with future#7.
	if !slices.Equal(first.FragmentIDs(), []int{2, 7}) {
		t.Fatalf("unexpected first subset %v", first.FragmentIDs())
	}

	shuffled := []fragment.Fragment{pool[3], pool[1], pool[0], pool[2]}
	for i := 0; i < 10; i++ {
		again, _ := FindMatch(Catalog(), shuffled)
		if again.Pattern.Name != first.Pattern.Name || !slices.Equal(again.FragmentIDs(), first.FragmentIDs()) {
			t.Fatalf("run %d differs: %v vs %v", i, again.FragmentIDs(), first.FragmentIDs())
		}
	}
}

func TestFindAllMatches(t *testing.T) {
	pool := []fragment.Fragment{
		frag(1, fragment.TypePast, 1, 1, 180),
		frag(2, fragment.TypeFuture, 2, 1, 180),
		frag(3, fragment.TypeFuture, 1, 2, 180),
	}
	all := FindAllMatches(Catalog(), pool)
	if len(all) != 2 {
		t.Fatalf("expected 2 overlapping matches, got %d", len(all))
	}
	if !slices.Equal(all[0].FragmentIDs(), []int{1, 2}) || !slices.Equal(all[1].FragmentIDs(), []int{1, 3}) {
		t.Fatalf("unexpected order %v %v", all[0].FragmentIDs(), all[1].FragmentIDs())
	}
}

func TestCombinationsOrder(t *testing.T) {
	var got [][]int
	combinations(4, 2, func(idx []int) bool {
		got = append(got, slices.Clone(idx))
		return true
	})
	want := [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	if len(got) != len(want) {
		t.Fatalf("expected %d subsets, got %d", len(want), len(got))
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Fatalf("subset %d = %v, want %v", i, got[i], want[i])
		}
	}

	calls := 0
	combinations(3, 4, func([]int) bool { calls++; return true })
	combinations(3, 0, func([]int) bool { calls++; return true })
	if calls != 0 {
		t.Fatalf("impossible sizes should not visit, got %d calls", calls)
	}
}
