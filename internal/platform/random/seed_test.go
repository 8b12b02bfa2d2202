package random

import "testing"

func TestNewRandSeeded(t *testing.T) {
	a, seedA, err := NewRand(42)
	if err != nil {
		t.Fatalf("new rand: %v", err)
	}
	b, _, _ := NewRand(42)
	if seedA != 42 {
		t.Fatalf("expected seed 42 to be kept, got %d", seedA)
	}
	for i := 0; i < 5; i++ {
		if x, y := a.Intn(1000), b.Intn(1000); x != y {
			t.Fatalf("draw %d differs: %d vs %d", i, x, y)
		}
	}
}

func TestNewRandUnseeded(t *testing.T) {
	r, seed, err := NewRand(0)
	if err != nil {
		t.Fatalf("new rand: %v", err)
	}
	if r == nil {
		t.Fatalf("expected a generator")
	}
	if seed == 0 {
		t.Fatalf("expected a resolved non-zero seed")
	}
}
