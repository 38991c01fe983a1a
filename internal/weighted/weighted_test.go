package weighted

import (
	"errors"
	"math/rand"
	"testing"
)

func TestDrawAtRanges(t *testing.T) {
	s, err := New(
		Entry[string]{Item: "A", Weight: 1},
		Entry[string]{Item: "B", Weight: 1},
		Entry[string]{Item: "C", Weight: 2},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if s.Total() != 4 {
		t.Fatalf("total = %v, want 4", s.Total())
	}

	cases := []struct {
		r    float64
		want string
	}{
		{0, "A"},
		{0.5, "A"},
		{0.999, "A"},
		{1, "B"},
		{1.5, "B"},
		{1.999, "B"},
		{2, "C"},
		{3, "C"},
		{3.999, "C"},
		{4, "C"},
	}

	for _, tc := range cases {
		got, err := s.DrawAt(tc.r)
		if err != nil {
			t.Fatalf("DrawAt(%v): %v", tc.r, err)
		}
		if got != tc.want {
			t.Errorf("DrawAt(%v) = %s, want %s", tc.r, got, tc.want)
		}
	}
}

func TestZeroWeightHeadIsSkipped(t *testing.T) {
	s, err := New(
		Entry[int]{Item: 1, Weight: 0},
		Entry[int]{Item: 2, Weight: 3},
		Entry[int]{Item: 3, Weight: 0},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, r := range []float64{0, 1, 2.9, 3} {
		got, err := s.DrawAt(r)
		if err != nil {
			t.Fatalf("DrawAt(%v): %v", r, err)
		}
		if got != 2 {
			t.Errorf("DrawAt(%v) = %d, want 2", r, got)
		}
	}
}

func TestEmptyPopulation(t *testing.T) {
	if _, err := New[int](); !errors.Is(err, ErrEmptyPopulation) {
		t.Errorf("New() err = %v, want ErrEmptyPopulation", err)
	}

	if _, err := New(Entry[int]{Item: 1, Weight: 0}); !errors.Is(err, ErrEmptyPopulation) {
		t.Errorf("New(zero weights) err = %v, want ErrEmptyPopulation", err)
	}

	var s Sampler[int]
	if _, err := s.DrawAt(0); !errors.Is(err, ErrEmptyPopulation) {
		t.Errorf("DrawAt on empty sampler err = %v, want ErrEmptyPopulation", err)
	}
}

func TestNegativeWeight(t *testing.T) {
	_, err := New(Entry[int]{Item: 1, Weight: 1}, Entry[int]{Item: 2, Weight: -1})
	if !errors.Is(err, ErrNegativeWeight) {
		t.Errorf("err = %v, want ErrNegativeWeight", err)
	}
}

func TestDrawDistribution(t *testing.T) {
	s, err := NewWithRand(rand.New(rand.NewSource(42)),
		Entry[string]{Item: "rare", Weight: 1},
		Entry[string]{Item: "common", Weight: 9},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	counts := map[string]int{}
	const n = 10000
	for i := 0; i < n; i++ {
		counts[s.MustDraw()]++
	}

	if counts["rare"]+counts["common"] != n {
		t.Fatalf("unexpected items drawn: %v", counts)
	}
	if counts["rare"] < 700 || counts["rare"] > 1300 {
		t.Errorf("rare drawn %d times out of %d, expected about 10%%", counts["rare"], n)
	}
}
