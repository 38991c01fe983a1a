// Package weighted implements a weighted random choice over a fixed set of items.
package weighted

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	// ErrEmptyPopulation is returned when a sampler has no entries or all weights are zero.
	ErrEmptyPopulation = errors.New("weighted: empty population")

	// ErrNegativeWeight is returned when an entry is added with a weight below zero.
	ErrNegativeWeight = errors.New("weighted: negative weight")
)

// Entry pairs an item with its relative weight.
type Entry[T any] struct {
	Item   T
	Weight float64
}

type bucket[T any] struct {
	item       T
	cumulative float64
}

// Sampler draws items proportionally to their weight.
// It is not safe for concurrent use; callers serialize access.
type Sampler[T any] struct {
	rng     *rand.Rand
	buckets []bucket[T]
	total   float64
}

// New builds a sampler from the given entries using a time seeded random source.
// It fails with ErrEmptyPopulation when the entries carry no weight at all.
func New[T any](entries ...Entry[T]) (*Sampler[T], error) {
	return NewWithRand(rand.New(rand.NewSource(time.Now().UnixNano())), entries...)
}

// NewWithRand is like New but draws from the supplied random source.
func NewWithRand[T any](rng *rand.Rand, entries ...Entry[T]) (*Sampler[T], error) {
	s := &Sampler[T]{rng: rng}
	for _, e := range entries {
		if err := s.Add(e.Item, e.Weight); err != nil {
			return nil, err
		}
	}

	if s.total <= 0 {
		return nil, ErrEmptyPopulation
	}

	return s, nil
}

// Add appends an item to the population.
func (s *Sampler[T]) Add(item T, weight float64) error {
	if weight < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeWeight, weight)
	}

	s.total += weight
	s.buckets = append(s.buckets, bucket[T]{item: item, cumulative: s.total})

	return nil
}

// Total returns the accumulated weight of all entries.
func (s *Sampler[T]) Total() float64 {
	return s.total
}

// Len returns the number of entries.
func (s *Sampler[T]) Len() int {
	return len(s.buckets)
}

// Draw returns a random item, picking r uniformly in [0, total).
func (s *Sampler[T]) Draw() (T, error) {
	return s.DrawAt(s.rng.Float64() * s.total)
}

// DrawAt returns the first item whose cumulative weight exceeds r.
// Entries with zero weight are never selected.
func (s *Sampler[T]) DrawAt(r float64) (T, error) {
	var zero T
	if s.total <= 0 {
		return zero, ErrEmptyPopulation
	}

	for _, b := range s.buckets {
		if b.cumulative > r {
			return b.item, nil
		}
	}

	// r at or past total: clamp to the last weighted entry
	for i := len(s.buckets) - 1; i >= 0; i-- {
		prev := 0.0
		if i > 0 {
			prev = s.buckets[i-1].cumulative
		}
		if s.buckets[i].cumulative > prev {
			return s.buckets[i].item, nil
		}
	}

	return zero, ErrEmptyPopulation
}

// MustDraw is Draw for samplers already validated by New.
func (s *Sampler[T]) MustDraw() T {
	item, err := s.Draw()
	if err != nil {
		panic(err)
	}

	return item
}
