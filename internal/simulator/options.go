package simulator

import (
	"fmt"
	"math/rand"

	"github.com/woozymasta/a2sim/internal/weighted"
)

// Options configures a Simulator. Zero valued ranges fall back to the defaults below.
type Options struct {
	// Rand drives every random decision; nil means a time seeded source.
	Rand *rand.Rand

	// ScoreDeltas is drawn once per player per tick; nil means DefaultScoreDeltas.
	ScoreDeltas *weighted.Sampler[int32]

	// Names is the pool roster names are sampled from.
	Names []string

	// Size is the target roster size, capped by len(Names).
	Size int

	// Starting score range [ScoreMin, ScoreMax).
	ScoreMin int32
	ScoreMax int32

	// Starting play time range in seconds [DurationMin, DurationMax).
	DurationMin float32
	DurationMax float32

	// Round length range in seconds [RoundMin, RoundMax).
	RoundMin float64
	RoundMax float64
}

// Defaults observed on live servers.
const (
	DefaultScoreMin    int32   = -50
	DefaultScoreMax    int32   = 250
	DefaultDurationMin float32 = 0
	DefaultDurationMax float32 = 60
	DefaultRoundMin    float64 = 1800
	DefaultRoundMax    float64 = 3600
)

// DefaultScoreDeltas returns the score change distribution applied each tick.
func DefaultScoreDeltas() []weighted.Entry[int32] {
	return []weighted.Entry[int32]{
		{Item: -5, Weight: 0.1},
		{Item: -2, Weight: 0.1},
		{Item: 0, Weight: 0.2},
		{Item: 2, Weight: 0.2},
		{Item: 5, Weight: 0.5},
		{Item: 10, Weight: 0.2},
		{Item: 15, Weight: 0.1},
	}
}

func (o *Options) setDefaults() {
	if o.ScoreMin == 0 && o.ScoreMax == 0 {
		o.ScoreMin, o.ScoreMax = DefaultScoreMin, DefaultScoreMax
	}
	if o.DurationMin == 0 && o.DurationMax == 0 {
		o.DurationMin, o.DurationMax = DefaultDurationMin, DefaultDurationMax
	}
	if o.RoundMin == 0 && o.RoundMax == 0 {
		o.RoundMin, o.RoundMax = DefaultRoundMin, DefaultRoundMax
	}
}

func (o *Options) validate() error {
	if o.Size < 0 {
		return fmt.Errorf("roster size %d: %w", o.Size, ErrInvalidRange)
	}
	if o.ScoreMax < o.ScoreMin {
		return fmt.Errorf("score [%d, %d): %w", o.ScoreMin, o.ScoreMax, ErrInvalidRange)
	}
	if o.DurationMin < 0 || o.DurationMax < o.DurationMin {
		return fmt.Errorf("duration [%g, %g): %w", o.DurationMin, o.DurationMax, ErrInvalidRange)
	}
	if o.RoundMin < 0 || o.RoundMax < o.RoundMin {
		return fmt.Errorf("round [%g, %g): %w", o.RoundMin, o.RoundMax, ErrInvalidRange)
	}

	return nil
}
