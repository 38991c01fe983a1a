// Package simulator keeps a plausible looking fake player roster moving over time.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/a2sim/internal/a2s"
	"github.com/woozymasta/a2sim/internal/weighted"
)

// DefaultTickInterval is the cadence the roster advances at.
const DefaultTickInterval = 5 * time.Second

// ErrInvalidRange is returned when an option range has its bounds reversed.
var ErrInvalidRange = errors.New("invalid range")

// Simulator owns the fake roster. Tick and Snapshot are safe for concurrent use.
type Simulator struct {
	rng    *rand.Rand
	deltas *weighted.Sampler[int32]
	opts   Options

	subs   map[int]func([]a2s.Player)
	roster []a2s.Player

	elapsed float64
	target  float64

	mu     sync.Mutex
	subsMu sync.Mutex
	nextID int
}

// New validates opts and starts the first round.
func New(opts Options) (*Simulator, error) {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	deltas := opts.ScoreDeltas
	if deltas == nil {
		var err error
		deltas, err = weighted.NewWithRand(rng, DefaultScoreDeltas()...)
		if err != nil {
			return nil, fmt.Errorf("score deltas: %w", err)
		}
	}

	s := &Simulator{
		rng:    rng,
		deltas: deltas,
		opts:   opts,
		subs:   make(map[int]func([]a2s.Player)),
	}
	s.resetRound()

	return s, nil
}

// Tick advances the simulation by delta seconds.
// Once the round runs past its target length a new round with a fresh roster begins,
// otherwise every player gains a random score delta and delta seconds of play time.
func (s *Simulator) Tick(delta float64) {
	s.mu.Lock()
	s.elapsed += delta
	reset := s.elapsed > s.target
	if reset {
		s.resetRound()
	} else {
		for i := range s.roster {
			s.roster[i].Score += s.deltas.MustDraw()
			s.roster[i].Duration += float32(delta)
		}
	}
	snapshot := s.snapshotLocked()
	target := s.target
	s.mu.Unlock()

	if reset {
		log.Debug().
			Int("players", len(snapshot)).
			Float64("round_seconds", target).
			Msg("Simulation round reset")
	}

	s.notify(snapshot)
}

// Snapshot returns a copy of the current roster.
func (s *Simulator) Snapshot() []a2s.Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Players implements engine.RosterSource.
func (s *Simulator) Players() []a2s.Player {
	return s.Snapshot()
}

// Round returns the elapsed and target length of the current round in seconds.
func (s *Simulator) Round() (elapsed, target float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.elapsed, s.target
}

// Subscribe registers fn to receive a roster snapshot after every tick.
// fn runs on the simulation goroutine and should return quickly.
func (s *Simulator) Subscribe(fn func([]a2s.Player)) (cancel func()) {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

// Run ticks every interval until ctx is done. The next tick is armed only after the
// previous one finished, so a slow tick delays the schedule instead of piling up.
func (s *Simulator) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	log.Info().Dur("interval", interval).Msg("Player simulation started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Player simulation stopped")
			return
		case <-timer.C:
			s.Tick(interval.Seconds())
			timer.Reset(interval)
		}
	}
}

func (s *Simulator) snapshotLocked() []a2s.Player {
	out := make([]a2s.Player, len(s.roster))
	copy(out, s.roster)

	return out
}

func (s *Simulator) notify(snapshot []a2s.Player) {
	s.subsMu.Lock()
	fns := make([]func([]a2s.Player), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// resetRound starts a new round. Caller holds mu.
func (s *Simulator) resetRound() {
	s.elapsed = 0
	s.target = s.uniformFloat(s.opts.RoundMin, s.opts.RoundMax)

	names := s.pickNames()
	roster := make([]a2s.Player, 0, len(names))
	for _, name := range names {
		roster = append(roster, a2s.Player{
			Name:     name,
			Score:    s.uniformInt(s.opts.ScoreMin, s.opts.ScoreMax),
			Duration: float32(s.uniformFloat(float64(s.opts.DurationMin), float64(s.opts.DurationMax))),
		})
	}
	s.roster = roster
}

// pickNames samples up to Size names from the pool without replacement.
func (s *Simulator) pickNames() []string {
	pool := make([]string, len(s.opts.Names))
	copy(pool, s.opts.Names)

	picked := make([]string, 0, min(s.opts.Size, len(pool)))
	for len(picked) < s.opts.Size && len(pool) > 0 {
		idx := s.rng.Intn(len(pool))
		picked = append(picked, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}

	return picked
}

// uniformInt returns a value in [lo, hi), or lo for an empty range.
func (s *Simulator) uniformInt(lo, hi int32) int32 {
	if hi <= lo {
		return lo
	}

	return lo + int32(s.rng.Int63n(int64(hi)-int64(lo)))
}

// uniformFloat returns a value in [lo, hi), or lo for an empty range.
func (s *Simulator) uniformFloat(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}

	return lo + s.rng.Float64()*(hi-lo)
}
