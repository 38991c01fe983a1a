package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/woozymasta/a2sim/internal/a2s"
)

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("player%02d", i)
	}
	return out
}

func newTestSimulator(t *testing.T, opts Options) *Simulator {
	t.Helper()
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func checkRoster(t *testing.T, roster []a2s.Player, wantSize int, opts Options) {
	t.Helper()
	if len(roster) != wantSize {
		t.Fatalf("roster size = %d, want %d", len(roster), wantSize)
	}

	seen := make(map[string]bool)
	for _, p := range roster {
		if seen[p.Name] {
			t.Errorf("duplicate player %q", p.Name)
		}
		seen[p.Name] = true

		if p.Score < opts.ScoreMin || p.Score >= opts.ScoreMax {
			t.Errorf("%s score %d outside [%d, %d)", p.Name, p.Score, opts.ScoreMin, opts.ScoreMax)
		}
		if p.Duration < opts.DurationMin || p.Duration >= opts.DurationMax {
			t.Errorf("%s duration %g outside [%g, %g)", p.Name, p.Duration, opts.DurationMin, opts.DurationMax)
		}
	}
}

func TestNewPopulatesRoster(t *testing.T) {
	opts := Options{Names: names(20), Size: 8}
	s := newTestSimulator(t, opts)

	opts.setDefaults()
	checkRoster(t, s.Snapshot(), 8, opts)

	_, target := s.Round()
	if target < DefaultRoundMin || target >= DefaultRoundMax {
		t.Errorf("round target %g outside default range", target)
	}
}

func TestTickAdvancesWithinRound(t *testing.T) {
	s := newTestSimulator(t, Options{
		Names:       names(10),
		Size:        6,
		DurationMin: 10,
		DurationMax: 10,
		RoundMin:    1000,
		RoundMax:    1000,
	})

	before := s.Snapshot()
	for i := 0; i < 10; i++ {
		s.Tick(5)
	}
	after := s.Snapshot()

	if len(after) != len(before) {
		t.Fatalf("roster size changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if after[i].Name != before[i].Name {
			t.Errorf("player %d renamed %q -> %q", i, before[i].Name, after[i].Name)
		}
		if got := after[i].Duration - before[i].Duration; got != 50 {
			t.Errorf("%s duration grew by %g, want 50", after[i].Name, got)
		}
		delta := after[i].Score - before[i].Score
		if delta < -50 || delta > 150 {
			t.Errorf("%s score changed by %d, outside 10 ticks of deltas", after[i].Name, delta)
		}
	}

	elapsed, _ := s.Round()
	if elapsed != 50 {
		t.Errorf("elapsed = %g, want 50", elapsed)
	}
}

func TestTickResetsRound(t *testing.T) {
	cases := []struct {
		pool, size, want int
	}{
		{pool: 10, size: 4, want: 4},
		{pool: 3, size: 10, want: 3},
		{pool: 0, size: 5, want: 0},
		{pool: 5, size: 0, want: 0},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("pool=%d,size=%d", tc.pool, tc.size), func(t *testing.T) {
			opts := Options{
				Names:       names(tc.pool),
				Size:        tc.size,
				ScoreMin:    -10,
				ScoreMax:    10,
				DurationMin: 5,
				DurationMax: 6,
				RoundMin:    10,
				RoundMax:    10,
			}
			s := newTestSimulator(t, opts)

			s.Tick(5)
			s.Tick(5) // elapsed == target, no reset yet
			if elapsed, _ := s.Round(); elapsed != 10 {
				t.Fatalf("elapsed = %g, want 10", elapsed)
			}

			s.Tick(5)
			if elapsed, _ := s.Round(); elapsed != 0 {
				t.Fatalf("elapsed = %g after reset, want 0", elapsed)
			}
			checkRoster(t, s.Snapshot(), tc.want, opts)
		})
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestSimulator(t, Options{Names: names(3), Size: 3})

	snap := s.Snapshot()
	snap[0].Name = "mutated"
	snap[0].Score = 1 << 20

	again := s.Snapshot()
	if again[0].Name == "mutated" || again[0].Score == 1<<20 {
		t.Error("snapshot shares memory with the live roster")
	}
}

func TestSubscribe(t *testing.T) {
	s := newTestSimulator(t, Options{Names: names(4), Size: 2, RoundMin: 100, RoundMax: 100})

	var got [][]a2s.Player
	cancel := s.Subscribe(func(p []a2s.Player) { got = append(got, p) })

	s.Tick(1)
	s.Tick(1)
	cancel()
	s.Tick(1)

	if len(got) != 2 {
		t.Fatalf("notified %d times, want 2", len(got))
	}
	if len(got[1]) != 2 {
		t.Errorf("snapshot size = %d, want 2", len(got[1]))
	}
}

func TestInvalidOptions(t *testing.T) {
	cases := []Options{
		{Size: -1},
		{ScoreMin: 10, ScoreMax: 5},
		{DurationMin: 10, DurationMax: 1},
		{DurationMin: -1, DurationMax: 1},
		{RoundMin: 100, RoundMax: 10},
	}

	for i, opts := range cases {
		if _, err := New(opts); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("case %d: err = %v, want ErrInvalidRange", i, err)
		}
	}
}

func TestConcurrentTickAndSnapshot(t *testing.T) {
	s := newTestSimulator(t, Options{Names: names(32), Size: 16, RoundMin: 50, RoundMax: 60})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.Tick(1)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if n := len(s.Snapshot()); n != 16 {
				t.Errorf("snapshot size = %d, want 16", n)
				return
			}
		}
	}()
	wg.Wait()
}

func TestRunStopsAfterCancel(t *testing.T) {
	s := newTestSimulator(t, Options{Names: names(4), Size: 4, RoundMin: 1000, RoundMax: 1000})

	ticks := make(chan struct{}, 100)
	s.Subscribe(func([]a2s.Player) {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 2*time.Millisecond)
		close(done)
	}()

	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("no tick observed")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
