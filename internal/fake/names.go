// Package fake generates synthetic player names for servers configured without a name pool.
package fake

import (
	"fmt"
	"math/rand"
	"time"
)

var (
	prefixes = []string{"", "", "", "xX", "The", "Sgt", "Pvt", "Lt", "Dr", "Mr", "Big"}
	words    = []string{
		"Wolf", "Falcon", "Ghost", "Viper", "Raven", "Badger", "Cobra", "Moose", "Panda", "Shadow",
		"Hunter", "Sniper", "Medic", "Tank", "Rookie", "Bandit", "Nomad", "Ranger", "Pilot", "Bear",
		"Fox", "Hawk", "Tiger", "Spectre", "Reaper", "Mamba", "Otter", "Yeti", "Comet", "Blaze",
	}
	suffixes = []string{"", "", "", "", "Xx", "_pl", "_ru", "_de", "TV", "_NL", "_ttv"}
)

// Names returns n distinct player names.
func Names(n int) []string {
	return NamesWithRand(rand.New(rand.NewSource(time.Now().UnixNano())), n)
}

// NamesWithRand is Names with a caller supplied random source.
func NamesWithRand(rng *rand.Rand, n int) []string {
	out := make([]string, 0, n)
	seen := make(map[string]struct{}, n)

	for len(out) < n {
		name := prefixes[rng.Intn(len(prefixes))] + words[rng.Intn(len(words))] + suffixes[rng.Intn(len(suffixes))]

		// 40% chance of a trailing number, also used to break collisions
		if _, dup := seen[name]; dup || rng.Float32() < 0.4 {
			name = fmt.Sprintf("%s%d", name, rng.Intn(1000))
		}
		if _, dup := seen[name]; dup {
			continue
		}

		seen[name] = struct{}{}
		out = append(out, name)
	}

	return out
}
