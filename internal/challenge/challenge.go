// Package challenge issues the anti-spoofing token that A2S clients must echo back.
package challenge

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultRotation is how often a running authority picks a new challenge.
const DefaultRotation = 5 * time.Minute

// Authority holds the process wide challenge value.
type Authority struct {
	source  io.Reader
	current atomic.Int32
}

// New creates an authority seeded from crypto/rand.
func New() (*Authority, error) {
	return NewFromReader(rand.Reader)
}

// NewFromReader creates an authority that draws challenge values from source.
func NewFromReader(source io.Reader) (*Authority, error) {
	a := &Authority{source: source}
	if err := a.Rotate(); err != nil {
		return nil, err
	}

	return a, nil
}

// Current returns the active challenge.
func (a *Authority) Current() int32 {
	return a.current.Load()
}

// Validate reports whether candidate matches the active challenge.
// The sentinels -1 and 0 never validate.
func (a *Authority) Validate(candidate int32) bool {
	if candidate == -1 || candidate == 0 {
		return false
	}

	return candidate == a.current.Load()
}

// Rotate replaces the active challenge with a new random value.
func (a *Authority) Rotate() error {
	var b [4]byte
	if _, err := io.ReadFull(a.source, b[:]); err != nil {
		return fmt.Errorf("read challenge: %w", err)
	}

	a.current.Store(int32(binary.LittleEndian.Uint32(b[:])))

	return nil
}

// Run rotates the challenge every period until ctx is done.
func (a *Authority) Run(ctx context.Context, period time.Duration) {
	if period <= 0 {
		period = DefaultRotation
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.Rotate(); err != nil {
				log.Error().Err(err).Msg("Failed to rotate challenge, keeping previous value")
				continue
			}
			log.Debug().Str("challenge", fmt.Sprintf("0x%08x", uint32(a.Current()))).Msg("Challenge rotated")
		}
	}
}
