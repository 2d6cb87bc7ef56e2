// Package entropy supplies the uniform [0, 1) streams that feed the
// receiver's jitter walk. A seeded Source replays the same walk run after
// run; an unseeded one draws from crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	mrand "math/rand/v2"
	"sync"
)

const poolSize = 64

// Source hands out uniform floats from a small local pool.
// Safe for concurrent use.
type Source struct {
	rng *mrand.Rand // nil when unseeded

	mu   sync.Mutex
	pool []float64
}

// NewSource returns a deterministic PCG stream for a non-zero seed, or a
// crypto/rand backed stream for seed 0.
func NewSource(seed int64) *Source {
	if seed == 0 {
		return &Source{}
	}
	return &Source{rng: mrand.New(mrand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

// Seeded reports whether the stream is reproducible.
func (s *Source) Seeded() bool {
	return s != nil && s.rng != nil
}

// Float returns a random float64 in [0, 1). A nil Source falls back to
// crypto/rand.
func (s *Source) Float() float64 {
	if s == nil {
		return cryptoUnit()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pool) == 0 {
		s.refill()
	}
	if len(s.pool) == 0 {
		return cryptoUnit()
	}

	val := s.pool[0]
	s.pool = s.pool[1:]
	return val
}

func (s *Source) refill() {
	for range poolSize {
		if s.rng != nil {
			s.pool = append(s.pool, s.rng.Float64())
		} else {
			s.pool = append(s.pool, cryptoUnit())
		}
	}
	slog.Debug("entropy pool refilled", "count", poolSize, "seeded", s.rng != nil)
}

// cryptoUnit draws 53 random bits from crypto/rand and scales them into
// [0, 1). A failed read yields the midpoint.
func cryptoUnit() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0.5
	}
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}
