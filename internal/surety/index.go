package surety

import (
	"encoding/binary"
	"sync"
	"time"

	"golang.org/x/crypto/sha3"
)

// IndexSource draws pseudo-random oracle indexes in [0, max). It is not a source of
// unpredictability; callers must not rely on it for anything but spreading load.
type IndexSource interface {
	Index(seed []byte, max uint8) uint8
}

// KeccakIndexSource hashes the seed together with caller-supplied entropy and a nonce that
// advances on every draw.
type KeccakIndexSource struct {
	mu      sync.Mutex
	entropy func() []byte
	nonce   uint64
}

// NewKeccakIndexSource returns a source mixing in entropy on every draw. A nil entropy
// function uses the wall clock.
func NewKeccakIndexSource(entropy func() []byte) *KeccakIndexSource {
	if entropy == nil {
		entropy = clockEntropy
	}
	return &KeccakIndexSource{entropy: entropy}
}

func (s *KeccakIndexSource) Index(seed []byte, max uint8) uint8 {
	if max == 0 {
		return 0
	}
	s.mu.Lock()
	nonce := s.nonce
	s.nonce++
	s.mu.Unlock()

	h := sha3.NewLegacyKeccak256()
	h.Write(seed)
	h.Write(s.entropy())
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], nonce)
	h.Write(buf[:])
	sum := h.Sum(nil)
	return uint8(binary.BigEndian.Uint64(sum[:8]) % uint64(max))
}

func clockEntropy() []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(time.Now().UnixNano()))
	return buf[:]
}
