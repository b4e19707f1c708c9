package domain

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Address identifies the caller of an operation (issuer, passenger, oracle agent or owner).
type Address string

func (a Address) IsZero() bool {
	return strings.TrimSpace(string(a)) == ""
}

func (a Address) String() string {
	return string(a)
}

// FlightKey is the Keccak-256 digest of a flight's code, destination and timestamp.
type FlightKey [32]byte

// NewFlightKey derives the key of a flight. Each string field is length-prefixed so that
// ("AB", "C") and ("A", "BC") never collide.
func NewFlightKey(code, destination string, timestamp int64) FlightKey {
	h := sha3.NewLegacyKeccak256()
	var buf [8]byte
	for _, field := range []string{code, destination} {
		binary.BigEndian.PutUint64(buf[:], uint64(len(field)))
		h.Write(buf[:])
		h.Write([]byte(field))
	}
	binary.BigEndian.PutUint64(buf[:], uint64(timestamp))
	h.Write(buf[:])

	var key FlightKey
	copy(key[:], h.Sum(nil))
	return key
}

func ParseFlightKey(s string) (FlightKey, error) {
	var key FlightKey
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return key, fmt.Errorf("decode flight key: %w", err)
	}
	if len(raw) != len(key) {
		return key, errors.New("flight key must be 32 bytes")
	}
	copy(key[:], raw)
	return key, nil
}

func (k FlightKey) String() string {
	return "0x" + hex.EncodeToString(k[:])
}

func (k FlightKey) IsZero() bool {
	return k == FlightKey{}
}

func (k FlightKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *FlightKey) UnmarshalText(text []byte) error {
	parsed, err := ParseFlightKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
