// Package random generates high-entropy seeds for deterministic battles.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
)

// NewSeed returns a non-negative seed read from crypto/rand. Seeds are
// non-negative so they can be passed back to -seed to replay a battle.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:]) & math.MaxInt64), nil
}
