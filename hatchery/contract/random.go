package contract

import (
	"crypto/rand"
	"fmt"
)

// RandomSource supplies the seed bytes for randomized catalog selection.
// The narrow surface keeps the chain-supplied randomness swappable for a
// deterministic stub in tests.
type RandomSource interface {
	NextByte() byte
}

// RandomFunc adapts a plain function to a RandomSource.
type RandomFunc func() byte

func (f RandomFunc) NextByte() byte { return f() }

// CryptoRandom draws seed bytes from the operating system's entropy pool.
// Deployments embedded in a chain runtime inject the chain's randomness
// instead.
func CryptoRandom() RandomSource {
	return RandomFunc(func() byte {
		var b [1]byte
		if _, err := rand.Read(b[:]); err != nil {
			panic(fmt.Errorf("failed to read random byte: %w", err))
		}
		return b[0]
	})
}
