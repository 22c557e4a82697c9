// Package randutil generates identifiers for server-assigned pastes.
package randutil

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabet leaves out characters that are easy to misread (0, o, 1, l, i).
const Alphabet = "23456789abcdefghjkmnpqrstuvwxyz"

// ID returns a random identifier of n characters drawn uniformly from Alphabet.
func ID(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(Alphabet)))
	for i := range out {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating id: %w", err)
		}
		out[i] = Alphabet[num.Int64()]
	}
	return string(out), nil
}
