package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Index returns a cryptographically secure uniform integer in [0, n).
func Index(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("invalid range: %d", n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}
	return int(v.Int64()), nil
}
