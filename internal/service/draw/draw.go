// Package draw selects giveaway winners.
//
// CryptoDrawer draws from crypto/rand and is the production default. SeededDrawer
// draws from a PCG generator with an explicit seed so a draw can be replayed when
// the seed is disclosed; it is the extension point for auditable draws.
package draw

import (
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/open-builders/gws-backend/internal/utils/random"
)

var ErrNoParticipants = errors.New("no participants to draw from")

// Drawer picks one winner uniformly from participants.
type Drawer interface {
	SelectWinner(participants []string) (string, error)
}

type CryptoDrawer struct{}

func NewCryptoDrawer() CryptoDrawer { return CryptoDrawer{} }

func (CryptoDrawer) SelectWinner(participants []string) (string, error) {
	if len(participants) == 0 {
		return "", ErrNoParticipants
	}
	i, err := random.Index(len(participants))
	if err != nil {
		return "", err
	}
	return participants[i], nil
}

type SeededDrawer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSeededDrawer(seed uint64) *SeededDrawer {
	return &SeededDrawer{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (d *SeededDrawer) SelectWinner(participants []string) (string, error) {
	if len(participants) == 0 {
		return "", ErrNoParticipants
	}
	d.mu.Lock()
	i := d.rng.IntN(len(participants))
	d.mu.Unlock()
	return participants[i], nil
}
