// Package game holds the Heads-or-Tails coin flip shared by the wager
// engine and the HTTP layer.
package game

import (
	"crypto/rand"
	"fmt"
)

type Outcome string

const (
	Heads Outcome = "Heads"
	Tails Outcome = "Tails"
)

// ParseOutcome validates a client-supplied prediction.
func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(s) {
	case Heads:
		return Heads, nil
	case Tails:
		return Tails, nil
	default:
		return "", fmt.Errorf("invalid outcome %q", s)
	}
}

// Source produces one coin flip per call.
type Source interface {
	Flip() Outcome
}

// CryptoSource draws each flip from crypto/rand. Players have a direct
// financial incentive to predict the coin, so a seedable PRNG is not
// acceptable here.
type CryptoSource struct{}

func (CryptoSource) Flip() Outcome {
	var b [1]byte
	// crypto/rand.Read never fails on supported platforms (Go 1.24+).
	_, _ = rand.Read(b[:])

	if b[0]&1 == 0 {
		return Heads
	}
	return Tails
}

// FixedSource always returns the same outcome; for tests.
type FixedSource Outcome

func (f FixedSource) Flip() Outcome { return Outcome(f) }
