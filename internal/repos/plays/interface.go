// Package plays is the append-only record of resolved wagers.
package plays

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrDuplicatePlay = errors.New("duplicate play")

type Play struct {
	ID           string
	UserID       uint64
	BetAmount    int64
	Prediction   string
	Outcome      string
	Won          bool
	CreditsAfter int64
	CreatedAt    time.Time
}

type Plays interface {
	Insert(tx *sql.Tx, p Play) error
	CountForUser(ctx context.Context, userID uint64) (int64, error)
}
