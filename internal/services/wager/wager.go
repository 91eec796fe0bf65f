// Package wager is the only writer of user credits. Every play runs as
// one row-locked database transaction: re-check the balance, debit the
// stake, flip the coin, credit double the stake on a win, record the
// play.
package wager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/thirdeyegames/coinflip/internal/game"
	"github.com/thirdeyegames/coinflip/internal/infra/pgutils"
	"github.com/thirdeyegames/coinflip/internal/repos/plays"
	pgplays "github.com/thirdeyegames/coinflip/internal/repos/plays/postgres"
	"github.com/thirdeyegames/coinflip/internal/repos/users"
	pgusers "github.com/thirdeyegames/coinflip/internal/repos/users/postgres"
)

// MinimumBet is the single authoritative stake floor, matching the
// default chip the client offers.
const MinimumBet = 20

var (
	ErrBetTooSmall = errors.New("bet below minimum stake")
	ErrNotVerified = errors.New("account not verified")
)

// Result is the resolution of one wager.
type Result struct {
	PlayID  string
	Outcome game.Outcome
	Won     bool
	Credits int64 // balance after resolution
}

type Service struct {
	db    *sql.DB
	users users.Users
	plays plays.Plays
	coin  game.Source
}

func New(db *sql.DB, coin game.Source) *Service {
	return &Service{
		db:    db,
		users: pgusers.New(db),
		plays: pgplays.New(db),
		coin:  coin,
	}
}

// PlaceWager validates and resolves one play for userID.
//
// The balance is re-read under the row lock, so two wagers racing on the
// same account serialize and the loser of the race validates against the
// balance the winner left behind. Business rejections (ErrBetTooSmall,
// users.ErrInsufficientCredits, ErrNotVerified) roll back with no
// mutation; any other error is an infrastructure failure.
func (s *Service) PlaceWager(ctx context.Context, userID uint64, betAmount int64, prediction game.Outcome) (Result, error) {
	if betAmount < MinimumBet {
		return Result{}, ErrBetTooSmall
	}

	var res Result

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// 1) Lock the account row; all wagers on it serialize here.
		credits, verified, err := s.users.LockForPlay(tx, userID)
		if err != nil {
			return fmt.Errorf("lock for play: %w", err)
		}

		if !verified {
			return ErrNotVerified
		}

		// 2) Re-check against the freshly read balance.
		if credits < betAmount {
			return users.ErrInsufficientCredits
		}

		// 3) Debit the stake.
		err = s.users.DecreaseCredits(tx, userID, betAmount)
		if err != nil {
			return fmt.Errorf("debit stake: %w", err)
		}
		credits -= betAmount

		// 4) Resolve. Double-or-nothing: a win nets +betAmount, a loss
		// nets -betAmount.
		outcome := s.coin.Flip()
		won := outcome == prediction

		if won {
			err = s.users.IncreaseCredits(tx, userID, 2*betAmount)
			if err != nil {
				return fmt.Errorf("credit payout: %w", err)
			}
			credits += 2 * betAmount
		}

		err = s.users.RecordPlayed(tx, userID)
		if err != nil {
			return fmt.Errorf("record played: %w", err)
		}

		// 5) Append the play to the ledger in the same transaction.
		play := plays.Play{
			ID:           plays.NewID(),
			UserID:       userID,
			BetAmount:    betAmount,
			Prediction:   string(prediction),
			Outcome:      string(outcome),
			Won:          won,
			CreditsAfter: credits,
		}

		err = s.plays.Insert(tx, play)
		if err != nil {
			return fmt.Errorf("insert play: %w", err)
		}

		res = Result{
			PlayID:  play.ID,
			Outcome: outcome,
			Won:     won,
			Credits: credits,
		}

		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("place wager: %w", err)
	}

	return res, nil
}

// GetCredits returns the balance without taking locks; suitable for the
// GET endpoint.
func (s *Service) GetCredits(ctx context.Context, userID uint64) (int64, error) {
	credits, err := s.users.GetCredits(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("get credits: %w", err)
	}

	return credits, nil
}
