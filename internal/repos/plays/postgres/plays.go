package plays

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/thirdeyegames/coinflip/internal/repos/plays"
)

var _ plays.Plays = (*playsRepo)(nil)

type playsRepo struct{ db *sql.DB }

func New(db *sql.DB) *playsRepo {
	return &playsRepo{db: db}
}

func (r *playsRepo) Insert(tx *sql.Tx, p plays.Play) error {
	_, err := tx.Exec(`
		INSERT INTO plays (id, user_id, bet_amount, prediction, outcome, won, credits_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.UserID, p.BetAmount, p.Prediction, p.Outcome, p.Won, p.CreditsAfter)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return plays.ErrDuplicatePlay
		}

		return fmt.Errorf("insert play: %w", err)
	}

	return nil
}

func (r *playsRepo) CountForUser(ctx context.Context, userID uint64) (int64, error) {
	var count int64

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM plays
		WHERE user_id = $1
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count plays: %w", err)
	}

	return count, nil
}
