package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/thirdeyegames/coinflip/internal/repos/users"
)

func (r *usersRepo) GetCredits(ctx context.Context, id uint64) (int64, error) {
	var credits int64

	err := r.db.QueryRowContext(ctx, `
		SELECT credits
		FROM users
		WHERE id = $1
	`, id).Scan(&credits)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, users.ErrUserNotFound
		}

		return 0, fmt.Errorf("get credits: %w", err)
	}

	return credits, nil
}

// LockForPlay takes the row lock that serializes all wagers against one
// account. Every balance mutation in the same transaction happens under
// this lock.
func (r *usersRepo) LockForPlay(tx *sql.Tx, id uint64) (int64, bool, error) {
	var (
		credits  int64
		verified bool
	)

	err := tx.QueryRow(`
		SELECT credits, is_verified
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&credits, &verified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, users.ErrUserNotFound
		}

		return 0, false, fmt.Errorf("lock user for play: %w", err)
	}

	return credits, verified, nil
}

func (r *usersRepo) IncreaseCredits(tx *sql.Tx, id uint64, amount int64) error {
	_, err := tx.Exec(`
		UPDATE users
		SET credits = credits + $2, updated_at = now()
		WHERE id = $1
	`, id, amount)
	if err != nil {
		return fmt.Errorf("increase credits: %w", err)
	}

	return nil
}

// DecreaseCredits only debits when the balance covers the amount, so a
// stale caller can never drive credits negative.
func (r *usersRepo) DecreaseCredits(tx *sql.Tx, id uint64, amount int64) error {
	res, err := tx.Exec(`
		UPDATE users
		SET credits = credits - $2, updated_at = now()
		WHERE id = $1
		  AND credits >= $2
	`, id, amount)
	if err != nil {
		return fmt.Errorf("decrease credits: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return users.ErrInsufficientCredits
	}

	return nil
}

func (r *usersRepo) RecordPlayed(tx *sql.Tx, id uint64) error {
	_, err := tx.Exec(`
		UPDATE users
		SET games_played = games_played + 1, updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("record played: %w", err)
	}

	return nil
}
