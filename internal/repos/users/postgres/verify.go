package users

import (
	"context"
	"fmt"

	"github.com/thirdeyegames/coinflip/internal/repos/users"
)

// MarkVerified flips is_verified and seeds the starting grant. The
// is_verified guard makes the grant a one-shot even under a racing
// duplicate verify request.
func (r *usersRepo) MarkVerified(ctx context.Context, id uint64, startingCredits int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET is_verified = TRUE, credits = $2, updated_at = now()
		WHERE id = $1
		  AND is_verified = FALSE
	`, id, startingCredits)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return users.ErrUserNotFound
	}

	return nil
}

func (r *usersRepo) SetRefreshToken(ctx context.Context, id uint64, token string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET refresh_token = $2, updated_at = now()
		WHERE id = $1
	`, id, token)
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return users.ErrUserNotFound
	}

	return nil
}
