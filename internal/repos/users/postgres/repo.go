package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/thirdeyegames/coinflip/internal/repos/users"
)

var _ users.Users = (*usersRepo)(nil)

type usersRepo struct{ db *sql.DB }

func New(db *sql.DB) *usersRepo {
	return &usersRepo{db: db}
}

const userColumns = `
	id, email, password_hash, full_name, phone_number,
	credits, is_verified, verify_code, verify_code_expiry,
	refresh_token, games_played, created_at, updated_at
`

func (r *usersRepo) Create(ctx context.Context, u users.NewUser) (uint64, error) {
	var id uint64

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, full_name, phone_number, verify_code, verify_code_expiry)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, u.Email, u.PasswordHash, u.FullName, u.PhoneNumber, u.VerifyCode, u.VerifyCodeExpiry).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return 0, users.ErrEmailTaken
		}

		return 0, fmt.Errorf("insert user: %w", err)
	}

	return id, nil
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)

	return scanUser(row)
}

func (r *usersRepo) GetByID(ctx context.Context, id uint64) (*users.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)

	return scanUser(row)
}

func scanUser(row *sql.Row) (*users.User, error) {
	var u users.User

	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.PhoneNumber,
		&u.Credits, &u.IsVerified, &u.VerifyCode, &u.VerifyCodeExpiry,
		&u.RefreshToken, &u.GamesPlayed, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, users.ErrUserNotFound
		}

		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}
