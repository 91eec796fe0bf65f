package users

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

type User struct {
	ID               uint64
	Email            string
	PasswordHash     string
	FullName         string
	PhoneNumber      string
	Credits          int64
	IsVerified       bool
	VerifyCode       string
	VerifyCodeExpiry time.Time
	RefreshToken     string
	GamesPlayed      int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewUser carries the fields set at registration. Credits start at zero
// and stay there until the account is verified.
type NewUser struct {
	Email            string
	PasswordHash     string
	FullName         string
	PhoneNumber      string
	VerifyCode       string
	VerifyCodeExpiry time.Time
}

// Users is the account store. The *sql.Tx methods participate in the
// wager transaction and must only be called with the row lock held.
type Users interface {
	Create(ctx context.Context, u NewUser) (uint64, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uint64) (*User, error)
	GetCredits(ctx context.Context, id uint64) (int64, error)
	MarkVerified(ctx context.Context, id uint64, startingCredits int64) error
	SetRefreshToken(ctx context.Context, id uint64, token string) error

	LockForPlay(tx *sql.Tx, id uint64) (credits int64, verified bool, err error)
	IncreaseCredits(tx *sql.Tx, id uint64, amount int64) error
	DecreaseCredits(tx *sql.Tx, id uint64, amount int64) error
	RecordPlayed(tx *sql.Tx, id uint64) error
}
