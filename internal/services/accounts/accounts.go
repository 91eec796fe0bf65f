// Package accounts covers the account lifecycle: registration,
// email verification with the one-shot starting grant, sign-in, and
// token resolution for the HTTP middleware.
package accounts

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/thirdeyegames/coinflip/internal/auth"
	"github.com/thirdeyegames/coinflip/internal/mail"
	"github.com/thirdeyegames/coinflip/internal/repos/users"
	pgusers "github.com/thirdeyegames/coinflip/internal/repos/users/postgres"
)

// StartingCredits is granted exactly once, when the account verifies.
const StartingCredits = 100

const codeTTL = time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrCodeExpired        = errors.New("verification code expired")
	ErrNotVerified        = errors.New("account not verified")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

type Registration struct {
	Email       string
	Password    string
	FullName    string
	PhoneNumber string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Identity is what the auth middleware attaches to the request.
type Identity struct {
	UserID uint64
	Email  string
}

type Service struct {
	users  users.Users
	tokens *auth.TokenManager
	mailer mail.Mailer
}

func New(db *sql.DB, tokens *auth.TokenManager, mailer mail.Mailer) *Service {
	return &Service{
		users:  pgusers.New(db),
		tokens: tokens,
		mailer: mailer,
	}
}

// NewWithRepo wires an explicit store, for tests.
func NewWithRepo(repo users.Users, tokens *auth.TokenManager, mailer mail.Mailer) *Service {
	return &Service{
		users:  repo,
		tokens: tokens,
		mailer: mailer,
	}
}

// Register creates an unverified account and mails its verification
// code. The account cannot play or sign in until Verify succeeds.
func (s *Service) Register(ctx context.Context, reg Registration) (uint64, error) {
	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return 0, fmt.Errorf("register: %w", err)
	}

	code, err := newVerifyCode()
	if err != nil {
		return 0, fmt.Errorf("register: %w", err)
	}

	id, err := s.users.Create(ctx, users.NewUser{
		Email:            reg.Email,
		PasswordHash:     hash,
		FullName:         reg.FullName,
		PhoneNumber:      reg.PhoneNumber,
		VerifyCode:       code,
		VerifyCodeExpiry: time.Now().Add(codeTTL),
	})
	if err != nil {
		return 0, fmt.Errorf("register: %w", err)
	}

	err = s.mailer.SendVerificationCode(ctx, reg.Email, reg.FullName, code)
	if err != nil {
		// The account exists; the code can be re-sent out of band.
		return id, fmt.Errorf("send verification code: %w", err)
	}

	return id, nil
}

// Verify checks the emailed code and, on the first success, seeds the
// starting grant. The grant is one-shot: a second Verify on the same
// account fails with ErrAlreadyVerified no matter the code.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	if u.IsVerified {
		return ErrAlreadyVerified
	}

	if u.VerifyCode == "" || u.VerifyCode != code {
		return ErrInvalidCode
	}

	if time.Now().After(u.VerifyCodeExpiry) {
		return ErrCodeExpired
	}

	err = s.users.MarkVerified(ctx, u.ID, StartingCredits)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	return nil
}

// SignIn authenticates a verified account and issues a fresh token
// pair. The refresh token is stored so a later rotation invalidates
// every previously issued one.
func (s *Service) SignIn(ctx context.Context, email, password string) (*users.User, TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}

		return nil, TokenPair{}, fmt.Errorf("sign in: %w", err)
	}

	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	if !u.IsVerified {
		return nil, TokenPair{}, ErrNotVerified
	}

	access, err := s.tokens.IssueAccess(u.ID, u.Email)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := s.tokens.IssueRefresh(u.ID)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	err = s.users.SetRefreshToken(ctx, u.ID, refresh)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return u, TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ResolveAccessToken authenticates a bearer access token.
func (s *Service) ResolveAccessToken(_ context.Context, token string) (Identity, error) {
	claims, err := s.tokens.VerifyAccess(token)
	if err != nil {
		return Identity{}, ErrNotAuthenticated
	}

	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// ResolveRefreshToken authenticates a refresh-token cookie. The token
// must match the one stored for the account, so a sign-in elsewhere
// signs this session out.
func (s *Service) ResolveRefreshToken(ctx context.Context, token string) (Identity, error) {
	claims, err := s.tokens.VerifyRefresh(token)
	if err != nil {
		return Identity{}, ErrNotAuthenticated
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return Identity{}, ErrNotAuthenticated
	}

	if u.RefreshToken == "" || u.RefreshToken != token {
		return Identity{}, ErrNotAuthenticated
	}

	if !u.IsVerified {
		return Identity{}, ErrNotAuthenticated
	}

	return Identity{UserID: u.ID, Email: u.Email}, nil
}

func newVerifyCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
