package api

import (
	"context"

	"github.com/thirdeyegames/coinflip/internal/game"
	"github.com/thirdeyegames/coinflip/internal/repos/users"
	"github.com/thirdeyegames/coinflip/internal/services/accounts"
	"github.com/thirdeyegames/coinflip/internal/services/wager"
)

// AccountsService is the slice of the accounts service the handlers
// need.
type AccountsService interface {
	Register(ctx context.Context, reg accounts.Registration) (uint64, error)
	Verify(ctx context.Context, email, code string) error
	SignIn(ctx context.Context, email, password string) (*users.User, accounts.TokenPair, error)
	ResolveAccessToken(ctx context.Context, token string) (accounts.Identity, error)
	ResolveRefreshToken(ctx context.Context, token string) (accounts.Identity, error)
}

// WagerService is the slice of the wager service the handlers need.
type WagerService interface {
	PlaceWager(ctx context.Context, userID uint64, betAmount int64, prediction game.Outcome) (wager.Result, error)
	GetCredits(ctx context.Context, userID uint64) (int64, error)
}

// HandlerProvider exposes the HTTP handlers over both services.
type HandlerProvider struct {
	accounts AccountsService
	wagers   WagerService
}

func NewHandler(accountsSvc AccountsService, wagerSvc WagerService) *HandlerProvider {
	return &HandlerProvider{accounts: accountsSvc, wagers: wagerSvc}
}
