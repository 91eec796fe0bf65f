package wager

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/thirdeyegames/coinflip/internal/game"
	"github.com/thirdeyegames/coinflip/internal/infra/pgtestutil"
	"github.com/thirdeyegames/coinflip/internal/repos/users"
)

func seedUser(t *testing.T, db *sql.DB, email string, credits int64, verified bool) uint64 {
	t.Helper()

	var id uint64
	err := db.QueryRow(`
		INSERT INTO users (email, password_hash, full_name, phone_number, credits, is_verified, verify_code, verify_code_expiry)
		VALUES ($1, 'x', 'Test Player', '5550001111', $2, $3, '', now())
		RETURNING id
	`, email, credits, verified).Scan(&id)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	return id
}

func getCredits(t *testing.T, db *sql.DB, id uint64) int64 {
	t.Helper()

	var credits int64
	err := db.QueryRow(`SELECT credits FROM users WHERE id = $1`, id).Scan(&credits)
	if err != nil {
		t.Fatalf("read credits: %v", err)
	}

	return credits
}

func countPlays(t *testing.T, db *sql.DB, id uint64) int64 {
	t.Helper()

	var n int64
	err := db.QueryRow(`SELECT COUNT(*) FROM plays WHERE user_id = $1`, id).Scan(&n)
	if err != nil {
		t.Fatalf("count plays: %v", err)
	}

	return n
}

func TestPlaceWager_Table(t *testing.T) {
	t.Parallel()

	type tc struct {
		name        string
		credits     int64
		verified    bool
		bet         int64
		prediction  game.Outcome
		coin        game.Source
		wantErr     error
		wantWon     bool
		wantCredits int64
		wantPlays   int64
	}

	tests := []tc{
		{
			name:        "win_pays_double_the_stake",
			credits:     100,
			verified:    true,
			bet:         20,
			prediction:  game.Heads,
			coin:        game.FixedSource(game.Heads),
			wantWon:     true,
			wantCredits: 120,
			wantPlays:   1,
		},
		{
			name:        "loss_costs_the_stake",
			credits:     100,
			verified:    true,
			bet:         20,
			prediction:  game.Heads,
			coin:        game.FixedSource(game.Tails),
			wantWon:     false,
			wantCredits: 80,
			wantPlays:   1,
		},
		{
			name:        "exact_balance_can_be_staked",
			credits:     50,
			verified:    true,
			bet:         50,
			prediction:  game.Tails,
			coin:        game.FixedSource(game.Heads),
			wantWon:     false,
			wantCredits: 0,
			wantPlays:   1,
		},
		{
			name:        "bet_below_minimum_rejected",
			credits:     100,
			verified:    true,
			bet:         19,
			prediction:  game.Heads,
			coin:        game.FixedSource(game.Heads),
			wantErr:     ErrBetTooSmall,
			wantCredits: 100,
			wantPlays:   0,
		},
		{
			name:        "insufficient_credits_leaves_balance_unchanged",
			credits:     10,
			verified:    true,
			bet:         20,
			prediction:  game.Heads,
			coin:        game.FixedSource(game.Heads),
			wantErr:     users.ErrInsufficientCredits,
			wantCredits: 10,
			wantPlays:   0,
		},
		{
			name:        "unverified_account_rejected",
			credits:     100,
			verified:    false,
			bet:         20,
			prediction:  game.Heads,
			coin:        game.FixedSource(game.Heads),
			wantErr:     ErrNotVerified,
			wantCredits: 100,
			wantPlays:   0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			userID := seedUser(t, db, "w@example.com", tt.credits, tt.verified)
			svc := New(db, tt.coin)

			ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
			defer cancel()

			res, err := svc.PlaceWager(ctx, userID, tt.bet, tt.prediction)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("unexpected error: got %v, want %v", err, tt.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("place wager: %v", err)
				}
				if res.Won != tt.wantWon {
					t.Fatalf("won: want %v, got %v", tt.wantWon, res.Won)
				}
				if res.Credits != tt.wantCredits {
					t.Fatalf("result credits: want %d, got %d", tt.wantCredits, res.Credits)
				}
				if res.PlayID == "" {
					t.Fatalf("expected a play id")
				}
			}

			if got := getCredits(t, db, userID); got != tt.wantCredits {
				t.Fatalf("stored credits: want %d, got %d", tt.wantCredits, got)
			}
			if got := countPlays(t, db, userID); got != tt.wantPlays {
				t.Fatalf("play records: want %d, got %d", tt.wantPlays, got)
			}
		})
	}
}

func TestPlaceWager_UnknownUser(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	svc := New(db, game.FixedSource(game.Heads))

	_, err := svc.PlaceWager(context.Background(), 999_999, 20, game.Heads)
	if !errors.Is(err, users.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}

// Conservation: every resolved wager moves the balance by exactly
// +bet or -bet, never anything else.
func TestPlaceWager_Conservation(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	userID := seedUser(t, db, "c@example.com", 1_000, true)
	svc := New(db, game.CryptoSource{})

	ctx := t.Context()
	balance := int64(1_000)

	for i := 0; i < 20; i++ {
		const bet = 25

		res, err := svc.PlaceWager(ctx, userID, bet, game.Heads)
		if err != nil {
			t.Fatalf("wager %d: %v", i, err)
		}

		delta := res.Credits - balance
		if res.Won && delta != bet {
			t.Fatalf("win delta: want +%d, got %d", bet, delta)
		}
		if !res.Won && delta != -bet {
			t.Fatalf("loss delta: want -%d, got %d", bet, delta)
		}

		balance = res.Credits
	}

	if got := getCredits(t, db, userID); got != balance {
		t.Fatalf("stored balance drifted: want %d, got %d", balance, got)
	}
}

// Two wagers racing for the full balance must serialize on the row
// lock: exactly one resolves, the other is rejected, and the final
// balance reflects exactly one debit.
func TestPlaceWager_NoDoubleSpend(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	const balance = 100

	userID := seedUser(t, db, "race@example.com", balance, true)
	svc := New(db, game.FixedSource(game.Tails)) // predictions are Heads, so the winner of the race loses the coin

	var wg sync.WaitGroup
	var mu sync.Mutex
	success, insufficient := 0, 0

	worker := func(name string) {
		defer wg.Done()

		_, err := svc.PlaceWager(context.Background(), userID, balance, game.Heads)
		if err == nil {
			mu.Lock()
			success++
			mu.Unlock()
			return
		}

		if errors.Is(err, users.ErrInsufficientCredits) {
			mu.Lock()
			insufficient++
			mu.Unlock()
			return
		}

		t.Errorf("[%s] unexpected error: %v", name, err)
	}

	wg.Add(2)
	go worker("A")
	go worker("B")
	wg.Wait()

	if success != 1 || insufficient != 1 {
		t.Fatalf("want 1 success and 1 insufficient, got success=%d insufficient=%d", success, insufficient)
	}

	if got := getCredits(t, db, userID); got != 0 {
		t.Fatalf("final balance: want 0, got %d", got)
	}
	if got := countPlays(t, db, userID); got != 1 {
		t.Fatalf("play records: want 1, got %d", got)
	}
}

func TestGetCredits(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	userID := seedUser(t, db, "g@example.com", 77, true)
	svc := New(db, game.CryptoSource{})

	got, err := svc.GetCredits(t.Context(), userID)
	if err != nil {
		t.Fatalf("get credits: %v", err)
	}
	if got != 77 {
		t.Fatalf("credits: want 77, got %d", got)
	}

	_, err = svc.GetCredits(t.Context(), 999_999)
	if !errors.Is(err, users.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}
