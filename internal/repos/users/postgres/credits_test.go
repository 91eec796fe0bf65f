package users

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/thirdeyegames/coinflip/internal/infra/pgtestutil"
	"github.com/thirdeyegames/coinflip/internal/repos/users"
)

func TestUsers_DecreaseCredits_Table(t *testing.T) {
	t.Parallel()

	type tc struct {
		name        string
		credits     int64
		amount      int64
		wantCredits int64
		wantErr     bool // true -> expect users.ErrInsufficientCredits
	}

	tests := []tc{
		{
			name:        "sufficient_credits_partial_debit",
			credits:     1_000,
			amount:      250,
			wantCredits: 750,
		},
		{
			name:        "sufficient_credits_exact_to_zero",
			credits:     300,
			amount:      300,
			wantCredits: 0,
		},
		{
			name:        "insufficient_credits_balance_unchanged",
			credits:     200,
			amount:      300,
			wantCredits: 200,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			id := seedAccount(t, db, "debit@example.com", tt.credits, true)
			repo := New(db)

			ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
			defer cancel()

			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				t.Fatalf("begin tx: %v", err)
			}
			defer func() { _ = tx.Rollback() }()

			err = repo.DecreaseCredits(tx, id, tt.amount)

			if tt.wantErr {
				if !errors.Is(err, users.ErrInsufficientCredits) {
					t.Fatalf("expected ErrInsufficientCredits, got: %v", err)
				}
				// no commit on error
			} else {
				if err != nil {
					t.Fatalf("decrease credits: %v", err)
				}
				err = tx.Commit()
				if err != nil {
					t.Fatalf("commit: %v", err)
				}
			}

			got, gerr := repo.GetCredits(ctx, id)
			if gerr != nil {
				t.Fatalf("get credits after decrease: %v", gerr)
			}
			if got != tt.wantCredits {
				t.Fatalf("final credits mismatch: want %d, got %d", tt.wantCredits, got)
			}
		})
	}
}

func TestUsers_DecreaseCredits_MissingUser(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	// 0 rows affected, same as a covered-but-insufficient balance.
	err = repo.DecreaseCredits(tx, 999_999, 100)
	if !errors.Is(err, users.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got: %v", err)
	}
}

func TestUsers_IncreaseCredits(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	id := seedAccount(t, db, "credit@example.com", 80, true)
	repo := New(db)

	ctx := t.Context()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = repo.IncreaseCredits(tx, id, 40)
	if err != nil {
		t.Fatalf("increase credits: %v", err)
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := repo.GetCredits(ctx, id)
	if err != nil {
		t.Fatalf("get credits: %v", err)
	}
	if got != 120 {
		t.Fatalf("credits: want 120, got %d", got)
	}
}

func TestUsers_LockForPlay(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	id := seedAccount(t, db, "lock@example.com", 55, false)
	repo := New(db)

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	credits, verified, err := repo.LockForPlay(tx, id)
	if err != nil {
		t.Fatalf("lock for play: %v", err)
	}
	if credits != 55 {
		t.Fatalf("credits: want 55, got %d", credits)
	}
	if verified {
		t.Fatalf("verified: want false")
	}

	_, _, err = repo.LockForPlay(tx, 999_999)
	if !errors.Is(err, users.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}

func TestUsers_DecreaseCredits_ConcurrentGuard(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	id := seedAccount(t, db, "guard@example.com", 1_000, true)

	var wg sync.WaitGroup
	var mu sync.Mutex
	success, insufficient := 0, 0

	worker := func(name string) {
		defer wg.Done()

		ctx := context.Background()
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Errorf("[%s] begin tx: %v", name, err)
			return
		}
		defer tx.Rollback()

		// Lock row first (this will serialize)
		_, _, err = repo.LockForPlay(tx, id)
		if err != nil {
			t.Errorf("[%s] lock for play: %v", name, err)
			return
		}

		err = repo.DecreaseCredits(tx, id, 1_000)
		if err == nil {
			mu.Lock()
			success++
			mu.Unlock()
			if err := tx.Commit(); err != nil {
				t.Errorf("[%s] commit: %v", name, err)
			}
			return
		}

		if errors.Is(err, users.ErrInsufficientCredits) {
			mu.Lock()
			insufficient++
			mu.Unlock()
			_ = tx.Rollback()
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
}

func TestUsers_RecordPlayed(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	id := seedAccount(t, db, "played@example.com", 100, true)
	repo := New(db)

	for i := 0; i < 3; i++ {
		tx, err := db.BeginTx(t.Context(), nil)
		if err != nil {
			t.Fatalf("begin tx: %v", err)
		}

		err = repo.RecordPlayed(tx, id)
		if err != nil {
			t.Fatalf("record played: %v", err)
		}

		err = tx.Commit()
		if err != nil {
			t.Fatalf("commit: %v", err)
		}
	}

	u, err := repo.GetByID(t.Context(), id)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u.GamesPlayed != 3 {
		t.Fatalf("games played: want 3, got %d", u.GamesPlayed)
	}
}
