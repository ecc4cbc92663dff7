package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"kupipodariday/internal/config"
	"kupipodariday/internal/models"
	"kupipodariday/internal/repository/db"

	"github.com/shopspring/decimal"
)

// newSQLiteRepos opens a migrated database file under t.TempDir.
func newSQLiteRepos(t *testing.T) *Repository {
	t.Helper()
	conn, err := db.InitDB(config.DBConfig{
		Driver:      config.DriverSQLite,
		DSN:         filepath.Join(t.TempDir(), "kpd.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewRepository(conn)
}

func createUser(t *testing.T, repos *Repository, name string) int64 {
	t.Helper()
	id, err := repos.Users.Create(context.Background(), &models.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		About:        models.DefaultAbout,
		Avatar:       models.DefaultAvatar,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return id
}

func createWish(t *testing.T, repos *Repository, ownerID int64, price string) int64 {
	t.Helper()
	w := sampleWish()
	w.OwnerID = ownerID
	w.Price = decimal.RequireFromString(price)
	id, err := repos.Wishes.Create(context.Background(), w, nil)
	if err != nil {
		t.Fatalf("create wish: %v", err)
	}
	return id
}

func raisedOf(t *testing.T, repos *Repository, wishID int64) decimal.Decimal {
	t.Helper()
	w, err := repos.Wishes.GetByID(context.Background(), wishID)
	if err != nil || w == nil {
		t.Fatalf("load wish %d: %v", wishID, err)
	}
	return w.Raised
}

func TestSQLite_ContributeNeverOverfunds(t *testing.T) {
	repos := newSQLiteRepos(t)
	ctx := context.Background()
	owner := createUser(t, repos, "owner")
	giver := createUser(t, repos, "giver")
	wishID := createWish(t, repos, owner, "5000")

	contribute := func(from int64, amount string) error {
		_, err := repos.Offers.Contribute(ctx, &models.Offer{
			UserID: from,
			WishID: wishID,
			Amount: decimal.RequireFromString(amount),
		})
		return err
	}

	steps := []struct {
		from       int64
		amount     string
		wantErr    error
		wantRaised string
	}{
		{from: giver, amount: "3000", wantRaised: "3000"},
		{from: giver, amount: "2001", wantErr: ErrConflict, wantRaised: "3000"},
		{from: owner, amount: "10", wantErr: ErrConflict, wantRaised: "3000"},
		{from: giver, amount: "2000", wantRaised: "5000"},
		{from: giver, amount: "0.01", wantErr: ErrConflict, wantRaised: "5000"},
	}
	for _, st := range steps {
		err := contribute(st.from, st.amount)
		if !errors.Is(err, st.wantErr) {
			t.Fatalf("contribute %s: err = %v, want %v", st.amount, err, st.wantErr)
		}
		if got := raisedOf(t, repos, wishID); !got.Equal(decimal.RequireFromString(st.wantRaised)) {
			t.Fatalf("after %s raised = %s, want %s", st.amount, got, st.wantRaised)
		}
	}

	offers, err := repos.Offers.ListByWish(ctx, wishID)
	if err != nil {
		t.Fatalf("list offers: %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("rejected contributions must leave no offer, got %d offers", len(offers))
	}
	if offers[0].Username != "giver" || !offers[0].Amount.Equal(decimal.RequireFromString("3000")) {
		t.Fatalf("unexpected first offer %+v", offers[0])
	}
}

func TestSQLite_ContributeCents(t *testing.T) {
	repos := newSQLiteRepos(t)
	ctx := context.Background()
	owner := createUser(t, repos, "owner")
	giver := createUser(t, repos, "giver")
	wishID := createWish(t, repos, owner, "100")

	for i := 0; i < 3; i++ {
		if _, err := repos.Offers.Contribute(ctx, &models.Offer{UserID: giver, WishID: wishID, Amount: decimal.RequireFromString("33.33")}); err != nil {
			t.Fatalf("contribute #%d: %v", i, err)
		}
	}
	if got := raisedOf(t, repos, wishID); !got.Equal(decimal.RequireFromString("99.99")) {
		t.Fatalf("raised = %s, want 99.99", got)
	}

	_, err := repos.Offers.Contribute(ctx, &models.Offer{UserID: giver, WishID: wishID, Amount: decimal.RequireFromString("0.02")})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("one cent over price must conflict, got %v", err)
	}
	if _, err := repos.Offers.Contribute(ctx, &models.Offer{UserID: giver, WishID: wishID, Amount: decimal.RequireFromString("0.01")}); err != nil {
		t.Fatalf("last cent: %v", err)
	}
	if got := raisedOf(t, repos, wishID); !got.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("raised = %s, want 100", got)
	}
}

func TestSQLite_FundedWishIsFrozen(t *testing.T) {
	repos := newSQLiteRepos(t)
	ctx := context.Background()
	owner := createUser(t, repos, "owner")
	giver := createUser(t, repos, "giver")
	funded := createWish(t, repos, owner, "5000")
	unfunded := createWish(t, repos, owner, "10")

	if _, err := repos.Offers.Contribute(ctx, &models.Offer{UserID: giver, WishID: funded, Amount: decimal.RequireFromString("1")}); err != nil {
		t.Fatalf("contribute: %v", err)
	}

	if err := repos.Wishes.Delete(ctx, funded); !errors.Is(err, ErrConflict) {
		t.Fatalf("deleting a funded wish: err = %v, want ErrConflict", err)
	}
	if w, err := repos.Wishes.GetByID(ctx, funded); err != nil || w == nil {
		t.Fatalf("funded wish must survive: %v, %v", w, err)
	}

	newPrice := decimal.RequireFromString("6000")
	if err := repos.Wishes.Update(ctx, funded, models.WishPatch{Price: &newPrice}, true); !errors.Is(err, ErrConflict) {
		t.Fatalf("repricing a funded wish: err = %v, want ErrConflict", err)
	}
	name := "Scooter"
	if err := repos.Wishes.Update(ctx, funded, models.WishPatch{Name: &name}, false); err != nil {
		t.Fatalf("renaming a funded wish: %v", err)
	}
	w, _ := repos.Wishes.GetByID(ctx, funded)
	if w.Name != "Scooter" || !w.Price.Equal(decimal.RequireFromString("5000")) {
		t.Fatalf("unexpected wish after updates: %+v", w)
	}

	if err := repos.Wishes.Delete(ctx, unfunded); err != nil {
		t.Fatalf("deleting an unfunded wish: %v", err)
	}
	if w, err := repos.Wishes.GetByID(ctx, unfunded); err != nil || w != nil {
		t.Fatalf("deleted wish must be gone: %v, %v", w, err)
	}
}

func TestSQLite_DuplicateUsername(t *testing.T) {
	repos := newSQLiteRepos(t)
	createUser(t, repos, "alice")

	_, err := repos.Users.Create(context.Background(), &models.User{
		Username:     "alice",
		Email:        "other@example.com",
		PasswordHash: "hash",
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}
