package server

import (
	"context"
	"errors"
	"testing"

	"github.com/rasnovtravel/townhunt/internal/database"
	"github.com/rasnovtravel/townhunt/internal/migrations"
)

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return NewSQLiteStore(db)
}

func TestSQLiteCreateAndGetUser(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	u, created, err := store.CreateUser(ctx, "maria")
	if err != nil {
		t.Fatalf("createUser: %v", err)
	}
	if !created || u.Username != "maria" || u.TotalPoints != 0 {
		t.Errorf("created = %v, user = %+v", created, u)
	}
	if u.CreatedAt.IsZero() {
		t.Error("createdAt not populated")
	}

	// Second create returns the existing account.
	u2, created, err := store.CreateUser(ctx, "maria")
	if err != nil {
		t.Fatalf("second createUser: %v", err)
	}
	if created {
		t.Error("second create reported created = true")
	}
	if u2.Username != "maria" {
		t.Errorf("user = %+v", u2)
	}

	if _, err := store.GetUser(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("getUser unknown: %v, want ErrNotFound", err)
	}
}

func TestSQLiteRecordLocationFound(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()
	store.CreateUser(ctx, "maria")

	out, err := store.RecordLocationFound(ctx, "maria", "fortress", false)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if out.PointsAwarded != pointsPerLocation || out.CompletionBonus != 0 {
		t.Errorf("outcome: %+v", out)
	}
	if out.User.TotalPoints != 10 || len(out.User.LocationsFound) != 1 {
		t.Errorf("user: %+v", out.User)
	}

	// Duplicate carries the current user state.
	out, err = store.RecordLocationFound(ctx, "maria", "fortress", false)
	if !errors.Is(err, ErrLocationRecorded) {
		t.Fatalf("duplicate err = %v", err)
	}
	if out.User.TotalPoints != 10 {
		t.Errorf("user after duplicate: %+v", out.User)
	}

	if _, err := store.RecordLocationFound(ctx, "ghost", "fortress", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown user err = %v", err)
	}
}

func TestSQLiteCompletionBonusOnce(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()
	store.CreateUser(ctx, "maria")

	out, err := store.RecordLocationFound(ctx, "maria", "fortress", true)
	if err != nil {
		t.Fatalf("record with completion: %v", err)
	}
	if out.CompletionBonus != completionBonus {
		t.Errorf("bonus = %d, want %d", out.CompletionBonus, completionBonus)
	}
	if out.User.CompletedAt == nil {
		t.Error("completedAt not set")
	}

	out, err = store.RecordLocationFound(ctx, "maria", "well", true)
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	if out.CompletionBonus != 0 {
		t.Errorf("second bonus = %d, want 0", out.CompletionBonus)
	}
	if out.User.TotalPoints != 2*pointsPerLocation+completionBonus {
		t.Errorf("totalPoints = %d", out.User.TotalPoints)
	}
}

func TestSQLiteLeaderboard(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	for _, name := range []string{"maria", "ion", "ana"} {
		if _, _, err := store.CreateUser(ctx, name); err != nil {
			t.Fatalf("createUser %s: %v", name, err)
		}
	}
	for _, k := range []string{"fortress", "well"} {
		if _, err := store.RecordLocationFound(ctx, "ion", k, false); err != nil {
			t.Fatalf("record %s: %v", k, err)
		}
	}
	if _, err := store.RecordLocationFound(ctx, "ana", "fortress", false); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := store.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Username != "ion" || entries[0].Rank != 1 || entries[0].TotalPoints != 20 {
		t.Errorf("first: %+v", entries[0])
	}
	if entries[1].Username != "ana" || entries[1].LocationsFound != 1 {
		t.Errorf("second: %+v", entries[1])
	}
	// maria has zero points; ties and trailing ranks follow arrival order.
	if entries[2].Username != "maria" {
		t.Errorf("third: %+v", entries[2])
	}

	capped, err := store.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("capped leaderboard: %v", err)
	}
	if len(capped) != 2 {
		t.Errorf("capped to %d entries, want 2", len(capped))
	}
}
