package server

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned for unknown usernames.
	ErrNotFound = errors.New("not found")
	// ErrLocationRecorded rejects a duplicate award for a location the
	// user already has. Clients treat it as non-fatal.
	ErrLocationRecorded = errors.New("location already found")
)

// Points mirror the hunt engine's constants; the server is an optional
// second bookkeeper, never the source of truth.
const (
	pointsPerLocation = 10
	completionBonus   = 50
)

// User is a server-side account.
type User struct {
	Username       string     `json:"username"`
	TotalPoints    int        `json:"totalPoints"`
	LocationsFound []string   `json:"locationsFound"`
	CompletedAt    *time.Time `json:"completedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastLocationAt *time.Time `json:"lastLocationAt,omitempty"`
}

// LeaderboardEntry is one row of the top-10 board.
type LeaderboardEntry struct {
	Rank           int        `json:"rank"`
	Username       string     `json:"username"`
	TotalPoints    int        `json:"totalPoints"`
	LocationsFound int        `json:"locationsFound"`
	CompletedAt    *time.Time `json:"completedAt"`
}

// AwardOutcome is what RecordLocationFound produced.
type AwardOutcome struct {
	PointsAwarded   int
	CompletionBonus int
	User            User
}

// Store keeps user accounts. The memory implementation matches the
// original design: a process-local map lost on restart. The SQLite one
// is opt-in.
type Store interface {
	// CreateUser creates the account, or returns the existing one with
	// created == false.
	CreateUser(ctx context.Context, username string) (u User, created bool, err error)
	GetUser(ctx context.Context, username string) (User, error)

	// RecordLocationFound credits a location once. Returns
	// ErrLocationRecorded (with the current user state) on a duplicate
	// and ErrNotFound for unknown users.
	RecordLocationFound(ctx context.Context, username, locationKey string, isCompletion bool) (AwardOutcome, error)

	// Leaderboard returns the top-n users by points, ties broken by
	// arrival order.
	Leaderboard(ctx context.Context, n int) ([]LeaderboardEntry, error)
}
