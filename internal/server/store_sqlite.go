package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteStore persists accounts across restarts. Enabled when DB_PATH
// is set; schema lives in internal/migrations.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) CreateUser(ctx context.Context, username string) (User, bool, error) {
	if u, err := s.GetUser(ctx, username); err == nil {
		return u, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, false, err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, seq)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM users))
	`, username)
	if err != nil {
		return User{}, false, fmt.Errorf("inserting user: %w", err)
	}
	u, err := s.GetUser(ctx, username)
	return u, true, err
}

func (s *SQLiteStore) GetUser(ctx context.Context, username string) (User, error) {
	var u User
	var completedAt, createdAt sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT username, total_points, completed_at, created_at
		FROM users WHERE username = ?
	`, username).Scan(&u.Username, &u.TotalPoints, &completedAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("querying user: %w", err)
	}
	u.CompletedAt = parseNullTime(completedAt)
	if t := parseNullTime(createdAt); t != nil {
		u.CreatedAt = *t
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT location_key FROM user_locations
		WHERE username = ? ORDER BY found_at, location_key
	`, username)
	if err != nil {
		return User{}, fmt.Errorf("querying user locations: %w", err)
	}
	defer rows.Close()
	u.LocationsFound = []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return User{}, err
		}
		u.LocationsFound = append(u.LocationsFound, key)
	}
	return u, rows.Err()
}

func (s *SQLiteStore) RecordLocationFound(ctx context.Context, username, locationKey string, isCompletion bool) (AwardOutcome, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AwardOutcome{}, fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&exists)
	if err != nil {
		return AwardOutcome{}, err
	}
	if exists == 0 {
		return AwardOutcome{}, ErrNotFound
	}

	var dup int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM user_locations WHERE username = ? AND location_key = ?
	`, username, locationKey).Scan(&dup)
	if err != nil {
		return AwardOutcome{}, err
	}
	if dup > 0 {
		u, uerr := s.GetUser(ctx, username)
		if uerr != nil {
			return AwardOutcome{}, uerr
		}
		return AwardOutcome{User: u}, ErrLocationRecorded
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_locations (username, location_key) VALUES (?, ?)
	`, username, locationKey); err != nil {
		return AwardOutcome{}, fmt.Errorf("recording location: %w", err)
	}

	points := pointsPerLocation
	bonus := 0
	if isCompletion {
		var already sql.NullString
		if err := tx.QueryRowContext(ctx,
			`SELECT completed_at FROM users WHERE username = ?`, username).Scan(&already); err != nil {
			return AwardOutcome{}, err
		}
		if !already.Valid {
			bonus = completionBonus
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET
			total_points = total_points + ?,
			completed_at = CASE WHEN ? THEN strftime('%Y-%m-%dT%H:%M:%fZ', 'now') ELSE completed_at END
		WHERE username = ?
	`, points+bonus, bonus > 0, username); err != nil {
		return AwardOutcome{}, fmt.Errorf("updating points: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return AwardOutcome{}, fmt.Errorf("committing award: %w", err)
	}

	u, err := s.GetUser(ctx, username)
	if err != nil {
		return AwardOutcome{}, err
	}
	return AwardOutcome{PointsAwarded: points, CompletionBonus: bonus, User: u}, nil
}

func (s *SQLiteStore) Leaderboard(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.username, u.total_points, u.completed_at,
		       (SELECT COUNT(*) FROM user_locations l WHERE l.username = u.username)
		FROM users u
		ORDER BY u.total_points DESC, u.seq ASC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		var completedAt sql.NullString
		if err := rows.Scan(&e.Username, &e.TotalPoints, &completedAt, &e.LocationsFound); err != nil {
			return nil, err
		}
		e.CompletedAt = parseNullTime(completedAt)
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil
	}
	return &t
}
