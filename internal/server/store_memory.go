package server

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps accounts in a process-local map. State is lost on
// restart; this is the accepted default, not a bug.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*User
	order []string // arrival order, breaks leaderboard ties
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*User),
		now:   time.Now,
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, username string) (User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[username]; ok {
		return cloneUser(u), false, nil
	}
	u := &User{
		Username:       username,
		LocationsFound: []string{},
		CreatedAt:      s.now(),
	}
	s.users[username] = u
	s.order = append(s.order, username)
	return cloneUser(u), true, nil
}

func (s *MemoryStore) GetUser(_ context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *MemoryStore) RecordLocationFound(_ context.Context, username, locationKey string, isCompletion bool) (AwardOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return AwardOutcome{}, ErrNotFound
	}
	for _, k := range u.LocationsFound {
		if k == locationKey {
			return AwardOutcome{User: cloneUser(u)}, ErrLocationRecorded
		}
	}

	now := s.now()
	u.LocationsFound = append(u.LocationsFound, locationKey)
	u.TotalPoints += pointsPerLocation
	u.LastLocationAt = &now

	out := AwardOutcome{PointsAwarded: pointsPerLocation}
	if isCompletion && u.CompletedAt == nil {
		u.TotalPoints += completionBonus
		u.CompletedAt = &now
		out.CompletionBonus = completionBonus
	}
	out.User = cloneUser(u)
	return out, nil
}

func (s *MemoryStore) Leaderboard(_ context.Context, n int) ([]LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Start from arrival order so equal scores keep it after the sort.
	usernames := append([]string(nil), s.order...)
	sort.SliceStable(usernames, func(i, j int) bool {
		return s.users[usernames[i]].TotalPoints > s.users[usernames[j]].TotalPoints
	})

	if len(usernames) > n {
		usernames = usernames[:n]
	}
	entries := make([]LeaderboardEntry, 0, len(usernames))
	for i, name := range usernames {
		u := s.users[name]
		entries = append(entries, LeaderboardEntry{
			Rank:           i + 1,
			Username:       u.Username,
			TotalPoints:    u.TotalPoints,
			LocationsFound: len(u.LocationsFound),
			CompletedAt:    u.CompletedAt,
		})
	}
	return entries, nil
}

func cloneUser(u *User) User {
	c := *u
	c.LocationsFound = append([]string(nil), u.LocationsFound...)
	return c
}
