// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package directory

import (
	"context"
	"sort"
	"sync"

	"github.com/danielhkuo/condo-survey/models"
)

// Static is an in-memory directory for tests and local development.
type Static struct {
	mu    sync.RWMutex
	users map[int64]models.Identity
}

func NewStatic(users ...models.Identity) *Static {
	s := &Static{users: make(map[int64]models.Identity)}
	for _, u := range users {
		s.Add(u)
	}
	return s
}

// Add registers or replaces a user. Exists is always set.
func (s *Static) Add(u models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Exists = true
	s.users[u.ID] = u
}

func (s *Static) Resolve(_ context.Context, userID int64) (models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		return u, nil
	}
	return models.Identity{ID: userID}, nil
}

func (s *Static) Eligible(_ context.Context, buildingID *int64) ([]models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Identity{}
	for _, u := range s.users {
		if u.Eligible && u.InBuilding(buildingID) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Static) Describe(_ context.Context, userIDs []int64) (map[int64]models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]models.Identity, len(userIDs))
	for _, id := range userIDs {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}
