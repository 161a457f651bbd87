package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// toKey converts an int64 ID into a string format suitable for use as a cache key.
func toKey(id int64) string {
	return fmt.Sprintf("%d", id)
}

// Ctx creates a new context with a default timeout of 5 seconds.
// It returns the context and a cancel function to release resources.
func Ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// memoryStore is the fallback AuthStore used when no Mongo URI is
// configured. Changes live only for the lifetime of the process. An empty
// store means the bot is open to everyone.
type memoryStore struct {
	mu    sync.RWMutex
	users map[int64]struct{}
}

func newMemoryStore(seed []int64) *memoryStore {
	s := &memoryStore{users: make(map[int64]struct{}, len(seed))}
	for _, id := range seed {
		s.users[id] = struct{}{}
	}
	return s
}

func (s *memoryStore) IsAllowed(_ context.Context, userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.users) == 0 {
		return true
	}
	_, ok := s.users[userID]
	return ok
}

func (s *memoryStore) Allow(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = struct{}{}
	return nil
}

func (s *memoryStore) Deny(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
	return nil
}

func (s *memoryStore) List(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]int64, 0, len(s.users))
	for id := range s.users {
		users = append(users, id)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users, nil
}

func (s *memoryStore) Close(context.Context) error {
	return nil
}
