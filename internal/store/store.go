package store

import (
	"strings"
	"sync"
	"time"

	"github.com/raffaelramalhorosa/techfeed/internal/models"
)

// Store holds the snapshot from the most recent load.
// All public methods are safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	snapshot models.Snapshot
}

// New creates a Store that reports the loading state until the first load lands.
func New() *Store {
	return &Store{snapshot: models.Snapshot{State: models.StateLoading}}
}

// Replace swaps in the articles of a successful load. Nothing from the
// previous snapshot survives.
func (s *Store) Replace(loadID string, articles []models.Article, at time.Time) models.Snapshot {
	owned := make([]models.Article, len(articles))
	copy(owned, articles)

	state := models.StateReady
	if len(owned) == 0 {
		state = models.StateEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = models.Snapshot{
		LoadID:    loadID,
		State:     state,
		Articles:  owned,
		FetchedAt: at,
	}
	return s.copyLocked()
}

// Fail records a load that produced no articles, clearing the old list.
func (s *Store) Fail(loadID string, state models.State, err error, at time.Time) models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = models.Snapshot{
		LoadID:    loadID,
		State:     state,
		FetchedAt: at,
		Err:       err,
	}
	return s.copyLocked()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Articles returns current articles in feed order.
// If category is non-empty only articles in that section (case-insensitive)
// are returned. limit <= 0 means no limit.
func (s *Store) Articles(category string, limit int) []models.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterLocked(category, limit)
}

// View returns the current snapshot together with its articles filtered as
// in Articles, both read under one lock.
func (s *Store) View(category string, limit int) (models.Snapshot, []models.Article) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked(), s.filterLocked(category, limit)
}

func (s *Store) filterLocked(category string, limit int) []models.Article {
	result := make([]models.Article, 0, len(s.snapshot.Articles))
	for _, a := range s.snapshot.Articles {
		if category != "" && !strings.EqualFold(a.Category(), category) {
			continue
		}
		result = append(result, a)
	}

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func (s *Store) copyLocked() models.Snapshot {
	snap := s.snapshot
	if snap.Articles != nil {
		snap.Articles = append([]models.Article(nil), snap.Articles...)
	}
	return snap
}
