package search

import (
	"time"

	"github.com/jasperwreed/astroguide/internal/models"
	"github.com/jasperwreed/astroguide/internal/storage"
)

// Filters narrow a full-text search. Zero values match everything.
type Filters struct {
	Since      time.Time
	TitledOnly bool
}

type Searcher struct {
	store *storage.SQLiteStore
}

func NewSearcher(store *storage.SQLiteStore) *Searcher {
	return &Searcher{store: store}
}

func (s *Searcher) Search(query string, limit int) ([]models.SearchResult, error) {
	return s.store.SearchConversations(query, limit)
}

func (s *Searcher) SearchWithFilters(query string, limit int, filters Filters) ([]models.SearchResult, error) {
	results, err := s.store.SearchConversations(query, limit)
	if err != nil {
		return nil, err
	}

	if !filters.Since.IsZero() {
		filtered := []models.SearchResult{}
		for _, r := range results {
			if !r.Conversation.UpdatedAt.Before(filters.Since) {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	if filters.TitledOnly {
		filtered := []models.SearchResult{}
		for _, r := range results {
			if r.Conversation.Title != nil && *r.Conversation.Title != "" {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	return results, nil
}
