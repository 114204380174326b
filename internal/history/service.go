// Package history is the lifecycle surface over the query audit trail.
package history

import (
	"time"

	"github.com/swiftbeard/ragserver/internal/storage/models"
	"github.com/swiftbeard/ragserver/internal/storage/sqlite"
)

const DefaultRecentLimit = 10

type Service struct {
	store *sqlite.Client
}

func NewService(store *sqlite.Client) *Service {
	return &Service{store: store}
}

// ListAll returns every recorded query, newest first.
func (s *Service) ListAll() ([]models.QueryRecord, error) {
	return s.store.ListQueryHistory()
}

// ListRecent returns the newest limit records; a non-positive limit
// falls back to the default.
func (s *Service) ListRecent(limit int) ([]models.QueryRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.store.ListRecentQueryHistory(limit)
}

// ListBetween returns records in [start, end], newest first.
func (s *Service) ListBetween(start, end time.Time) ([]models.QueryRecord, error) {
	return s.store.ListQueryHistoryBetween(start, end)
}

func (s *Service) Get(id int64) (*models.QueryRecord, error) {
	return s.store.GetQueryRecord(id)
}

func (s *Service) Count() (int64, error) {
	return s.store.CountQueryHistory()
}

func (s *Service) CountSince(since time.Time) (int64, error) {
	return s.store.CountQueryHistorySince(since)
}

func (s *Service) Delete(id int64) error {
	return s.store.DeleteQueryRecord(id)
}

func (s *Service) DeleteAll() error {
	return s.store.DeleteAllQueryHistory()
}
