// Package documents is the lifecycle surface over document metadata.
// Deleting a document removes its metadata row only: the chunks already
// in the vector index stay searchable. The index offers no
// metadata-filtered delete, so orphaned chunks are a known limitation
// rather than something this service papers over.
package documents

import (
	"github.com/swiftbeard/ragserver/internal/storage/models"
	"github.com/swiftbeard/ragserver/internal/storage/sqlite"
)

type Service struct {
	store *sqlite.Client
}

func NewService(store *sqlite.Client) *Service {
	return &Service{store: store}
}

func (s *Service) List() ([]models.DocumentMetadata, error) {
	return s.store.ListDocuments()
}

func (s *Service) Get(id int64) (*models.DocumentMetadata, error) {
	return s.store.GetDocument(id)
}

func (s *Service) Delete(id int64) error {
	// Look up first so a missing id fails before any write.
	if _, err := s.store.GetDocument(id); err != nil {
		return err
	}
	return s.store.DeleteDocument(id)
}

func (s *Service) Count() (int64, error) {
	return s.store.CountDocuments()
}
