package services

import (
	"sync"

	"txtension/internal/assets"
	"txtension/internal/models"
)

// CatalogService serves the compiled-in catalog. It is parsed once on first
// use and immutable afterwards.
type CatalogService interface {
	Catalog() (*models.Catalog, error)
}

type catalogService struct {
	data    []byte
	once    sync.Once
	catalog *models.Catalog
	err     error
}

func NewCatalogService() CatalogService {
	return &catalogService{data: assets.CatalogData}
}

// NewCatalogServiceFromData serves a catalog decoded from data instead of the
// embedded asset.
func NewCatalogServiceFromData(data []byte) CatalogService {
	return &catalogService{data: data}
}

func (s *catalogService) Catalog() (*models.Catalog, error) {
	s.once.Do(func() {
		s.catalog, s.err = models.ParseCatalog(s.data)
	})
	return s.catalog, s.err
}
