package product

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/utafrali/wishlist-service/internal/domain"
	apperrors "github.com/utafrali/wishlist-service/pkg/errors"
)

// FileSource serves products from a JSON catalog loaded once at startup.
// It backs the test-mode product flow, where requests must never reach the
// live product API.
type FileSource struct {
	products map[string]*domain.Product
}

// NewFileSource loads the catalog file. A missing or malformed catalog is a
// configuration error and fails startup.
func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read product catalog %s: %w", path, err)
	}

	var entries []*domain.Product
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse product catalog %s: %w", path, err)
	}

	products := make(map[string]*domain.Product, len(entries))
	for _, p := range entries {
		if p.ID == "" {
			return nil, fmt.Errorf("parse product catalog %s: entry with empty id", path)
		}
		products[p.ID] = p
	}

	return &FileSource{products: products}, nil
}

// Get returns the catalog entry for the given ID.
func (s *FileSource) Get(_ context.Context, productID string) (*domain.Product, error) {
	p, ok := s.products[productID]
	if !ok {
		return nil, apperrors.NotFound("product", productID)
	}
	return p, nil
}

// Len returns the number of products in the catalog.
func (s *FileSource) Len() int {
	return len(s.products)
}
