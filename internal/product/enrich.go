package product

import (
	"context"
	"errors"
	"log/slog"

	"github.com/utafrali/wishlist-service/internal/domain"
	apperrors "github.com/utafrali/wishlist-service/pkg/errors"
)

// Enricher resolves a list of wishlist items into full product details.
//
// Items whose product has disappeared from the catalog are dropped from the
// result instead of failing the whole read; an unavailable catalog still
// fails the request, since returning a silently truncated wishlist during an
// outage would be indistinguishable from deleted products.
type Enricher struct {
	source Source
	logger *slog.Logger
}

// NewEnricher creates an enricher over the given product source.
func NewEnricher(source Source, logger *slog.Logger) *Enricher {
	return &Enricher{source: source, logger: logger}
}

// Enrich resolves each item in order and returns the surviving products.
func (e *Enricher) Enrich(ctx context.Context, items []*domain.WishlistItem) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(items))
	for _, item := range items {
		p, err := e.source.Get(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				e.logger.WarnContext(ctx, "wishlist product no longer in catalog, dropping",
					slog.String("user_id", item.UserID),
					slog.String("product_id", item.ProductID),
				)
				continue
			}
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}
