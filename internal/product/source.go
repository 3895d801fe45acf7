package product

import (
	"context"

	"github.com/utafrali/wishlist-service/internal/domain"
)

// Source resolves product IDs against a catalog. Implementations report
// unknown products with an error wrapping apperrors.ErrNotFound and
// catalog outages with one wrapping apperrors.ErrServiceUnavail.
type Source interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
}
