package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/utafrali/wishlist-service/internal/auth"
	"github.com/utafrali/wishlist-service/internal/domain"
	"github.com/utafrali/wishlist-service/internal/product"
	"github.com/utafrali/wishlist-service/internal/repository"
	apperrors "github.com/utafrali/wishlist-service/pkg/errors"
)

// Enricher resolves stored wishlist items into full product details.
type Enricher interface {
	Enrich(ctx context.Context, items []*domain.WishlistItem) ([]*domain.Product, error)
}

type catalogBackend struct {
	source   product.Source
	enricher Enricher
}

// WishlistService implements the wishlist business logic. Every product
// referenced by a wishlist is validated against a catalog before it is
// stored; reads enrich the stored IDs back into product details. Requests
// flagged as test mode are served entirely from the local catalog file and
// never touch the live product API.
type WishlistService struct {
	userRepo     repository.UserRepository
	wishlistRepo repository.WishlistRepository
	live         catalogBackend
	test         catalogBackend
	producer     EventPublisher
	logger       *slog.Logger
}

// NewWishlistService creates a wishlist service routing catalog lookups to
// the live API source or the local file source per request.
func NewWishlistService(
	userRepo repository.UserRepository,
	wishlistRepo repository.WishlistRepository,
	liveSource product.Source,
	testSource product.Source,
	producer EventPublisher,
	logger *slog.Logger,
) *WishlistService {
	return &WishlistService{
		userRepo:     userRepo,
		wishlistRepo: wishlistRepo,
		live:         catalogBackend{source: liveSource, enricher: product.NewEnricher(liveSource, logger)},
		test:         catalogBackend{source: testSource, enricher: product.NewEnricher(testSource, logger)},
		producer:     producer,
		logger:       logger,
	}
}

func (s *WishlistService) backend(testMode bool) catalogBackend {
	if testMode {
		return s.test
	}
	return s.live
}

// productNotFound maps an unknown product at add time to a client error:
// asking to wishlist a product that does not exist is a bad request, not a
// missing resource.
func productNotFound(productID string) *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "PRODUCT_NOT_FOUND",
		Message: fmt.Sprintf("product %s not found", productID),
		Status:  http.StatusBadRequest,
		Err:     apperrors.ErrInvalidInput,
	}
}

// AddItem adds a product to a user's wishlist. The caller must be the owner
// or an admin; the access check runs before the account lookup so outsiders
// cannot probe which accounts exist. Only customer accounts hold wishlists.
func (s *WishlistService) AddItem(ctx context.Context, p auth.Principal, userID, productID string, testMode bool) (*domain.WishlistItem, error) {
	if d := auth.SelfOrAdmin(p, userID); d != auth.Allow {
		return nil, d.Err()
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("get user for wishlist add: %w", err)
	}
	if user.Role != domain.RoleCustomer {
		return nil, apperrors.Forbidden("only customers can have wishlists")
	}

	// Cheap pre-checks outside the insert transaction. The repository
	// re-checks both under its per-user lock, so these only shape error
	// precedence and skip a catalog call that is doomed anyway.
	exists, err := s.wishlistRepo.Exists(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("check wishlist duplicate: %w", err)
	}
	if exists {
		return nil, apperrors.Conflict("product already in wishlist")
	}

	count, err := s.wishlistRepo.Count(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count wishlist items: %w", err)
	}
	if count >= domain.MaxWishlistItems {
		return nil, apperrors.LimitExceeded(fmt.Sprintf("wishlist limit of %d products reached", domain.MaxWishlistItems))
	}

	// Validate the product against the catalog before touching storage.
	if _, err := s.backend(testMode).source.Get(ctx, productID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, productNotFound(productID)
		}
		return nil, err
	}

	item, err := s.wishlistRepo.Add(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if err := s.producer.PublishItemAdded(ctx, item); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish item.added event",
			slog.String("user_id", userID),
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "wishlist item added",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return item, nil
}

// ListItems returns the user's wishlist enriched with product details, in
// insertion order. Products that have vanished from the catalog are dropped;
// a catalog outage fails the whole read.
func (s *WishlistService) ListItems(ctx context.Context, p auth.Principal, userID string, testMode bool) ([]*domain.Product, error) {
	if d := auth.SelfOrAdmin(p, userID); d != auth.Allow {
		return nil, d.Err()
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("get user for wishlist list: %w", err)
	}
	if user.Role != domain.RoleCustomer {
		return nil, apperrors.Forbidden("only customers have wishlists")
	}

	items, err := s.wishlistRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist items: %w", err)
	}

	products, err := s.backend(testMode).enricher.Enrich(ctx, items)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// RemoveItem deletes a product from a user's wishlist. The account itself is
// not looked up: removing from a nonexistent account's wishlist reports the
// missing item, which keeps removal usable as idempotent cleanup.
func (s *WishlistService) RemoveItem(ctx context.Context, p auth.Principal, userID, productID string) error {
	if d := auth.SelfOrAdmin(p, userID); d != auth.Allow {
		return d.Err()
	}

	if err := s.wishlistRepo.Remove(ctx, userID, productID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("wishlist item", productID)
		}
		return fmt.Errorf("remove wishlist item: %w", err)
	}

	item := &domain.WishlistItem{UserID: userID, ProductID: productID}
	if err := s.producer.PublishItemRemoved(ctx, item); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish item.removed event",
			slog.String("user_id", userID),
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "wishlist item removed",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return nil
}
