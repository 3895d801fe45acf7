package repository

import (
	"context"
	"time"

	"github.com/utafrali/wishlist-service/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns a page of users ordered by creation time, plus the
	// total count.
	List(ctx context.Context, offset, limit int) ([]*domain.User, int, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user and, via cascade, their wishlist.
	Delete(ctx context.Context, id string) error
}

// WishlistRepository defines the interface for wishlist persistence
// operations. The storage layer is the final arbiter of the per-user item
// cap and the no-duplicates rule.
type WishlistRepository interface {
	// Add inserts a product into the user's wishlist and returns the
	// stored item. Fails with a conflict on duplicates and with a limit
	// error when the wishlist is full.
	Add(ctx context.Context, userID, productID string) (*domain.WishlistItem, error)

	// Remove deletes a product from the user's wishlist.
	Remove(ctx context.Context, userID, productID string) error

	// ListByUser returns all wishlist items for the user, oldest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.WishlistItem, error)

	// Exists checks whether a product is in the user's wishlist.
	Exists(ctx context.Context, userID, productID string) (bool, error)

	// Count returns the number of items in the user's wishlist.
	Count(ctx context.Context, userID string) (int, error)
}

// RefreshTokenRepository defines the interface for refresh token persistence.
type RefreshTokenRepository interface {
	// Create stores a new refresh token hash.
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// GetByHash retrieves a refresh token record by its hash.
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// Revoke revokes a specific refresh token by its hash.
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeByUserID revokes all refresh tokens for the given user.
	RevokeByUserID(ctx context.Context, userID string) error
}
