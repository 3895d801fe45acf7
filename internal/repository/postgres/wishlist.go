package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/utafrali/wishlist-service/internal/domain"
	apperrors "github.com/utafrali/wishlist-service/pkg/errors"
)

// WishlistRepository implements repository.WishlistRepository using PostgreSQL.
type WishlistRepository struct {
	db DB
}

// NewWishlistRepository creates a PostgreSQL-backed wishlist repository.
func NewWishlistRepository(db DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// Add inserts a product into the user's wishlist. Concurrent adds for the
// same user are serialized with a per-user advisory lock so the item cap
// holds under parallel requests. The composite primary key rejects
// duplicates regardless.
func (r *WishlistRepository) Add(ctx context.Context, userID, productID string) (*domain.WishlistItem, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return nil, fmt.Errorf("acquire wishlist lock: %w", err)
	}

	// Duplicate wins over the cap: re-adding to a full wishlist is still
	// a conflict, not a limit error.
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM wishlist_items WHERE user_id = $1 AND product_id = $2)`, userID, productID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check wishlist item exists: %w", err)
	}
	if exists {
		return nil, apperrors.Conflict("product already in wishlist")
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM wishlist_items WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return nil, fmt.Errorf("count wishlist items: %w", err)
	}
	if count >= domain.MaxWishlistItems {
		return nil, apperrors.LimitExceeded(fmt.Sprintf("wishlist limit of %d products reached", domain.MaxWishlistItems))
	}

	item := &domain.WishlistItem{
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO wishlist_items (user_id, product_id, created_at)
		VALUES ($1, $2, $3)`

	if _, err := tx.Exec(ctx, query, item.UserID, item.ProductID, item.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("product already in wishlist")
		}
		return nil, fmt.Errorf("add to wishlist: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return item, nil
}

// Remove deletes a product from the user's wishlist.
func (r *WishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("wishlist item", productID)
	}
	return nil
}

// ListByUser returns all wishlist items for the user, oldest first.
func (r *WishlistRepository) ListByUser(ctx context.Context, userID string) ([]*domain.WishlistItem, error) {
	query := `
		SELECT user_id, product_id, created_at
		FROM wishlist_items
		WHERE user_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist items: %w", err)
	}
	defer rows.Close()

	var items []*domain.WishlistItem
	for rows.Next() {
		var item domain.WishlistItem
		if err := rows.Scan(&item.UserID, &item.ProductID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist rows: %w", err)
	}

	if items == nil {
		items = []*domain.WishlistItem{}
	}
	return items, nil
}

// Exists checks whether a product is in the user's wishlist.
func (r *WishlistRepository) Exists(ctx context.Context, userID, productID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM wishlist_items WHERE user_id = $1 AND product_id = $2)`,
		userID, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check wishlist item exists: %w", err)
	}
	return exists, nil
}

// Count returns the number of items in the user's wishlist.
func (r *WishlistRepository) Count(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM wishlist_items WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count wishlist items: %w", err)
	}
	return count, nil
}
