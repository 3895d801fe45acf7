package domain

import (
	"time"
)

// MaxWishlistItems is the upper bound on products per wishlist.
const MaxWishlistItems = 5

// WishlistItem represents a product saved in a user's wishlist.
type WishlistItem struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}
