package domain

// Product is the catalog entry a wishlist item points at. The field names
// follow the upstream product API payload.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Image       string   `json:"image"`
	Price       float64  `json:"price"`
	ReviewScore *float64 `json:"reviewScore,omitempty"`
}
