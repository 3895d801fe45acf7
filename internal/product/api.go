package product

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/wishlist-service/internal/domain"
	apperrors "github.com/utafrali/wishlist-service/pkg/errors"
)

const unavailableMessage = "Product API service unavailable"

// HTTPClient is the subset of the HTTP client the API source needs.
type HTTPClient interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// APISource resolves products against the live product API. Lookups are a
// single attempt with a short deadline: a slow or failing catalog must not
// stall wishlist writes, so the client is configured without retries and the
// circuit breaker fails fast during outages.
type APISource struct {
	baseURL string
	client  HTTPClient
	logger  *slog.Logger
}

// NewAPISource creates a live product API source. baseURL is the product
// endpoint without a trailing slash, e.g. "http://challenge-api.luizalabs.com/api/product".
func NewAPISource(baseURL string, client HTTPClient, logger *slog.Logger) *APISource {
	return &APISource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

// Get fetches a product by ID. A 404 from upstream means the product does
// not exist; every other failure is reported as the catalog being
// unavailable.
func (s *APISource) Get(ctx context.Context, productID string) (*domain.Product, error) {
	url := s.baseURL + "/" + productID + "/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build product request: %w", err)
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		s.logger.WarnContext(ctx, "product api request failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.ServiceUnavailable(unavailableMessage)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NotFound("product", productID)
	case resp.StatusCode != http.StatusOK:
		s.logger.WarnContext(ctx, "product api unexpected status",
			slog.String("product_id", productID),
			slog.Int("status", resp.StatusCode),
		)
		return nil, apperrors.ServiceUnavailable(unavailableMessage)
	}

	var p domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		s.logger.WarnContext(ctx, "product api malformed payload",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.ServiceUnavailable(unavailableMessage)
	}
	if p.ID == "" {
		p.ID = productID
	}

	return &p, nil
}
