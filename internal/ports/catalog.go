package ports

import (
	"context"

	"pkgs-web/internal/types"
)

type CatalogRequest struct {
	URL              string
	Name             string
	HTTPTimeoutSec   int
	HTTPRetries      int
	HTTPRetryDelayMs int
}

// CatalogSourcePort retrieves and validates a repository catalog.
type CatalogSourcePort interface {
	Fetch(ctx context.Context, request CatalogRequest) (types.Catalog, error)
}
