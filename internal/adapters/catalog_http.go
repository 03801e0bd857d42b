package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"pkgs-web/internal/ports"
	"pkgs-web/internal/shared"
	"pkgs-web/internal/types"
)

// CatalogPath is where a repository publishes its catalog, relative to the
// repository base URL.
const CatalogPath = "/available-packages/packages.yaml"

type CatalogHTTPAdapter struct {
	// Client overrides the per-request client built from the timeout
	// settings. Used by tests.
	Client *http.Client
}

func NewCatalogHTTPAdapter() CatalogHTTPAdapter {
	return CatalogHTTPAdapter{}
}

// CatalogURL joins a repository base URL with CatalogPath.
func CatalogURL(base string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + CatalogPath
}

func (a CatalogHTTPAdapter) Fetch(ctx context.Context, request ports.CatalogRequest) (types.Catalog, error) {
	if strings.TrimSpace(request.URL) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("catalog url is required")
	}
	url := CatalogURL(request.URL)
	log.Ctx(ctx).Info().Str("url", url).Msg("retrieving catalog")

	cfg := normalizeHTTPConfig(request.HTTPTimeoutSec, request.HTTPRetries, request.HTTPRetryDelayMs)
	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.timeout}
	}
	resp, err := doRequest(ctx, client, url, cfg)
	if err != nil {
		return nil, types.NewPipelineError(types.FailureTransport, "", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := errbuilder.CodeInternal
		if resp.StatusCode == http.StatusNotFound {
			code = errbuilder.CodeNotFound
		}
		return nil, types.NewPipelineError(types.FailureTransport, "", errbuilder.New().
			WithCode(code).
			WithMsg(fmt.Sprintf("unexpected status %d", resp.StatusCode)).
			WithCause(shared.HTTPStatusError(resp.StatusCode, url)))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewPipelineError(types.FailureTransport, "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read catalog response").
			WithCause(err))
	}
	return ParseCatalog(ctx, body, request.Name)
}

var _ ports.CatalogSourcePort = CatalogHTTPAdapter{}
