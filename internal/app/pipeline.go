package app

import (
	"context"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"pkgs-web/internal/core"
	"pkgs-web/internal/policies"
	"pkgs-web/internal/ports"
	"pkgs-web/internal/types"
)

const defaultSourceRoot = "."

// Pipeline fetches the catalog and enriches every package in it. On error no
// records are returned.
func (s Service) Pipeline(ctx context.Context, req PipelineRequest) (types.EnrichmentResult, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return types.EnrichmentResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("catalog url is required")
	}
	mode, err := policies.ParseFailureMode(req.Policy)
	if err != nil {
		return types.EnrichmentResult{}, err
	}
	root := sourceRoot(req.SourceRoot)
	assert.NotEmpty(ctx, root, "source root must be set")

	catalog, err := s.Catalog.Fetch(ctx, ports.CatalogRequest{
		URL:              url,
		Name:             strings.TrimSpace(req.Name),
		HTTPTimeoutSec:   req.HTTPTimeoutSec,
		HTTPRetries:      req.HTTPRetries,
		HTTPRetryDelayMs: req.HTTPRetryDelayMs,
	})
	if err != nil {
		return types.EnrichmentResult{}, err
	}

	log.Ctx(ctx).Info().
		Str("root", root).
		Str("policy", string(mode)).
		Int("packages", len(catalog)).
		Msg("enriching catalog")
	enricher := core.NewEnricher(
		s.NewLocator(root, strings.TrimSpace(req.BuildScriptsDir)),
		s.extractor(root),
		core.EnricherConfig{Workers: req.Workers, Policy: policies.NewFailurePolicy(mode)},
	)
	return enricher.Enrich(ctx, catalog)
}

func (s Service) extractor(root string) core.ProvenanceExtractor {
	return core.NewProvenanceExtractor(s.NewScripts(root), s.NewHistory(root, s.Runner))
}

func sourceRoot(value string) string {
	root := strings.TrimSpace(value)
	if root == "" {
		return defaultSourceRoot
	}
	return root
}
