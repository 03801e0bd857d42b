package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"pkgs-web/internal/core"
)

const DefaultLatest = 100

// Generate runs the pipeline and renders the static site below
// req.OutputDir/www. Nothing is written when the pipeline fails.
func (s Service) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return GenerateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}
	if strings.TrimSpace(req.Pipeline.Name) == "" {
		return GenerateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repository name is required")
	}
	result, err := s.Pipeline(ctx, req.Pipeline)
	if err != nil {
		return GenerateResult{}, err
	}

	site := s.NewSiteWriter(outputDir, strings.TrimSpace(req.TemplateDir))
	if err := site.Prepare(); err != nil {
		return GenerateResult{}, err
	}
	if err := site.WritePackagePages(result.Records); err != nil {
		return GenerateResult{}, err
	}
	latest := core.LatestPackages(result.Records, req.Latest)
	if err := site.WriteHomePage(latest); err != nil {
		return GenerateResult{}, err
	}
	if err := site.WriteIndex(result.Records); err != nil {
		return GenerateResult{}, err
	}
	log.Ctx(ctx).Info().
		Str("output", outputDir).
		Int("pages", len(result.Records)).
		Int("latest", len(latest)).
		Msg("site generated")
	return GenerateResult{
		OutputDir:   outputDir,
		Pages:       len(result.Records),
		Latest:      len(latest),
		Failures:    result.Failures,
		GeneratedAt: s.Clock().UTC(),
	}, nil
}
