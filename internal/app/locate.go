package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"pkgs-web/internal/types"
)

// Locate resolves build definitions for the named packages without fetching
// a catalog. With Provenance set it also reads the source URL and last
// commit of each definition.
func (s Service) Locate(ctx context.Context, req LocateRequest) (LocateResult, error) {
	if len(req.Packages) == 0 {
		return LocateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one package name is required")
	}
	root := sourceRoot(req.SourceRoot)
	locator := s.NewLocator(root, strings.TrimSpace(req.BuildScriptsDir))
	extractor := s.extractor(root)

	result := LocateResult{Packages: make([]LocatedPackage, 0, len(req.Packages))}
	for _, name := range req.Packages {
		name = strings.TrimSpace(name)
		path, err := locator.Locate(ctx, name)
		if err != nil {
			return LocateResult{}, types.AttachPackage(err, name)
		}
		located := LocatedPackage{Name: name, Path: path}
		if req.Provenance {
			provenance, err := extractor.Extract(ctx, path)
			if err != nil {
				return LocateResult{}, types.AttachPackage(err, name)
			}
			located.LastCommit = provenance.LastCommit
			located.SourceURL = provenance.SourceURL
		}
		result.Packages = append(result.Packages, located)
	}
	return result, nil
}
