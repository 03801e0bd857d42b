package core

import (
	"context"

	"pkgs-web/internal/ports"
	"pkgs-web/internal/types"
)

// ProvenanceExtractor combines the declared source URL of a build definition
// with the time of the last commit that touched it.
type ProvenanceExtractor struct {
	Scripts ports.BuildScriptPort
	History ports.HistoryPort
}

func NewProvenanceExtractor(scripts ports.BuildScriptPort, history ports.HistoryPort) ProvenanceExtractor {
	return ProvenanceExtractor{Scripts: scripts, History: history}
}

func (e ProvenanceExtractor) Extract(ctx context.Context, relPath string) (types.Provenance, error) {
	lastCommit, err := e.History.LastCommit(ctx, relPath)
	if err != nil {
		return types.Provenance{}, err
	}
	sourceURL, err := e.Scripts.SourceURL(ctx, relPath)
	if err != nil {
		return types.Provenance{}, err
	}
	return types.Provenance{LastCommit: lastCommit, SourceURL: sourceURL}, nil
}
