package app

import (
	"time"

	"pkgs-web/internal/types"
)

// PipelineRequest is everything the enrichment pipeline needs. It replaces
// any process-wide configuration.
type PipelineRequest struct {
	URL              string
	Name             string
	SourceRoot       string
	BuildScriptsDir  string
	Workers          int
	Policy           string
	HTTPTimeoutSec   int
	HTTPRetries      int
	HTTPRetryDelayMs int
}

type EnrichRequest struct {
	Pipeline PipelineRequest
	Output   string
}

type EnrichResult struct {
	OutputPath string
	Records    int
	Failures   []types.PackageFailure
}

type GenerateRequest struct {
	Pipeline    PipelineRequest
	OutputDir   string
	TemplateDir string
	Latest      int
}

type GenerateResult struct {
	OutputDir   string
	Pages       int
	Latest      int
	Failures    []types.PackageFailure
	GeneratedAt time.Time
}

type LocateRequest struct {
	SourceRoot      string
	BuildScriptsDir string
	Packages        []string
	Provenance      bool
}

type LocatedPackage struct {
	Name       string
	Path       string
	LastCommit int64
	SourceURL  string
}

type LocateResult struct {
	Packages []LocatedPackage
}
