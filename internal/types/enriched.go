package types

// Provenance is what the source tree tells us about a package's build
// definition.
type Provenance struct {
	LastCommit int64
	SourceURL  string
}

// EnrichedRecord is a catalog record plus provenance and reverse
// dependencies.
type EnrichedRecord struct {
	CatalogRecord       `yaml:",inline"`
	LastCommit          int64    `yaml:"last_commit" json:"last_commit"`
	SourceURL           string   `yaml:"source_url" json:"source_url"`
	BuildScriptLocation string   `yaml:"build_script_location" json:"build_script_location"`
	ReverseDepends      []string `yaml:"reverse_depends" json:"reverse_depends"`
}

// EnrichedSet maps package name to its enriched record.
type EnrichedSet map[string]EnrichedRecord

// PackageFailure annotates a package that could not be enriched when the
// run tolerates per-package failures.
type PackageFailure struct {
	Package string      `yaml:"package"`
	Kind    FailureKind `yaml:"kind"`
	Message string      `yaml:"message"`
}

type EnrichmentResult struct {
	Records  EnrichedSet
	Failures []PackageFailure
}
