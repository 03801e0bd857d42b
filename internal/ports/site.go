package ports

import "pkgs-web/internal/types"

// SiteWriterPort renders enriched records into the static web viewer.
type SiteWriterPort interface {
	Prepare() error
	WritePackagePages(records types.EnrichedSet) error
	WriteHomePage(latest []types.EnrichedRecord) error
	WriteIndex(records types.EnrichedSet) error
}

// RecordWriterPort persists the enriched set for other consumers.
type RecordWriterPort interface {
	Write(path string, result types.EnrichmentResult) error
}
