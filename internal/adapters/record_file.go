package adapters

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"pkgs-web/internal/ports"
	"pkgs-web/internal/types"
)

type recordFile struct {
	Packages types.EnrichedSet      `yaml:"packages"`
	Failures []types.PackageFailure `yaml:"failures,omitempty"`
}

// RecordFileAdapter writes an enrichment result as a YAML document.
type RecordFileAdapter struct{}

func NewRecordFileAdapter() RecordFileAdapter {
	return RecordFileAdapter{}
}

func (RecordFileAdapter) Write(path string, result types.EnrichmentResult) error {
	if path == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output path is empty")
	}
	failures := append([]types.PackageFailure(nil), result.Failures...)
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Package < failures[j].Package
	})
	records := result.Records
	if records == nil {
		records = types.EnrichedSet{}
	}
	data, err := yaml.Marshal(recordFile{Packages: records, Failures: failures})
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode enriched records").
			WithCause(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write enriched records").
			WithCause(err)
	}
	return nil
}

var _ ports.RecordWriterPort = RecordFileAdapter{}
