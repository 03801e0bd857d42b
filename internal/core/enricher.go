package core

import (
	"context"
	"errors"
	"time"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"pkgs-web/internal/policies"
	"pkgs-web/internal/ports"
	"pkgs-web/internal/shared"
	"pkgs-web/internal/types"
)

const DefaultWorkers = 8

type EnricherConfig struct {
	Workers int
	Policy  policies.FailurePolicy
}

// Enricher turns a catalog into enriched records by locating and inspecting
// every package's build definition.
type Enricher struct {
	Locator    ports.BuildDefinitionLocatorPort
	Provenance ProvenanceExtractor
	Config     EnricherConfig
}

func NewEnricher(locator ports.BuildDefinitionLocatorPort, provenance ProvenanceExtractor, cfg EnricherConfig) Enricher {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Policy.Mode == "" {
		cfg.Policy = policies.NewFailurePolicy(types.FailureModeAllOrNothing)
	}
	return Enricher{Locator: locator, Provenance: provenance, Config: cfg}
}

// enrichSlot is the result of one package. Each worker writes only its own
// slot.
type enrichSlot struct {
	record  *types.EnrichedRecord
	failure *types.PackageFailure
}

func (e Enricher) Enrich(ctx context.Context, catalog types.Catalog) (types.EnrichmentResult, error) {
	logger := log.Ctx(ctx)
	start := time.Now()
	reverse := InvertDependencies(catalog)
	names := shared.SortedKeys(catalog)
	slots := make([]enrichSlot, len(names))

	workers := e.Config.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, name := range names {
		i, name := i, name
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			entry := catalog[name]
			entry.Name = name
			record, err := e.enrichOne(groupCtx, entry, reverse[name])
			if err != nil {
				err = types.AttachPackage(err, name)
				kind := types.KindOf(err)
				if e.Config.Policy.ShouldAbort(kind) {
					return err
				}
				logger.Warn().Str("package", name).Str("kind", string(kind)).Err(err).Msg("package not enriched")
				slots[i] = enrichSlot{failure: &types.PackageFailure{
					Package: name,
					Kind:    kind,
					Message: failureMessage(err),
				}}
				return nil
			}
			slots[i] = enrichSlot{record: &record}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return types.EnrichmentResult{}, err
	}

	result := types.EnrichmentResult{Records: make(types.EnrichedSet, len(names))}
	for _, slot := range slots {
		switch {
		case slot.record != nil:
			result.Records[slot.record.Name] = *slot.record
		case slot.failure != nil:
			result.Failures = append(result.Failures, *slot.failure)
		}
	}
	logger.Info().
		Int("records", len(result.Records)).
		Int("failures", len(result.Failures)).
		Dur("elapsed", time.Since(start)).
		Msg("enrichment finished")
	return result, nil
}

func (e Enricher) enrichOne(ctx context.Context, record types.CatalogRecord, reverseDepends []string) (types.EnrichedRecord, error) {
	path, err := e.Locator.Locate(ctx, record.Name)
	if err != nil {
		return types.EnrichedRecord{}, err
	}
	assert.NotEmpty(ctx, path, "locator returned an empty path")
	provenance, err := e.Provenance.Extract(ctx, path)
	if err != nil {
		return types.EnrichedRecord{}, err
	}
	if reverseDepends == nil {
		reverseDepends = []string{}
	}
	log.Ctx(ctx).Debug().
		Str("package", record.Name).
		Str("path", path).
		Int64("last_commit", provenance.LastCommit).
		Msg("enriched package")
	return types.EnrichedRecord{
		CatalogRecord:       record,
		LastCommit:          provenance.LastCommit,
		SourceURL:           provenance.SourceURL,
		BuildScriptLocation: path,
		ReverseDepends:      reverseDepends,
	}, nil
}

// failureMessage strips the kind and package prefix that PackageFailure
// already carries as separate fields.
func failureMessage(err error) string {
	var pe *types.PipelineError
	if errors.As(err, &pe) && pe.Err != nil {
		return pe.Err.Error()
	}
	return err.Error()
}
