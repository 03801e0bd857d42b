package core

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkgs-web/internal/policies"
	"pkgs-web/internal/shared"
	"pkgs-web/internal/types"
)

type testLocator struct {
	paths map[string]string
}

func (l testLocator) Locate(_ context.Context, name string) (string, error) {
	path, ok := l.paths[name]
	if !ok {
		return "", types.NewPipelineError(types.FailureLocator, "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no build definition found for "+name))
	}
	return path, nil
}

type testScripts struct {
	urls map[string]string
}

func (s testScripts) SourceURL(_ context.Context, relPath string) (string, error) {
	return s.urls[relPath], nil
}

type testHistory struct {
	commits  map[string]int64
	checkout bool
	calls    *int32
}

func (h testHistory) LastCommit(_ context.Context, relPath string) (int64, error) {
	if h.calls != nil {
		atomic.AddInt32(h.calls, 1)
	}
	if !h.checkout {
		return 0, types.NewPipelineError(types.FailureCheckout, "", errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("not a git checkout"))
	}
	ts, ok := h.commits[relPath]
	if !ok {
		return 0, types.NewPipelineError(types.FailureExtractor, "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no history for "+relPath))
	}
	return ts, nil
}

func sampleCatalog() types.Catalog {
	return types.Catalog{
		"a":     {Name: "a", Version: "1", LastUpdate: 100, Depends: []string{}, MakeDepends: []string{}},
		"b":     {Name: "b", Version: "2", LastUpdate: 200, Depends: []string{"a"}, MakeDepends: []string{"a"}},
		"b-doc": {Name: "b-doc", Version: "2", LastUpdate: 200, Depends: []string{"b"}, MakeDepends: []string{}},
	}
}

func sampleEnricher(mode types.FailureMode, workers int, history testHistory) Enricher {
	locator := testLocator{paths: map[string]string{
		"a":     "build-scripts/a",
		"b":     "build-scripts/b",
		"b-doc": "build-scripts/b",
	}}
	scripts := testScripts{urls: map[string]string{
		"build-scripts/a": "https://example.com/src.tar.gz",
	}}
	return NewEnricher(locator, NewProvenanceExtractor(scripts, history), EnricherConfig{
		Workers: workers,
		Policy:  policies.NewFailurePolicy(mode),
	})
}

func fullHistory() testHistory {
	return testHistory{checkout: true, commits: map[string]int64{
		"build-scripts/a": 1000,
		"build-scripts/b": 2000,
	}}
}

func TestEnricher_Enrich(t *testing.T) {
	enricher := sampleEnricher(types.FailureModeAllOrNothing, 2, fullHistory())
	result, err := enricher.Enrich(context.Background(), sampleCatalog())
	require.NoError(t, err)
	assert.Empty(t, result.Failures)

	catalog := sampleCatalog()
	want := types.EnrichedSet{
		"a": {
			CatalogRecord:       catalog["a"],
			LastCommit:          1000,
			SourceURL:           "https://example.com/src.tar.gz",
			BuildScriptLocation: "build-scripts/a",
			ReverseDepends:      []string{"b"},
		},
		"b": {
			CatalogRecord:       catalog["b"],
			LastCommit:          2000,
			BuildScriptLocation: "build-scripts/b",
			ReverseDepends:      []string{"b-doc"},
		},
		"b-doc": {
			CatalogRecord:       catalog["b-doc"],
			LastCommit:          2000,
			BuildScriptLocation: "build-scripts/b",
			ReverseDepends:      []string{},
		},
	}
	if diff := cmp.Diff(want, result.Records); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

func TestEnricher_DeterministicAcrossWorkerCounts(t *testing.T) {
	sequential, err := sampleEnricher(types.FailureModeAllOrNothing, 1, fullHistory()).Enrich(context.Background(), sampleCatalog())
	require.NoError(t, err)
	for _, workers := range []int{2, 8, 32} {
		parallel, err := sampleEnricher(types.FailureModeAllOrNothing, workers, fullHistory()).Enrich(context.Background(), sampleCatalog())
		require.NoError(t, err)
		if diff := cmp.Diff(sequential, parallel); diff != "" {
			t.Fatalf("workers=%d changed the result (-want +got):\n%s", workers, diff)
		}
	}
}

func TestEnricher_AllOrNothing(t *testing.T) {
	history := fullHistory()
	delete(history.commits, "build-scripts/a")

	result, err := sampleEnricher(types.FailureModeAllOrNothing, 4, history).Enrich(context.Background(), sampleCatalog())
	require.Error(t, err)
	assert.Nil(t, result.Records)
	assert.Equal(t, types.FailureExtractor, types.KindOf(err))
	assert.Contains(t, err.Error(), "for package a")
	assert.Contains(t, err.Error(), "no history for build-scripts/a")
}

func TestEnricher_MissingBuildDefinition(t *testing.T) {
	catalog := sampleCatalog()
	catalog["ghost"] = types.CatalogRecord{Name: "ghost", Depends: []string{}, MakeDepends: []string{}}

	_, err := sampleEnricher(types.FailureModeAllOrNothing, 4, fullHistory()).Enrich(context.Background(), catalog)
	require.Error(t, err)
	assert.Equal(t, types.FailureLocator, types.KindOf(err))
}

func TestEnricher_BestEffort(t *testing.T) {
	catalog := sampleCatalog()
	catalog["ghost"] = types.CatalogRecord{Name: "ghost", Depends: []string{"a"}, MakeDepends: []string{}}
	history := fullHistory()
	delete(history.commits, "build-scripts/b")

	result, err := sampleEnricher(types.FailureModeBestEffort, 4, history).Enrich(context.Background(), catalog)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"a"}, shared.SortedKeys(result.Records)); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
	// reverse dependencies come from the catalog, not from what was enriched
	assert.Equal(t, []string{"b", "ghost"}, result.Records["a"].ReverseDepends)

	want := []types.PackageFailure{
		{Package: "b", Kind: types.FailureExtractor},
		{Package: "b-doc", Kind: types.FailureExtractor},
		{Package: "ghost", Kind: types.FailureLocator},
	}
	got := make([]types.PackageFailure, 0, len(result.Failures))
	for _, failure := range result.Failures {
		assert.NotEmpty(t, failure.Message)
		got = append(got, types.PackageFailure{Package: failure.Package, Kind: failure.Kind})
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected failures (-want +got):\n%s", diff)
	}
}

func TestEnricher_CheckoutAbortsBestEffort(t *testing.T) {
	history := testHistory{checkout: false}
	_, err := sampleEnricher(types.FailureModeBestEffort, 1, history).Enrich(context.Background(), sampleCatalog())
	require.Error(t, err)
	assert.Equal(t, types.FailureCheckout, types.KindOf(err))
}

func TestEnricher_StopsAfterFirstFatalError(t *testing.T) {
	catalog := types.Catalog{}
	paths := map[string]string{}
	for _, name := range []string{"p00", "p01", "p02", "p03", "p04", "p05", "p06", "p07", "p08", "p09"} {
		catalog[name] = types.CatalogRecord{Name: name}
		paths[name] = "build-scripts/" + name
	}
	var calls int32
	history := testHistory{checkout: false, calls: &calls}
	enricher := NewEnricher(testLocator{paths: paths}, NewProvenanceExtractor(testScripts{}, history), EnricherConfig{Workers: 1})

	_, err := enricher.Enrich(context.Background(), catalog)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEnricher_DefaultsConfig(t *testing.T) {
	enricher := NewEnricher(testLocator{}, ProvenanceExtractor{}, EnricherConfig{})
	assert.Equal(t, DefaultWorkers, enricher.Config.Workers)
	assert.Equal(t, types.FailureModeAllOrNothing, enricher.Config.Policy.Mode)
}
