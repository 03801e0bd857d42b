package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"pkgs-web/internal/types"
	"pkgs-web/tests/testutil"
)

func sampleEnrichedSet() types.EnrichedSet {
	return types.EnrichedSet{
		"a": {
			CatalogRecord: types.CatalogRecord{
				Name: "a", Version: "1.0", DownloadSize: 10, InstallSize: 1536, Repo: "main",
				LastUpdate: 1700000000, Depends: []string{"b"}, MakeDepends: []string{},
			},
			LastCommit:          1699990000,
			SourceURL:           "https://example.com/a.tar.gz",
			BuildScriptLocation: "build-scripts/a",
			ReverseDepends:      []string{},
		},
		"b": {
			CatalogRecord: types.CatalogRecord{
				Name: "b", Version: "2.0", Repo: "main", LastUpdate: 1600000000,
				Depends: []string{}, MakeDepends: []string{},
			},
			BuildScriptLocation: "build-scripts/b",
			ReverseDepends:      []string{"a"},
		},
	}
}

func TestSiteWriterAdapter_WritesSite(t *testing.T) {
	dir := t.TempDir()
	writer := NewSiteWriterAdapter(dir, "")
	set := sampleEnrichedSet()

	require.NoError(t, writer.Prepare())
	require.NoError(t, writer.WritePackagePages(set))
	require.NoError(t, writer.WriteHomePage([]types.EnrichedRecord{set["a"], set["b"]}))
	require.NoError(t, writer.WriteIndex(set))

	assert.FileExists(t, filepath.Join(dir, "www", "css", "style.css"))

	page, err := os.ReadFile(filepath.Join(dir, "www", "packages", "a.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "2023-11-14T22:13:20Z")
	assert.Contains(t, string(page), "10KiB")
	assert.Contains(t, string(page), "1.5MiB")
	assert.Contains(t, string(page), `href="https://example.com/a.tar.gz"`)
	assert.Contains(t, string(page), `<a href="b.html">b</a>`)

	bPage, err := os.ReadFile(filepath.Join(dir, "www", "packages", "b.html"))
	require.NoError(t, err)
	assert.Contains(t, string(bPage), `<a href="a.html">a</a>`)

	home, err := os.ReadFile(filepath.Join(dir, "www", "homepage.html"))
	require.NoError(t, err)
	assert.Contains(t, string(home), `href="packages/a.html"`)
	assert.Contains(t, string(home), `href="packages/b.html"`)

	data, err := os.ReadFile(filepath.Join(dir, "www", "packages.yaml"))
	require.NoError(t, err)
	var decoded types.EnrichedSet
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	if diff := cmp.Diff(set, decoded); diff != "" {
		t.Fatalf("unexpected index (-want +got):\n%s", diff)
	}
}

func TestSiteWriterAdapter_TemplateDirOverride(t *testing.T) {
	templates := t.TempDir()
	testutil.WriteFile(t, filepath.Join(templates, "package-template.html"), "custom {{.Name}}")
	testutil.WriteFile(t, filepath.Join(templates, "front-page.html"), "{{len .Packages}} packages")
	testutil.WriteFile(t, filepath.Join(templates, "css", "site.css"), "body {}")

	dir := t.TempDir()
	writer := NewSiteWriterAdapter(dir, templates)
	require.NoError(t, writer.Prepare())
	require.NoError(t, writer.WritePackagePages(sampleEnrichedSet()))
	require.NoError(t, writer.WriteHomePage(nil))

	assert.FileExists(t, filepath.Join(dir, "www", "css", "site.css"))
	page, err := os.ReadFile(filepath.Join(dir, "www", "packages", "b.html"))
	require.NoError(t, err)
	assert.Equal(t, "custom b", string(page))
	home, err := os.ReadFile(filepath.Join(dir, "www", "homepage.html"))
	require.NoError(t, err)
	assert.Equal(t, "0 packages", string(home))
}

func TestSiteWriterAdapter_EscapesContent(t *testing.T) {
	dir := t.TempDir()
	set := types.EnrichedSet{"x": {CatalogRecord: types.CatalogRecord{Name: "x", Version: "<script>"}}}
	require.NoError(t, NewSiteWriterAdapter(dir, "").WritePackagePages(set))
	page, err := os.ReadFile(filepath.Join(dir, "www", "packages", "x.html"))
	require.NoError(t, err)
	assert.NotContains(t, string(page), "<script>")
	assert.Contains(t, string(page), "&lt;script&gt;")
}

func TestSiteWriterAdapter_RejectsUnsafeNames(t *testing.T) {
	for _, name := range []string{"../evil", "a/b", "..", ""} {
		set := types.EnrichedSet{name: {CatalogRecord: types.CatalogRecord{Name: name}}}
		err := NewSiteWriterAdapter(t.TempDir(), "").WritePackagePages(set)
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "cannot be used as a file name")
	}
}

func TestSiteWriterAdapter_RequiresDir(t *testing.T) {
	err := NewSiteWriterAdapter("", "").Prepare()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output directory is empty")
}

func TestRecordFileAdapter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "enriched.yaml")
	result := types.EnrichmentResult{
		Records: sampleEnrichedSet(),
		Failures: []types.PackageFailure{
			{Package: "z", Kind: types.FailureLocator, Message: "no build definition found for z"},
			{Package: "c", Kind: types.FailureExtractor, Message: "no history for build-scripts/c"},
		},
	}
	require.NoError(t, NewRecordFileAdapter().Write(path, result))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc recordFile
	require.NoError(t, yaml.Unmarshal(data, &doc))
	if diff := cmp.Diff(result.Records, doc.Packages); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
	require.Len(t, doc.Failures, 2)
	assert.Equal(t, "c", doc.Failures[0].Package)
	assert.Equal(t, types.FailureExtractor, doc.Failures[0].Kind)
}
