package adapters

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"pkgs-web/internal/shared"
	"pkgs-web/internal/types"
)

func TestParseCatalog_ValidEntries(t *testing.T) {
	content := strings.Join([]string{
		"a:",
		"  version: 1.0-1",
		"  download_size: 12",
		"  install_size: 40",
		"  repo: stable",
		"  last_update: 1700000000",
		"  depends: [b]",
		"  make_depends: [cmake]",
		"b:",
		"  version: 2",
		"  download_size: 0",
		"  install_size: 0",
		"  repo: stable",
		"  last_update: 1600000000",
		"  depends: []",
		"  make_depends: null",
		"  maintainer: someone",
	}, "\n")
	catalog, err := ParseCatalog(context.Background(), []byte(content), "core")
	require.NoError(t, err)
	want := types.Catalog{
		"a": {
			Name:         "a",
			Version:      "1.0-1",
			DownloadSize: 12,
			InstallSize:  40,
			Repo:         "core",
			LastUpdate:   1700000000,
			Depends:      []string{"b"},
			MakeDepends:  []string{"cmake"},
		},
		"b": {
			Name:        "b",
			Version:     "2",
			Repo:        "core",
			LastUpdate:  1600000000,
			Depends:     []string{},
			MakeDepends: []string{},
		},
	}
	if diff := cmp.Diff(want, catalog); diff != "" {
		t.Fatalf("unexpected catalog (-want +got):\n%s", diff)
	}
}

func TestParseCatalog_RepoFallsBackToDocument(t *testing.T) {
	content := "a: {version: '1', download_size: 1, install_size: 1, repo: extra, last_update: 5, depends: [], make_depends: []}\n"
	catalog, err := ParseCatalog(context.Background(), []byte(content), "")
	require.NoError(t, err)
	assert.Equal(t, "extra", catalog["a"].Repo)
}

func TestParseCatalog_SkipsInvalidEntries(t *testing.T) {
	content := strings.Join([]string{
		"good: {version: '1', download_size: 1, install_size: 1, repo: r, last_update: 5, depends: [], make_depends: []}",
		"no_version: {download_size: 1, install_size: 1, repo: r, last_update: 5, depends: [], make_depends: []}",
		"bad_size: {version: '1', download_size: big, install_size: -1, repo: r, last_update: 5, depends: [], make_depends: []}",
		"scalar: just-a-string",
		"bad_depends: {version: '1', download_size: 1, install_size: 1, repo: r, last_update: 5, depends: b, make_depends: []}",
	}, "\n")
	catalog, err := ParseCatalog(context.Background(), []byte(content), "r")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"good"}, shared.SortedKeys(catalog)); diff != "" {
		t.Fatalf("unexpected names (-want +got):\n%s", diff)
	}
}

func TestParseCatalog_QuotedIntegers(t *testing.T) {
	content := strings.Join([]string{
		`a: {version: '1', download_size: "12", install_size: '30', repo: r, last_update: "1700000000", depends: [], make_depends: []}`,
		`b: {version: '1', download_size: "1.5", install_size: 1, repo: r, last_update: 5, depends: [], make_depends: []}`,
	}, "\n")
	catalog, err := ParseCatalog(context.Background(), []byte(content), "r")
	require.NoError(t, err)
	require.NotContains(t, catalog, "b")
	assert.Equal(t, int64(12), catalog["a"].DownloadSize)
	assert.Equal(t, int64(30), catalog["a"].InstallSize)
	assert.Equal(t, int64(1700000000), catalog["a"].LastUpdate)
}

func TestParseCatalog_DuplicateKeysLastWins(t *testing.T) {
	content := strings.Join([]string{
		"a: {version: '1', download_size: 1, install_size: 1, repo: r, last_update: 5, depends: [], make_depends: []}",
		"a: {version: '2', download_size: 1, install_size: 1, repo: r, last_update: 5, depends: [], make_depends: []}",
	}, "\n")
	catalog, err := ParseCatalog(context.Background(), []byte(content), "r")
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "2", catalog["a"].Version)
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		kind    types.FailureKind
	}{
		{name: "empty document", content: "", kind: types.FailureEmptyCatalog},
		{name: "null document", content: "null\n", kind: types.FailureEmptyCatalog},
		{name: "empty mapping", content: "{}\n", kind: types.FailureEmptyCatalog},
		{name: "all invalid", content: "a: {version: '1'}\n", kind: types.FailureEmptyCatalog},
		{name: "list root", content: "- a\n- b\n", kind: types.FailureCatalogFormat},
		{name: "syntax error", content: "a: [unclosed\n", kind: types.FailureCatalogFormat},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog(context.Background(), []byte(tt.content), "r")
			require.Error(t, err)
			assert.Equal(t, tt.kind, types.KindOf(err))
		})
	}
}

func TestDecodeCatalogEntry_CollectsAllProblems(t *testing.T) {
	content := "a: {version: [1], download_size: -3, repo: r, last_update: soon, depends: [x, {y: z}], make_depends: []}\n"
	catalog, err := ParseCatalog(context.Background(), []byte("ok: {version: '1', download_size: 1, install_size: 1, repo: r, last_update: 5, depends: [], make_depends: []}\n"+content), "r")
	require.NoError(t, err)
	require.NotContains(t, catalog, "a")

	root := documentRootForTest(t, content)
	_, err = decodeCatalogEntry("a", root.Content[0], root.Content[1], "r")
	var entryErr *types.EntryError
	require.ErrorAs(t, err, &entryErr)
	fields := make([]string, 0, len(entryErr.Problems))
	for _, p := range entryErr.Problems {
		fields = append(fields, p.Field)
	}
	want := []string{"version", "download_size", "install_size", "last_update", "depends"}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("unexpected problem fields (-want +got):\n%s", diff)
	}
	assert.Contains(t, err.Error(), `catalog entry "a"`)
}

func documentRootForTest(t *testing.T, content string) *yaml.Node {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(content), &doc))
	root := documentRoot(&doc)
	require.NotNil(t, root)
	return root
}
