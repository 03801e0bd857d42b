// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// CatalogPath mirrors where repositories publish packages.yaml.
const CatalogPath = "/available-packages/packages.yaml"

// SampleCatalog lists three packages; zlib-dev is a split package built from
// the zlib definition and curl has no URL= line.
const SampleCatalog = `zlib:
  version: "1.3.1-1"
  download_size: 120
  install_size: 300
  repo: core
  last_update: 1700000000
  depends: []
  make_depends: [gcc]
zlib-dev:
  version: "1.3.1-1"
  download_size: 40
  install_size: 90
  repo: core
  last_update: 1700000000
  depends: [zlib]
  make_depends: []
curl:
  version: "8.5.0-2"
  download_size: 800
  install_size: 2048
  repo: core
  last_update: 1710000000
  depends: [zlib]
  make_depends: []
broken:
  version: "1"
`

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// WriteFile creates path and its parent directories.
func WriteFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// RunGit runs git in dir with a fixed identity. Extra env entries are
// appended, e.g. to pin commit dates.
func RunGit(t *testing.T, dir string, env []string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=pkgs-web",
		"GIT_AUTHOR_EMAIL=dev@example.com",
		"GIT_COMMITTER_NAME=pkgs-web",
		"GIT_COMMITTER_EMAIL=dev@example.com",
	)
	cmd.Env = append(cmd.Env, env...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))
}

// CommitAll stages everything in dir and commits it at the given Unix time.
func CommitAll(t *testing.T, dir string, unix string, message string) {
	t.Helper()
	RunGit(t, dir, nil, "add", ".")
	RunGit(t, dir, []string{
		"GIT_AUTHOR_DATE=@" + unix + " +0000",
		"GIT_COMMITTER_DATE=@" + unix + " +0000",
	}, "commit", "-m", message)
}

// SampleSourceTree creates a git checkout holding build definitions for
// SampleCatalog and returns its root.
func SampleSourceTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	RunGit(t, root, nil, "init", "--initial-branch=main")
	WriteFile(t, filepath.Join(root, "build-scripts", "libs", "zlib"), "NAME=zlib\nVERSION=1.3.1\nPACKAGES=(zlib zlib-dev)\nURL=\"https://zlib.net/${NAME}-${VERSION}.tar.gz\"\nbuild() {\n  make\n}\n")
	CommitAll(t, root, "1699000000", "add zlib")
	WriteFile(t, filepath.Join(root, "build-scripts", "net", "curl"), "PACKAGES=(curl)\nbuild() {\n  ./configure\n}\n")
	CommitAll(t, root, "1709000000", "add curl")
	return root
}

// ServeCatalog serves content at CatalogPath until the test ends.
func ServeCatalog(t *testing.T, content string) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != CatalogPath {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(content))
	}))
	t.Cleanup(server.Close)
	return server.URL
}
