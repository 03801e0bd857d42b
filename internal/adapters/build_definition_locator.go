package adapters

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"pkgs-web/internal/ports"
	"pkgs-web/internal/types"
)

// DefaultBuildScriptsDir is the subdirectory of the source tree that holds
// build definitions.
const DefaultBuildScriptsDir = "build-scripts"

// packageDeclaration matches `[export ]NAME=list` where NAME contains
// PACKAGE, e.g. PACKAGES=(foo foo-dev) or export _PACKAGE="foo".
var packageDeclaration = regexp.MustCompile(`^\s*(?:export\s+)?[A-Za-z0-9_]*PACKAGE[A-Za-z0-9_]*\+?=(.*)$`)

// BuildDefinitionLocatorAdapter finds build definitions below Root/Subdir.
// The tree is indexed on first use and reused for every lookup.
type BuildDefinitionLocatorAdapter struct {
	Root   string
	Subdir string

	once  sync.Once
	index locatorIndex
	err   error
}

// locatorIndex maps a package name to the lexicographically first file that
// matches it, by base name and by package declaration.
type locatorIndex struct {
	byFilename    map[string]string
	byDeclaration map[string]string
}

func NewBuildDefinitionLocatorAdapter(root string, subdir string) *BuildDefinitionLocatorAdapter {
	return &BuildDefinitionLocatorAdapter{Root: root, Subdir: subdir}
}

func (a *BuildDefinitionLocatorAdapter) Locate(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", types.NewPipelineError(types.FailureLocator, name, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package name is empty"))
	}
	index, err := a.load(ctx)
	if err != nil {
		return "", types.NewPipelineError(types.FailureLocator, name, err)
	}
	if rel, ok := index.byFilename[name]; ok {
		log.Ctx(ctx).Debug().Str("package", name).Str("path", rel).Msg("build definition matched by filename")
		return rel, nil
	}
	if rel, ok := index.byDeclaration[name]; ok {
		log.Ctx(ctx).Debug().Str("package", name).Str("path", rel).Msg("build definition matched by package declaration")
		return rel, nil
	}
	return "", types.NewPipelineError(types.FailureLocator, name, errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("no build definition found for %s", name)))
}

// load scans the search directory once and indexes every regular file by
// base name and by the packages it declares. Files are visited in sorted
// order so the first match wins.
func (a *BuildDefinitionLocatorAdapter) load(ctx context.Context) (locatorIndex, error) {
	a.once.Do(func() {
		files, err := a.scan()
		if err != nil {
			a.err = err
			return
		}
		a.index = buildLocatorIndex(ctx, a.Root, files)
	})
	return a.index, a.err
}

func buildLocatorIndex(ctx context.Context, root string, files []string) locatorIndex {
	index := locatorIndex{
		byFilename:    make(map[string]string, len(files)),
		byDeclaration: make(map[string]string),
	}
	for _, rel := range files {
		base := path.Base(rel)
		if _, seen := index.byFilename[base]; !seen {
			index.byFilename[base] = rel
		}
		declared, err := declaredPackages(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			log.Ctx(ctx).Debug().Str("path", rel).Err(err).Msg("skipping unreadable build definition")
			continue
		}
		for _, name := range declared {
			if _, seen := index.byDeclaration[name]; !seen {
				index.byDeclaration[name] = rel
			}
		}
	}
	log.Ctx(ctx).Debug().
		Int("files", len(files)).
		Int("declared", len(index.byDeclaration)).
		Msg("indexed build definitions")
	return index
}

func (a *BuildDefinitionLocatorAdapter) scan() ([]string, error) {
	if strings.TrimSpace(a.Root) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("source root is empty")
	}
	searchDir := filepath.Join(a.Root, filepath.FromSlash(a.Subdir))
	info, err := os.Stat(searchDir)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("build definition directory %s is not readable", searchDir)).
			WithCause(err)
	}
	if !info.IsDir() {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("build definition directory %s is not a directory", searchDir))
	}

	var files []string
	err = filepath.WalkDir(searchDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(a.Root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to scan %s", searchDir)).
			WithCause(err)
	}
	sort.Strings(files)
	return files, nil
}

// declaredPackages returns the members of every package declaration line in
// the file, in order of appearance.
func declaredPackages(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var out []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		match := packageDeclaration.FindStringSubmatch(scanner.Text())
		if match == nil {
			continue
		}
		out = append(out, declarationMembers(match[1])...)
	}
	return out, scanner.Err()
}

func declarationMembers(value string) []string {
	if idx := strings.Index(value, " #"); idx >= 0 {
		value = value[:idx]
	}
	return strings.FieldsFunc(value, func(r rune) bool {
		switch r {
		case ' ', '\t', ',', '(', ')', '"', '\'':
			return true
		default:
			return false
		}
	})
}

var _ ports.BuildDefinitionLocatorPort = (*BuildDefinitionLocatorAdapter)(nil)
