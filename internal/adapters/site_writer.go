package adapters

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/docker/go-units"
	"gopkg.in/yaml.v3"

	"pkgs-web/internal/ports"
	"pkgs-web/internal/shared"
	"pkgs-web/internal/types"
)

const (
	packageTemplateName = "package-template.html"
	frontPageName       = "front-page.html"
	cssDirName          = "css"
	timestampLayout     = "2006-01-02T15:04:05Z"
)

//go:embed templates
var embeddedTemplates embed.FS

// SiteWriterAdapter renders enriched records into a static site below
// <Dir>/www. TemplateDir, when set, replaces the embedded templates and
// stylesheets.
type SiteWriterAdapter struct {
	Dir         string
	TemplateDir string
}

func NewSiteWriterAdapter(dir string, templateDir string) SiteWriterAdapter {
	return SiteWriterAdapter{Dir: dir, TemplateDir: templateDir}
}

type packagePage struct {
	Name                string
	Version             string
	Repo                string
	LastUpdate          string
	LastCommit          string
	DownloadSize        string
	InstallSize         string
	SourceURL           string
	BuildScriptLocation string
	Depends             []string
	MakeDepends         []string
	ReverseDepends      []string
}

type frontPage struct {
	Packages []packagePage
}

func (a SiteWriterAdapter) Prepare() error {
	if _, err := a.ensureDir("packages"); err != nil {
		return err
	}
	source, err := a.templateFS()
	if err != nil {
		return err
	}
	cssDir, err := a.ensureDir(cssDirName)
	if err != nil {
		return err
	}
	err = fs.WalkDir(source, cssDirName, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, cssDirName), "/")
		target := filepath.Join(cssDir, filepath.FromSlash(rel))
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := fs.ReadFile(source, p)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0644)
	})
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to copy stylesheets").
			WithCause(err)
	}
	return nil
}

func (a SiteWriterAdapter) WritePackagePages(set types.EnrichedSet) error {
	tmpl, err := a.parseTemplate(packageTemplateName)
	if err != nil {
		return err
	}
	dir, err := a.ensureDir("packages")
	if err != nil {
		return err
	}
	for _, name := range shared.SortedKeys(set) {
		if err := validatePageName(name); err != nil {
			return err
		}
		if err := renderFile(tmpl, filepath.Join(dir, name+".html"), newPackagePage(set[name])); err != nil {
			return err
		}
	}
	return nil
}

func (a SiteWriterAdapter) WriteHomePage(latest []types.EnrichedRecord) error {
	tmpl, err := a.parseTemplate(frontPageName)
	if err != nil {
		return err
	}
	dir, err := a.ensureDir("")
	if err != nil {
		return err
	}
	page := frontPage{Packages: make([]packagePage, 0, len(latest))}
	for _, record := range latest {
		page.Packages = append(page.Packages, newPackagePage(record))
	}
	return renderFile(tmpl, filepath.Join(dir, "homepage.html"), page)
}

func (a SiteWriterAdapter) WriteIndex(set types.EnrichedSet) error {
	dir, err := a.ensureDir("")
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(set)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode package index").
			WithCause(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "packages.yaml"), data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write package index").
			WithCause(err)
	}
	return nil
}

func (a SiteWriterAdapter) templateFS() (fs.FS, error) {
	if strings.TrimSpace(a.TemplateDir) != "" {
		info, err := os.Stat(a.TemplateDir)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("template directory %s is not readable", a.TemplateDir)).
				WithCause(err)
		}
		if !info.IsDir() {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("template directory %s is not a directory", a.TemplateDir))
		}
		return os.DirFS(a.TemplateDir), nil
	}
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("embedded templates are missing").
			WithCause(err)
	}
	return sub, nil
}

func (a SiteWriterAdapter) parseTemplate(name string) (*template.Template, error) {
	source, err := a.templateFS()
	if err != nil {
		return nil, err
	}
	tmpl, err := template.ParseFS(source, name)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to parse template %s", name)).
			WithCause(err)
	}
	return tmpl, nil
}

func (a SiteWriterAdapter) ensureDir(sub string) (string, error) {
	if strings.TrimSpace(a.Dir) == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	dir := filepath.Join(a.Dir, "www", sub)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return dir, nil
}

func renderFile(tmpl *template.Template, target string, data any) error {
	file, err := os.Create(target)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to create %s", target)).
			WithCause(err)
	}
	if err := tmpl.Execute(file, data); err != nil {
		file.Close()
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to render %s", target)).
			WithCause(err)
	}
	return file.Close()
}

// validatePageName rejects names that would escape the packages directory.
func validatePageName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`+"\x00") || path.Base(name) != name {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("package name %q cannot be used as a file name", name))
	}
	return nil
}

func newPackagePage(record types.EnrichedRecord) packagePage {
	return packagePage{
		Name:                record.Name,
		Version:             record.Version,
		Repo:                record.Repo,
		LastUpdate:          formatTimestamp(record.LastUpdate),
		LastCommit:          formatTimestamp(record.LastCommit),
		DownloadSize:        formatKilobytes(record.DownloadSize),
		InstallSize:         formatKilobytes(record.InstallSize),
		SourceURL:           record.SourceURL,
		BuildScriptLocation: record.BuildScriptLocation,
		Depends:             record.Depends,
		MakeDepends:         record.MakeDepends,
		ReverseDepends:      record.ReverseDepends,
	}
}

func formatTimestamp(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(timestampLayout)
}

func formatKilobytes(kb int64) string {
	return units.BytesSize(float64(kb) * 1024)
}

var _ ports.SiteWriterPort = SiteWriterAdapter{}
