package app

import (
	"time"

	"pkgs-web/internal/adapters"
	"pkgs-web/internal/ports"
)

// Service wires the pipeline. Adapters bound to a source tree or an output
// directory are created per request through the factory fields.
type Service struct {
	Catalog       ports.CatalogSourcePort
	Runner        ports.CommandRunnerPort
	RecordWriter  ports.RecordWriterPort
	NewLocator    func(root string, subdir string) ports.BuildDefinitionLocatorPort
	NewScripts    func(root string) ports.BuildScriptPort
	NewHistory    func(root string, runner ports.CommandRunnerPort) ports.HistoryPort
	NewSiteWriter func(dir string, templateDir string) ports.SiteWriterPort
	Clock         func() time.Time
}

func NewService() Service {
	return Service{
		Catalog:      adapters.NewCatalogHTTPAdapter(),
		Runner:       adapters.NewExecRunner(),
		RecordWriter: adapters.NewRecordFileAdapter(),
		NewLocator: func(root string, subdir string) ports.BuildDefinitionLocatorPort {
			return adapters.NewBuildDefinitionLocatorAdapter(root, subdir)
		},
		NewScripts: func(root string) ports.BuildScriptPort {
			return adapters.NewBuildScriptAdapter(root)
		},
		NewHistory: func(root string, runner ports.CommandRunnerPort) ports.HistoryPort {
			return adapters.NewGitHistoryAdapter(root, runner)
		},
		NewSiteWriter: func(dir string, templateDir string) ports.SiteWriterPort {
			return adapters.NewSiteWriterAdapter(dir, templateDir)
		},
		Clock: time.Now,
	}
}
