package ports

import "context"

// BuildDefinitionLocatorPort maps a package name to the path of its build
// definition, relative to the source-tree root.
type BuildDefinitionLocatorPort interface {
	Locate(ctx context.Context, name string) (string, error)
}
