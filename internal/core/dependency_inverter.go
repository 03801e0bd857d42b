package core

import (
	"pkgs-web/internal/shared"
	"pkgs-web/internal/types"
)

// InvertDependencies maps every package to the packages that list it in
// depends. Every catalog name is present, with an empty slice when nothing
// depends on it; names that are only referenced get an entry as well.
func InvertDependencies(catalog types.Catalog) types.ReverseIndex {
	reverse := make(types.ReverseIndex, len(catalog))
	for name := range catalog {
		reverse[name] = nil
	}
	for name, record := range catalog {
		for _, dep := range record.Depends {
			reverse[dep] = append(reverse[dep], name)
		}
	}
	for name, dependents := range reverse {
		reverse[name] = shared.UniqueSorted(dependents)
	}
	return reverse
}
