package ports

import "context"

// BuildScriptPort reads declared values out of a build definition without
// executing it.
type BuildScriptPort interface {
	// SourceURL returns the resolved URL= value of the build definition at
	// relPath, or "" when none is declared.
	SourceURL(ctx context.Context, relPath string) (string, error)
}

// HistoryPort answers version-control questions about the source tree.
type HistoryPort interface {
	// LastCommit returns the Unix time of the newest commit touching relPath.
	LastCommit(ctx context.Context, relPath string) (int64, error)
}
