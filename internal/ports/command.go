package ports

import "context"

// CommandRunnerPort runs an external program and returns its stdout.
type CommandRunnerPort interface {
	Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}
