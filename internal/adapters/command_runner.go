package adapters

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"pkgs-web/internal/ports"
	"pkgs-web/internal/shared"
)

// ExecRunner runs programs with os/exec. Stdout is returned; stderr is
// folded into the error on failure.
type ExecRunner struct{}

func NewExecRunner() ExecRunner {
	return ExecRunner{}
}

func (ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("%s command failed", name)).
			WithCause(shared.CommandError(stderr.Bytes(), err))
	}
	return stdout.Bytes(), nil
}

var _ ports.CommandRunnerPort = ExecRunner{}
