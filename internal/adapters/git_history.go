package adapters

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"pkgs-web/internal/ports"
	"pkgs-web/internal/types"
)

// GitHistoryAdapter reads commit times from the git checkout at Root.
type GitHistoryAdapter struct {
	Root   string
	Runner ports.CommandRunnerPort

	once        sync.Once
	checkoutErr error
}

func NewGitHistoryAdapter(root string, runner ports.CommandRunnerPort) *GitHistoryAdapter {
	if runner == nil {
		runner = NewExecRunner()
	}
	return &GitHistoryAdapter{Root: root, Runner: runner}
}

func (a *GitHistoryAdapter) LastCommit(ctx context.Context, relPath string) (int64, error) {
	if err := a.ensureCheckout(ctx); err != nil {
		return 0, err
	}
	output, err := a.Runner.Run(ctx, "", "git", "-C", a.Root, "log", "-1", "--format=%ct", "--", relPath)
	if err != nil {
		return 0, types.NewPipelineError(types.FailureExtractor, "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to read history of %s", relPath)).
			WithCause(err))
	}
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return 0, types.NewPipelineError(types.FailureExtractor, "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("no history for %s", relPath)))
	}
	timestamp, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, types.NewPipelineError(types.FailureExtractor, "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("unexpected commit time %q for %s", trimmed, relPath)).
			WithCause(err))
	}
	return timestamp, nil
}

// ensureCheckout verifies once that Root is inside a git work tree.
func (a *GitHistoryAdapter) ensureCheckout(ctx context.Context) error {
	a.once.Do(func() {
		output, err := a.Runner.Run(ctx, "", "git", "-C", a.Root, "rev-parse", "--is-inside-work-tree")
		if err == nil && strings.TrimSpace(string(output)) == "true" {
			log.Ctx(ctx).Debug().Str("path", a.Root).Msg("source tree is a git checkout")
			return
		}
		builder := errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("%s is not a git checkout", a.Root))
		if err != nil {
			builder = builder.WithCause(err)
		}
		a.checkoutErr = types.NewPipelineError(types.FailureCheckout, "", builder)
	})
	return a.checkoutErr
}

var _ ports.HistoryPort = (*GitHistoryAdapter)(nil)
