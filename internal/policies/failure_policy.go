package policies

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"pkgs-web/internal/types"
)

// FailurePolicy decides whether a per-package failure ends the run.
type FailurePolicy struct {
	Mode types.FailureMode
}

func NewFailurePolicy(mode types.FailureMode) FailurePolicy {
	if mode == "" {
		mode = types.FailureModeAllOrNothing
	}
	return FailurePolicy{Mode: mode}
}

// ParseFailureMode accepts the CLI spelling of a failure mode. An empty
// value selects all-or-nothing.
func ParseFailureMode(value string) (types.FailureMode, error) {
	switch types.FailureMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", types.FailureModeAllOrNothing:
		return types.FailureModeAllOrNothing, nil
	case types.FailureModeBestEffort:
		return types.FailureModeBestEffort, nil
	default:
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown failure policy %q (want %s or %s)", value, types.FailureModeAllOrNothing, types.FailureModeBestEffort))
	}
}

// ShouldAbort reports whether a failure of the given kind stops the whole
// run. A broken checkout affects every package and always aborts.
func (p FailurePolicy) ShouldAbort(kind types.FailureKind) bool {
	switch kind {
	case types.FailureCheckout, types.FailureUnknown:
		return true
	case types.FailureLocator, types.FailureExtractor:
		return p.Mode != types.FailureModeBestEffort
	default:
		return true
	}
}
