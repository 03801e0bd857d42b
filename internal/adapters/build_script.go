package adapters

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"

	"pkgs-web/internal/ports"
	"pkgs-web/internal/types"
)

const sourceURLVar = "URL"

// BuildScriptAdapter reads the URL= declaration of a shell build definition.
// Only plain variable assignments up to the URL= line are evaluated; commands
// are never run and command substitution is refused. A definition whose URL
// cannot be evaluated yields an empty source url.
type BuildScriptAdapter struct {
	Root string
}

func NewBuildScriptAdapter(root string) BuildScriptAdapter {
	return BuildScriptAdapter{Root: root}
}

func (a BuildScriptAdapter) SourceURL(ctx context.Context, relPath string) (string, error) {
	data, err := os.ReadFile(filepath.Join(a.Root, filepath.FromSlash(relPath)))
	if err != nil {
		return "", types.NewPipelineError(types.FailureExtractor, "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("failed to read build definition %s", relPath)).
			WithCause(err))
	}
	prefix, ok := cutAtSourceURL(data)
	if !ok {
		return "", nil
	}
	file, err := syntax.NewParser().Parse(bytes.NewReader(prefix), relPath)
	if err != nil {
		log.Ctx(ctx).Warn().Str("path", relPath).Err(err).Msg("cannot parse build definition, leaving source url empty")
		return "", nil
	}
	vars := scriptVars{}
	for _, stmt := range file.Stmts {
		for _, assign := range stmtAssigns(stmt) {
			if err := vars.apply(assign); err != nil {
				if assign.Name.Value == sourceURLVar {
					log.Ctx(ctx).Warn().Str("path", relPath).Err(err).Msg("cannot evaluate URL, leaving source url empty")
					return "", nil
				}
				log.Ctx(ctx).Debug().
					Str("path", relPath).
					Str("variable", assign.Name.Value).
					Err(err).
					Msg("skipping assignment that cannot be evaluated")
			}
		}
	}
	return vars[sourceURLVar], nil
}

// cutAtSourceURL returns the script up to and including the first line that
// starts with URL=.
func cutAtSourceURL(data []byte) ([]byte, bool) {
	var out bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		out.WriteString(line)
		out.WriteByte('\n')
		if strings.HasPrefix(line, sourceURLVar+"=") {
			return out.Bytes(), true
		}
	}
	return nil, false
}

// stmtAssigns returns the assignments a top-level statement performs when it
// is nothing but assignments, or a declaration builtin.
func stmtAssigns(stmt *syntax.Stmt) []*syntax.Assign {
	if stmt.Negated || stmt.Background || stmt.Coprocess {
		return nil
	}
	var assigns []*syntax.Assign
	switch cmd := stmt.Cmd.(type) {
	case *syntax.CallExpr:
		if len(cmd.Args) > 0 {
			return nil
		}
		assigns = cmd.Assigns
	case *syntax.DeclClause:
		switch cmd.Variant.Value {
		case "export", "declare", "typeset", "readonly", "local":
			assigns = cmd.Args
		}
	}
	out := assigns[:0:0]
	for _, assign := range assigns {
		if assign.Name == nil || assign.Naked || assign.Index != nil || assign.Array != nil {
			continue
		}
		out = append(out, assign)
	}
	return out
}

// scriptVars holds the variables assigned so far.
type scriptVars map[string]string

func (v scriptVars) environ() expand.Environ {
	pairs := make([]string, 0, len(v))
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pairs = append(pairs, name+"="+v[name])
	}
	return expand.ListEnviron(pairs...)
}

func (v scriptVars) apply(assign *syntax.Assign) error {
	value := ""
	if assign.Value != nil {
		cfg := &expand.Config{Env: v.environ()}
		expanded, err := expand.Literal(cfg, assign.Value)
		if err != nil {
			return err
		}
		value = expanded
	}
	name := assign.Name.Value
	if assign.Append {
		value = v[name] + value
	}
	v[name] = value
	return nil
}

var _ ports.BuildScriptPort = BuildScriptAdapter{}
