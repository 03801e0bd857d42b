package adapters

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"pkgs-web/internal/types"
)

// ParseCatalog decodes a packages.yaml document. Malformed entries are
// logged and skipped; a document with no valid entry is an error. When
// repoName is set it becomes the Repo of every record.
func ParseCatalog(ctx context.Context, data []byte, repoName string) (types.Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, types.NewPipelineError(types.FailureCatalogFormat, "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("catalog is not a valid YAML document").
			WithCause(err))
	}
	root := documentRoot(&doc)
	if root == nil {
		return nil, emptyCatalogError(0)
	}
	if root.Kind != yaml.MappingNode {
		return nil, types.NewPipelineError(types.FailureCatalogFormat, "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("catalog root must map package names to fields, got %s", nodeKindName(root))))
	}

	logger := log.Ctx(ctx)
	catalog := types.Catalog{}
	skipped := 0
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode := resolveAlias(root.Content[i])
		name := ""
		if keyNode.Kind == yaml.ScalarNode {
			name = keyNode.Value
		}
		record, err := decodeCatalogEntry(name, keyNode, root.Content[i+1], repoName)
		if err != nil {
			skipped++
			logger.Warn().
				Str("package", name).
				Str("kind", string(types.FailureEntryFormat)).
				Err(err).
				Msg("skipping malformed catalog entry")
			continue
		}
		catalog[name] = record
	}
	if len(catalog) == 0 {
		return nil, emptyCatalogError(skipped)
	}
	logger.Info().Int("records", len(catalog)).Int("skipped", skipped).Msg("catalog loaded")
	return catalog, nil
}

func emptyCatalogError(skipped int) error {
	return types.NewPipelineError(types.FailureEmptyCatalog, "", errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("catalog contains no valid packages (%d malformed entries skipped)", skipped)))
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	node := doc
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		node = node.Content[0]
	}
	node = resolveAlias(node)
	if node == nil || node.Kind == 0 || isNull(node) {
		return nil
	}
	return node
}

func decodeCatalogEntry(name string, keyNode *yaml.Node, valueNode *yaml.Node, repoName string) (types.CatalogRecord, error) {
	problems := &types.EntryError{Package: name}
	if keyNode.Kind != yaml.ScalarNode {
		problems.Problems = append(problems.Problems, types.FieldProblem{Field: "name", Problem: "package name must be a string"})
	} else if strings.TrimSpace(name) == "" {
		problems.Problems = append(problems.Problems, types.FieldProblem{Field: "name", Problem: "must not be empty"})
	}
	node := resolveAlias(valueNode)
	if node.Kind != yaml.MappingNode {
		problems.Problems = append(problems.Problems, types.FieldProblem{
			Field:   "entry",
			Problem: fmt.Sprintf("expected a mapping of fields, got %s", nodeKindName(node)),
		})
		return types.CatalogRecord{}, problems
	}

	fields := map[string]*yaml.Node{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		fields[resolveAlias(node.Content[i]).Value] = resolveAlias(node.Content[i+1])
	}
	schema := entrySchema{fields: fields, problems: problems}
	record := types.CatalogRecord{
		Name:         name,
		Version:      schema.text("version"),
		DownloadSize: schema.size("download_size"),
		InstallSize:  schema.size("install_size"),
		LastUpdate:   schema.integer("last_update"),
		Depends:      schema.textList("depends"),
		MakeDepends:  schema.textList("make_depends"),
	}
	documentRepo := schema.text("repo")
	if len(problems.Problems) > 0 {
		return types.CatalogRecord{}, problems
	}
	record.Repo = strings.TrimSpace(repoName)
	if record.Repo == "" {
		record.Repo = documentRepo
	}
	return record, nil
}

// entrySchema checks one field at a time and records every problem instead
// of stopping at the first.
type entrySchema struct {
	fields   map[string]*yaml.Node
	problems *types.EntryError
}

func (s entrySchema) fail(field string, format string, args ...any) {
	s.problems.Problems = append(s.problems.Problems, types.FieldProblem{
		Field:   field,
		Problem: fmt.Sprintf(format, args...),
	})
}

func (s entrySchema) lookup(field string) (*yaml.Node, bool) {
	node, ok := s.fields[field]
	if !ok {
		s.fail(field, "missing")
	}
	return node, ok
}

func (s entrySchema) text(field string) string {
	node, ok := s.lookup(field)
	if !ok {
		return ""
	}
	if node.Kind != yaml.ScalarNode || isNull(node) {
		s.fail(field, "expected a string, got %s", nodeKindName(node))
		return ""
	}
	return node.Value
}

func (s entrySchema) integer(field string) int64 {
	node, ok := s.lookup(field)
	if !ok {
		return 0
	}
	if node.Kind != yaml.ScalarNode {
		s.fail(field, "expected an integer, got %s", nodeKindName(node))
		return 0
	}
	switch node.ShortTag() {
	case "!!int":
		var value int64
		if err := node.Decode(&value); err != nil {
			s.fail(field, "not a valid integer: %v", err)
			return 0
		}
		return value
	case "!!str":
		// Quoted numbers are accepted as long as they parse as base 10.
		value, err := strconv.ParseInt(strings.TrimSpace(node.Value), 10, 64)
		if err != nil {
			s.fail(field, "expected an integer, got string %q", node.Value)
			return 0
		}
		return value
	default:
		s.fail(field, "expected an integer, got %s", nodeKindName(node))
		return 0
	}
}

func (s entrySchema) size(field string) int64 {
	before := len(s.problems.Problems)
	value := s.integer(field)
	if len(s.problems.Problems) == before && value < 0 {
		s.fail(field, "must not be negative")
	}
	return value
}

func (s entrySchema) textList(field string) []string {
	node, ok := s.lookup(field)
	if !ok {
		return nil
	}
	if isNull(node) {
		return []string{}
	}
	if node.Kind != yaml.SequenceNode {
		s.fail(field, "expected a list of strings, got %s", nodeKindName(node))
		return nil
	}
	out := make([]string, 0, len(node.Content))
	for i, item := range node.Content {
		item = resolveAlias(item)
		if item.Kind != yaml.ScalarNode || isNull(item) {
			s.fail(field, "item %d: expected a string, got %s", i, nodeKindName(item))
			continue
		}
		out = append(out, item.Value)
	}
	return out
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}

func nodeKindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "list"
	case yaml.ScalarNode:
		if isNull(node) {
			return "null"
		}
		return strings.TrimPrefix(node.ShortTag(), "!!")
	default:
		return "unknown node"
	}
}
