// Package document is the acquisition boundary for hierarchical documents.
//
// The tree engine consumes generic document values (ordered mappings,
// sequences, scalars); this package produces them from YAML or JSON bytes.
// Decoding preserves mapping key order by walking the yaml AST instead of
// unmarshaling into plain maps, so property order in the rendered tree
// follows the source document.
package document

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/treescope/treescope/pkg/cache"
	"github.com/treescope/treescope/pkg/errors"
	"github.com/treescope/treescope/pkg/tree"
)

// Decode parses YAML (or JSON) bytes into a generic document value suitable
// for [tree.Build]: mappings become ordered [tree.Mapping] values, sequences
// []any, scalars their natural Go types.
//
// Empty input returns ErrCodeEmptyDocument; the caller decides whether to
// treat that as the sentinel empty tree or a user error.
func Decode(data []byte) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "parse document")
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyDocument, "document is empty")
	}
	return convert(root.Content[0])
}

// Load reads and decodes a document file.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read %s", path)
	}
	return Decode(data)
}

// ContentHash returns the cache-key hash for raw document bytes.
func ContentHash(data []byte) string {
	return cache.Hash(data)
}

// convert turns a yaml AST node into the generic document representation.
func convert(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		m := make(tree.Mapping, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			val, err := convert(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m = append(m, tree.Field{Key: key, Value: val})
		}
		return m, nil

	case yaml.SequenceNode:
		seq := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := convert(c)
			if err != nil {
				return nil, err
			}
			seq = append(seq, val)
		}
		return seq, nil

	case yaml.ScalarNode:
		return scalarValue(n), nil

	case yaml.AliasNode:
		if n.Alias != nil {
			return convert(n.Alias)
		}
		return nil, nil

	default:
		return nil, errors.New(errors.ErrCodeInvalidDocument, "unsupported yaml node kind %d", n.Kind)
	}
}

// scalarValue resolves a scalar node to its natural Go type. Unresolvable
// values fall back to the raw string; the builder stringifies everything for
// display anyway.
func scalarValue(n *yaml.Node) any {
	switch n.Tag {
	case "!!null":
		return nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return n.Value
		}
		return b
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return n.Value
		}
		return i
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return n.Value
		}
		return f
	default:
		return n.Value
	}
}

// Describe returns a short human-readable shape summary for logging, e.g.
// "mapping(4 keys)" or "sequence(12)".
func Describe(doc any) string {
	switch v := doc.(type) {
	case tree.Mapping:
		return fmt.Sprintf("mapping(%d keys)", len(v))
	case map[string]any:
		return fmt.Sprintf("mapping(%d keys)", len(v))
	case []any:
		return fmt.Sprintf("sequence(%d)", len(v))
	case nil:
		return "absent"
	default:
		return "scalar"
	}
}
