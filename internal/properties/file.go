package properties

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a property file syntax.
type Format string

const (
	FormatProperties Format = "properties"
	FormatYAML       Format = "yaml"
	FormatTOML       Format = "toml"
)

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".properties":
		return FormatProperties, nil
	case ".yml", ".yaml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported property file extension: %q", filepath.Ext(path))
	}
}

// LoadFile reads a property file, choosing the parser by extension.
func LoadFile(path string) (Map, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open property file: %w", err)
	}
	defer f.Close()

	m, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("reading properties from %s: %w", path, err)
	}
	return m, nil
}

// Read parses properties in the given format. Nested YAML and TOML documents
// are flattened into dotted keys; list elements become "key[i]". YAML scalars
// keep their source text, so "1.0" stays "1.0".
func Read(r io.Reader, format Format) (Map, error) {
	switch format {
	case FormatProperties:
		return parseProperties(r)
	case FormatYAML:
		var doc yaml.Node
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to decode yaml: %w", err)
		}
		m := Map{}
		if err := flattenNode(m, "", &doc); err != nil {
			return nil, err
		}
		return m, nil
	case FormatTOML:
		var doc map[string]any
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode toml: %w", err)
		}
		m := Map{}
		flatten(m, "", doc)
		return m, nil
	default:
		return nil, fmt.Errorf("unknown property format: %q", format)
	}
}

func flatten(out Map, prefix string, v any) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			flatten(out, joinKey(prefix, k), child)
		}
	case []map[string]any:
		for i, child := range val {
			flatten(out, fmt.Sprintf("%s[%d]", prefix, i), child)
		}
	case []any:
		for i, child := range val {
			flatten(out, fmt.Sprintf("%s[%d]", prefix, i), child)
		}
	default:
		if prefix != "" {
			out[prefix] = scalarString(val)
		}
	}
}

// flattenNode is flatten for a decoded YAML document.
func flattenNode(out Map, prefix string, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, child := range n.Content {
			if err := flattenNode(out, prefix, child); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		// Merged keys first, so the mapping's own keys override them.
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.ShortTag() != "!!merge" {
				continue
			}
			merged := []*yaml.Node{v}
			if v.Kind == yaml.SequenceNode {
				merged = v.Content
			}
			for _, m := range merged {
				if err := flattenNode(out, prefix, m); err != nil {
					return err
				}
			}
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.ShortTag() == "!!merge" {
				continue
			}
			if err := flattenNode(out, joinKey(prefix, k.Value), v); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for i, child := range n.Content {
			if err := flattenNode(out, fmt.Sprintf("%s[%d]", prefix, i), child); err != nil {
				return err
			}
		}
	case yaml.AliasNode:
		if n.Alias == nil {
			return fmt.Errorf("line %d: unresolved yaml alias %q", n.Line, n.Value)
		}
		return flattenNode(out, prefix, n.Alias)
	case yaml.ScalarNode:
		if prefix == "" {
			return nil
		}
		if n.ShortTag() == "!!null" {
			out[prefix] = ""
		} else {
			out[prefix] = n.Value
		}
	}
	return nil
}

func joinKey(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + "." + k
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
