package store

import (
	"bytes"
	"fmt"

	"github.com/Davincible/shamirstore/pkg/errkind"
	"gopkg.in/yaml.v3"
)

var ErrMalformed = errkind.New(errkind.Serialization, "malformed store")

const (
	strTag  = "!!str"
	mapTag  = "!!map"
	nullTag = "!!null"
)

func strNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: strTag, Value: value}
}

// Marshal renders the store as YAML with two-space indentation:
//
//	section:
//	  key: value
//
// Values are always strings; ones that YAML would read as another type are
// quoted. Empty sections render as "section: {}".
func Marshal(s *Store) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: mapTag}
	for _, name := range s.order {
		sec := s.sections[name]

		body := &yaml.Node{Kind: yaml.MappingNode, Tag: mapTag}
		if len(sec.keys) == 0 {
			body.Style = yaml.FlowStyle
		}
		for _, k := range sec.keys {
			body.Content = append(body.Content, strNode(k), strNode(sec.entries[k]))
		}
		root.Content = append(root.Content, strNode(name), body)
	}

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, errkind.Wrap(errkind.Serialization, "failed to encode store", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errkind.Wrap(errkind.Serialization, "failed to encode store", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal parses text produced by Marshal, keeping file order. An empty
// document is an empty store and a null section is an empty section. Scalar
// values of any YAML type are read as their literal text.
func Unmarshal(data []byte) (*Store, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	s := New()
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return s, nil
	}

	root := doc.Content[0]
	switch {
	case root.Kind == yaml.ScalarNode && root.ShortTag() == nullTag:
		return s, nil
	case root.Kind != yaml.MappingNode:
		return nil, malformed(root, "top level must be a mapping of sections")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, body := root.Content[i], root.Content[i+1]

		name, err := scalarKey(keyNode)
		if err != nil {
			return nil, err
		}
		if s.HasSection(name) {
			return nil, malformed(keyNode, fmt.Sprintf("duplicate section %q", name))
		}
		if name == "" {
			return nil, malformed(keyNode, "empty section name")
		}
		s.section(name)

		switch {
		case body.Kind == yaml.ScalarNode && body.ShortTag() == nullTag:
			continue
		case body.Kind == yaml.AliasNode:
			return nil, malformed(body, "aliases are not supported")
		case body.Kind != yaml.MappingNode:
			return nil, malformed(body, fmt.Sprintf("section %q must be a mapping", name))
		}

		sec := s.sections[name]
		for j := 0; j+1 < len(body.Content); j += 2 {
			entryKey, entryValue := body.Content[j], body.Content[j+1]

			key, err := scalarKey(entryKey)
			if err != nil {
				return nil, err
			}
			if key == "" {
				return nil, malformed(entryKey, fmt.Sprintf("empty key in section %q", name))
			}
			if _, dup := sec.entries[key]; dup {
				return nil, malformed(entryKey, fmt.Sprintf("duplicate key %q in section %q", key, name))
			}

			switch entryValue.Kind {
			case yaml.ScalarNode:
				sec.set(key, entryValue.Value)
			case yaml.AliasNode:
				return nil, malformed(entryValue, "aliases are not supported")
			default:
				return nil, malformed(entryValue, fmt.Sprintf("%s.%s nests deeper than two levels", name, key))
			}
		}
	}

	return s, nil
}

func scalarKey(n *yaml.Node) (string, error) {
	switch {
	case n.Kind == yaml.AliasNode:
		return "", malformed(n, "aliases are not supported")
	case n.Kind != yaml.ScalarNode:
		return "", malformed(n, "keys must be scalars")
	case n.ShortTag() == "!!merge":
		return "", malformed(n, "merge keys are not supported")
	}
	return n.Value, nil
}

func malformed(n *yaml.Node, msg string) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformed, n.Line, msg)
}
