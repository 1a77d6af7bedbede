// Package selectorfile reads selector documents from YAML. Mapping order is
// kept, so constraints reach the builder in the order they were written.
//
//	url: http://127.0.0.1:8080/pages/forms
//	kind: text_field
//	within:
//	  selector: {id: signup}
//	selector:
//	  label: First name
//	  class_name: /^name-\d+$/i
//	  index: 0
package selectorfile

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"element-locator/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

// Document is one lookup: a selector of some kind, optionally inside a
// scope described the same way.
type Document struct {
	URL      string
	Kind     entity.Kind
	Selector entity.Selector
	Within   *Document
}

// Chain returns the scopes from the outermost down to d itself.
func (d *Document) Chain() []*Document {
	var chain []*Document
	for cur := d; cur != nil; cur = cur.Within {
		chain = append([]*Document{cur}, chain...)
	}
	return chain
}

type rawDocument struct {
	URL      string       `yaml:"url"`
	Kind     string       `yaml:"kind"`
	Selector yaml.Node    `yaml:"selector"`
	Within   *rawDocument `yaml:"within"`
}

func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read selector file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Document, error) {
	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse selector yaml: %w", err)
	}
	return convert(&raw)
}

func convert(raw *rawDocument) (*Document, error) {
	doc := &Document{URL: raw.URL, Kind: entity.KindElement}
	if raw.Kind != "" {
		kind, ok := entity.ParseKind(raw.Kind)
		if !ok {
			return nil, fmt.Errorf("unknown kind %q", raw.Kind)
		}
		doc.Kind = kind
	}

	sel, err := ParseSelector(&raw.Selector)
	if err != nil {
		return nil, err
	}
	doc.Selector = sel

	if raw.Within != nil {
		within, err := convert(raw.Within)
		if err != nil {
			return nil, fmt.Errorf("within: %w", err)
		}
		doc.Within = within
	}
	return doc, nil
}

// ParseSelector converts a YAML mapping into a Selector. Integers become
// ints, booleans bools, "/src/flags" strings regexps, everything else a
// string. An empty node is the empty selector.
func ParseSelector(node *yaml.Node) (entity.Selector, error) {
	sel := entity.NewSelector()
	if node == nil || node.Kind == 0 {
		return sel, nil
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return sel, fmt.Errorf("line %d: selector must be a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return sel, fmt.Errorf("line %d: value of %q must be a scalar", val.Line, key.Value)
		}
		v, err := scalar(val)
		if err != nil {
			return sel, fmt.Errorf("line %d: %s: %w", val.Line, key.Value, err)
		}
		sel.Set(key.Value, v)
	}
	return sel, nil
}

func scalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!int":
		return strconv.Atoi(n.Value)
	case "!!bool":
		return strconv.ParseBool(n.Value)
	case "!!str":
		if re, ok, err := regexpLiteral(n.Value); ok || err != nil {
			return re, err
		}
	}
	return n.Value, nil
}

var regexpFlags = regexp.MustCompile(`^/(.*)/([imsU]*)$`)

func regexpLiteral(s string) (*regexp.Regexp, bool, error) {
	m := regexpFlags.FindStringSubmatch(s)
	if m == nil || len(s) < 2 {
		return nil, false, nil
	}
	src := m[1]
	if m[2] != "" {
		src = "(?" + m[2] + ")" + src
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, true, fmt.Errorf("bad regexp %s: %w", s, err)
	}
	return re, true, nil
}

// Format renders a selector back to the YAML flow form used in docs.
func Format(sel entity.Selector) string {
	parts := make([]string, 0, sel.Len())
	for _, c := range sel.Constraints() {
		parts = append(parts, c.Key+": "+entity.FormatValue(c.Value))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
