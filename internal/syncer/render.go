package syncer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/flemzord/modesync/internal/mode"
	"gopkg.in/yaml.v3"
)

// foldWidth is the length above which text is written as a folded block.
const foldWidth = 80

// Render produces the target document: a customModes list with one entry
// per definition, in order, each stamped with source.
func Render(defs []*mode.Definition, source string) ([]byte, error) {
	list := &yaml.Node{Kind: yaml.SequenceNode}
	for _, def := range defs {
		list.Content = append(list.Content, modeNode(def, source))
	}

	doc := &yaml.Node{
		Kind: yaml.DocumentNode,
		Content: []*yaml.Node{{
			Kind:    yaml.MappingNode,
			Content: []*yaml.Node{plain("customModes"), list},
		}},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("syncer: rendering modes: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("syncer: rendering modes: %w", err)
	}
	return buf.Bytes(), nil
}

func modeNode(def *mode.Definition, source string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		n.Content = append(n.Content, plain(key), value)
	}

	add("slug", plain(def.Slug))
	add("name", text(def.Name))
	add("roleDefinition", text(def.RoleDefinition))
	if def.WhenToUse != "" {
		add("whenToUse", text(def.WhenToUse))
	}
	if def.CustomInstructions != "" {
		add("customInstructions", text(def.CustomInstructions))
	}

	groups := &yaml.Node{Kind: yaml.SequenceNode}
	for _, g := range def.Groups {
		groups.Content = append(groups.Content, groupNode(g))
	}
	add("groups", groups)
	add("source", plain(source))
	return n
}

func groupNode(g mode.Group) *yaml.Node {
	if g.Restriction == nil {
		return plain(g.Name)
	}
	r := &yaml.Node{Kind: yaml.MappingNode}
	r.Content = append(r.Content, plain("fileRegex"), str(g.Restriction.FileRegex, 0))
	if g.Restriction.Description != "" {
		r.Content = append(r.Content, plain("description"), text(g.Restriction.Description))
	}
	return &yaml.Node{Kind: yaml.SequenceNode, Content: []*yaml.Node{plain(g.Name), r}}
}

// text styles free-form prose: folded when multiline or long, double
// quoted when it contains a colon or a double quote.
func text(s string) *yaml.Node {
	switch {
	case strings.Contains(s, "\n") || len(s) > foldWidth:
		return str(strings.TrimSpace(s), yaml.FoldedStyle)
	case strings.ContainsAny(s, `:"`):
		return str(s, yaml.DoubleQuotedStyle)
	default:
		return str(s, 0)
	}
}

func plain(s string) *yaml.Node { return str(s, 0) }

func str(s string, style yaml.Style) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: style}
}
