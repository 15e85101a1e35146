package mode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is the schema of a mode file and of each entry written to a
// target configuration.
type Definition struct {
	Slug               string  `yaml:"slug"`
	Name               string  `yaml:"name"`
	RoleDefinition     string  `yaml:"roleDefinition"`
	WhenToUse          string  `yaml:"whenToUse,omitempty"`
	CustomInstructions string  `yaml:"customInstructions,omitempty"`
	Groups             []Group `yaml:"groups"`

	// Source is set by the syncer ("global" or "project") and tolerated
	// when present in a mode file.
	Source string `yaml:"source,omitempty"`
}

// Mode returns the ordering view of the definition.
func (d *Definition) Mode(category Category) Mode {
	return Mode{
		Slug:        d.Slug,
		Category:    category,
		Name:        d.Name,
		Description: d.WhenToUse,
	}
}

// HasRequiredFields reports whether the fields needed to consider a file a
// mode definition at all are present. Full validation is done by Validate.
func (d *Definition) HasRequiredFields() bool {
	return d.Slug != "" && d.Name != "" && d.RoleDefinition != "" && len(d.Groups) > 0
}

// Group is a tool group granted to a mode: either a plain group name or
// an edit group restricted to files matching a regex.
type Group struct {
	Name        string
	Restriction *EditRestriction

	// shapeErr records a structural problem found while decoding so that
	// Validate can report it alongside the other findings.
	shapeErr error
}

// EditRestriction limits an edit group to matching files.
type EditRestriction struct {
	FileRegex   string `yaml:"fileRegex"`
	Description string `yaml:"description,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (g *Group) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		g.Name = node.Value
		return nil
	case yaml.SequenceNode:
		g.decodeRestricted(node)
		return nil
	default:
		g.shapeErr = fmt.Errorf("group at line %d must be a string or an array", node.Line)
		return nil
	}
}

func (g *Group) decodeRestricted(node *yaml.Node) {
	if len(node.Content) != 2 {
		g.shapeErr = fmt.Errorf("restricted group must have exactly 2 items, got %d", len(node.Content))
		return
	}
	head, body := node.Content[0], node.Content[1]
	if head.Kind != yaml.ScalarNode {
		g.shapeErr = errors.New("first item of a restricted group must be a group name")
		return
	}
	g.Name = head.Value
	if body.Kind != yaml.MappingNode {
		g.shapeErr = errors.New("second item of a restricted group must be an object")
		return
	}

	r := &EditRestriction{}
	var hasRegex bool
	var unexpected []string
	for i := 0; i+1 < len(body.Content); i += 2 {
		key, val := body.Content[i].Value, body.Content[i+1]
		switch key {
		case "fileRegex":
			if val.Kind != yaml.ScalarNode || val.ShortTag() != "!!str" {
				g.shapeErr = errors.New("fileRegex must be a string")
				return
			}
			r.FileRegex = val.Value
			hasRegex = true
		case "description":
			if val.Kind != yaml.ScalarNode || val.ShortTag() != "!!str" {
				g.shapeErr = errors.New("description must be a string")
				return
			}
			r.Description = val.Value
		default:
			unexpected = append(unexpected, key)
		}
	}
	if len(unexpected) > 0 {
		g.shapeErr = fmt.Errorf("unexpected properties in restricted group: %s", strings.Join(unexpected, ", "))
		return
	}
	if !hasRegex {
		g.shapeErr = errors.New("restricted group must have a fileRegex property")
		return
	}
	g.Restriction = r
}

// MarshalYAML implements yaml.Marshaler.
func (g Group) MarshalYAML() (any, error) {
	if g.Restriction == nil {
		return g.Name, nil
	}
	return []any{g.Name, g.Restriction}, nil
}

// LoadDefinition reads and strictly decodes a mode file. Unknown keys are
// rejected. Schema rules are checked separately by Validate.
func LoadDefinition(path string) (*Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mode: reading %s: %w", path, err)
	}
	return ParseDefinition(raw, path)
}

// ParseDefinition strictly decodes a mode definition from raw YAML. name
// is used in error messages only.
func ParseDefinition(raw []byte, name string) (*Definition, error) {
	return decodeDefinition(raw, name, true)
}

// PeekDefinition decodes a mode definition without rejecting unknown keys.
// Discovery uses it to decide whether a file is a mode file at all.
func PeekDefinition(raw []byte, name string) (*Definition, error) {
	return decodeDefinition(raw, name, false)
}

func decodeDefinition(raw []byte, name string, strict bool) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(strict)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("mode: %s: empty file", name)
		}
		return nil, fmt.Errorf("mode: parsing %s: %w", name, err)
	}
	return &def, nil
}
