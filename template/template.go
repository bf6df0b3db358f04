// Package template parses CloudFormation YAML/JSON documents into a tree of
// Value nodes ready for type-directed translation.
//
// Both intrinsic spellings are supported and produce identical trees:
//
//	BucketName: !Sub "${Prefix}-bucket"
//	BucketName: {"Fn::Sub": "${Prefix}-bucket"}
//
// Resource declaration order is preserved: the parser walks yaml.v3 nodes
// rather than decoding into Go maps.
package template

import (
	"fmt"
	"os"
)

// Parameter is a declared template parameter. Translation only consults the
// name, but the commonly present declaration fields are retained so callers
// can report on them.
type Parameter struct {
	Name        string
	Type        string
	Description string
	Default     Value
}

// Resource is a single declared resource.
type Resource struct {
	Name       string
	Type       string
	Condition  string
	DependsOn  []string
	Metadata   Value
	Properties map[string]Value
}

// ParseTree is a parsed CloudFormation template. Resources keep their
// document declaration order; the remaining sections are name-keyed.
type ParseTree struct {
	Description string
	Parameters  map[string]Parameter
	Mappings    map[string]Value
	Conditions  map[string]Value
	Resources   []Resource
}

// HasParameter reports whether the template declares a parameter with the
// given name.
func (t *ParseTree) HasParameter(name string) bool {
	_, ok := t.Parameters[name]
	return ok
}

// Resource returns the declared resource with the given logical ID, or nil.
func (t *ParseTree) Resource(name string) *Resource {
	for i := range t.Resources {
		if t.Resources[i].Name == name {
			return &t.Resources[i]
		}
	}
	return nil
}

// ParseFile reads and parses a template document from disk.
func ParseFile(path string) (*ParseTree, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return Parse(content)
}
