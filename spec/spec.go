// Package spec provides read-only access to the AWS CloudFormation Resource
// Specification: the database mapping resource-type and property-type names
// to their declared properties and each property's complexity.
//
// The document format is the published CloudFormation specification JSON
// (ResourceTypes / PropertyTypes, each property carrying PrimitiveType,
// Type, ItemType, PrimitiveItemType). A compact built-in specification
// covering common services ships embedded; the full document can be loaded
// from a file.
package spec

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// Property is one declared property of a resource type or property type.
type Property struct {
	Documentation     string `json:"Documentation,omitempty"`
	PrimitiveType     string `json:"PrimitiveType,omitempty"`
	Type              string `json:"Type,omitempty"`
	ItemType          string `json:"ItemType,omitempty"`
	PrimitiveItemType string `json:"PrimitiveItemType,omitempty"`
	Required          bool   `json:"Required,omitempty"`
}

// Complexity derives the property's classification from its declared type
// fields. A property is Complex exactly when it (or its List/Map item type)
// names another property type in the specification.
func (p Property) Complexity() Complexity {
	switch {
	case p.PrimitiveType != "":
		return Simple(p.PrimitiveType)
	case p.Type == "List" || p.Type == "Map":
		if p.PrimitiveItemType != "" {
			return Simple(p.PrimitiveItemType)
		}
		if p.ItemType != "" {
			return Complex(p.ItemType)
		}
		return Simple("Json")
	case p.Type != "":
		return Complex(p.Type)
	default:
		return Simple("Json")
	}
}

// TypeDef is the declared property set of a resource type or property type.
type TypeDef struct {
	Documentation string              `json:"Documentation,omitempty"`
	Properties    map[string]Property `json:"Properties,omitempty"`
}

// Spec is the resource-type specification database. It is immutable after
// loading; lookups never mutate it, so a single Spec may be shared by any
// number of concurrent translation passes.
type Spec struct {
	ResourceSpecificationVersion string              `json:"ResourceSpecificationVersion,omitempty"`
	ResourceTypes                map[string]*TypeDef `json:"ResourceTypes"`
	PropertyTypes                map[string]*TypeDef `json:"PropertyTypes"`
}

// ResourceType returns the declaration of a resource type.
func (s *Spec) ResourceType(name string) (*TypeDef, error) {
	def, ok := s.ResourceTypes[name]
	if !ok {
		return nil, &LookupError{ResourceType: name}
	}
	return def, nil
}

// ComplexityOf returns the complexity classification of a top-level property
// of a resource type.
func (s *Spec) ComplexityOf(resourceType, property string) (Complexity, error) {
	def, err := s.ResourceType(resourceType)
	if err != nil {
		return Complexity{}, err
	}
	prop, ok := def.Properties[property]
	if !ok {
		return Complexity{}, &LookupError{ResourceType: resourceType, PropertyPath: property}
	}
	return prop.Complexity(), nil
}

// PropertiesOf returns the declared sub-properties of a property type, keyed
// by the qualified names used in the specification document (for example
// "AWS::S3::Bucket.VersioningConfiguration", or the global "Tag").
func (s *Spec) PropertiesOf(typeName string) (map[string]Property, error) {
	def, ok := s.PropertyTypes[typeName]
	if !ok || def.Properties == nil {
		return nil, &LookupError{ResourceType: typeName}
	}
	return def.Properties, nil
}

// Load parses a CloudFormation specification document.
func Load(r io.Reader) (*Spec, error) {
	var s Spec
	dec := json.NewDecoder(r)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse specification: %w", err)
	}
	if s.ResourceTypes == nil {
		s.ResourceTypes = make(map[string]*TypeDef)
	}
	if s.PropertyTypes == nil {
		s.PropertyTypes = make(map[string]*TypeDef)
	}
	return &s, nil
}

// LoadFile reads and parses a specification document from disk.
func LoadFile(path string) (*Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open specification: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Load(f)
}

//go:embed builtin_spec.json
var builtinSpec []byte

var (
	builtinOnce sync.Once
	builtin     *Spec
	builtinErr  error
)

// Builtin returns the embedded specification subset. It covers the resource
// types commonly seen in templates; load the full published document with
// LoadFile when broader coverage is needed.
func Builtin() (*Spec, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = Load(bytes.NewReader(builtinSpec))
	})
	return builtin, builtinErr
}
