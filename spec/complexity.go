package spec

// Kind classifies a property as schema-free or structured.
type Kind int

const (
	// KindSimple marks a scalar/collection property with no declared
	// sub-properties of its own.
	KindSimple Kind = iota
	// KindComplex marks a property whose value is a nested structure with
	// its own declared sub-properties.
	KindComplex
)

// Complexity is a property's specification-driven classification. A Complex
// complexity always carries the nested property-type name; a Simple one may
// carry the primitive type name for diagnostics.
type Complexity struct {
	kind     Kind
	typeName string
}

// Simple returns a Simple complexity. The primitive name is informational.
func Simple(primitive string) Complexity {
	return Complexity{kind: KindSimple, typeName: primitive}
}

// Complex returns a Complex complexity for the given property-type name.
func Complex(typeName string) Complexity {
	return Complexity{kind: KindComplex, typeName: typeName}
}

// Kind returns the classification tag.
func (c Complexity) Kind() Kind { return c.kind }

// IsComplex reports whether the property has declared sub-properties.
func (c Complexity) IsComplex() bool { return c.kind == KindComplex }

// TypeName returns the nested property-type name for Complex, or the
// primitive name (possibly empty) for Simple.
func (c Complexity) TypeName() string { return c.typeName }

func (c Complexity) String() string {
	if c.kind == KindComplex {
		return "Complex(" + c.typeName + ")"
	}
	if c.typeName == "" {
		return "Simple"
	}
	return "Simple(" + c.typeName + ")"
}

// FullPropertyTypeName qualifies a Complex complexity's type name with its
// owning resource type, matching the specification's PropertyTypes keys
// (e.g. "AWS::S3::Bucket.VersioningConfiguration"). The Tag property type is
// global and stays unqualified. Simple complexities have no property type;
// the result is empty.
func FullPropertyTypeName(c Complexity, resourceType string) string {
	if !c.IsComplex() {
		return ""
	}
	if c.typeName == "Tag" {
		return "Tag"
	}
	return resourceType + "." + c.typeName
}
