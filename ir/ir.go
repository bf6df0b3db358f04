// Package ir translates parsed CloudFormation property values into a typed
// intermediate representation.
//
// The engine walks a template.Value tree and, at every nesting level,
// consults the resource specification to decide whether a value is a simple
// scalar/collection or a complex structure with declared sub-properties.
// Intrinsic functions (Ref, Fn::If, Fn::Join, Fn::GetAtt, Fn::FindInMap,
// Fn::Sub) are resolved into IR-native forms along the way; substitution
// templates decompose into ordered literal and reference fragments.
//
// The produced Node tree is a pure function of the input value and the
// specification context: no node depends on sibling nodes, and translation
// performs no I/O.
package ir

import (
	"encoding/json"

	"github.com/roblaks/noctilucent/spec"
)

// Node is one node of the translated intermediate representation. It is a
// closed sum; downstream generators dispatch on the concrete type.
type Node interface {
	json.Marshaler
	isNode()
}

// Null is a null leaf.
type Null struct{}

// Bool is a boolean leaf.
type Bool bool

// Number is an integer leaf.
type Number int64

// Double is a floating-point leaf.
type Double float64

// String is a string leaf.
type String string

// Array carries the complexity that produced it so the generator can decide
// emission shape. Elements inherit the array's complexity unchanged; arrays
// do not introduce new nesting levels in the specification.
type Array struct {
	Complexity spec.Complexity
	Items      []Node
}

// Object carries the complexity that produced it. Under a Simple complexity
// the object is a schema-free container; under a Complex one every key was
// independently re-classified against the declared sub-properties.
type Object struct {
	Complexity spec.Complexity
	Props      map[string]Node
}

// If is a resolved Fn::If: a condition name and two translated branches.
type If struct {
	Condition string
	WhenTrue  Node
	WhenFalse Node
}

// Join is a resolved Fn::Join. Values keep source order.
type Join struct {
	Delimiter string
	Values    []Node
}

// GetAtt is a resolved Fn::GetAtt. Attribute paths are opaque strings.
type GetAtt struct {
	LogicalName string
	Attribute   string
}

// Sub is a resolved Fn::Sub: the ordered fragment sequence, each element a
// literal String or the resolved reference/override value, interleaved
// exactly as in the template string.
type Sub []Node

// FindInMap is a resolved Fn::FindInMap. All three operands may themselves
// be translated expressions.
type FindInMap struct {
	MapName   Node
	TopKey    Node
	SecondKey Node
}

func (Null) isNode()      {}
func (Bool) isNode()      {}
func (Number) isNode()    {}
func (Double) isNode()    {}
func (String) isNode()    {}
func (Array) isNode()     {}
func (Object) isNode()    {}
func (If) isNode()        {}
func (Join) isNode()      {}
func (Reference) isNode() {}
func (GetAtt) isNode()    {}
func (Sub) isNode()       {}
func (FindInMap) isNode() {}

// MarshalJSON renders null.
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// MarshalJSON renders the boolean literal.
func (b Bool) MarshalJSON() ([]byte, error) { return json.Marshal(bool(b)) }

// MarshalJSON renders the integer literal.
func (n Number) MarshalJSON() ([]byte, error) { return json.Marshal(int64(n)) }

// MarshalJSON renders the floating-point literal.
func (d Double) MarshalJSON() ([]byte, error) { return json.Marshal(float64(d)) }

// MarshalJSON renders the string literal.
func (s String) MarshalJSON() ([]byte, error) { return json.Marshal(string(s)) }

// MarshalJSON renders the element list. The complexity tag is a translation
// artifact and is not serialized.
func (a Array) MarshalJSON() ([]byte, error) {
	if a.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.Items)
}

// MarshalJSON renders the property map.
func (o Object) MarshalJSON() ([]byte, error) { return json.Marshal(o.Props) }

// MarshalJSON renders {"Fn::If": [condition, true, false]}.
func (i If) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]any{"Fn::If": {i.Condition, i.WhenTrue, i.WhenFalse}})
}

// MarshalJSON renders {"Fn::Join": [delimiter, [values...]]}.
func (j Join) MarshalJSON() ([]byte, error) {
	values := j.Values
	if values == nil {
		values = []Node{}
	}
	return json.Marshal(map[string][]any{"Fn::Join": {j.Delimiter, values}})
}

// MarshalJSON renders {"Fn::GetAtt": [logical name, attribute]}.
func (g GetAtt) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]string{"Fn::GetAtt": {g.LogicalName, g.Attribute}})
}

// MarshalJSON renders {"Fn::Sub": [fragments...]}, the resolved form.
func (s Sub) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]Node{"Fn::Sub": s})
}

// MarshalJSON renders {"Fn::FindInMap": [map, top key, second key]}.
func (f FindInMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]Node{"Fn::FindInMap": {f.MapName, f.TopKey, f.SecondKey}})
}
