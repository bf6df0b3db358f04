package ir

import (
	"fmt"

	"github.com/roblaks/noctilucent/spec"
	"github.com/roblaks/noctilucent/template"
)

// Context carries the accumulated schema state through the recursion: the
// current property's complexity, the qualified property-type name when that
// complexity is Complex, the owning resource type, and borrowed handles to
// the specification and the template. Contexts are small values; descending
// into a nested complex property derives a fresh one, never mutates the
// parent's.
type Context struct {
	tree         *template.ParseTree
	spec         *spec.Spec
	resourceType string
	complexity   spec.Complexity
	propertyType string
}

// NewContext builds the initial context for translating one top-level
// property of a resource.
func NewContext(tree *template.ParseTree, db *spec.Spec, resourceType string, complexity spec.Complexity) Context {
	return Context{
		tree:         tree,
		spec:         db,
		resourceType: resourceType,
		complexity:   complexity,
		propertyType: spec.FullPropertyTypeName(complexity, resourceType),
	}
}

// descend derives the child context for a nested property.
func (c Context) descend(complexity spec.Complexity) Context {
	child := c
	child.complexity = complexity
	child.propertyType = spec.FullPropertyTypeName(complexity, c.resourceType)
	return child
}

// Translate converts one raw property value into IR under the given context.
// Translation is short-circuiting: the first structural violation anywhere
// in the subtree aborts with a descriptive error.
func Translate(value template.Value, ctx Context) (Node, error) {
	switch v := value.(type) {
	case template.Null:
		return Null{}, nil
	case template.Bool:
		return Bool(v), nil
	case template.Long:
		return Number(v), nil
	case template.Double:
		return Double(v), nil
	case template.String:
		return String(v), nil

	case template.Sequence:
		// Arrays inherit the complexity unchanged; the specification has no
		// nesting level for list elements.
		items := make([]Node, 0, len(v))
		for _, elem := range v {
			node, err := Translate(elem, ctx)
			if err != nil {
				return nil, err
			}
			items = append(items, node)
		}
		return Array{Complexity: ctx.complexity, Items: items}, nil

	case template.Mapping:
		return translateMapping(v, ctx)

	case template.If:
		cond, ok := v.Predicate.(template.String)
		if !ok {
			return nil, &IntrinsicError{Fn: "Fn::If", Reason: "condition must be a string"}
		}
		whenTrue, err := Translate(v.WhenTrue, ctx)
		if err != nil {
			return nil, err
		}
		whenFalse, err := Translate(v.WhenFalse, ctx)
		if err != nil {
			return nil, err
		}
		return If{Condition: string(cond), WhenTrue: whenTrue, WhenFalse: whenFalse}, nil

	case template.Join:
		if len(v) == 0 {
			return nil, &IntrinsicError{Fn: "Fn::Join", Reason: "separator is missing"}
		}
		sep, ok := v[0].(template.String)
		if !ok {
			return nil, &IntrinsicError{Fn: "Fn::Join", Reason: "separator must be a string"}
		}
		values := make([]Node, 0, len(v)-1)
		for _, elem := range v[1:] {
			node, err := Translate(elem, ctx)
			if err != nil {
				return nil, err
			}
			values = append(values, node)
		}
		return Join{Delimiter: string(sep), Values: values}, nil

	case template.GetAtt:
		name, ok := v.LogicalName.(template.String)
		if !ok {
			return nil, &IntrinsicError{Fn: "Fn::GetAtt", Reason: "logical name must be a string"}
		}
		attr, ok := v.Attribute.(template.String)
		if !ok {
			return nil, &IntrinsicError{Fn: "Fn::GetAtt", Reason: "attribute must be a string"}
		}
		return GetAtt{LogicalName: string(name), Attribute: string(attr)}, nil

	case template.FindInMap:
		mapName, err := Translate(v.MapName, ctx)
		if err != nil {
			return nil, err
		}
		topKey, err := Translate(v.TopKey, ctx)
		if err != nil {
			return nil, err
		}
		secondKey, err := Translate(v.SecondKey, ctx)
		if err != nil {
			return nil, err
		}
		return FindInMap{MapName: mapName, TopKey: topKey, SecondKey: secondKey}, nil

	case template.Ref:
		return Resolve(string(v), ctx.tree), nil

	case template.Sub:
		return translateSub(v, ctx)
	}
	return nil, fmt.Errorf("unsupported value shape %T", value)
}

// translateMapping handles the two object cases: a Simple object is a
// schema-free container whose values keep the ambient context, while a
// Complex object re-classifies every key against its declared sub-property.
func translateMapping(m template.Mapping, ctx Context) (Node, error) {
	props := make(map[string]Node, len(m))

	switch ctx.complexity.Kind() {
	case spec.KindSimple:
		for key, value := range m {
			node, err := Translate(value, ctx)
			if err != nil {
				return nil, err
			}
			props[key] = node
		}

	case spec.KindComplex:
		rules, err := ctx.spec.PropertiesOf(ctx.propertyType)
		if err != nil {
			return nil, err
		}
		for key, value := range m {
			rule, ok := rules[key]
			if !ok {
				return nil, &spec.LookupError{ResourceType: ctx.propertyType, PropertyPath: key}
			}
			node, err := Translate(value, ctx.descend(rule.Complexity()))
			if err != nil {
				return nil, err
			}
			props[key] = node
		}
	}

	return Object{Complexity: ctx.complexity, Props: props}, nil
}

// translateSub resolves a substitution: the first operand is the template
// string, further operands are override objects merged left to right with
// later keys winning. Override values are translated eagerly under the
// ambient context; variable fragments with no override resolve by reference.
func translateSub(v template.Sub, ctx Context) (Node, error) {
	if len(v) == 0 {
		return nil, &IntrinsicError{Fn: "Fn::Sub", Reason: "template string is missing"}
	}
	tmpl, ok := v[0].(template.String)
	if !ok {
		return nil, &IntrinsicError{Fn: "Fn::Sub", Reason: "template must be a string"}
	}

	overrides := make(map[string]Node)
	for _, operand := range v[1:] {
		obj, ok := operand.(template.Mapping)
		if !ok {
			return nil, &IntrinsicError{Fn: "Fn::Sub", Reason: "variable overrides must be an object"}
		}
		for key, value := range obj {
			node, err := Translate(value, ctx)
			if err != nil {
				return nil, err
			}
			overrides[key] = node
		}
	}

	frags, err := template.ParseSub(string(tmpl))
	if err != nil {
		return nil, err
	}

	parts := make(Sub, 0, len(frags))
	for _, frag := range frags {
		switch frag := frag.(type) {
		case template.Literal:
			parts = append(parts, String(frag))
		case template.Variable:
			if node, ok := overrides[string(frag)]; ok {
				parts = append(parts, node)
			} else {
				parts = append(parts, Resolve(string(frag), ctx.tree))
			}
		}
	}
	return parts, nil
}
