package template

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse parses a CloudFormation template document. JSON templates are
// accepted too since yaml.v3 parses JSON natively.
func Parse(content []byte) (*ParseTree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse template document: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("template document is empty")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("template document must be a mapping")
	}

	tree := &ParseTree{
		Parameters: make(map[string]Parameter),
		Mappings:   make(map[string]Value),
		Conditions: make(map[string]Value),
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		val := root.Content[i+1]

		var err error
		switch key {
		case "Description":
			tree.Description = val.Value
		case "Parameters":
			err = parseParameters(tree, val)
		case "Mappings":
			err = parseSection(tree.Mappings, val)
		case "Conditions":
			err = parseSection(tree.Conditions, val)
		case "Resources":
			err = parseResources(tree, val)
		}
		if err != nil {
			return nil, err
		}
	}

	return tree, nil
}

func parseParameters(tree *ParseTree, node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("Parameters section must be a mapping")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		body := node.Content[i+1]
		param := Parameter{Name: name}
		if body.Kind == yaml.MappingNode {
			for j := 0; j+1 < len(body.Content); j += 2 {
				switch body.Content[j].Value {
				case "Type":
					param.Type = body.Content[j+1].Value
				case "Description":
					param.Description = body.Content[j+1].Value
				case "Default":
					v, err := decodeValue(body.Content[j+1])
					if err != nil {
						return fmt.Errorf("parameter %s: %w", name, err)
					}
					param.Default = v
				}
			}
		}
		tree.Parameters[name] = param
	}
	return nil
}

func parseSection(dst map[string]Value, node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("section must be a mapping")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		v, err := decodeValue(node.Content[i+1])
		if err != nil {
			return fmt.Errorf("%s: %w", node.Content[i].Value, err)
		}
		dst[node.Content[i].Value] = v
	}
	return nil
}

func parseResources(tree *ParseTree, node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("Resources section must be a mapping")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		body := node.Content[i+1]
		if body.Kind != yaml.MappingNode {
			return fmt.Errorf("resource %s must be a mapping", name)
		}

		res := Resource{Name: name, Properties: make(map[string]Value)}
		for j := 0; j+1 < len(body.Content); j += 2 {
			key := body.Content[j].Value
			val := body.Content[j+1]
			switch key {
			case "Type":
				res.Type = val.Value
			case "Condition":
				res.Condition = val.Value
			case "DependsOn":
				switch val.Kind {
				case yaml.ScalarNode:
					res.DependsOn = []string{val.Value}
				case yaml.SequenceNode:
					for _, dep := range val.Content {
						res.DependsOn = append(res.DependsOn, dep.Value)
					}
				}
			case "Metadata":
				v, err := decodeValue(val)
				if err != nil {
					return fmt.Errorf("resource %s: %w", name, err)
				}
				res.Metadata = v
			case "Properties":
				if val.Kind != yaml.MappingNode {
					return fmt.Errorf("resource %s: Properties must be a mapping", name)
				}
				for k := 0; k+1 < len(val.Content); k += 2 {
					propName := val.Content[k].Value
					v, err := decodeValue(val.Content[k+1])
					if err != nil {
						return fmt.Errorf("resource %s, property %s: %w", name, propName, err)
					}
					res.Properties[propName] = v
				}
			}
		}
		if res.Type == "" {
			return fmt.Errorf("resource %s has no Type", name)
		}
		tree.Resources = append(tree.Resources, res)
	}
	return nil
}

// shortTags maps YAML short tags to their long-form intrinsic names.
var shortTags = map[string]string{
	"!Ref":       "Ref",
	"!Sub":       "Fn::Sub",
	"!Join":      "Fn::Join",
	"!GetAtt":    "Fn::GetAtt",
	"!FindInMap": "Fn::FindInMap",
	"!If":        "Fn::If",
}

// intrinsicKeys is the set of long-form mapping keys recognized as intrinsics.
var intrinsicKeys = map[string]bool{
	"Ref":           true,
	"Fn::Sub":       true,
	"Fn::Join":      true,
	"Fn::GetAtt":    true,
	"Fn::FindInMap": true,
	"Fn::If":        true,
}

func decodeValue(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return decodeValue(n.Alias)

	case yaml.ScalarNode:
		if name, ok := shortTags[n.Tag]; ok {
			return makeIntrinsic(name, String(n.Value))
		}
		return decodeScalar(n)

	case yaml.SequenceNode:
		items := make(Sequence, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := decodeValue(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		if name, ok := shortTags[n.Tag]; ok {
			return makeIntrinsic(name, items)
		}
		return items, nil

	case yaml.MappingNode:
		// A single-key mapping whose key is an intrinsic name is the
		// long-form spelling of that intrinsic.
		if len(n.Content) == 2 {
			key := n.Content[0].Value
			if intrinsicKeys[key] {
				arg, err := decodeValue(n.Content[1])
				if err != nil {
					return nil, err
				}
				return makeIntrinsic(key, arg)
			}
			if strings.HasPrefix(key, "Fn::") {
				return nil, fmt.Errorf("unsupported intrinsic function %q", key)
			}
		}
		m := make(Mapping, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := decodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[n.Content[i].Value] = v
		}
		return m, nil
	}
	return nil, fmt.Errorf("unexpected node kind %d", n.Kind)
}

func decodeScalar(n *yaml.Node) (Value, error) {
	switch n.Tag {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q", n.Value)
		}
		return Bool(b), nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", n.Value)
		}
		return Long(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", n.Value)
		}
		return Double(f), nil
	default:
		return String(n.Value), nil
	}
}

// makeIntrinsic builds an intrinsic Value from its long-form name and its
// already-decoded argument. Only argument arity is checked here; operand
// types are enforced during translation.
func makeIntrinsic(name string, arg Value) (Value, error) {
	switch name {
	case "Ref":
		s, ok := arg.(String)
		if !ok {
			return nil, fmt.Errorf("Ref target must be a string")
		}
		return Ref(s), nil

	case "Fn::Sub":
		switch a := arg.(type) {
		case String:
			return Sub{a}, nil
		case Sequence:
			if len(a) == 0 {
				return nil, fmt.Errorf("Fn::Sub expects a template string")
			}
			return Sub(a), nil
		}
		return nil, fmt.Errorf("Fn::Sub expects a string or a list")

	case "Fn::Join":
		a, ok := arg.(Sequence)
		if !ok || len(a) == 0 {
			return nil, fmt.Errorf("Fn::Join expects [separator, values]")
		}
		join := Join{a[0]}
		// Standard spelling nests the operands in a second list element;
		// a flat argument list is accepted too.
		if len(a) == 2 {
			if nested, ok := a[1].(Sequence); ok {
				return append(join, nested...), nil
			}
		}
		return append(join, a[1:]...), nil

	case "Fn::GetAtt":
		switch a := arg.(type) {
		case String:
			parts := strings.SplitN(string(a), ".", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("Fn::GetAtt %q is not of the form Resource.Attribute", string(a))
			}
			return GetAtt{LogicalName: String(parts[0]), Attribute: String(parts[1])}, nil
		case Sequence:
			if len(a) != 2 {
				return nil, fmt.Errorf("Fn::GetAtt expects [logical name, attribute]")
			}
			return GetAtt{LogicalName: a[0], Attribute: a[1]}, nil
		}
		return nil, fmt.Errorf("Fn::GetAtt expects a string or a pair")

	case "Fn::FindInMap":
		a, ok := arg.(Sequence)
		if !ok || len(a) != 3 {
			return nil, fmt.Errorf("Fn::FindInMap expects [map, top key, second key]")
		}
		return FindInMap{MapName: a[0], TopKey: a[1], SecondKey: a[2]}, nil

	case "Fn::If":
		a, ok := arg.(Sequence)
		if !ok || len(a) != 3 {
			return nil, fmt.Errorf("Fn::If expects [condition, value if true, value if false]")
		}
		return If{Predicate: a[0], WhenTrue: a[1], WhenFalse: a[2]}, nil
	}
	return nil, fmt.Errorf("unsupported intrinsic function %q", name)
}
