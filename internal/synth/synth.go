// Package synth renders translated resource instructions as Terraform
// configuration. The mapping is structural: CloudFormation types become
// provider-prefixed resource types, property names become snake_case
// attributes, and intrinsic nodes become HCL expressions.
package synth

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/roblaks/noctilucent/ir"
	"github.com/roblaks/noctilucent/template"
)

// Synthesizer converts an instruction list into Terraform source files.
type Synthesizer struct {
	tree *template.ParseTree

	// addresses maps logical ids to Terraform resource addresses so that
	// references between resources can be rendered as traversals.
	addresses map[string]string

	// dataSources records which ambient data sources the rendered
	// expressions depend on, keyed by data source type.
	dataSources map[string]string
}

// New returns a Synthesizer for the given parse tree. The tree supplies
// parameter declarations for variables.tf; it may be nil when the caller
// only needs resource blocks.
func New(tree *template.ParseTree) *Synthesizer {
	return &Synthesizer{
		tree:        tree,
		addresses:   make(map[string]string),
		dataSources: make(map[string]string),
	}
}

// Synthesize renders the instructions and returns a map of filename to
// content: main.tf always, variables.tf when the template declares
// parameters.
func (s *Synthesizer) Synthesize(instructions []ir.Instruction) (map[string][]byte, error) {
	for _, inst := range instructions {
		s.addresses[inst.Name] = TerraformType(inst.ResourceType) + "." + SanitizeName(inst.Name)
	}

	var blocks [][]byte
	for i := range instructions {
		block, err := s.resourceBlock(&instructions[i])
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	out := make(map[string][]byte)

	var main bytes.Buffer
	if data := s.dataBlocks(); len(data) > 0 {
		main.Write(data)
		main.WriteString("\n")
	}
	for i, b := range blocks {
		if i > 0 {
			main.WriteString("\n")
		}
		main.Write(b)
	}
	out["main.tf"] = main.Bytes()

	if s.tree != nil && len(s.tree.Parameters) > 0 {
		out["variables.tf"] = s.variablesFile()
	}
	return out, nil
}

// resourceBlock renders one instruction as a resource block.
func (s *Synthesizer) resourceBlock(inst *ir.Instruction) ([]byte, error) {
	block := hclwrite.NewBlock("resource", []string{
		TerraformType(inst.ResourceType),
		SanitizeName(inst.Name),
	})
	body := block.Body()

	names := make([]string, 0, len(inst.Properties))
	for name := range inst.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		node := inst.Properties[name]
		attr := snakeCase(name)
		if val, ok := staticValue(node); ok {
			body.SetAttributeValue(attr, val)
			continue
		}
		if addr, ok := s.traversalFor(node); ok {
			body.SetAttributeTraversal(attr, refTraversal(addr))
			continue
		}
		expr, err := s.expression(node)
		if err != nil {
			return nil, fmt.Errorf("resource %s, property %s: %w", inst.Name, name, err)
		}
		body.SetAttributeRaw(attr, exprTokens(expr))
	}

	if inst.Condition != "" {
		body.SetAttributeRaw("count", exprTokens("local."+snakeCase(inst.Condition)+" ? 1 : 0"))
	}

	f := hclwrite.NewEmptyFile()
	f.Body().AppendBlock(block)
	return f.Bytes(), nil
}

// dataBlocks emits one empty data block per ambient data source used by
// the rendered expressions, in stable order.
func (s *Synthesizer) dataBlocks() []byte {
	if len(s.dataSources) == 0 {
		return nil
	}
	types := make([]string, 0, len(s.dataSources))
	for t := range s.dataSources {
		types = append(types, t)
	}
	sort.Strings(types)

	f := hclwrite.NewEmptyFile()
	for i, t := range types {
		if i > 0 {
			f.Body().AppendNewline()
		}
		f.Body().AppendBlock(hclwrite.NewBlock("data", []string{t, s.dataSources[t]}))
	}
	return f.Bytes()
}

// variablesFile renders one variable block per declared template parameter.
func (s *Synthesizer) variablesFile() []byte {
	names := make([]string, 0, len(s.tree.Parameters))
	for name := range s.tree.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	f := hclwrite.NewEmptyFile()
	for i, name := range names {
		param := s.tree.Parameters[name]
		if i > 0 {
			f.Body().AppendNewline()
		}
		block := hclwrite.NewBlock("variable", []string{name})
		body := block.Body()
		body.SetAttributeRaw("type", exprTokens(variableType(param.Type)))
		if param.Description != "" {
			body.SetAttributeValue("description", cty.StringVal(param.Description))
		}
		switch d := param.Default.(type) {
		case template.String:
			body.SetAttributeValue("default", cty.StringVal(string(d)))
		case template.Long:
			body.SetAttributeValue("default", cty.NumberIntVal(int64(d)))
		case template.Double:
			body.SetAttributeValue("default", cty.NumberFloatVal(float64(d)))
		case template.Bool:
			body.SetAttributeValue("default", cty.BoolVal(bool(d)))
		}
		f.Body().AppendBlock(block)
	}
	return f.Bytes()
}

// variableType maps a CloudFormation parameter type to a Terraform type
// expression.
func variableType(cfnType string) string {
	switch {
	case cfnType == "Number":
		return "number"
	case cfnType == "CommaDelimitedList" || strings.HasPrefix(cfnType, "List<"):
		return "list(string)"
	default:
		return "string"
	}
}

// staticValue converts a node with no intrinsic content to a cty value.
// The second return is false when the node (or any child) is an intrinsic
// and must be rendered as an expression instead.
func staticValue(node ir.Node) (cty.Value, bool) {
	switch n := node.(type) {
	case ir.Null:
		return cty.NullVal(cty.DynamicPseudoType), true
	case ir.Bool:
		return cty.BoolVal(bool(n)), true
	case ir.Number:
		return cty.NumberIntVal(int64(n)), true
	case ir.Double:
		return cty.NumberFloatVal(float64(n)), true
	case ir.String:
		return cty.StringVal(string(n)), true
	case ir.Array:
		if len(n.Items) == 0 {
			return cty.EmptyTupleVal, true
		}
		items := make([]cty.Value, len(n.Items))
		for i, item := range n.Items {
			val, ok := staticValue(item)
			if !ok {
				return cty.NilVal, false
			}
			items[i] = val
		}
		return cty.TupleVal(items), true
	case ir.Object:
		if len(n.Props) == 0 {
			return cty.EmptyObjectVal, true
		}
		props := make(map[string]cty.Value, len(n.Props))
		for key, prop := range n.Props {
			val, ok := staticValue(prop)
			if !ok {
				return cty.NilVal, false
			}
			props[objectKey(n, key)] = val
		}
		return cty.ObjectVal(props), true
	default:
		return cty.NilVal, false
	}
}

// objectKey renders schema-backed property names as snake_case attributes
// and leaves free-form map keys untouched.
func objectKey(obj ir.Object, key string) string {
	if obj.Complexity.IsComplex() {
		return snakeCase(key)
	}
	return key
}

// TerraformType maps a CloudFormation resource type to a provider-prefixed
// Terraform resource type, e.g. AWS::S3::Bucket to aws_s3_bucket.
func TerraformType(cfnType string) string {
	parts := strings.Split(cfnType, "::")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, snakeCase(part))
	}
	return strings.Join(out, "_")
}

// SanitizeName converts a logical id to a Terraform-safe identifier.
func SanitizeName(name string) string {
	return snakeCase(strings.ReplaceAll(name, "-", "_"))
}

// snakeCase converts CamelCase to snake_case, keeping acronym runs
// together (DBInstance becomes db_instance).
func snakeCase(s string) string {
	var sb strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			prevLower := i > 0 && isLower(runes[i-1])
			nextLower := i+1 < len(runes) && isLower(runes[i+1])
			if i > 0 && runes[i-1] != '_' && (prevLower || nextLower) {
				sb.WriteByte('_')
			}
			sb.WriteRune(r - 'A' + 'a')
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func isLower(r rune) bool { return r >= 'a' && r <= 'z' }

// refTraversal builds an hcl.Traversal from a dotted address.
func refTraversal(addr string) hcl.Traversal {
	var t hcl.Traversal
	for i, part := range strings.Split(addr, ".") {
		if i == 0 {
			t = append(t, hcl.TraverseRoot{Name: part})
			continue
		}
		t = append(t, hcl.TraverseAttr{Name: part})
	}
	return t
}

// traversalFor returns the dotted address for nodes that render as a plain
// traversal: parameter references, logical-id references, attribute access
// on another resource, and the pseudo parameters backed by data sources.
func (s *Synthesizer) traversalFor(node ir.Node) (string, bool) {
	switch n := node.(type) {
	case ir.Reference:
		switch n.Origin.Kind {
		case ir.OriginParameter:
			return "var." + n.Name, true
		case ir.OriginLogicalID:
			if addr, ok := s.addresses[n.Name]; ok {
				return addr + ".id", true
			}
			return "", false
		default:
			if addr, ok := s.pseudoAddress(n.Origin.Pseudo); ok {
				return addr, true
			}
			return "", false
		}
	case ir.GetAtt:
		if addr, ok := s.addresses[n.LogicalName]; ok {
			return addr + "." + snakeCase(n.Attribute), true
		}
		return "", false
	default:
		return "", false
	}
}
