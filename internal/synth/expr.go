package synth

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/roblaks/noctilucent/ir"
)

// exprTokens wraps a rendered expression string for SetAttributeRaw.
func exprTokens(expr string) hclwrite.Tokens {
	return hclwrite.Tokens{
		{Type: hclsyntax.TokenIdent, Bytes: []byte(expr)},
	}
}

// pseudoAddress maps a pseudo parameter to the data source attribute that
// carries the same value, registering the data source for emission. Pseudo
// parameters with no Terraform counterpart report false and fall back to
// expression rendering.
func (s *Synthesizer) pseudoAddress(p ir.PseudoParameter) (string, bool) {
	switch p {
	case ir.PseudoAccountID:
		s.dataSources["aws_caller_identity"] = "current"
		return "data.aws_caller_identity.current.account_id", true
	case ir.PseudoRegion:
		s.dataSources["aws_region"] = "current"
		return "data.aws_region.current.name", true
	case ir.PseudoPartition:
		s.dataSources["aws_partition"] = "current"
		return "data.aws_partition.current.partition", true
	case ir.PseudoURLSuffix:
		s.dataSources["aws_partition"] = "current"
		return "data.aws_partition.current.dns_suffix", true
	default:
		return "", false
	}
}

// expression renders an IR node as HCL expression text. Leaves render as
// literals, references as traversals, and the remaining intrinsics as the
// closest native construct: join() calls, conditionals, template strings,
// and index expressions into locals.
func (s *Synthesizer) expression(node ir.Node) (string, error) {
	switch n := node.(type) {
	case ir.Null:
		return "null", nil
	case ir.Bool:
		return strconv.FormatBool(bool(n)), nil
	case ir.Number:
		return strconv.FormatInt(int64(n), 10), nil
	case ir.Double:
		return strconv.FormatFloat(float64(n), 'g', -1, 64), nil
	case ir.String:
		return quote(string(n)), nil
	case ir.Array:
		items := make([]string, len(n.Items))
		for i, item := range n.Items {
			expr, err := s.expression(item)
			if err != nil {
				return "", err
			}
			items[i] = expr
		}
		return "[" + strings.Join(items, ", ") + "]", nil
	case ir.Object:
		var sb strings.Builder
		sb.WriteString("{")
		first := true
		for _, key := range sortedKeys(n.Props) {
			expr, err := s.expression(n.Props[key])
			if err != nil {
				return "", err
			}
			if !first {
				sb.WriteString(", ")
			}
			first = false
			sb.WriteString(quote(objectKey(n, key)))
			sb.WriteString(" = ")
			sb.WriteString(expr)
		}
		sb.WriteString("}")
		return sb.String(), nil
	case ir.Reference:
		return s.referenceExpression(n)
	case ir.GetAtt:
		if addr, ok := s.addresses[n.LogicalName]; ok {
			return addr + "." + snakeCase(n.Attribute), nil
		}
		return "", fmt.Errorf("attribute access on undeclared resource %s", n.LogicalName)
	case ir.Join:
		values := make([]string, len(n.Values))
		for i, v := range n.Values {
			expr, err := s.expression(v)
			if err != nil {
				return "", err
			}
			values[i] = expr
		}
		return "join(" + quote(n.Delimiter) + ", [" + strings.Join(values, ", ") + "])", nil
	case ir.If:
		whenTrue, err := s.expression(n.WhenTrue)
		if err != nil {
			return "", err
		}
		whenFalse, err := s.expression(n.WhenFalse)
		if err != nil {
			return "", err
		}
		return "(local." + snakeCase(n.Condition) + " ? " + whenTrue + " : " + whenFalse + ")", nil
	case ir.Sub:
		return s.templateExpression(n)
	case ir.FindInMap:
		mapName, err := s.indexKey(n.MapName, true)
		if err != nil {
			return "", err
		}
		topKey, err := s.indexKey(n.TopKey, false)
		if err != nil {
			return "", err
		}
		secondKey, err := s.indexKey(n.SecondKey, false)
		if err != nil {
			return "", err
		}
		return "local." + mapName + "[" + topKey + "][" + secondKey + "]", nil
	default:
		return "", fmt.Errorf("no HCL rendering for %T", node)
	}
}

// referenceExpression renders a reference as a traversal, falling back to
// null for pseudo parameters that have no Terraform equivalent.
func (s *Synthesizer) referenceExpression(ref ir.Reference) (string, error) {
	switch ref.Origin.Kind {
	case ir.OriginParameter:
		return "var." + ref.Name, nil
	case ir.OriginLogicalID:
		if addr, ok := s.addresses[ref.Name]; ok {
			return addr + ".id", nil
		}
		return "", fmt.Errorf("reference to undeclared resource %s", ref.Name)
	default:
		if addr, ok := s.pseudoAddress(ref.Origin.Pseudo); ok {
			return addr, nil
		}
		if ref.Origin.Pseudo == ir.PseudoNoValue {
			return "null", nil
		}
		return "", fmt.Errorf("pseudo parameter %s has no Terraform equivalent", ref.Origin.Pseudo)
	}
}

// templateExpression renders a substitution as a quoted template string
// with native interpolation.
func (s *Synthesizer) templateExpression(sub ir.Sub) (string, error) {
	var sb strings.Builder
	sb.WriteString(`"`)
	for _, part := range sub {
		if str, ok := part.(ir.String); ok {
			sb.WriteString(escape(string(str)))
			continue
		}
		expr, err := s.expression(part)
		if err != nil {
			return "", err
		}
		sb.WriteString("${")
		sb.WriteString(expr)
		sb.WriteString("}")
	}
	sb.WriteString(`"`)
	return sb.String(), nil
}

// indexKey renders a FindInMap operand. The map name position becomes a
// local identifier when it is a plain string; key positions render as
// expressions.
func (s *Synthesizer) indexKey(node ir.Node, mapPosition bool) (string, error) {
	if mapPosition {
		if str, ok := node.(ir.String); ok {
			return snakeCase(string(str)), nil
		}
		return "", fmt.Errorf("mapping name must be a literal string, got %T", node)
	}
	return s.expression(node)
}

// quote renders a string as an HCL quoted literal.
func quote(s string) string {
	return `"` + escape(s) + `"`
}

// escape escapes quoted-template metacharacters, including interpolation
// openers.
func escape(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '$', '%':
			if i+1 < len(s) && s[i+1] == '{' {
				sb.WriteByte(c)
				sb.WriteByte(c)
				continue
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func sortedKeys(m map[string]ir.Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
