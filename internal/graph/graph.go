// Package graph generates DOT and Mermaid format reference graphs from
// translated resource instructions.
package graph

import (
	"io"
	"strings"

	"github.com/emicklei/dot"

	"github.com/roblaks/noctilucent/ir"
	"github.com/roblaks/noctilucent/template"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator creates reference graphs from translated instructions.
type Generator struct {
	// IncludeParameters includes parameter references in the graph.
	IncludeParameters bool

	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format
}

// Generate builds the reference graph and writes it to w.
func (g *Generator) Generate(instructions []ir.Instruction, tree *template.ParseTree, w io.Writer) error {
	graph := g.buildGraph(instructions, tree)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(instructions []ir.Instruction, tree *template.ParseTree) (string, error) {
	var sb strings.Builder
	if err := g.Generate(instructions, tree, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// buildGraph creates the dot.Graph structure from the instruction list.
func (g *Generator) buildGraph(instructions []ir.Instruction, tree *template.ParseTree) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})
	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	declared := make(map[string]bool, len(instructions))
	for _, inst := range instructions {
		n := graph.Node(inst.Name)
		n.Label(inst.Name + "\\n[" + inst.ResourceType + "]")
		declared[inst.Name] = true
	}

	if g.IncludeParameters && tree != nil {
		for name := range tree.Parameters {
			n := graph.Node(name)
			n.Attr("shape", "ellipse")
			n.Attr("style", "dashed")
			n.Label(name)
		}
	}

	for _, inst := range instructions {
		seen := make(map[string]bool)
		for _, ref := range inst.References() {
			if seen[ref.Name] {
				continue
			}
			seen[ref.Name] = true

			switch ref.Origin.Kind {
			case ir.OriginLogicalID:
				// Dangling logical-id references are skipped rather than
				// drawn as orphan nodes.
				if !declared[ref.Name] {
					continue
				}
			case ir.OriginParameter:
				if !g.IncludeParameters {
					continue
				}
			default:
				// Pseudo parameters are ambient, not graph nodes.
				continue
			}

			graph.Edge(graph.Node(inst.Name), graph.Node(ref.Name))
		}
	}

	return graph
}
