package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roblaks/noctilucent/internal/graph"
	"github.com/roblaks/noctilucent/ir"
	"github.com/roblaks/noctilucent/template"
)

func newGraphCmd() *cobra.Command {
	var (
		specFile          string
		outputFormat      string
		includeParameters bool
	)

	cmd := &cobra.Command{
		Use:   "graph [template]",
		Short: "Generate DOT graph of resource references",
		Long: `Generate a DOT or Mermaid format graph of the references between
translated resources.

The output can be rendered with Graphviz:
    noctilucent graph template.yaml | dot -Tpng -o refs.png

Or used in GitHub markdown (Mermaid format):
    noctilucent graph template.yaml -f mermaid

Examples:
    noctilucent graph template.yaml
    noctilucent graph template.yaml -p            # include parameters
    noctilucent graph template.yaml -f mermaid    # mermaid format`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(args[0], specFile, outputFormat, includeParameters)
		},
	}

	cmd.Flags().StringVar(&specFile, "spec", "", "Resource specification file (default: embedded)")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVarP(&includeParameters, "include-parameters", "p", false, "Include parameter nodes in the graph")

	return cmd
}

func runGraph(templateFile, specFile, format string, includeParams bool) error {
	tree, err := template.ParseFile(templateFile)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	db, err := loadSpec(specFile)
	if err != nil {
		return err
	}

	instructions, err := ir.TranslateResources(tree, db, ir.Options{Logger: zap.NewNop()})
	if err != nil {
		return err
	}

	var graphFormat graph.Format
	switch format {
	case "dot":
		graphFormat = graph.FormatDOT
	case "mermaid":
		graphFormat = graph.FormatMermaid
	default:
		return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", format)
	}

	gen := &graph.Generator{
		Format:            graphFormat,
		IncludeParameters: includeParams,
	}

	return gen.Generate(instructions, tree, os.Stdout)
}
