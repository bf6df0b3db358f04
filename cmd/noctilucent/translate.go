package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roblaks/noctilucent/internal/synth"
	"github.com/roblaks/noctilucent/ir"
	"github.com/roblaks/noctilucent/spec"
	"github.com/roblaks/noctilucent/template"
)

func newTranslateCmd() *cobra.Command {
	var (
		specFile     string
		outputFormat string
		outputPath   string
		maxParallel  int
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "translate [template]",
		Short: "Translate a CloudFormation template into typed instructions",
		Long: `Translate parses a CloudFormation template (JSON or YAML, long or
short intrinsic form), resolves every property value against the
resource specification, and emits the result.

Examples:
    noctilucent translate template.yaml
    noctilucent translate template.yaml -f hcl -o ./out
    noctilucent translate template.yaml --spec spec.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(args[0], translateOptions{
				specFile:     specFile,
				outputFormat: outputFormat,
				outputPath:   outputPath,
				maxParallel:  maxParallel,
				verbose:      verbose,
			})
		},
	}

	cmd.Flags().StringVar(&specFile, "spec", "", "Resource specification file (default: embedded)")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or hcl")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file, or directory for hcl (default: stdout)")
	cmd.Flags().IntVar(&maxParallel, "parallel", 0, "Max resources translated concurrently (default: CPU count)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

type translateOptions struct {
	specFile     string
	outputFormat string
	outputPath   string
	maxParallel  int
	verbose      bool
}

func runTranslate(templateFile string, opts translateOptions) error {
	logger, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	tree, err := template.ParseFile(templateFile)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	db, err := loadSpec(opts.specFile)
	if err != nil {
		return err
	}

	instructions, err := ir.TranslateResources(tree, db, ir.Options{
		MaxParallel: opts.maxParallel,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	switch opts.outputFormat {
	case "json":
		return outputJSON(instructions, opts.outputPath)
	case "hcl":
		return outputHCL(instructions, tree, opts.outputPath)
	default:
		return fmt.Errorf("unknown format: %s (use 'json' or 'hcl')", opts.outputFormat)
	}
}

// loadSpec loads the resource specification from a file, or the embedded
// specification when no path is given.
func loadSpec(path string) (*spec.Spec, error) {
	if path == "" {
		return spec.Builtin()
	}
	db, err := spec.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading specification: %w", err)
	}
	return db, nil
}

func outputJSON(instructions []ir.Instruction, outputPath string) error {
	data, err := json.MarshalIndent(instructions, "", "  ")
	if err != nil {
		return err
	}

	if outputPath == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(outputPath, data, 0644)
}

func outputHCL(instructions []ir.Instruction, tree *template.ParseTree, outputPath string) error {
	files, err := synth.New(tree).Synthesize(instructions)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	if outputPath == "" {
		for i, name := range names {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("# %s\n", name)
			fmt.Print(string(files[name]))
		}
		return nil
	}

	if err := os.MkdirAll(outputPath, 0755); err != nil {
		return err
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(outputPath, name), files[name], 0644); err != nil {
			return err
		}
	}
	return nil
}
