// Command noctilucent translates CloudFormation templates into typed
// intermediate representation and Terraform configuration.
//
// Usage:
//
//	noctilucent translate template.yaml     Translate a template
//	noctilucent graph template.yaml         Graph resource references
//	noctilucent watch template.yaml         Re-translate on changes
//	noctilucent version                     Show version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "noctilucent",
		Short: "Translate CloudFormation templates into typed IR",
		Long: `noctilucent parses a CloudFormation template, resolves its intrinsic
functions against the resource specification, and emits the result as
typed instructions or Terraform configuration.

Examples:

    noctilucent translate template.yaml
    noctilucent translate template.yaml -f hcl -o ./out
    noctilucent graph template.yaml | dot -Tpng -o refs.png`,
	}

	rootCmd.AddCommand(
		newTranslateCmd(),
		newGraphCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("noctilucent %s\n", getVersion())
		},
	}
}

// newLogger builds the CLI logger. Diagnostics go to stderr so that
// translated output on stdout stays machine-readable.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
