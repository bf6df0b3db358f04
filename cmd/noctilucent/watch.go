package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// newWatchCmd creates the "watch" subcommand for re-translating on changes.
func newWatchCmd() *cobra.Command {
	var (
		specFile     string
		outputFormat string
		outputPath   string
		debounce     time.Duration
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "watch [template]",
		Short: "Re-translate on template file changes",
		Long: `Watch monitors the template file for changes and re-runs translation.

The watch command:
- Monitors the template file's directory
- Re-translates on each change to the file
- Debounces rapid changes to avoid excessive runs

Examples:
    noctilucent watch template.yaml
    noctilucent watch template.yaml -f hcl -o ./out
    noctilucent watch template.yaml --debounce 1s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(args[0], translateOptions{
				specFile:     specFile,
				outputFormat: outputFormat,
				outputPath:   outputPath,
				verbose:      verbose,
			}, debounce)
		},
	}

	cmd.Flags().StringVar(&specFile, "spec", "", "Resource specification file (default: embedded)")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or hcl")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file, or directory for hcl (default: stdout)")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// runWatch monitors the template file and re-translates on changes.
func runWatch(templateFile string, opts translateOptions, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	absPath, err := filepath.Abs(templateFile)
	if err != nil {
		return err
	}

	// Watch the directory: editors often replace the file on save, which
	// drops a direct file watch.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}
	fmt.Printf("Watching: %s\n", absPath)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println("Running initial translation...")
	translateOnce(templateFile, opts)

	var debounceTimer *time.Timer
	rerunChan := make(chan struct{}, 1)

	fmt.Println("\nWatching for changes... (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			eventPath, err := filepath.Abs(event.Name)
			if err != nil || eventPath != absPath {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				select {
				case rerunChan <- struct{}{}:
				default:
				}
			})

		case <-rerunChan:
			fmt.Printf("\n[%s] Change detected, re-translating...\n", time.Now().Format("15:04:05"))
			translateOnce(templateFile, opts)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)

		case <-sigChan:
			fmt.Println("\nStopping watch...")
			return nil
		}
	}
}

// translateOnce runs a translation pass and reports the outcome without
// terminating the watch loop on failure.
func translateOnce(templateFile string, opts translateOptions) {
	if err := runTranslate(templateFile, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Translation error: %v\n", err)
		return
	}
	if opts.outputPath != "" {
		fmt.Printf("Translation successful, wrote %s\n", opts.outputPath)
	}
}
