package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for rr
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rr",
		Short: "Parallel recursive content search",
		Long: `rr searches every regular file under a directory for a literal string
or a regular expression and prints the matches as they are found.

Directory traversal, file scanning and output run as concurrent stages;
files are spread across NumCPU × concurrency-multiplier workers.`,
		Example: `  rr -s TODO -d ~/src/project
  rr -e 'func \w+Handler' --glob '**/*.go' -l
  rr --string needle --directory . --matching-files-only true
  rr -s password -i --skip-hidden --stats`,
		Version: Version,
		// Allows "--matching-files-only true"; checked in runSearch.
		Args: cobra.MaximumNArgs(1),
		RunE: runSearch,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the error
		SilenceErrors: true,
	}

	addSearchFlags(cmd)

	return cmd
}

func addSearchFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	// What to look for
	flags.StringP("string", "s", "", "Literal text to search for")
	flags.StringP("regex", "e", "", "Regular expression to search for")
	flags.BoolP("ignore-case", "i", false, "Match case-insensitively")
	flags.BoolP("matching-files-only", "l", false, "Print only the paths of matching files (an explicit true/false may follow)")

	// Where to look
	flags.StringP("directory", "d", ".", "Directory (or file) to search")
	flags.String("filename-regex", "", "Only scan files whose base name matches this regular expression")
	flags.StringArrayP("glob", "g", nil, "Only scan files matching this glob (repeatable, supports **)")
	flags.Bool("skip-hidden", false, "Skip dot-files and dot-directories")

	// How to run
	flags.Int("concurrency-multiplier", 0, "Workers per CPU (default from config, 1)")
	flags.Bool("prefetch", false, "Open files during traversal and ask the kernel to read ahead")
	flags.Bool("unbounded-queues", false, "Use unbounded pipeline channels instead of bounded ones")
	flags.Int("queue-capacity", 0, "Capacity of bounded pipeline channels (default from config, 1024)")
	flags.String("walker", "", "Traversal strategy: queue or recursive (default from config, queue)")
	flags.String("distribution", "", "Work distribution: round-robin or shared (default from config, round-robin)")

	// Output and diagnostics
	flags.String("color", "", "Colorize output: auto, always or never (default from config, auto)")
	flags.String("log-level", "", "Diagnostic verbosity: trace, debug, info, warn, error (default from config, info)")
	flags.Bool("verbose", false, "Shorthand for --log-level debug")
	flags.String("log-file", "", "Also append diagnostics to this file")
	flags.String("config", "", "Path to config file (default: .rr/config.yaml, then ~/.rr/config.yaml)")
	flags.Bool("stats", false, "Print a run summary when the search finishes")
}
