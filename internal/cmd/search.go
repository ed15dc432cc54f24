package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/go-multierror"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/harrison/rr/internal/config"
	"github.com/harrison/rr/internal/display"
	"github.com/harrison/rr/internal/executor"
	"github.com/harrison/rr/internal/fileutil"
	"github.com/harrison/rr/internal/logger"
	"github.com/harrison/rr/internal/matcher"
	"github.com/harrison/rr/internal/models"
)

// runSearch validates the arguments, builds the pipeline and runs it.
// Only argument and configuration problems are returned as errors; a search
// that skipped files or lost a stage still succeeds.
func runSearch(cmd *cobra.Command, args []string) error {
	query, err := parseQuery(cmd)
	if err != nil {
		return err
	}

	mode, err := parseMode(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	m, err := matcher.Compile(query)
	if err != nil {
		return err
	}

	filter, err := buildFilter(cmd, cfg)
	if err != nil {
		return err
	}

	dirFlag, _ := cmd.Flags().GetString("directory")
	root, err := homedir.Expand(dirFlag)
	if err != nil {
		return fmt.Errorf("invalid directory %q: %w", dirFlag, err)
	}

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	outColor, err := display.ResolveColor(cfg.Color, stdout)
	if err != nil {
		return err
	}
	errColor, _ := display.ResolveColor(cfg.Color, stderr)

	consoleLog := logger.NewConsoleLogger(stderr, cfg.LogLevel)
	consoleLog.SetColor(errColor)

	var log logger.Logger = consoleLog
	if cfg.LogFile != "" {
		logPath, err := homedir.Expand(cfg.LogFile)
		if err != nil {
			return fmt.Errorf("invalid log file %q: %w", cfg.LogFile, err)
		}
		fileLog, err := logger.NewFileLogger(logPath, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer fileLog.Close()
		log = logger.NewMultiLogger(consoleLog, fileLog)
		log.Debugf("appending diagnostics to %s (run %s)", fileLog.Path(), fileLog.RunID())
	}

	pipeline, err := executor.NewPipeline(executor.Config{
		Matcher:         m,
		Mode:            mode,
		Workers:         executor.WorkerCount(cfg.ConcurrencyMultiplier),
		QueueCapacity:   cfg.QueueCapacity,
		UnboundedQueues: cfg.UnboundedQueues,
		Distribution:    cfg.Distribution,
		Walker:          cfg.Walker,
		Filter:          filter,
		Prefetch:        cfg.Prefetch,
		PrefetchLimit:   cfg.PrefetchLimit,
		MaxLineBytes:    cfg.MaxLineBytes,
	}, display.NewResultPrinter(stdout, mode, m, outColor), log)
	if err != nil {
		return err
	}

	log.Debugf("searching %s for %s", root, m)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stats, runErr := pipeline.Run(ctx, root)
	if runErr != nil {
		failures := stageFailures(runErr)
		display.WarnIncompleteSearch(failures, anyPanicked(failures)).Display(stderr, errColor)
	}

	if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
		log.LogSummary(stats.Summary())
	}

	return nil
}

// parseQuery reads --string / --regex. Exactly one must be given.
func parseQuery(cmd *cobra.Command) (matcher.Query, error) {
	flags := cmd.Flags()
	hasString := flags.Changed("string")
	hasRegex := flags.Changed("regex")

	switch {
	case hasString && hasRegex:
		return matcher.Query{}, errors.New("--string and --regex are mutually exclusive")
	case !hasString && !hasRegex:
		return matcher.Query{}, errors.New("one of --string or --regex is required")
	}

	ignoreCase, _ := flags.GetBool("ignore-case")
	if hasRegex {
		pattern, _ := flags.GetString("regex")
		return matcher.Query{Pattern: pattern, Regex: true, IgnoreCase: ignoreCase}, nil
	}
	pattern, _ := flags.GetString("string")
	return matcher.Query{Pattern: pattern, IgnoreCase: ignoreCase}, nil
}

// parseMode reads --matching-files-only. pflag never consumes a separate
// value for a bool flag, so "--matching-files-only true" leaves "true" as the
// single positional argument.
func parseMode(cmd *cobra.Command, args []string) (models.Mode, error) {
	filesOnly, _ := cmd.Flags().GetBool("matching-files-only")

	if len(args) > 0 {
		if !cmd.Flags().Changed("matching-files-only") {
			return models.ModeContent, fmt.Errorf("unexpected argument %q", args[0])
		}
		v, err := strconv.ParseBool(args[0])
		if err != nil {
			return models.ModeContent, fmt.Errorf("invalid value %q for --matching-files-only: must be true or false", args[0])
		}
		filesOnly = v
	}

	if filesOnly {
		return models.ModeFilesOnly, nil
	}
	return models.ModeContent, nil
}

// loadConfig resolves and loads the config file, then applies explicit flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	configFlag, _ := flags.GetString("config")
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	path, err := config.ResolveConfigPath(configFlag, cwd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.MergeWithFlags(config.Flags{
		ConcurrencyMultiplier: intFlag(cmd, "concurrency-multiplier"),
		QueueCapacity:         intFlag(cmd, "queue-capacity"),
		UnboundedQueues:       boolFlag(cmd, "unbounded-queues"),
		Walker:                stringFlag(cmd, "walker"),
		Distribution:          stringFlag(cmd, "distribution"),
		Prefetch:              boolFlag(cmd, "prefetch"),
		SkipHidden:            boolFlag(cmd, "skip-hidden"),
		Color:                 stringFlag(cmd, "color"),
		LogLevel:              stringFlag(cmd, "log-level"),
		LogFile:               stringFlag(cmd, "log-file"),
	})

	if verbose, _ := flags.GetBool("verbose"); verbose && !flags.Changed("log-level") {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func buildFilter(cmd *cobra.Command, cfg *config.Config) (*fileutil.Filter, error) {
	pattern, _ := cmd.Flags().GetString("filename-regex")
	globs, _ := cmd.Flags().GetStringArray("glob")

	return fileutil.NewFilter(fileutil.FilterOptions{
		FilenamePattern: pattern,
		Globs:           globs,
		ExcludeDirs:     cfg.ExcludeDirs,
		SkipHidden:      cfg.SkipHidden,
	})
}

// stageFailures flattens the pipeline's aggregated error.
func stageFailures(err error) []error {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return merr.Errors
	}
	return []error{err}
}

func anyPanicked(failures []error) bool {
	for _, err := range failures {
		var stageErr *executor.StageError
		if errors.As(err, &stageErr) && stageErr.Panicked() {
			return true
		}
	}
	return false
}

func intFlag(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func boolFlag(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}

func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}
