package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/epuerta/codeguard/internal/changeset"
	"github.com/epuerta/codeguard/internal/config"
	"github.com/epuerta/codeguard/internal/fileops"
	"github.com/epuerta/codeguard/internal/logging"
	"github.com/epuerta/codeguard/internal/manifest"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	// Version is set during build
	Version = "dev"
	// GitCommit is set during build
	GitCommit = "none"
	// BuildDate is set during build
	BuildDate = "unknown"
)

// app carries what every subcommand needs
type app struct {
	fs     afero.Fs
	cfg    *config.Config
	logger logging.Logger
}

// newRootCmd builds the command tree. The returned app must be closed once the command has run.
func newRootCmd(fs afero.Fs) (*cobra.Command, *app) {
	a := &app{fs: fs, logger: logging.NewNilLogger()}

	rootCmd := &cobra.Command{
		Use:   "codeguard",
		Short: "Preview, review and apply proposed file changes",
		Long: `codeguard previews proposed file changes as diffs before they touch disk.
Changes are read from a YAML manifest, shown as unified, side-by-side or
summary diffs, and then applied, reviewed file by file, exported as a patch,
or handed to an external diff viewer.

Examples:
  codeguard preview -f changes.yaml
  codeguard preview -f changes.yaml --side-by-side
  codeguard review -f changes.yaml
  codeguard apply -f changes.yaml --verify`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	// Add global flags using cobra/pflag
	flags := rootCmd.PersistentFlags()
	flags.StringP("manifest", "f", "", "YAML manifest listing the proposed changes")
	flags.String("color", "", "Colorize output: auto, always or never")
	flags.String("format", "", "Preview format: unified, side-by-side or simple")
	flags.Int("context", 0, "Context lines around each change (0 shows changed lines only)")
	flags.Bool("verify", false, "Fail files whose content changed since they were registered")

	// Add logging flags
	flags.Bool("debug", false, "Enable debug logging to a file")
	flags.String("log-file", "", "Path to the log file (default: ~/.cache/codeguard/logs/codeguard-<timestamp>.log)")

	// Add subcommands
	rootCmd.AddCommand(
		previewCmd(a),
		statsCmd(a),
		saveCmd(a),
		applyCmd(a),
		difftoolCmd(a),
		reviewCmd(a),
		completionCmd(),
	)

	return rootCmd, a
}

// init loads config, applies flag overrides and starts the logger
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("color") {
		color, _ := flags.GetString("color")
		cfg.Color = config.ColorMode(color)
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("context") {
		cfg.ContextLines, _ = flags.GetInt("context")
	}
	if flags.Changed("verify") {
		cfg.VerifyBeforeApply, _ = flags.GetBool("verify")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("log-file") {
		cfg.LogFile, _ = flags.GetString("log-file")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.Debug {
		logPath := cfg.LogFile
		if logPath == "" {
			cacheDir, err := os.UserCacheDir()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Could not get user cache directory: %v. Logging to current dir.\n", err)
				cacheDir = "."
			}
			logPath = logging.DefaultPath(cacheDir, nowFunc())
		}
		logger, err := logging.NewFileLogger(logPath)
		if err != nil {
			return fmt.Errorf("error creating file logger: %w", err)
		}
		a.logger = logger
		if err := logging.LinkLatest(logPath); err != nil {
			a.logger.Log("Warning: Failed to create/update latest.log symlink: %v", err)
		}
		a.logger.Log("--- codeguard session start --- Session: %s, Version: %s, Commit: %s, Built: %s", logger.Session(), Version, GitCommit, BuildDate)
		a.logger.Log("Debug logging enabled. Log file: %s", logPath)
	}

	a.logger.Log("Config loaded: Format=%s, Color=%s, ContextLines=%d, CWD=%s", cfg.Format, cfg.Color, cfg.ContextLines, cfg.CWD)
	return nil
}

// close ends the logging session
func (a *app) close() error {
	a.logger.Log("--- codeguard session end ---")
	return a.logger.Close()
}

// changeSet builds a changeset from the --manifest flag
func (a *app) changeSet(cmd *cobra.Command) (*changeset.ChangeSet, error) {
	path, _ := cmd.Flags().GetString("manifest")
	if path == "" {
		return nil, errors.New("a manifest is required (use --manifest)")
	}

	if !fileops.Exists(a.fs, path) {
		return nil, fmt.Errorf("manifest %s not found", path)
	}
	m, err := manifest.Load(a.fs, path)
	if err != nil {
		return nil, err
	}

	cs := changeset.New(changeset.Options{
		Fs:                a.fs,
		BaseDir:           a.cfg.CWD,
		ContextLines:      a.cfg.ContextLines,
		ScratchDir:        a.cfg.ScratchDir,
		VerifyBeforeApply: a.cfg.VerifyBeforeApply,
		Logger:            a.logger,
		Stdin:             cmd.InOrStdin(),
		Stdout:            cmd.OutOrStdout(),
		Stderr:            cmd.ErrOrStderr(),
	})
	if err := m.Register(a.fs, cs); err != nil {
		return nil, err
	}
	for _, change := range cs.Changes() {
		a.logger.Log("Pending %s %s", change.Kind, change.Path)
	}
	a.logger.Log("Registered %d changes from %s", len(cs.PendingFiles()), path)
	return cs, nil
}

// main is the entry point of the application
func main() {
	rootCmd, a := newRootCmd(afero.NewOsFs())
	err := rootCmd.Execute()
	if err != nil {
		a.logger.Log("Command execution failed: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	if closeErr := a.close(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "Error closing logger: %v\n", closeErr)
	}
	if err != nil {
		os.Exit(1)
	}
}
