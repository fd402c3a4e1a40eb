// Package main provides the CLI entry point for tidysnips.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/AntoineGS/tidysnips/internal/config"
	"github.com/AntoineGS/tidysnips/internal/manager"
	"github.com/AntoineGS/tidysnips/internal/platform"
	"github.com/AntoineGS/tidysnips/internal/tui"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string // Override from --config flag
	osOverride string
	userName   string
	hostName   string
	verbose    bool
	dryRun     bool
	logFile    *os.File
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tidysnips",
		Version: version,
		Short:   "Store, fill in and insert code snippets",
		Long: `tidysnips keeps a collection of code snippets with numbered placeholder
variables, fills them in and inserts them into files with the right
indentation.

Snippets come from three places, in order of precedence:
  <default_dir>     - snippets you create or edit (user)
  <gist_dir>        - snippets imported from a GitHub gist
  <snippet_dirs>    - extra read-only directories

The app configuration lives at ~/.config/tidysnips/config.yaml.
Run 'tidysnips init' to create it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				logWriter := os.Stderr
				// The picker owns the terminal, so its logs go to a file.
				if cmd.Name() == "pick" && tui.IsTerminal() {
					logPath := filepath.Join(os.TempDir(), "tidysnips.log")
					f, err := os.Create(logPath) //nolint:gosec // fixed temp path
					if err == nil {
						logFile = f
						logWriter = f
						fmt.Fprintf(os.Stderr, "Verbose logs: %s\n", logPath)
					}
				}
				slog.SetDefault(slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logFile != nil {
				_ = logFile.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the app configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&osOverride, "os", "o", "", "Override OS detection for snippet defaults (linux or windows)")
	rootCmd.PersistentFlags().StringVar(&userName, "user", "", "Override the user name seen by snippet defaults")
	rootCmd.PersistentFlags().StringVar(&hostName, "hostname", "", "Override the hostname seen by snippet defaults")

	rootCmd.AddCommand(
		newInitCmd(),
		newListCmd(),
		newShowCmd(),
		newVarsCmd(),
		newAddCmd(),
		newEditCmd(),
		newRmCmd(),
		newRenderCmd(),
		newInsertCmd(),
		newPickCmd(),
		newRecentCmd(),
		newImportGistCmd(),
		newExportGistCmd(),
		newGistAPICmd(),
	)

	return rootCmd
}

func appConfigFile() string {
	if configPath != "" {
		return configPath
	}
	return config.AppConfigPath()
}

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize app configuration",
		Long: `Write the default app configuration and create the snippet directory.

An existing configuration is kept unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, appConfigFile(), force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")

	return cmd
}

func runInit(cmd *cobra.Command, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration already exists: %s (use --force to overwrite)", path)
	}

	cfg := config.DefaultAppConfig()
	if err := config.SaveAppConfigTo(cfg, path); err != nil {
		return fmt.Errorf("saving app config: %w", err)
	}

	expanded := cfg.Expanded()
	for _, dir := range []string{expanded.DefaultDir, expanded.GistDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "App configuration saved to %s\n", path)
	fmt.Fprintf(out, "Snippets directory: %s\n", expanded.DefaultDir)

	return nil
}

func loadAppConfig() (*config.AppConfig, error) {
	if configPath != "" {
		return config.LoadAppConfigFrom(configPath)
	}
	return config.LoadAppConfig()
}

// detectPlatform detects the host and applies the command-line overrides.
func detectPlatform() (*platform.Platform, error) {
	plat := platform.Detect()

	if osOverride != "" {
		if osOverride != platform.OSLinux && osOverride != platform.OSWindows {
			return nil, fmt.Errorf("invalid OS override: %s (must be 'linux' or 'windows')", osOverride)
		}
		plat = plat.WithOS(osOverride)
	}
	if userName != "" {
		plat = plat.WithUser(userName)
	}
	if hostName != "" {
		plat = plat.WithHostname(hostName)
	}

	return plat, nil
}

// createManager loads the configuration and every snippet source. Load
// problems are reported as warnings; they never stop the command.
func createManager(cmd *cobra.Command) (*manager.Manager, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, err
	}

	plat, err := detectPlatform()
	if err != nil {
		return nil, err
	}

	mgr := manager.New(cfg, plat)
	switch {
	case verbose && logFile != nil:
		mgr = mgr.WithLogger(slog.Default())
		mgr.Verbose = true
	case verbose:
		mgr = mgr.WithVerbose(true)
	}
	mgr.DryRun = dryRun
	mgr = mgr.WithContext(cmd.Context())

	// Without history the form starts from defaults only.
	if err := mgr.InitStateStore(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not open usage history: %v\n", err)
	}

	report, err := mgr.Load()
	if err != nil {
		_ = mgr.Close()
		return nil, err
	}
	for _, e := range report.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", e)
	}

	return mgr, nil
}

// runWithCancellation runs a command with a context canceled on SIGINT or SIGTERM.
func runWithCancellation(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cmd.SetContext(ctx)
		return fn(cmd, args)
	}
}
