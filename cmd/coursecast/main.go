// coursecast creates one assignment and deploys it across one or many
// Canvas courses, with embedded content and template links in the
// description.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"coursecast/internal/config"
)

var (
	// Global flags
	verbose     bool
	dryRun      bool
	runSetup    bool
	resetConfig bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command. No arguments starts the interactive
// workflow.
var rootCmd = &cobra.Command{
	Use:   "coursecast",
	Short: "coursecast - deploy Canvas assignments across courses",
	Long: `coursecast is a terminal client for Canvas LMS.

It walks you through building one assignment (name, description with
embedded videos/slides/documents/images and "make a copy" template links,
points, dates, submission settings) and deploys it to one or many of your
courses in a single run, reporting per-course success or failure.

Run without arguments for the interactive workflow.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("cannot locate config directory: %w", err)
		}

		if resetConfig {
			if err := config.Reset(path); err != nil {
				return fmt.Errorf("failed to reset config: %w", err)
			}
			fmt.Println("Configuration cleared.")
			return nil
		}

		app, err := newApp(path, dryRun, logger)
		if err != nil {
			return err
		}

		if runSetup {
			return app.setup()
		}
		return app.interactive()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "simulate deployment without calling the API")
	rootCmd.Flags().BoolVar(&runSetup, "setup", false, "configure Canvas URL and API token, then exit")
	rootCmd.Flags().BoolVar(&resetConfig, "reset-config", false, "delete the stored configuration, then exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
