// Package commands implements the moad CLI.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgavriel/MOADv2/internal/logger"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	logLevel  string
	logFormat string

	// appLogger is built from the global flags before any subcommand runs.
	appLogger = slog.Default()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "moad",
	Short: "MOAD dataset tooling",
	Long: `moad downloads objects of the MOAD dataset from its S3 bucket and
prepares them for simulation: URDF descriptions for the fused models and
batch Blender conversions of CAD files and scan meshes.

Use "moad [command] --help" for more information about a command.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogger,
}

// Execute runs the root command with ctx, which is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(urdfCmd)
	rootCmd.AddCommand(convertCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func setupLogger(cmd *cobra.Command, _ []string) error {
	l, err := logger.New(logger.Config{Level: logLevel, Format: logFormat}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	appLogger = l
	return nil
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
