package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "prdgate",
	Short: "Decide whether backlog items need a full PRD",
	Long: `prdgate reads a Markdown backlog table and decides, item by item, whether a
full product requirements document (PRD) must be written or whether the backlog
row is enough to work from.

Small, well-scored items (points < 5 and score >= 3.0) skip the PRD. Everything
else, including items with missing or malformed estimates, gets one.

Called with a backlog and an item ID it behaves like the decide command:
  prdgate "$(cat BACKLOG.md)" W-12`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return nil
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runDecide(cmd, args)
	},
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: loadAppConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app := appConfigFrom(cmd); app != nil {
			app.Close()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = context.WithValue(ctx, configKey, &AppConfig{})
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (text, json, yaml); defaults to the configured format")
	rootCmd.PersistentFlags().String("config", "", "config file (default .prdgate.yaml in the working or home directory)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
}
