package cmd

import (
	"fmt"

	"github.com/getlawrence/prdgate/internal/ui"
	"github.com/spf13/cobra"
)

// decideCmd represents the decide command
var decideCmd = &cobra.Command{
	Use:   "decide <backlog-text|-> <item-id>",
	Short: "Decide whether one backlog item needs a PRD",
	Long: `Decide finds one item in a Markdown backlog table and prints whether a full
PRD must be generated for it, with the rule that decided.

Example usage:
  prdgate decide "$(cat BACKLOG.md)" W-12
  prdgate decide --file BACKLOG.md W-12
  cat BACKLOG.md | prdgate decide - W-12
  prdgate decide --file BACKLOG.md W-12 --output json`,
	Args: func(cmd *cobra.Command, args []string) error {
		if path, _ := cmd.Flags().GetString("file"); path != "" {
			return cobra.ExactArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: runDecide,
}

func init() {
	rootCmd.AddCommand(decideCmd)
	addFileFlag(decideCmd)
}

func runDecide(cmd *cobra.Command, args []string) error {
	app := appConfigFrom(cmd)

	src, rest, err := readBacklog(cmd, app, args)
	if err != nil {
		return err
	}
	b, err := parseBacklog(app, src)
	if err != nil {
		return err
	}
	item, err := b.Find(rest[0])
	if err != nil {
		return err
	}

	d := app.Config.Policy().Decide(item)
	logDecisionWarnings(app.Logger, d)

	if handled, err := writeStructured(cmd, app, d); handled {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), ui.RenderDecision(d))
	return err
}
