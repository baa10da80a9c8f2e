package cmd

import (
	"fmt"

	"github.com/getlawrence/prdgate/internal/backlog"
	"github.com/getlawrence/prdgate/internal/domain"
	"github.com/getlawrence/prdgate/internal/ui"
	"github.com/spf13/cobra"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [backlog-text|-]",
	Short: "Decide PRD generation for every item in a backlog",
	Long: `Scan evaluates every item of the backlog tables in a Markdown document and
prints a decision table with a summary.

Example usage:
  prdgate scan --file BACKLOG.md
  prdgate scan --file BACKLOG.md --only-prd
  cat BACKLOG.md | prdgate scan - --output yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	addFileFlag(scanCmd)
	scanCmd.Flags().Bool("only-prd", false, "only list items that need a PRD")
	scanCmd.Flags().BoolP("detailed", "d", false, "include per-item parse warnings")
}

func runScan(cmd *cobra.Command, args []string) error {
	app := appConfigFrom(cmd)
	onlyPRD, _ := cmd.Flags().GetBool("only-prd")
	detailed, _ := cmd.Flags().GetBool("detailed")

	src, _, err := readBacklog(cmd, app, args)
	if err != nil {
		return err
	}

	var b *backlog.Backlog
	runErr := ui.RunSpinner(cmd.Context(), "Scanning backlog...", interactiveText(app), func() error {
		var e error
		b, e = parseBacklog(app, src)
		return e
	})
	if runErr != nil {
		return runErr
	}

	report := buildReport(app, src.Name, b, onlyPRD)

	if handled, err := writeStructured(cmd, app, report); handled {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), ui.RenderReport(report, ui.NewStyles(app.Config.Color), detailed))
	return err
}

func buildReport(app *AppConfig, source string, b *backlog.Backlog, onlyPRD bool) *domain.Report {
	decisions := app.Config.Policy().DecideAll(b.Items)
	if onlyPRD {
		filtered := decisions[:0]
		for _, d := range decisions {
			if d.GeneratePRD {
				filtered = append(filtered, d)
			}
		}
		decisions = filtered
	}
	return domain.NewReport(source, decisions, b.Warnings)
}
