package cmd

import (
	"fmt"
	"strings"

	"github.com/getlawrence/prdgate/internal/backlog"
	"github.com/getlawrence/prdgate/internal/domain"
	"github.com/getlawrence/prdgate/internal/logger"
	"github.com/getlawrence/prdgate/internal/ui"
	"github.com/spf13/cobra"
)

// isInteractive is swapped out in tests
var isInteractive = logger.IsInteractive

// readBacklog resolves the backlog from --file or the first positional
// argument and returns the remaining arguments
func readBacklog(cmd *cobra.Command, app *AppConfig, args []string) (*backlog.Source, []string, error) {
	path, _ := cmd.Flags().GetString("file")
	if path != "" {
		src, err := app.Reader.FromFile(path)
		return src, args, err
	}
	if len(args) == 0 {
		return nil, nil, fmt.Errorf("backlog text is required (pass it as an argument, use - for stdin, or --file)")
	}
	src, err := app.Reader.FromArg(cmd.Context(), args[0])
	return src, args[1:], err
}

// parseBacklog parses the source and logs document-level warnings
func parseBacklog(app *AppConfig, src *backlog.Source) (*backlog.Backlog, error) {
	b, err := backlog.Parse(src.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse backlog from %s: %w", src.Name, err)
	}
	for _, w := range b.Warnings {
		app.Logger.Warnf("%s", w)
	}
	app.Logger.Debugf("parsed %d backlog items from %s", len(b.Items), src.Name)
	return b, nil
}

// writeStructured writes v in the configured structured format. It reports
// false when the format is text and the caller should render text itself.
func writeStructured(cmd *cobra.Command, app *AppConfig, v interface{}) (bool, error) {
	switch app.Config.Output {
	case "json":
		return true, ui.WriteJSON(cmd.OutOrStdout(), v)
	case "yaml":
		return true, ui.WriteYAML(cmd.OutOrStdout(), v)
	}
	return false, nil
}

func logDecisionWarnings(log logger.Logger, d domain.Decision) {
	for _, w := range d.Warnings {
		log.Warnf("%s: %s", d.ItemID, w)
	}
}

// interactiveText reports whether spinners and colors make sense
func interactiveText(app *AppConfig) bool {
	return app.Config.Output == "text" && isInteractive()
}

func addFileFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "read the backlog from a Markdown file")
}

func trimmed(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
