package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/getlawrence/prdgate/internal/domain"
	"github.com/getlawrence/prdgate/internal/templates"
	"github.com/getlawrence/prdgate/internal/ui"
	"github.com/spf13/cobra"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [backlog-text|-] [item-id...]",
	Short: "Write PRD drafts for backlog items that need one",
	Long: `Generate renders a PRD draft for every backlog item whose decision is to
generate a PRD. When item IDs are given only those items are considered.
Items that do not need a PRD are reported and left alone.

Example usage:
  prdgate generate --file BACKLOG.md
  prdgate generate --file BACKLOG.md W-12 W-14 --dir docs/prd
  prdgate generate --file BACKLOG.md W-12 --preview`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addFileFlag(generateCmd)
	generateCmd.Flags().String("dir", "", "directory to write PRD drafts to (defaults to prd_dir from config)")
	generateCmd.Flags().Bool("force", false, "overwrite existing PRD drafts")
	generateCmd.Flags().Bool("preview", false, "render drafts to the terminal instead of writing files")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	app := appConfigFrom(cmd)
	dir, _ := cmd.Flags().GetString("dir")
	force, _ := cmd.Flags().GetBool("force")
	preview, _ := cmd.Flags().GetBool("preview")
	if dir == "" {
		dir = app.Config.PRDDir
	}

	src, ids, err := readBacklog(cmd, app, args)
	if err != nil {
		return err
	}
	b, err := parseBacklog(app, src)
	if err != nil {
		return err
	}
	items, err := b.Select(trimmed(ids))
	if err != nil {
		return err
	}

	engine, err := templates.NewTemplateEngine()
	if err != nil {
		return err
	}

	// Buffered so lines don't interleave with the spinner
	var out bytes.Buffer
	policy := app.Config.Policy()
	now := time.Now()

	runErr := ui.RunSpinner(cmd.Context(), "Generating PRD drafts...", interactiveText(app) && !preview, func() error {
		for _, item := range items {
			d := policy.Decide(item)
			logDecisionWarnings(app.Logger, d)
			if !d.GeneratePRD {
				fmt.Fprintf(&out, "not needed %s: %s\n", d.ItemID, d.Reason)
				continue
			}

			content, err := engine.RenderPRD(templates.NewPRDData(d, src.Name, now))
			if err != nil {
				return fmt.Errorf("failed to render PRD for %s: %w", d.ItemID, err)
			}

			if preview {
				rendered, err := ui.RenderMarkdown(content, app.Config.Color, 100)
				if err != nil {
					return err
				}
				out.WriteString(rendered)
				continue
			}

			path, written, err := writePRD(dir, d, content, force)
			if err != nil {
				return err
			}
			if written {
				fmt.Fprintf(&out, "wrote %s\n", path)
			} else {
				fmt.Fprintf(&out, "skipped %s (already exists, use --force to overwrite)\n", path)
			}
		}
		return nil
	})

	if _, err := out.WriteTo(cmd.OutOrStdout()); err != nil {
		return err
	}
	return runErr
}

// prdFileName turns an item ID into a safe file name
func prdFileName(id string) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(id, "-"), "-.")
	if name == "" {
		name = "item"
	}
	return name + "-prd.md"
}

func writePRD(dir string, d domain.Decision, content string, force bool) (string, bool, error) {
	path := filepath.Join(dir, prdFileName(d.ItemID))
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, false, nil
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return path, false, fmt.Errorf("failed to create PRD directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return path, false, fmt.Errorf("failed to write PRD: %w", err)
	}
	return path, true, nil
}
