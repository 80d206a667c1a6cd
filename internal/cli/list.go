package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"activities-cli/internal/format"
	"activities-cli/internal/render"

	"github.com/spf13/cobra"
)

func newListCmd(app *App) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short: "Fetch and print every activity with its roster",
		Example: strings.TrimSpace(`
  activities list
  activities list --format md > activities.md
  activities list --format text
  activities list --format edn --pretty
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(format.Formats, app.Format) {
				return writeErr(cmd, fmt.Errorf("unknown format: %s (expected %s)", app.Format, strings.Join(format.Formats, "|")))
			}
			snap, err := app.client().ListActivities(commandContext(cmd))
			if err != nil {
				app.log().Debug("list failed", slog.Any("error", err))
				return writeErr(cmd, errors.New(render.FailureNotice))
			}
			if format.IsDocument(app.Format) {
				return format.WriteDocument(cmd.OutOrStdout(), render.Markdown(render.Render(snap)), app.Format, width)
			}
			return writeOut(cmd, app, snap)
		},
	}

	cmd.Flags().StringVar(&app.Format, "format", envOr("ACTIVITIES_FORMAT", "json"), "Output format (json|edn|md|text)")
	cmd.Flags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --format text")
	return cmd
}
