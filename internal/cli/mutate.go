package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"activities-cli/internal/dispatch"
	"activities-cli/internal/render"

	"github.com/spf13/cobra"
)

func newSignupCmd(app *App) *cobra.Command {
	var activity, email string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Sign a participant up for an activity",
		Example: strings.TrimSpace(`
  activities signup --activity "Chess Club" --email michael@mergington.edu
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := app.client()
			out := app.dispatcher(c).Register(commandContext(cmd), activity, strings.TrimSpace(email))
			return reportOutcome(cmd, out)
		},
	}
	cmd.Flags().StringVar(&activity, "activity", "", "Activity name")
	cmd.Flags().StringVar(&email, "email", "", "Participant email")
	return cmd
}

func newUnregisterCmd(app *App) *cobra.Command {
	var activity, email string
	var yes bool

	cmd := &cobra.Command{
		Use:   "unregister",
		Short: "Remove a participant from an activity (asks for confirmation)",
		Example: strings.TrimSpace(`
  activities unregister --activity "Chess Club" --email michael@mergington.edu
  activities unregister --activity "Chess Club" --email michael@mergington.edu --yes
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				prompt := render.Action{Kind: render.ActionUnregister, Activity: activity, Participant: email}.Prompt()
				ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), prompt)
				if err != nil {
					return writeErr(cmd, err)
				}
				if !ok {
					// Declined: nothing is sent.
					return nil
				}
			}
			c := app.client()
			out := app.dispatcher(c).Unregister(commandContext(cmd), activity, email)
			return reportOutcome(cmd, out)
		},
	}
	cmd.Flags().StringVar(&activity, "activity", "", "Activity name")
	cmd.Flags().StringVar(&email, "email", "", "Participant email")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// confirm asks a y/N question. Anything but y/yes (including EOF) declines.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// reportOutcome prints the feedback text: success to stdout, failures to
// stderr with a non-nil error so the process exits non-zero.
func reportOutcome(cmd *cobra.Command, out dispatch.Outcome) error {
	if out.OK() {
		fmt.Fprintln(cmd.OutOrStdout(), out.Feedback.Text)
		return nil
	}
	return writeErr(cmd, outcomeError{text: out.Feedback.Text, err: out.Err})
}
