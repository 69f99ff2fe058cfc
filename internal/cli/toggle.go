package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doorlist/doorlist/internal/engine"
)

// ToggleOptions holds flags for the toggle command.
type ToggleOptions struct {
	*RootOptions
	Action   string
	Operator string
	Force    bool
}

// NewToggleCommand creates the toggle command.
func NewToggleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ToggleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "toggle <guest-id>",
		Short: "Check a guest in or out",
		Long: `Check a guest in or out.

Checking in an already present guest, or checking out an absent one, is
reported but changes nothing. --force on a check-out records an
instantaneous visit for a guest who never checked in (paper sign-in sheet
reconciliation).

Example:
  doorlist toggle 42 --action in --operator "front desk"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggle(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Action, "action", "", "in or out (required)")
	cmd.Flags().StringVar(&opts.Operator, "operator", "", "who performed the action")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "on check-out, record an instantaneous visit if the guest never checked in")
	cmd.MarkFlagRequired("action")

	return cmd
}

func runToggle(opts *ToggleOptions, rawID string, cmd *cobra.Command) error {
	guestID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return WrapExitError(ExitCommandError, "parse guest id", err)
	}

	action, err := engine.ParseAction(opts.Action)
	if err != nil {
		return WrapExitError(ExitCommandError, "parse --action", err)
	}

	svc, _, err := openService(opts.RootOptions)
	if err != nil {
		return err
	}
	defer svc.Close()

	status, err := svc.Toggle(cmd.Context(), guestID, action, opts.Operator, opts.Force)
	if err != nil {
		return WrapExitError(ExitCommandError, "toggle guest", err)
	}

	out := formatter(opts.RootOptions, cmd)
	return out.Successf(
		map[string]interface{}{"guest_id": guestID, "status": string(status)},
		"%s", toggleMessage(status),
	)
}

func toggleMessage(status engine.ToggleStatus) string {
	switch status {
	case engine.StatusCheckedIn:
		return "Checked in"
	case engine.StatusCheckedOut:
		return "Checked out"
	case engine.StatusAlreadyIn:
		return "Already checked in; nothing changed"
	case engine.StatusNotCheckedIn:
		return "Not currently checked in; nothing changed"
	case engine.StatusNeverCheckedIn:
		return "Never checked in; use --force to record a visit anyway"
	default:
		return string(status)
	}
}

// NewUndoCommand creates the undo command.
func NewUndoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "undo",
		Short:         "Revert the most recent check-in or check-out",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(rootOpts)
			if err != nil {
				return err
			}
			defer svc.Close()

			status, err := svc.Undo(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "undo", err)
			}

			out := formatter(rootOpts, cmd)
			return out.Successf(
				map[string]string{"status": string(status)},
				"%s", undoMessage(status),
			)
		},
	}
}

func undoMessage(status engine.UndoStatus) string {
	switch status {
	case engine.UndoRevertedCheckIn:
		return "Reverted the last check-in"
	case engine.UndoRevertedCheckOut:
		return "Reverted the last check-out"
	case engine.UndoEmpty:
		return "Nothing to undo"
	default:
		return string(status)
	}
}
