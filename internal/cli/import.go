package cli

import (
	"github.com/spf13/cobra"

	"github.com/doorlist/doorlist/internal/roster"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Mode string
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a guest roster from a CSV file",
		Long: `Import a guest roster from a CSV file.

Rows need a guest-names column; member name, check-in/out flags, and
timestamps are optional. A guest-names cell may hold several names joined
by commas, "and", or "&". Existing guests (same name and host) are skipped.

Example:
  doorlist import roster.csv --mode append`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", string(roster.ModeAppend), "import mode (append|replace)")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	mode, err := roster.ParseMode(opts.Mode)
	if err != nil {
		return WrapExitError(ExitCommandError, "parse --mode", err)
	}

	svc, _, err := openService(opts.RootOptions)
	if err != nil {
		return err
	}
	defer svc.Close()

	out := formatter(opts.RootOptions, cmd)
	out.VerboseLog("importing %s (mode %s)", path, mode)

	summary, err := svc.ImportFile(cmd.Context(), path, mode)
	if err != nil {
		return WrapExitError(ExitCommandError, "import roster", err)
	}

	return out.Successf(summary,
		"Imported %d new guests from %d rows", summary.Inserted, summary.TotalRows)
}
