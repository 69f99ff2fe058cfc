package cli

import (
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the attendance database",
		Long: `Create the attendance database and bring its schema up to date.

Running init on an existing database is safe; schema migrations are applied
as needed. Every other command also opens the database this way, so init is
only required when you want to provision the file ahead of time.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := openService(rootOpts)
			if err != nil {
				return err
			}
			defer svc.Close()

			out := formatter(rootOpts, cmd)
			return out.Successf(
				map[string]string{"db_path": cfg.DBPath},
				"Database ready at %s", cfg.DBPath,
			)
		},
	}
}
