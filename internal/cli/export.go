package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doorlist/doorlist/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	OutDir string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the sign-in sheet as CSV",
		Long: `Export the sign-in sheet as CSV.

Writes one row per guest with presence flags and the latest check-in/out
times. The file is named sign-in-<timestamp>.csv and lands on the desktop
unless --out (or the configured export directory) says otherwise.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "output directory (default: configured export dir, then desktop)")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	svc, cfg, err := openService(opts.RootOptions)
	if err != nil {
		return err
	}
	defer svc.Close()

	outDir := opts.OutDir
	if outDir == "" {
		outDir = cfg.ExportDir
	}

	path, err := svc.Export(cmd.Context(), outDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "export sign-in sheet", err)
	}

	out := formatter(opts.RootOptions, cmd)
	return out.Successf(map[string]string{"path": path}, "Exported %s", path)
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "stats",
		Short:         "Show the live attendance snapshot",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(rootOpts)
			if err != nil {
				return err
			}
			defer svc.Close()

			stats, err := svc.Stats(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "load stats", err)
			}

			out := formatter(rootOpts, cmd)
			return out.Successf(stats, "%s", renderStats(stats))
		},
	}
}

func renderStats(s store.Stats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Guests: %d  Check-ins: %d  Check-outs: %d  Present: %d",
		s.TotalGuests, s.TotalCheckIns, s.TotalCheckOuts, s.CurrentlyPresent)

	if len(s.PresentGuests) > 0 {
		b.WriteString("\n\nCurrently present:")
		for _, g := range s.PresentGuests {
			fmt.Fprintf(&b, "\n  %s", g.DisplayName)
			if g.InTS != nil {
				fmt.Fprintf(&b, " (in %s)", *g.InTS)
			}
		}
	}

	if len(s.TopHosts) > 0 {
		b.WriteString("\n\nTop hosts:")
		for _, m := range s.TopHosts {
			fmt.Fprintf(&b, "\n  %s: %d guests, %d present", m.MemberHost, m.TotalGuests, m.PresentGuests)
		}
	}

	return b.String()
}
