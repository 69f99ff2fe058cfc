package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doorlist/doorlist/internal/store"
)

// SearchOptions holds flags for the search and members commands.
type SearchOptions struct {
	*RootOptions
	Limit int
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search guests by name",
		Long: `Search guests by name.

Matches on word prefixes first ("jo sm" finds John Smith), then falls back
to substring matching. With no query, lists guests alphabetically.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runSearch(opts, query, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", store.DefaultSearchLimit, "maximum results")

	return cmd
}

func runSearch(opts *SearchOptions, query string, cmd *cobra.Command) error {
	svc, _, err := openService(opts.RootOptions)
	if err != nil {
		return err
	}
	defer svc.Close()

	guests, err := svc.SearchGuests(cmd.Context(), query, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "search guests", err)
	}

	out := formatter(opts.RootOptions, cmd)
	return out.Successf(guests, "%s", renderGuests(guests))
}

// NewMembersCommand creates the members command.
func NewMembersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "members [query]",
		Short:         "List member hosts with guest counts",
		Long:          "List member hosts with total and currently present guest counts, busiest first. An optional query filters hosts by name substring.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runMembers(opts, query, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", store.DefaultSearchLimit, "maximum results")

	return cmd
}

func runMembers(opts *SearchOptions, query string, cmd *cobra.Command) error {
	svc, _, err := openService(opts.RootOptions)
	if err != nil {
		return err
	}
	defer svc.Close()

	members, err := svc.SearchMembers(cmd.Context(), query, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "search members", err)
	}

	out := formatter(opts.RootOptions, cmd)
	return out.Successf(members, "%s", renderMembers(members))
}

// NewHostCommand creates the host command.
func NewHostCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "host <member name>",
		Short:         "List the guests a member hosts",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(rootOpts)
			if err != nil {
				return err
			}
			defer svc.Close()

			guests, err := svc.GuestsForMember(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "list hosted guests", err)
			}

			out := formatter(rootOpts, cmd)
			return out.Successf(guests, "%s", renderGuests(guests))
		},
	}

	return cmd
}

func renderGuests(guests []store.GuestResult) string {
	if len(guests) == 0 {
		return "No guests found"
	}

	var b strings.Builder
	for i, g := range guests {
		if i > 0 {
			b.WriteByte('\n')
		}
		mark := "   "
		if g.IsCheckedIn {
			mark = "IN "
		}
		fmt.Fprintf(&b, "%s %4d  %s", mark, g.ID, g.DisplayName)
		if g.MemberHost != nil && *g.MemberHost != "" {
			fmt.Fprintf(&b, "  (host: %s)", *g.MemberHost)
		}
	}
	return b.String()
}

func renderMembers(members []store.MemberResult) string {
	if len(members) == 0 {
		return "No members found"
	}

	var b strings.Builder
	for i, m := range members {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %d guests, %d present", m.MemberHost, m.TotalGuests, m.PresentGuests)
	}
	return b.String()
}
