package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doorlist/doorlist/internal/engine"
	"github.com/doorlist/doorlist/internal/service"
	"github.com/doorlist/doorlist/internal/store"
)

// DeskOptions holds flags for the desk command.
type DeskOptions struct {
	*RootOptions
	Operator string
}

// NewDeskCommand creates the desk command, an interactive front-desk session.
func NewDeskCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeskOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "desk",
		Short: "Run an interactive front-desk session",
		Long: `Run an interactive front-desk session.

Reads commands from stdin, one per line:

  find <query>     search guests by name
  in <guest-id>    check a guest in
  out <guest-id>   check a guest out (add ! to force: out! <guest-id>)
  undo             revert the last check-in/out
  stats            show the attendance snapshot
  export           write the sign-in sheet CSV
  help             show this list
  quit             end the session`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDesk(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Operator, "operator", "desk", "operator recorded on check-ins and check-outs")

	return cmd
}

func runDesk(opts *DeskOptions, cmd *cobra.Command) error {
	svc, cfg, err := openService(opts.RootOptions)
	if err != nil {
		return err
	}
	defer svc.Close()

	d := &deskSession{
		svc:       svc,
		operator:  opts.Operator,
		exportDir: cfg.ExportDir,
		out:       cmd.OutOrStdout(),
	}
	return d.run(cmd.Context(), cmd.InOrStdin())
}

// deskSession is one interactive session over a line protocol. Errors from
// individual commands are printed and the loop continues; only read errors
// end the session.
type deskSession struct {
	svc       *service.Service
	operator  string
	exportDir string
	out       io.Writer
}

func (d *deskSession) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(d.out, "doorlist desk session. Type 'help' for commands, 'quit' to exit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(d.out, "> ")
		if !scanner.Scan() {
			break
		}

		verb, rest := splitCommand(scanner.Text())
		switch verb {
		case "":
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(d.out, "Goodbye")
			return nil
		case "help":
			d.help()
		case "find", "f":
			d.find(ctx, rest)
		case "in":
			d.toggle(ctx, rest, engine.ActionIn, false)
		case "out":
			d.toggle(ctx, rest, engine.ActionOut, false)
		case "out!":
			d.toggle(ctx, rest, engine.ActionOut, true)
		case "undo", "u":
			d.undo(ctx)
		case "stats":
			d.stats(ctx)
		case "export":
			d.export(ctx)
		default:
			fmt.Fprintf(d.out, "Unknown command %q. Type 'help' for commands.\n", verb)
		}
	}
	return scanner.Err()
}

func (d *deskSession) help() {
	fmt.Fprintln(d.out, "Commands:")
	fmt.Fprintln(d.out, "  find <query>     search guests by name")
	fmt.Fprintln(d.out, "  in <guest-id>    check a guest in")
	fmt.Fprintln(d.out, "  out <guest-id>   check a guest out (out! forces)")
	fmt.Fprintln(d.out, "  undo             revert the last check-in/out")
	fmt.Fprintln(d.out, "  stats            show the attendance snapshot")
	fmt.Fprintln(d.out, "  export           write the sign-in sheet CSV")
	fmt.Fprintln(d.out, "  quit             end the session")
}

func (d *deskSession) find(ctx context.Context, query string) {
	guests, err := d.svc.SearchGuests(ctx, query, store.DefaultSearchLimit)
	if err != nil {
		fmt.Fprintf(d.out, "search failed: %v\n", err)
		return
	}
	fmt.Fprintln(d.out, renderGuests(guests))
}

func (d *deskSession) toggle(ctx context.Context, rest string, action engine.Action, force bool) {
	guestID, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
	if err != nil {
		fmt.Fprintf(d.out, "usage: %s <guest-id>\n", action)
		return
	}

	status, err := d.svc.Toggle(ctx, guestID, action, d.operator, force)
	if err != nil {
		fmt.Fprintf(d.out, "toggle failed: %v\n", err)
		return
	}
	fmt.Fprintln(d.out, toggleMessage(status))
}

func (d *deskSession) undo(ctx context.Context) {
	status, err := d.svc.Undo(ctx)
	if err != nil {
		fmt.Fprintf(d.out, "undo failed: %v\n", err)
		return
	}
	fmt.Fprintln(d.out, undoMessage(status))
}

func (d *deskSession) stats(ctx context.Context) {
	stats, err := d.svc.Stats(ctx)
	if err != nil {
		fmt.Fprintf(d.out, "stats failed: %v\n", err)
		return
	}
	fmt.Fprintln(d.out, renderStats(stats))
}

func (d *deskSession) export(ctx context.Context) {
	path, err := d.svc.Export(ctx, d.exportDir)
	if err != nil {
		fmt.Fprintf(d.out, "export failed: %v\n", err)
		return
	}
	fmt.Fprintf(d.out, "Exported %s\n", path)
}

// splitCommand splits an input line into its verb and the remainder.
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}
	verb, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(verb), strings.TrimSpace(rest)
}
