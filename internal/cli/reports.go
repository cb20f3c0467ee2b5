package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	pio "github.com/matzehuels/pedsignal/pkg/io"
	"github.com/matzehuels/pedsignal/pkg/store"
)

// reportsCommand creates the reports command.
func (c *CLI) reportsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List and show saved analysis reports",
		Long: `List and show reports saved with --save.

Reports live in the store configured by store.backend: "file" keeps them
under store.dir, "mongo" in a MongoDB collection. The default in-memory store
does not outlive a single command.`,
	}

	cmd.AddCommand(c.reportsListCommand())
	cmd.AddCommand(c.reportsShowCommand())

	return cmd
}

// reportsListCommand creates the "reports list" subcommand.
func (c *CLI) reportsListCommand() *cobra.Command {
	var (
		kind  string
		limit int
		out   outputFlags
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			reports, err := st.List(ctx, store.ListOptions{Kind: kind, Limit: limit})
			if err != nil {
				return fmt.Errorf("list reports: %w", err)
			}
			if done, err := out.emit(cmd.OutOrStdout(), reports); done || err != nil {
				return err
			}

			if len(reports) == 0 {
				printInfo("No reports")
				return nil
			}
			for _, r := range reports {
				printKeyValue(r.Kind, fmt.Sprintf("%s  %s", StyleHighlight.Render(r.ID), StyleDim.Render(r.CreatedAt.Format("2006-01-02 15:04"))))
			}
			return nil
		},
	}

	out.register(cmd)
	cmd.Flags().StringVar(&kind, "kind", "", "only list reports of this kind (cones, climb)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of reports")

	return cmd
}

// reportsShowCommand creates the "reports show" subcommand.
func (c *CLI) reportsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Print a saved report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			runner := c.bareRunner(ctx).WithStore(st)
			defer runner.Close(ctx)

			rep, err := runner.Report(ctx, args[0])
			if err != nil {
				return err
			}
			return pio.WriteJSON(cmd.OutOrStdout(), rep)
		},
	}
}
