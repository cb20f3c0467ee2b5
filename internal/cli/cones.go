package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pedsignal/pkg/errors"
	"github.com/matzehuels/pedsignal/pkg/pipeline"
	"github.com/matzehuels/pedsignal/pkg/store"
)

// analysisFlags are shared by cones and climb.
type analysisFlags struct {
	noCache bool
	refresh bool
	save    bool
}

func (a *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&a.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&a.refresh, "refresh", false, "recompute and overwrite the cached result")
	cmd.Flags().BoolVar(&a.save, "save", false, "save the result as a report")
}

// conesCommand creates the cones command.
func (c *CLI) conesCommand() *cobra.Command {
	var (
		out  outputFlags
		opts analysisFlags
	)

	cmd := &cobra.Command{
		Use:   "cones [pedigree] [id...]",
		Short: "Find the common ancestors and descent cones of a group",
		Long: `Find the common ancestors and descent cones of a group of individuals.

A common ancestor is in the lineage of every individual in the group. Its
descent cone holds the group members and ancestors that lie on a path from
that ancestor down to the group. IDs may be separated by spaces or commas.

Results are cached; --refresh recomputes them.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCones(cmd, args[0], args[1:], out, opts)
		},
	}

	out.register(cmd)
	opts.register(cmd)

	return cmd
}

func (c *CLI) runCones(cmd *cobra.Command, path string, rawIDs []string, out outputFlags, flags analysisFlags) error {
	ctx := cmd.Context()
	ids, err := errors.ParseIndividualIDs(rawIDs)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(context.WithoutCancel(ctx))

	p, err := runner.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("load pedigree: %w", err)
	}

	res, cacheHit, err := runner.ConesWithCacheInfo(ctx, p, pipeline.ConesOptions{
		IDs:     ids,
		Refresh: flags.refresh,
		Logger:  loggerFromContext(ctx),
	})
	if err != nil {
		return fmt.Errorf("resolve cones: %w", err)
	}

	reportID, err := c.maybeSave(ctx, runner, flags.save, store.KindCones, p, res)
	if err != nil {
		return err
	}

	if done, err := out.emit(cmd.OutOrStdout(), res); done || err != nil {
		return err
	}

	cones := res.Cones
	if cones.NoCommonAncestors {
		printWarning("No common ancestors for %s", formatIDs(res.Group))
	} else {
		printSuccess("%s common ancestors", StyleNumber.Render(fmt.Sprint(len(cones.CommonAncestors))))
		for _, anc := range cones.CommonAncestors {
			printKeyValue(fmt.Sprint(anc), "cone "+formatIDs(cones.ConeInds[anc].Sorted()))
		}
		printNewline()
		printInfo("Cones per individual")
		for _, id := range res.Group {
			printKeyValue(fmt.Sprint(id), formatIDs(cones.IndCones[id].Sorted()))
		}
	}
	printAnalysisStats(p.Graph.Len(), len(res.Group), cacheHit)
	printReportID(reportID)
	return nil
}

// maybeSave stores v as a report when requested and returns its ID.
func (c *CLI) maybeSave(ctx context.Context, runner *pipeline.Runner, save bool, kind string, p *pipeline.Pedigree, v any) (string, error) {
	if !save {
		return "", nil
	}
	if _, ok := runner.Store.(*store.MemoryStore); ok {
		printWarning("Report store is in memory; set store.backend to keep reports")
	}
	rep, err := runner.Save(ctx, kind, p, v)
	if err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return rep.ID, nil
}

func printReportID(id string) {
	if id == "" {
		return
	}
	printNewline()
	printKeyValue("Report", StyleHighlight.Render(id))
	printNextStep("Show it again", fmt.Sprintf("%s reports show %s", appName, id))
}
