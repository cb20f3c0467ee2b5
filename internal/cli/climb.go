package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pedsignal/pkg/errors"
	"github.com/matzehuels/pedsignal/pkg/pipeline"
	"github.com/matzehuels/pedsignal/pkg/store"
)

// climbFlags holds the climb-specific flags.
type climbFlags struct {
	samples      []string
	probands     int
	steps        int
	restrictCone bool
	inherited    bool
	top          int
}

// climbCommand creates the climb command.
func (c *CLI) climbCommand() *cobra.Command {
	var (
		out   outputFlags
		flags analysisFlags
		cf    climbFlags
	)

	cmd := &cobra.Command{
		Use:   "climb [pedigree]",
		Short: "Propagate sample weights up through the pedigree",
		Long: `Propagate a weight from sample individuals up through their ancestors.

Every sample starts with weight 1. Each generation, every individual on the
frontier adds its full weight to each of its known parents, and those parents
form the next frontier. Climbing stops when no frontier individual has a
known parent, or after --steps generations.

Samples come from --samples, or default to the first --probands probands in
file order. With --restrict-cone the weight only flows through the descent
cones of the samples' common ancestors. With --inherited every ancestor also
gets its expected genetic share, halved per generation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("probands") {
				cf.probands = c.cfg.Climb.Probands
			}
			if !cmd.Flags().Changed("steps") {
				cf.steps = c.cfg.Climb.MaxSteps
			}
			if !cmd.Flags().Changed("restrict-cone") {
				cf.restrictCone = c.cfg.Climb.RestrictCone
			}
			return c.runClimb(cmd, args[0], cf, out, flags)
		},
	}

	out.register(cmd)
	flags.register(cmd)
	cmd.Flags().StringSliceVarP(&cf.samples, "samples", "s", nil, "sample individual IDs (comma-separated)")
	cmd.Flags().IntVarP(&cf.probands, "probands", "n", pipeline.DefaultProbands, "number of probands to sample when --samples is not set")
	cmd.Flags().IntVar(&cf.steps, "steps", 0, "maximum generations to climb (0: until exhausted)")
	cmd.Flags().BoolVar(&cf.restrictCone, "restrict-cone", false, "confine the climb to the samples' descent cones")
	cmd.Flags().BoolVar(&cf.inherited, "inherited", false, "also report the expected inherited share per ancestor")
	cmd.Flags().IntVar(&cf.top, "top", defaultTop, "number of weighted individuals to print")

	return cmd
}

func (c *CLI) runClimb(cmd *cobra.Command, path string, cf climbFlags, out outputFlags, flags analysisFlags) error {
	ctx := cmd.Context()
	samples, err := errors.ParseIndividualIDs(cf.samples)
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

	logger := loggerFromContext(ctx)
	quiet := out.json || logger.GetLevel() <= LogDebug

	var spinner *Spinner
	if !quiet {
		spinner = newSpinnerWithContext(ctx, "Climbing...")
		spinner.Start()
	}

	res, cacheHit, err := runner.ClimbWithCacheInfo(ctx, p, pipeline.ClimbOptions{
		Samples:      samples,
		Probands:     cf.probands,
		MaxSteps:     cf.steps,
		RestrictCone: cf.restrictCone,
		Inherited:    cf.inherited,
		Refresh:      flags.refresh,
		Logger:       logger,
	})
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Climb failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return fmt.Errorf("climb: %w", err)
	}

	reportID, err := c.maybeSave(ctx, runner, flags.save, store.KindClimb, p, res)
	if err != nil {
		return err
	}

	if done, err := out.emit(cmd.OutOrStdout(), res); done || err != nil {
		return err
	}

	printSuccess("Climbed %s generations from %s samples (%s)",
		StyleNumber.Render(fmt.Sprint(res.Generations)),
		StyleNumber.Render(fmt.Sprint(len(res.Samples))),
		res.State)
	printDetail("samples %s", formatIDs(res.Samples))
	if cf.restrictCone && !res.ConeRestricted {
		printWarning("Samples share no common ancestor; climbed without cone restriction")
	}
	for _, step := range res.Trajectory {
		printDetail("generation %d: %d on frontier", step.Generation, step.Frontier)
	}

	top := res.Top(cf.top)
	if len(top) > 0 {
		printNewline()
		printInfo("Top %d of %d weighted individuals", len(top), len(res.Weights))
		for _, e := range top {
			value := StyleValue.Render(fmt.Sprintf("%g", e.Weight))
			if e.Inherited != nil {
				value += StyleDim.Render(fmt.Sprintf("  inherited %.4g", *e.Inherited))
			}
			if e.Founder {
				value += StyleDim.Render("  founder")
			}
			printKeyValue(fmt.Sprint(e.ID), value)
		}
	}

	printAnalysisStats(p.Graph.Len(), len(res.Samples), cacheHit)
	printReportID(reportID)
	return nil
}
