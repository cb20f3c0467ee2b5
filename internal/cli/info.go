package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pedsignal/pkg/errors"
	pio "github.com/matzehuels/pedsignal/pkg/io"
	"github.com/matzehuels/pedsignal/pkg/pedigree"
)

// pedigreeSummary is the JSON form of "info" without individual IDs.
type pedigreeSummary struct {
	Path        string        `json:"path"`
	Hash        string        `json:"hash"`
	Individuals int           `json:"individuals"`
	Founders    []pedigree.ID `json:"founders"`
	Probands    []pedigree.ID `json:"probands"`
}

// individualRecord is the JSON form of one individual in "info".
type individualRecord struct {
	ID        pedigree.ID   `json:"id"`
	Father    pedigree.ID   `json:"father"`
	Mother    pedigree.ID   `json:"mother"`
	Offspring []pedigree.ID `json:"offspring"`
	Founder   bool          `json:"founder"`
	Proband   bool          `json:"proband"`
}

// infoCommand creates the info command.
func (c *CLI) infoCommand() *cobra.Command {
	var (
		out    outputFlags
		export string
	)

	cmd := &cobra.Command{
		Use:   "info [pedigree] [id...]",
		Short: "Summarize a pedigree or individual records",
		Long: `Summarize a pedigree file.

Without IDs, info reports the number of individuals, the founders (no known
parents) and the probands (individuals who are nobody's parent). With IDs,
it prints the parents and offspring of each individual.

The pedigree file is a whitespace-delimited table with a header row whose
first three columns are the individual, father and mother IDs; 0 marks an
unknown parent.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInfo(cmd, args[0], args[1:], out, export)
		},
	}

	out.register(cmd)
	cmd.Flags().StringVar(&export, "export", "", "write the validated pedigree as a normalized table")

	return cmd
}

func (c *CLI) runInfo(cmd *cobra.Command, path string, rawIDs []string, out outputFlags, export string) error {
	ctx := cmd.Context()
	p, err := c.loadPedigree(ctx, path)
	if err != nil {
		return err
	}
	g := p.Graph

	if export != "" {
		if err := pio.ExportPedigree(export, g); err != nil {
			return fmt.Errorf("export pedigree: %w", err)
		}
	}

	if len(rawIDs) > 0 {
		return printRecords(cmd, g, rawIDs, out)
	}

	summary := pedigreeSummary{
		Path:        path,
		Hash:        p.Hash,
		Individuals: g.Len(),
		Founders:    g.Founders(),
		Probands:    g.Probands(),
	}
	if done, err := out.emit(cmd.OutOrStdout(), summary); done || err != nil {
		return err
	}

	printSuccess("%s %s", StyleTitle.Render("Pedigree"), StyleHighlight.Render(path))
	printKeyValue("Individuals", StyleNumber.Render(fmt.Sprint(summary.Individuals)))
	printKeyValue("Founders", fmt.Sprintf("%s  %s", StyleNumber.Render(fmt.Sprint(len(summary.Founders))), StyleDim.Render(formatIDs(summary.Founders))))
	printKeyValue("Probands", fmt.Sprintf("%s  %s", StyleNumber.Render(fmt.Sprint(len(summary.Probands))), StyleDim.Render(formatIDs(summary.Probands))))
	printKeyValue("Hash", StyleDim.Render(p.Hash[:16]))
	if export != "" {
		printFile(export)
	}
	printNewline()
	printNextStep("Climb from the first probands", fmt.Sprintf("%s climb %s", appName, path))
	return nil
}

func printRecords(cmd *cobra.Command, g *pedigree.Graph, rawIDs []string, out outputFlags) error {
	ids, err := errors.ParseIndividualIDs(rawIDs)
	if err != nil {
		return err
	}

	records := make([]individualRecord, 0, len(ids))
	for _, id := range ids {
		father, mother, err := g.ParentsOf(id)
		if err != nil {
			return errors.FromCore(err)
		}
		records = append(records, individualRecord{
			ID:        id,
			Father:    father,
			Mother:    mother,
			Offspring: g.OffspringOf(id),
			Founder:   g.IsFounder(id),
			Proband:   g.IsProband(id),
		})
	}
	if done, err := out.emit(cmd.OutOrStdout(), records); done || err != nil {
		return err
	}

	for i, r := range records {
		if i > 0 {
			printNewline()
		}
		printInfo("Individual %s", StyleNumber.Render(fmt.Sprint(r.ID)))
		printKeyValue("Father", parentLabel(r.Father))
		printKeyValue("Mother", parentLabel(r.Mother))
		printKeyValue("Offspring", formatIDs(r.Offspring))
		switch {
		case r.Founder:
			printDetail("founder")
		case r.Proband:
			printDetail("proband")
		}
	}
	return nil
}

func parentLabel(id pedigree.ID) string {
	if id == pedigree.Sentinel {
		return StyleDim.Render("unknown")
	}
	return fmt.Sprint(id)
}
