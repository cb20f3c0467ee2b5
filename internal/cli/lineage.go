package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pedsignal/pkg/errors"
	"github.com/matzehuels/pedsignal/pkg/pedigree"
)

// walkResult is the JSON form of lineage and descendants.
type walkResult struct {
	ID        pedigree.ID        `json:"id"`
	Direction string             `json:"direction"`
	Distances pedigree.Distances `json:"distances,omitempty"`
	Lineage   []pedigree.ID      `json:"lineage,omitempty"`
}

// lineageCommand creates the lineage command.
func (c *CLI) lineageCommand() *cobra.Command {
	var (
		out      outputFlags
		preorder bool
	)

	cmd := &cobra.Command{
		Use:   "lineage [pedigree] [id]",
		Short: "List the ancestors of an individual with their generation distances",
		Long: `List the ancestors of an individual.

Each ancestor is shown with every generation distance at which it is reached:
an ancestor reached through two paths (a pedigree loop) lists two distances.
Parents are at distance 1. A founder has no ancestors.

With --preorder the full closure is printed instead: the individual, then
its father's closure, then its mother's closure, repeats included.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWalk(cmd, args[0], args[1], "up", preorder, out)
		},
	}

	out.register(cmd)
	cmd.Flags().BoolVar(&preorder, "preorder", false, "print the preorder closure instead of distances")

	return cmd
}

// descendantsCommand creates the descendants command.
func (c *CLI) descendantsCommand() *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "descendants [pedigree] [id]",
		Short: "List the descendants of an individual with their generation distances",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWalk(cmd, args[0], args[1], "down", false, out)
		},
	}

	out.register(cmd)

	return cmd
}

func (c *CLI) runWalk(cmd *cobra.Command, path, rawID, direction string, preorder bool, out outputFlags) error {
	id, err := errors.ParseIndividualID(rawID)
	if err != nil {
		return err
	}
	p, err := c.loadPedigree(cmd.Context(), path)
	if err != nil {
		return err
	}

	res := walkResult{ID: id, Direction: direction}
	switch {
	case preorder:
		res.Lineage, err = pedigree.Lineage(p.Graph, id)
	case direction == "up":
		res.Distances, err = pedigree.OrderedLineage(p.Graph, id)
	default:
		res.Distances, err = pedigree.OrderedDescendants(p.Graph, id)
	}
	if err != nil {
		return errors.FromCore(err)
	}

	if done, err := out.emit(cmd.OutOrStdout(), res); done || err != nil {
		return err
	}

	if preorder {
		printSuccess("Lineage of %s", StyleNumber.Render(fmt.Sprint(id)))
		printDetail("%d entries", len(res.Lineage))
		fmt.Println(formatIDs(res.Lineage))
		return nil
	}

	noun := "Ancestors"
	if direction == "down" {
		noun = "Descendants"
	}
	var others []pedigree.ID
	for _, other := range res.Distances.IDs() {
		// Descendants are seeded with id itself; a founder's lineage is
		// the sentinel marker.
		if other != id && other != pedigree.Sentinel {
			others = append(others, other)
		}
	}

	printSuccess("%s of %s: %s", noun, StyleNumber.Render(fmt.Sprint(id)), StyleNumber.Render(fmt.Sprint(len(others))))
	for _, other := range others {
		ds := res.Distances[other]
		line := formatDistances(ds)
		if n := len(ds); n > 1 {
			line += StyleDim.Render(fmt.Sprintf("  (%d paths)", n))
		}
		printKeyValue(fmt.Sprint(other), line)
	}
	return nil
}
