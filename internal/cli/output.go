package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	pio "github.com/matzehuels/pedsignal/pkg/io"
	"github.com/matzehuels/pedsignal/pkg/pedigree"
)

// outputFlags are shared by every command that produces a result document.
type outputFlags struct {
	json   bool
	output string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.json, "json", false, "print the result as JSON on stdout")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write the result as JSON to a file")
}

// emit writes v as JSON to the output file or stdout. It reports false
// when neither was requested and the caller should print a summary.
func (o *outputFlags) emit(w io.Writer, v any) (bool, error) {
	switch {
	case o.output != "":
		if err := pio.ExportJSON(o.output, v); err != nil {
			return true, err
		}
		printFile(o.output)
		return true, nil
	case o.json:
		return true, pio.WriteJSON(w, v)
	}
	return false, nil
}

// formatIDs joins ids, eliding the middle of long lists.
func formatIDs(ids []pedigree.ID) string {
	const maxShown = 12
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, 0, min(len(ids), maxShown+1))
	for i, id := range ids {
		if i == maxShown-2 && len(ids) > maxShown {
			parts = append(parts, fmt.Sprintf("… (%d more)", len(ids)-maxShown+1), fmt.Sprint(ids[len(ids)-1]))
			break
		}
		parts = append(parts, fmt.Sprint(id))
	}
	return strings.Join(parts, " ")
}

// formatDistances renders path lengths as "1" or "2,3,3".
func formatDistances(ds []int) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = fmt.Sprint(d)
	}
	return strings.Join(parts, ",")
}
