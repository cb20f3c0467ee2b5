package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/pedsignal/pkg/pedigree"
)

// WriteJSON encodes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes v as JSON to the file at path.
func ExportJSON(path string, v any) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(w, v) })
}

// WritePedigree writes g as a tab-separated table with an
// "Ind Father Mother" header, in load order.
func WritePedigree(w io.Writer, g *pedigree.Graph) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("Ind\tFather\tMother\n")

	ids, fathers, mothers := g.Individuals(), g.Fathers(), g.Mothers()
	var buf []byte
	for i := range ids {
		buf = buf[:0]
		buf = strconv.AppendInt(buf, ids[i], 10)
		buf = append(buf, '\t')
		buf = strconv.AppendInt(buf, fathers[i], 10)
		buf = append(buf, '\t')
		buf = strconv.AppendInt(buf, mothers[i], 10)
		buf = append(buf, '\n')
		bw.Write(buf)
	}
	return bw.Flush()
}

// ExportPedigree writes g to the file at path.
func ExportPedigree(path string, g *pedigree.Graph) error {
	return writeFile(path, func(w io.Writer) error { return WritePedigree(w, g) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
