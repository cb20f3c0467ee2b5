package io

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/pedsignal/pkg/errors"
	"github.com/matzehuels/pedsignal/pkg/pedigree"
)

// Columns holds the three parallel arrays of a pedigree table.
type Columns struct {
	IDs     []pedigree.ID
	Fathers []pedigree.ID
	Mothers []pedigree.ID
}

// Len returns the number of rows.
func (c Columns) Len() int { return len(c.IDs) }

// ReadColumns parses a pedigree table from r without building a graph.
// The first non-comment, non-blank line is the header and is skipped.
func ReadColumns(r io.Reader) (Columns, error) {
	var cols Columns
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	header := true
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if header {
			header = false
			continue
		}
		if len(fields) < 3 {
			return Columns{}, errors.New(errors.ErrCodeInvalidFormat,
				"line %d: want at least 3 columns, got %d", lineNo, len(fields))
		}

		var row [3]pedigree.ID
		for j := range row {
			v, err := strconv.ParseInt(fields[j], 10, 64)
			if err != nil {
				return Columns{}, errors.Wrap(errors.ErrCodeInvalidFormat, err,
					"line %d: column %d is not an integer: %q", lineNo, j+1, fields[j])
			}
			row[j] = v
		}
		cols.IDs = append(cols.IDs, row[0])
		cols.Fathers = append(cols.Fathers, row[1])
		cols.Mothers = append(cols.Mothers, row[2])
	}
	if err := sc.Err(); err != nil {
		return Columns{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read pedigree")
	}
	return cols, nil
}

// ReadPedigree parses a pedigree table from r and builds the graph.
// ReadPedigree does not close r.
func ReadPedigree(r io.Reader) (*pedigree.Graph, error) {
	cols, err := ReadColumns(r)
	if err != nil {
		return nil, err
	}
	if cols.Len() == 0 {
		return nil, errors.New(errors.ErrCodeEmptyPedigree, "pedigree has no individuals")
	}
	g, err := pedigree.New(cols.IDs, cols.Fathers, cols.Mothers)
	if err != nil {
		return nil, errors.FromCore(err)
	}
	return g, nil
}

// ImportPedigree reads the pedigree file at path.
func ImportPedigree(path string) (*pedigree.Graph, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "pedigree file not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	g, err := ReadPedigree(f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "%s", path)
	}
	return g, nil
}
