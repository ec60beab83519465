// 3 Aug 2020
// Package tables reads the small static tables we live on, rotamer
// statistics and sugar templates, and the likelihood and atom tables
// users give us.
// A table is lines of fields separated by white space or commas.
// A # followed by a space, a tab or the end of the line starts a comment.
// A # stuck to something else is data, since "#a" is a rotamer name.
// Blank lines are skipped.
// Files on disk are memory mapped. If they are gzipped, they are
// decompressed on the way through.
package tables

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/edsrzf/mmap-go"

	"github.com/andrew-torda/suitebuild/pdb/zwrap"
)

// Row is one line of a table. Line is the line number in the input,
// counting from one, so error messages can point at it.
type Row struct {
	Line   int
	Fields []string
}

// splitFn says where fields end.
func splitFn(r rune) bool {
	return r == ',' || r == ' ' || r == '\t' || r == '\r'
}

// stripComment chops off a comment, if there is one.
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != '#' {
			continue
		}
		if i+1 == len(line) || line[i+1] == ' ' || line[i+1] == '\t' {
			return line[:i]
		}
	}
	return line
}

// Parse reads rows until the end of the reader.
func Parse(rdr io.Reader) ([]Row, error) {
	var rows []Row
	scanner := bufio.NewScanner(rdr)
	for n := 1; scanner.Scan(); n++ {
		line := stripComment(scanner.Text())
		if f := strings.FieldsFunc(line, splitFn); len(f) > 0 {
			rows = append(rows, Row{Line: n, Fields: f})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	return rows, nil
}

// Read maps a file into memory and parses it. A gzipped file is
// spotted by its magic number, not its name.
func Read(fname string) ([]Row, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	fi, err := fp.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 { // mmap will not map nothing
		return nil, nil
	}
	mm, err := mmap.Map(fp, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", fname, err)
	}
	defer mm.Unmap()
	zr, err := zwrap.WrapMaybe(io.NopCloser(bytes.NewReader(mm)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	defer zr.Close()
	rows, err := Parse(zr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return rows, nil
}

// ReadFrom is Read for something already open, like an embedded file
// or standard input. It closes rdr.
func ReadFrom(rdr io.ReadCloser) ([]Row, error) {
	zr, err := zwrap.WrapMaybe(rdr)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return Parse(zr)
}

// Floats converts fields from onwards to numbers.
func (r Row) Floats(from int) ([]float64, error) {
	if from > len(r.Fields) {
		return nil, fmt.Errorf("line %d: wanted at least %d fields", r.Line, from)
	}
	ret := make([]float64, len(r.Fields)-from)
	for i, s := range r.Fields[from:] {
		var err error
		if ret[i], err = strconv.ParseFloat(s, 64); err != nil {
			return nil, fmt.Errorf("line %d field %d: %w", r.Line, i+from+1, err)
		}
	}
	return ret, nil
}

// CheckArity makes sure every row has exactly n fields. This is the
// only check we make on a table's layout.
func CheckArity(rows []Row, n int) error {
	for _, r := range rows {
		if len(r.Fields) != n {
			return fmt.Errorf("line %d: got %d fields, wanted %d", r.Line, len(r.Fields), n)
		}
	}
	return nil
}
