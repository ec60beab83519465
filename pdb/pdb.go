// This is the upper level for reading and writing coordinates.
// We do not read PDB or mmcif files. Something else turns them into
// atom tables, one atom per line,
//   resnum resname atom x y z
// with a line saying just "break" where the chain is broken. The
// likelihood tables from the rotamer predictor are
//   resnum rotamer probability
// where resnum is the nucleotide at the end of the suite.
// Both go through the tables package, so they may be gzipped and may
// have comments.

package pdb

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/andrew-torda/suitebuild/chain"
	"github.com/andrew-torda/suitebuild/pdb/cmmn"
	"github.com/andrew-torda/suitebuild/pdb/zwrap"
	"github.com/andrew-torda/suitebuild/tables"
)

const breakWord = "break"

// comparefirst says if two words are the same, looking at the length
// of the shorter.
func comparefirst(s, t string) bool {
	l := len(s)
	if len(t) < l {
		l = len(t)
	}
	return l > 0 && s[:l] == t[:l]
}

// lookInFile peeks at the start of a file. If it looks like PDB or
// mmcif, we say so, since people will try it.
func lookInFile(fname string) error {
	pdbWords := []string{"HEADER", "COMPND", "REMARK", "SEQRES", "HETATM", "ATOM  "}
	mmcifWords := []string{"data_", "loop_"}
	fp, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer fp.Close()
	rdr, err := zwrap.WrapMaybe(fp)
	if err != nil {
		return fmt.Errorf("reading %s: %w", fname, err)
	}
	defer rdr.Close()

	const maxTestLines = 20
	scnnr := bufio.NewScanner(rdr)
	for i := 0; scnnr.Scan() && i < maxTestLines; i++ {
		s := scnnr.Text()
		if len(s) < 5 {
			continue
		}
		for _, w := range mmcifWords {
			if comparefirst(s, w) {
				return fmt.Errorf("%s looks like mmcif. We want an atom table", fname)
			}
		}
		for _, w := range pdbWords {
			if comparefirst(s, w) {
				return fmt.Errorf("%s looks like PDB format. We want an atom table", fname)
			}
		}
	}
	return nil
}

// LogWhere decides where to send logged output. "" means throw it away
// and "stdout" means standard output. Anything else is a file name and
// we append to it. The closer is for the file, if there is one.
func LogWhere(outinfo string) (*log.Logger, io.Closer, error) {
	var iowriter io.Writer
	var closer io.Closer = io.NopCloser(nil)
	switch outinfo {
	case "":
		iowriter = io.Discard
	case "stdout":
		iowriter = os.Stdout
	default:
		fp, err := os.OpenFile(outinfo, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, err
		}
		iowriter, closer = fp, fp
	}
	return log.New(iowriter, "", log.Lshortfile), closer, nil
}

// ReadAtoms reads an atom table into a chain.
func ReadAtoms(fname string) (chain.Chain, error) {
	if err := lookInFile(fname); err != nil {
		return nil, err
	}
	rows, err := tables.Read(fname)
	if err != nil {
		return nil, err
	}
	ch, err := ParseAtoms(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return ch, nil
}

// ParseAtoms turns rows into nucleotides. A new nucleotide starts
// whenever the residue number changes.
func ParseAtoms(rows []tables.Row) (chain.Chain, error) {
	var ch chain.Chain
	var atoms cmmn.AtomSet
	var num int
	var name string
	brk, seen := false, make(map[int]bool)
	flush := func() {
		if atoms != nil {
			nuc := chain.NewNucleotide(num, name, atoms)
			nuc.Break = brk
			ch = append(ch, nuc)
			brk, atoms = false, nil
		}
	}
	for _, r := range rows {
		if len(r.Fields) == 1 && strings.EqualFold(r.Fields[0], breakWord) {
			flush()
			brk = true
			continue
		}
		if len(r.Fields) != 6 {
			return nil, fmt.Errorf("line %d: got %d fields, wanted resnum resname atom x y z", r.Line, len(r.Fields))
		}
		n, err := strconv.Atoi(r.Fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: residue number: %w", r.Line, err)
		}
		x, err := r.Floats(3)
		if err != nil {
			return nil, err
		}
		if atoms == nil || n != num {
			flush()
			if seen[n] {
				return nil, fmt.Errorf("line %d: residue %d appears twice", r.Line, n)
			}
			seen[n] = true
			num, name, atoms = n, r.Fields[1], make(cmmn.AtomSet)
		}
		at := r.Fields[2]
		if _, dup := atoms[at]; dup {
			return nil, fmt.Errorf("line %d: residue %d has two %s atoms", r.Line, n, at)
		}
		atoms[at] = cmmn.Xyz{X: x[0], Y: x[1], Z: x[2]}
	}
	flush()
	if len(ch) == 0 {
		return nil, errors.New("no atoms")
	}
	return ch, nil
}

// WriteAtoms writes a chain in the same format we read. Atoms within
// a nucleotide are sorted by name.
func WriteAtoms(w io.Writer, ch chain.Chain) error {
	bw := bufio.NewWriter(w)
	for _, nuc := range ch {
		if nuc.Break {
			fmt.Fprintln(bw, breakWord)
		}
		for _, at := range nuc.Atoms.Names() {
			x := nuc.Atoms[at]
			fmt.Fprintf(bw, "%d %s %s %.3f %.3f %.3f\n", nuc.Num, nuc.Name, at, x.X, x.Y, x.Z)
		}
	}
	return bw.Flush()
}

// Probs are rotamer likelihoods, keyed by the residue number at the
// end of each suite, then by rotamer code.
type Probs map[int]map[string]float64

// ReadProbs reads a likelihood table.
func ReadProbs(fname string) (Probs, error) {
	rows, err := tables.Read(fname)
	if err != nil {
		return nil, err
	}
	p, err := ParseProbs(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return p, nil
}

// ParseProbs checks the layout, but not the codes or values. The
// decoder complains about those.
func ParseProbs(rows []tables.Row) (Probs, error) {
	if err := tables.CheckArity(rows, 3); err != nil {
		return nil, err
	}
	ret := make(Probs)
	for _, r := range rows {
		n, err := strconv.Atoi(r.Fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: residue number: %w", r.Line, err)
		}
		p, err := r.Floats(2)
		if err != nil {
			return nil, err
		}
		if ret[n] == nil {
			ret[n] = make(map[string]float64)
		}
		code := r.Fields[1]
		if _, dup := ret[n][code]; dup {
			return nil, fmt.Errorf("line %d: residue %d has %s twice", r.Line, n, code)
		}
		ret[n][code] = p[0]
	}
	return ret, nil
}

// WriteProbs writes a likelihood table, residues in chain order and
// rotamers in the order given.
func WriteProbs(w io.Writer, p Probs, nums []int, codes []string) error {
	bw := bufio.NewWriter(w)
	for _, n := range nums {
		for _, c := range codes {
			if v, ok := p[n][c]; ok {
				fmt.Fprintf(bw, "%d %s %.6g\n", n, c, v)
			}
		}
	}
	return bw.Flush()
}
