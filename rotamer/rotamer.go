// Package rotamer has the catalog of RNA backbone suite conformers.
// Each rotamer has a short code, the sugar puckers at its two ends and
// the mean and spread of the seven torsions from the delta of one
// nucleotide to the delta of the next.
// The catalog is read once and never changed. Everybody shares the
// same *Catalog.
package rotamer

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sync"

	"github.com/andrew-torda/suitebuild/tables"
)

// Pucker is a sugar ring conformation. The values are the names
// people use, 3 for C3'-endo and 2 for C2'-endo.
type Pucker uint8

const (
	C2Endo Pucker = 2
	C3Endo Pucker = 3
)

func (p Pucker) String() string {
	switch p {
	case C2Endo:
		return "C2'-endo"
	case C3Endo:
		return "C3'-endo"
	}
	return fmt.Sprintf("Pucker(%d)", uint8(p))
}

// deltaCut separates the two puckers. C3'-endo deltas sit near 84,
// C2'-endo near 147.
const deltaCut = 115

// PuckerFromDelta classifies a sugar by its delta torsion.
func PuckerFromDelta(delta float64) Pucker {
	if delta < deltaCut {
		return C3Endo
	}
	return C2Endo
}

// Angle is a mean and standard deviation, in degrees.
type Angle struct {
	Mean, Sd float64
}

// Torsion indexes the seven torsions of a suite, in chain order.
type Torsion uint8

const (
	PrevDelta Torsion = iota
	Epsilon
	Zeta
	Alpha
	Beta
	Gamma
	Delta
	NTorsion
)

var torsionNames = [NTorsion]string{"prev delta", "epsilon", "zeta", "alpha", "beta", "gamma", "delta"}

func (t Torsion) String() string {
	if t < NTorsion {
		return torsionNames[t]
	}
	return fmt.Sprintf("Torsion(%d)", uint8(t))
}

// Stats has the torsion statistics for one rotamer.
type Stats struct {
	PrevDelta, Epsilon, Zeta, Alpha, Beta, Gamma, Delta Angle
}

// Get lets one loop over the torsions.
func (s *Stats) Get(t Torsion) Angle {
	switch t {
	case PrevDelta:
		return s.PrevDelta
	case Epsilon:
		return s.Epsilon
	case Zeta:
		return s.Zeta
	case Alpha:
		return s.Alpha
	case Beta:
		return s.Beta
	case Gamma:
		return s.Gamma
	case Delta:
		return s.Delta
	}
	panic("rotamer: torsion out of range " + t.String())
}

func (s *Stats) set(t Torsion, a Angle) {
	switch t {
	case PrevDelta:
		s.PrevDelta = a
	case Epsilon:
		s.Epsilon = a
	case Zeta:
		s.Zeta = a
	case Alpha:
		s.Alpha = a
	case Beta:
		s.Beta = a
	case Gamma:
		s.Gamma = a
	case Delta:
		s.Delta = a
	}
}

// Rotamer is one conformer class.
type Rotamer struct {
	Code       string
	Start, End Pucker // sugar at the 5' and 3' ends of the suite
	Stats
}

func (r *Rotamer) String() string { return r.Code }

// Compatible says whether rotamer b may follow rotamer a along a
// connected chain. They share a sugar, so the puckers must agree.
func Compatible(a, b *Rotamer) bool { return a.End == b.Start }

// Catalog is the fixed list of rotamers. Order matters. It is the
// order of the table and is used to break ties.
type Catalog struct {
	rots   []*Rotamer
	byCode map[string]*Rotamer
}

// Columns: code, start, end, then a mean and sd for each torsion.
const nField = 3 + 2*int(NTorsion)

//go:embed data/rotdata.csv
var rotdata []byte

var (
	dfltOnce sync.Once
	dfltCat  *Catalog
)

// Default returns the built in catalog. It is parsed on the first call.
// The embedded table is part of the program, so if it is broken we
// have a bug and panic.
func Default() *Catalog {
	dfltOnce.Do(func() {
		var err error
		if dfltCat, err = read(io.NopCloser(bytes.NewReader(rotdata))); err != nil {
			panic("rotamer: broken built in table: " + err.Error())
		}
	})
	return dfltCat
}

// Load reads a replacement table. It has to have the same layout
// as the built in one.
func Load(fname string) (*Catalog, error) {
	rows, err := tables.Read(fname)
	if err != nil {
		return nil, err
	}
	cat, err := fromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return cat, nil
}

func read(rdr io.ReadCloser) (*Catalog, error) {
	rows, err := tables.ReadFrom(rdr)
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}

func parsePucker(s string) (Pucker, error) {
	switch s {
	case "2":
		return C2Endo, nil
	case "3":
		return C3Endo, nil
	}
	return 0, fmt.Errorf("pucker must be 2 or 3, not %q", s)
}

// fromRows builds a catalog. Codes must be unique.
func fromRows(rows []tables.Row) (*Catalog, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rotamers in table")
	}
	if err := tables.CheckArity(rows, nField); err != nil {
		return nil, err
	}
	cat := &Catalog{byCode: make(map[string]*Rotamer, len(rows))}
	for _, row := range rows {
		r := &Rotamer{Code: row.Fields[0]}
		var err error
		if r.Start, err = parsePucker(row.Fields[1]); err != nil {
			return nil, fmt.Errorf("line %d: %w", row.Line, err)
		}
		if r.End, err = parsePucker(row.Fields[2]); err != nil {
			return nil, fmt.Errorf("line %d: %w", row.Line, err)
		}
		vals, err := row.Floats(3)
		if err != nil {
			return nil, err
		}
		for t := PrevDelta; t < NTorsion; t++ {
			a := Angle{Mean: vals[2*t], Sd: vals[2*t+1]}
			if a.Sd <= 0 {
				return nil, fmt.Errorf("line %d: %s of %s has sd %g", row.Line, t, r.Code, a.Sd)
			}
			r.set(t, a)
		}
		if _, dup := cat.byCode[r.Code]; dup {
			return nil, fmt.Errorf("line %d: rotamer %s appears twice", row.Line, r.Code)
		}
		cat.byCode[r.Code] = r
		cat.rots = append(cat.rots, r)
	}
	return cat, nil
}

// Len is the number of rotamers.
func (c *Catalog) Len() int { return len(c.rots) }

// Index returns the i'th rotamer in catalog order.
func (c *Catalog) Index(i int) *Rotamer { return c.rots[i] }

// Lookup finds a rotamer by code.
func (c *Catalog) Lookup(code string) (*Rotamer, bool) {
	r, ok := c.byCode[code]
	return r, ok
}

// Position is the index of a code in the catalog, or -1.
func (c *Catalog) Position(code string) int {
	for i, r := range c.rots {
		if r.Code == code {
			return i
		}
	}
	return -1
}

// Codes returns the codes in catalog order.
func (c *Catalog) Codes() []string {
	ret := make([]string, len(c.rots))
	for i, r := range c.rots {
		ret[i] = r.Code
	}
	return ret
}
