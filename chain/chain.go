// Package chain holds the nucleotides of one RNA chain and the things
// which need neighbours to be calculated. Are two nucleotides bonded ?
// What are the pseudotorsions ? Each nucleotide owns its atoms. When
// we need atoms from a neighbour, we copy them.
package chain

import (
	"github.com/andrew-torda/suitebuild/geom"
	"github.com/andrew-torda/suitebuild/pdb/cmmn"
)

const (
	bondCut   = 3.0 // O3'(i-1) to P(i), further than this is not bonded
	pseudoCut = 6.0 // C1'(i-1) to P(i), used when there is no O3'
)

// Measure is a value which may not be available, usually because an
// atom is missing or the neighbour is not bonded.
type Measure struct {
	Val float64
	Ok  bool
}

type memo struct {
	done bool
	m    Measure
}

// get returns the cached value or calculates and stores it.
func (c *memo) get(calc func() Measure) Measure {
	if !c.done {
		c.m, c.done = calc(), true
	}
	return c.m
}

// Nucleotide is one residue. Break marks an explicit chain break
// before this nucleotide, whatever the distances say.
type Nucleotide struct {
	Num   int
	Name  string
	Atoms cmmn.AtomSet
	Break bool
	conn  memo // connected to the nucleotide before
	etaP   memo
	thetaP memo
	pperp  memo
}

// NewNucleotide makes a nucleotide with its own copy of the atoms.
func NewNucleotide(num int, name string, atoms cmmn.AtomSet) *Nucleotide {
	return &Nucleotide{Num: num, Name: name, Atoms: atoms.Copy()}
}

// reset throws away the measures calculated from atom positions.
// Connectivity is decided once, from the input, and kept.
func (n *Nucleotide) reset() {
	n.etaP, n.thetaP, n.pperp = memo{}, memo{}, memo{}
}

// BaseNames gives the names of the glycosidic nitrogen and the base
// carbon after it, which we need for chi. Purines have N9, C4 and
// pyrimidines N1, C2.
func (n *Nucleotide) BaseNames() (string, string) {
	if n.Atoms.Has("N9") {
		return "N9", "C4"
	}
	return "N1", "C2"
}

// Chain is the nucleotides in order, 5' to 3'.
type Chain []*Nucleotide

// Connected says if nucleotide i is bonded to nucleotide i-1. The
// answer is calculated the first time we are asked and then kept, even
// if atoms are rebuilt. Call it for the whole chain (Suites does) before
// moving anything.
func (c Chain) Connected(i int) bool {
	if i <= 0 || i >= len(c) {
		return false
	}
	m := c[i].conn.get(func() Measure {
		return Measure{Ok: c.connected(i)}
	})
	return m.Ok
}

func (c Chain) connected(i int) bool {
	cur, prev := c[i], c[i-1]
	if cur.Break {
		return false
	}
	p, ok := cur.Atoms[cmmn.P]
	if !ok {
		return false
	}
	if o3, ok := prev.Atoms[cmmn.O3]; ok {
		return geom.Dist(o3, p) < bondCut
	}
	if c1, ok := prev.Atoms[cmmn.C1]; ok {
		return geom.Dist(c1, p) < pseudoCut
	}
	return false
}

// Suites returns the index of the second nucleotide of every suite.
// Suite i runs from the sugar of i-1 through the phosphate of i.
func (c Chain) Suites() []int {
	var ret []int
	for i := 1; i < len(c); i++ {
		if c.Connected(i) {
			ret = append(ret, i)
		}
	}
	return ret
}

// torsion is the dihedral through four atoms taken from nucleotides
// at the given offsets from i. Every pair of neighbours used has to
// be bonded.
func (c Chain) torsion(i int, offs [4]int, names [4]string) Measure {
	var x [4]cmmn.Xyz
	for j, off := range offs {
		k := i + off
		if k < 0 || k >= len(c) {
			return Measure{}
		}
		if off < 0 && !c.Connected(k+1) || off > 0 && !c.Connected(k) {
			return Measure{}
		}
		var ok bool
		if x[j], ok = c[k].Atoms[names[j]]; !ok {
			return Measure{}
		}
	}
	return Measure{Val: geom.Torsion(x[0], x[1], x[2], x[3]), Ok: true}
}

// EtaPrime is eta', the pseudotorsion C1'(i-1), P(i), C1'(i), P(i+1).
// Plain eta uses C4' where this uses C1'.
func (c Chain) EtaPrime(i int) Measure {
	if i < 0 || i >= len(c) {
		return Measure{}
	}
	return c[i].etaP.get(func() Measure {
		return c.torsion(i, [4]int{-1, 0, 0, 1}, [4]string{cmmn.C1, cmmn.P, cmmn.C1, cmmn.P})
	})
}

// ThetaPrime is theta', the pseudotorsion P(i), C1'(i), P(i+1),
// C1'(i+1). Plain theta uses C4' where this uses C1'.
func (c Chain) ThetaPrime(i int) Measure {
	if i < 0 || i >= len(c) {
		return Measure{}
	}
	return c[i].thetaP.get(func() Measure {
		return c.torsion(i, [4]int{0, 0, 1, 1}, [4]string{cmmn.P, cmmn.C1, cmmn.P, cmmn.C1})
	})
}

// Pperp is the distance from the 3' phosphate, which belongs to the
// next nucleotide, to the line along the glycosidic bond. It is the
// classic way to guess a pucker without a sugar. Long is C3'-endo.
func (c Chain) Pperp(i int) Measure {
	if i < 0 || i >= len(c) {
		return Measure{}
	}
	return c[i].pperp.get(func() Measure {
		if !c.Connected(i + 1) {
			return Measure{}
		}
		nuc := c[i]
		nname, _ := nuc.BaseNames()
		x, err := nuc.Atoms.GetN(cmmn.C1, nname)
		if err != nil {
			return Measure{}
		}
		p, ok := c[i+1].Atoms[cmmn.P]
		if !ok {
			return Measure{}
		}
		d, err := geom.DistToLine(p, x[0], x[1])
		if err != nil {
			return Measure{}
		}
		return Measure{Val: d, Ok: true}
	})
}

// Rebuild replaces the atoms of nucleotide i. Pseudotorsions and
// Pperp calculated from them, here or in the neighbours, are
// forgotten. Connectivity is not.
func (c Chain) Rebuild(i int, atoms cmmn.AtomSet) {
	c[i].Atoms = atoms.Copy()
	for k := i - 1; k <= i+1; k++ {
		if k >= 0 && k < len(c) {
			c[k].reset()
		}
	}
}

// Prev and next atoms copied into a working set.
var (
	prevAtoms = []string{cmmn.C5, cmmn.C4, cmmn.C3, cmmn.O3, cmmn.C2}
	nextAtoms = []string{cmmn.P, cmmn.O5, cmmn.C5, cmmn.C4, cmmn.C3}
)

// Project makes the working set for refining nucleotide i. It is a
// copy of the nucleotide's atoms, with the glycosidic nitrogen and
// the base carbon also under the names cmmn.N and cmmn.NC, plus
// copies of atoms from bonded neighbours, renamed with cmmn.PrevSfx
// and cmmn.NextSfx. Nothing in the chain is changed.
func (c Chain) Project(i int) cmmn.AtomSet {
	nuc := c[i]
	work := nuc.Atoms.Copy()
	nname, cname := nuc.BaseNames()
	if x, ok := nuc.Atoms[nname]; ok {
		work[cmmn.N] = x
	}
	if x, ok := nuc.Atoms[cname]; ok {
		work[cmmn.NC] = x
	}
	if c.Connected(i) {
		work.CopyIn(c[i-1].Atoms, cmmn.PrevSfx, prevAtoms...)
	}
	if c.Connected(i + 1) {
		work.CopyIn(c[i+1].Atoms, cmmn.NextSfx, nextAtoms...)
	}
	return work
}
