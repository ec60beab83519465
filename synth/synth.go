// Package synth builds RNA chains with ideal geometry for a given
// rotamer string. They are what the rest of the code should be able to
// rebuild from phosphates, C1' and bases alone, so they are mostly for
// testing and for making example input.
package synth

import (
	"fmt"

	"github.com/andrew-torda/suitebuild/build"
	"github.com/andrew-torda/suitebuild/chain"
	"github.com/andrew-torda/suitebuild/geom"
	"github.com/andrew-torda/suitebuild/pdb/cmmn"
	"github.com/andrew-torda/suitebuild/rmsd"
	"github.com/andrew-torda/suitebuild/rotamer"
)

type Xyz = cmmn.Xyz

// Purine base atoms bonded to N9, as bond length and angle at N9.
const (
	bondNC4 = 1.374
	angC4   = 126.6
	bondNC8 = 1.373
	angC8   = 127.7
)

// SeedAtoms are what we keep when we pretend to have a low resolution
// structure.
var SeedAtoms = []string{cmmn.P, cmmn.C1, "N9", "C4", "C8"}

// sugar fits a template sugar onto C5', C4' and C3' and renames the
// glycosidic nitrogen to N9.
func sugar(p rotamer.Pucker, c5, c4, c3 Xyz) (cmmn.AtomSet, error) {
	t, err := build.Template(p)
	if err != nil {
		return nil, err
	}
	fit, err := rmsd.NewFit([]Xyz{t[cmmn.C5], t[cmmn.C4], t[cmmn.C3]}, []Xyz{c5, c4, c3})
	if err != nil {
		return nil, err
	}
	ret := make(cmmn.AtomSet, len(t))
	for n, x := range t {
		ret[n] = fit.Apply(x)
	}
	ret["N9"] = ret[cmmn.N]
	delete(ret, cmmn.N)
	return ret, nil
}

// addBase puts the two base atoms we need on N9.
func addBase(nuc cmmn.AtomSet, chi float64) error {
	o4, c1, n9 := nuc[cmmn.O4], nuc[cmmn.C1], nuc["N9"]
	var err error
	if nuc["C4"], err = geom.Place(o4, c1, n9, bondNC4, angC4, chi); err != nil {
		return err
	}
	nuc["C8"], err = geom.Place(o4, c1, n9, bondNC8, angC8, chi+180)
	return err
}

// placer remembers the first error, so we can put down a row of atoms
// and check once.
type placer struct {
	err error
}

func (p *placer) place(a, b, c Xyz, bond, angle, tors float64) Xyz {
	if p.err != nil {
		return Xyz{}
	}
	var x Xyz
	x, p.err = geom.Place(a, b, c, bond, angle, tors)
	return x
}

// Chain builds a chain of len(codes)+1 adenosines, one suite per code.
// The first sugar comes straight from its template. Then we walk along
// the backbone putting down one atom at a time with ideal bonds and
// angles and the rotamer's mean torsions, until we get to C3', and
// fit the next template onto C5', C4', C3'. Every base gets the same
// chi. Phosphoryl oxygens are built too.
func Chain(cat *rotamer.Catalog, codes []string, chi float64) (chain.Chain, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("no rotamers")
	}
	rots := make([]*rotamer.Rotamer, len(codes))
	for i, c := range codes {
		var ok bool
		if rots[i], ok = cat.Lookup(c); !ok {
			return nil, fmt.Errorf("unknown rotamer %q", c)
		}
	}
	for i := 1; i < len(rots); i++ {
		if !rotamer.Compatible(rots[i-1], rots[i]) {
			return nil, fmt.Errorf("rotamers %s and %s do not share a pucker", rots[i-1], rots[i])
		}
	}

	var pl placer
	first, err := build.Template(rots[0].Start)
	if err != nil {
		return nil, err
	}
	first["N9"] = first[cmmn.N]
	delete(first, cmmn.N)
	first[cmmn.O5] = pl.place(first[cmmn.C3], first[cmmn.C4], first[cmmn.C5],
		build.BondO5C5, build.AngO5C5C4, rots[0].Gamma.Mean)
	first[cmmn.P] = pl.place(first[cmmn.C4], first[cmmn.C5], first[cmmn.O5],
		build.BondPO5, build.AngPO5C5, rots[0].Beta.Mean)
	nucs := []cmmn.AtomSet{first}

	for _, r := range rots {
		pv := nucs[len(nucs)-1]
		t, err := build.Template(r.End)
		if err != nil {
			return nil, err
		}
		p := pl.place(pv[cmmn.C4], pv[cmmn.C3], pv[cmmn.O3], build.BondO3P, build.AngC3O3P, r.Epsilon.Mean)
		o5 := pl.place(pv[cmmn.C3], pv[cmmn.O3], p, build.BondPO5, build.AngO3PO5, r.Zeta.Mean)
		c5 := pl.place(pv[cmmn.O3], p, o5, build.BondO5C5, build.AngPO5C5, r.Alpha.Mean)
		c4 := pl.place(p, o5, c5, build.BondC5C4, build.AngO5C5C4, r.Beta.Mean)
		c4c3 := geom.Dist(t[cmmn.C4], t[cmmn.C3])
		ang, _ := geom.Angle(t[cmmn.C5], t[cmmn.C4], t[cmmn.C3])
		c3 := pl.place(o5, c5, c4, c4c3, ang, r.Gamma.Mean)
		if pl.err != nil {
			return nil, pl.err
		}
		nuc, err := sugar(r.End, c5, c4, c3)
		if err != nil {
			return nil, err
		}
		nuc[cmmn.P], nuc[cmmn.O5] = p, o5
		nucs = append(nucs, nuc)
	}
	if pl.err != nil {
		return nil, pl.err
	}

	var ch chain.Chain
	for i, nuc := range nucs {
		if err := addBase(nuc, chi); err != nil {
			return nil, err
		}
		if err := addOxy(nuc, nucs, i); err != nil {
			return nil, err
		}
		ch = append(ch, chain.NewNucleotide(i+1, "A", nuc))
	}
	return ch, nil
}

// addOxy puts OP1 and OP2 on the phosphate.
func addOxy(nuc cmmn.AtomSet, nucs []cmmn.AtomSet, i int) error {
	var err error
	if i == 0 {
		nuc[cmmn.OP1], nuc[cmmn.OP2], err = build.InitPhosOxy(nuc[cmmn.P], nuc[cmmn.O5], nuc[cmmn.C5])
	} else {
		nuc[cmmn.OP1], nuc[cmmn.OP2], err = build.PhosOxy(nucs[i-1][cmmn.O3], nuc[cmmn.P], nuc[cmmn.O5])
	}
	return err
}

// Seeds strips a chain down to the atoms one has at low resolution.
func Seeds(ch chain.Chain) chain.Chain {
	var ret chain.Chain
	for _, nuc := range ch {
		atoms := make(cmmn.AtomSet)
		for _, n := range SeedAtoms {
			if x, ok := nuc.Atoms[n]; ok {
				atoms[n] = x
			}
		}
		ret = append(ret, chain.NewNucleotide(nuc.Num, nuc.Name, atoms))
	}
	return ret
}
