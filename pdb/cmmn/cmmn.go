// Package pdb/cmmn has common definitions for coordinates and the
// atom sets we pass around when building a nucleotide.
package cmmn

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Xyz is a point or vector. We used to have our own three float32's, but
// gonum's r3 does all the arithmetic and works in float64, which we need
// when the simplex is pushing atoms around by tiny amounts.
type Xyz = r3.Vec

type XyzSl []Xyz // xyz's are coordinates

// Names of backbone and sugar atoms.
const (
	P   = "P"
	OP1 = "OP1"
	OP2 = "OP2"
	O5  = "O5'"
	C5  = "C5'"
	C4  = "C4'"
	O4  = "O4'"
	C3  = "C3'"
	O3  = "O3'"
	C2  = "C2'"
	O2  = "O2'"
	C1  = "C1'"
)

// In a working set, the glycosidic nitrogen (N9 or N1) is called N and
// the base carbon bonded to it (C4 or C2) NC, so the sugar code does
// not care whether the base is a purine or a pyrimidine.
const (
	N  = "N"
	NC = "NC"
)

// Suffixes mark atoms borrowed from a neighbour. "O3'-" is the O3' of
// the previous nucleotide and "P+" the phosphate of the next one.
const (
	PrevSfx = "-"
	NextSfx = "+"
)

// Prev and Next give the name an atom has when it is copied in from
// the previous or next nucleotide.
func Prev(name string) string { return name + PrevSfx }
func Next(name string) string { return name + NextSfx }

// SugarAtoms are the atoms which come from a sugar template and move
// together when the sugar is rotated.
var SugarAtoms = []string{C2, O2, C3, O3, C4, O4, C5}

// BackboneAtoms are the atoms we build. The seed atoms (P, C1' and the
// base) come from outside.
var BackboneAtoms = []string{P, OP1, OP2, O5, C5, C4, O4, C3, O3, C2, O2}

// MissingAtomError says a calculation wanted an atom which is not there.
// Lots of nucleotides legitimately lack atoms, so callers usually catch
// this and say "value not available".
type MissingAtomError struct {
	Name string
}

func (e *MissingAtomError) Error() string { return "missing atom " + e.Name }

// AtomSet maps atom names to coordinates. Each nucleotide owns its own.
// We never share one between nucleotides. If a neighbour needs an atom,
// it gets a copy.
type AtomSet map[string]Xyz

// Copy returns an independent AtomSet.
func (a AtomSet) Copy() AtomSet {
	b := make(AtomSet, len(a))
	for k, v := range a {
		b[k] = v
	}
	return b
}

// Has is true if all the names are present.
func (a AtomSet) Has(names ...string) bool {
	for _, n := range names {
		if _, ok := a[n]; !ok {
			return false
		}
	}
	return true
}

// Get returns an atom or a *MissingAtomError.
func (a AtomSet) Get(name string) (Xyz, error) {
	if x, ok := a[name]; ok {
		return x, nil
	}
	return Xyz{}, &MissingAtomError{Name: name}
}

// GetN fills out a slice with the coordinates of the named atoms.
// It stops on the first missing one.
func (a AtomSet) GetN(names ...string) ([]Xyz, error) {
	ret := make([]Xyz, len(names))
	for i, n := range names {
		var err error
		if ret[i], err = a.Get(n); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// CopyIn copies the named atoms from src, if src has them, renaming
// each with sfx. This is how a working set gets its neighbour atoms.
func (a AtomSet) CopyIn(src AtomSet, sfx string, names ...string) {
	for _, n := range names {
		if x, ok := src[n]; ok {
			a[n+sfx] = x
		}
	}
}

// Names returns the sorted atom names. Maps have no order, but output
// and tests want one.
func (a AtomSet) Names() []string {
	ret := make([]string, 0, len(a))
	for k := range a {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
