package refine

import (
	"github.com/andrew-torda/suitebuild/build"
	"github.com/andrew-torda/suitebuild/pdb/cmmn"
	"github.com/andrew-torda/suitebuild/rotamer"
)

// Ideal is a target value and how much we tolerate missing it.
type Ideal struct {
	Mean, Sd float64
}

// BondTerm is a bond length between two atoms.
type BondTerm struct {
	A, B string
	Ideal
}

// AngleTerm is the bond angle at B.
type AngleTerm struct {
	A, B, C string
	Ideal
}

// TorsionTerm is a torsion which takes its target from a rotamer.
type TorsionTerm struct {
	Atoms [4]string
	Which rotamer.Torsion
}

// Ideals are the bond lengths and angles we refine towards.
type Ideals struct {
	Bonds  []BondTerm
	Angles []AngleTerm
	Xi     Ideal // N, C1', O4'
}

// Atoms borrowed from the neighbours.
var (
	c5Prev = cmmn.Prev(cmmn.C5)
	c4Prev = cmmn.Prev(cmmn.C4)
	c3Prev = cmmn.Prev(cmmn.C3)
	o3Prev = cmmn.Prev(cmmn.O3)
	pNext  = cmmn.Next(cmmn.P)
	o5Next = cmmn.Next(cmmn.O5)
	c5Next = cmmn.Next(cmmn.C5)
	c4Next = cmmn.Next(cmmn.C4)
	c3Next = cmmn.Next(cmmn.C3)
)

// DefaultIdeals covers both sides of the phosphate before the
// nucleotide and the one after it.
func DefaultIdeals() Ideals {
	return Ideals{
		Bonds: []BondTerm{
			{c3Prev, o3Prev, Ideal{build.BondC3O3, 0.014}},
			{o3Prev, cmmn.P, Ideal{build.BondO3P, 0.012}},
			{cmmn.P, cmmn.O5, Ideal{build.BondPO5, 0.010}},
			{cmmn.O5, cmmn.C5, Ideal{build.BondO5C5, 0.016}},
			{cmmn.C5, cmmn.C4, Ideal{build.BondC5C4, 0.013}},
			{cmmn.C3, cmmn.O3, Ideal{build.BondC3O3, 0.014}},
			{cmmn.O3, pNext, Ideal{build.BondO3P, 0.012}},
			{pNext, o5Next, Ideal{build.BondPO5, 0.010}},
		},
		Angles: []AngleTerm{
			{c4Prev, c3Prev, o3Prev, Ideal{build.AngC4C3O3, 2.0}},
			{c3Prev, o3Prev, cmmn.P, Ideal{build.AngC3O3P, 1.2}},
			{o3Prev, cmmn.P, cmmn.O5, Ideal{build.AngO3PO5, 1.9}},
			{cmmn.P, cmmn.O5, cmmn.C5, Ideal{build.AngPO5C5, 1.6}},
			{cmmn.O5, cmmn.C5, cmmn.C4, Ideal{build.AngO5C5C4, 1.4}},
			{cmmn.C5, cmmn.C4, cmmn.C3, Ideal{build.AngC5C4C3, 1.4}},
			{cmmn.C5, cmmn.C4, cmmn.O4, Ideal{build.AngC5C4O4, 0.8}},
			{cmmn.C4, cmmn.C3, cmmn.O3, Ideal{build.AngC4C3O3, 2.0}},
			{cmmn.C2, cmmn.C3, cmmn.O3, Ideal{build.AngC2C3O3, 2.0}},
			{cmmn.C3, cmmn.O3, pNext, Ideal{build.AngC3O3P, 1.2}},
			{cmmn.O3, pNext, o5Next, Ideal{build.AngO3PO5, 1.9}},
		},
		Xi: Ideal{build.AngXi, 1.0},
	}
}

// PrevTorsions run from the delta of the nucleotide before to the
// delta of this one. Their targets come from the rotamer of the suite
// ending here.
var PrevTorsions = []TorsionTerm{
	{[4]string{c5Prev, c4Prev, c3Prev, o3Prev}, rotamer.PrevDelta},
	{[4]string{c4Prev, c3Prev, o3Prev, cmmn.P}, rotamer.Epsilon},
	{[4]string{c3Prev, o3Prev, cmmn.P, cmmn.O5}, rotamer.Zeta},
	{[4]string{o3Prev, cmmn.P, cmmn.O5, cmmn.C5}, rotamer.Alpha},
	{[4]string{cmmn.P, cmmn.O5, cmmn.C5, cmmn.C4}, rotamer.Beta},
	{[4]string{cmmn.O5, cmmn.C5, cmmn.C4, cmmn.C3}, rotamer.Gamma},
	{[4]string{cmmn.C5, cmmn.C4, cmmn.C3, cmmn.O3}, rotamer.Delta},
}

// NextTorsions belong to the suite starting here. Usually the next
// nucleotide has no sugar yet, so the later ones drop out.
var NextTorsions = []TorsionTerm{
	{[4]string{cmmn.C5, cmmn.C4, cmmn.C3, cmmn.O3}, rotamer.PrevDelta},
	{[4]string{cmmn.C4, cmmn.C3, cmmn.O3, pNext}, rotamer.Epsilon},
	{[4]string{cmmn.C3, cmmn.O3, pNext, o5Next}, rotamer.Zeta},
	{[4]string{cmmn.O3, pNext, o5Next, c5Next}, rotamer.Alpha},
	{[4]string{pNext, o5Next, c5Next, c4Next}, rotamer.Beta},
	{[4]string{o5Next, c5Next, c4Next, c3Next}, rotamer.Gamma},
}
