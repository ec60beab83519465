// Package build puts backbone atoms where they ought to be, roughly.
// It uses ideal sugar templates, ideal bond lengths and angles and the
// torsions of the chosen rotamer. Nothing here is optimised. That is
// the job of package refine.
package build

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/andrew-torda/suitebuild/geom"
	"github.com/andrew-torda/suitebuild/pdb/cmmn"
	"github.com/andrew-torda/suitebuild/rotamer"
	"github.com/andrew-torda/suitebuild/tables"
)

type Xyz = cmmn.Xyz

// Ideal geometry. Lengths in A, angles in degrees.
const (
	BondC3O3  = 1.423
	BondO3P   = 1.607
	BondPO5   = 1.593
	BondO5C5  = 1.440
	BondC5C4  = 1.510
	BondPOP   = 1.485 // P to the phosphoryl oxygens
	AngC4C3O3 = 110.6
	AngC2C3O3 = 111.0
	AngC3O3P  = 119.7
	AngO3PO5  = 104.0
	AngPO5C5  = 120.9
	AngO5C5C4 = 110.2
	AngC5C4C3 = 115.2
	AngC5C4O4 = 109.1
	AngXi     = 108.2 // N, C1', O4'
	AngOPO    = 119.6 // OP1, P, OP2
	AngO5POP  = 108.0 // O5' or O3', P, OP1 or OP2
)

// Glycosidic torsions we start from.
const (
	ChiAnti = 210.0
	ChiSyn  = 70.0
)

// DfltGamma is used to place O5' at a chain start when we have no
// rotamer to ask.
const DfltGamma = 54.0

//go:embed data/sugars.txt
var sugardata []byte

var (
	tmplOnce sync.Once
	tmpl     map[rotamer.Pucker]cmmn.AtomSet
)

// Template returns a copy of the ideal sugar for a pucker, with C1'
// at the origin. As well as the sugar atoms, it has cmmn.N.
func Template(p rotamer.Pucker) (cmmn.AtomSet, error) {
	tmplOnce.Do(func() {
		var err error
		if tmpl, err = readTemplates(io.NopCloser(bytes.NewReader(sugardata))); err != nil {
			panic("build: broken built in sugar table: " + err.Error())
		}
	})
	t, ok := tmpl[p]
	if !ok {
		return nil, fmt.Errorf("no sugar template for %v", p)
	}
	return t.Copy(), nil
}

// readTemplates reads lines of pucker, atom name, x, y, z.
func readTemplates(rdr io.ReadCloser) (map[rotamer.Pucker]cmmn.AtomSet, error) {
	rows, err := tables.ReadFrom(rdr)
	if err != nil {
		return nil, err
	}
	if err := tables.CheckArity(rows, 5); err != nil {
		return nil, err
	}
	ret := make(map[rotamer.Pucker]cmmn.AtomSet)
	for _, row := range rows {
		var p rotamer.Pucker
		switch row.Fields[0] {
		case "2":
			p = rotamer.C2Endo
		case "3":
			p = rotamer.C3Endo
		default:
			return nil, fmt.Errorf("line %d: bad pucker %s", row.Line, row.Fields[0])
		}
		x, err := row.Floats(2)
		if err != nil {
			return nil, err
		}
		if ret[p] == nil {
			ret[p] = make(cmmn.AtomSet)
		}
		ret[p][row.Fields[1]] = Xyz{X: x[0], Y: x[1], Z: x[2]}
	}
	for p, t := range ret {
		if !t.Has(append([]string{cmmn.N, cmmn.C1}, cmmn.SugarAtoms...)...) {
			return nil, fmt.Errorf("sugar template %v is missing atoms", p)
		}
	}
	return ret, nil
}

// anyPerp is some vector at right angles to v.
func anyPerp(v Xyz) Xyz {
	if math.Abs(v.X) < math.Abs(v.Y) {
		return r3.Cross(v, Xyz{X: 1})
	}
	return r3.Cross(v, Xyz{Y: 1})
}

// Sugar puts a sugar on a base. work must have C1' and the base atoms
// under the names cmmn.N and cmmn.NC. The template is rotated so its
// glycosidic bond lies along the real one, then spun about that bond
// until the torsion O4', C1', N, NC is chi. Last, it is moved onto the
// real C1'. We return only the new sugar atoms (cmmn.SugarAtoms), so
// whatever else the caller has, such as O5', is left alone.
func Sugar(work cmmn.AtomSet, p rotamer.Pucker, chi float64) (cmmn.AtomSet, error) {
	x, err := work.GetN(cmmn.C1, cmmn.N, cmmn.NC)
	if err != nil {
		return nil, err
	}
	c1 := x[0]
	vb := r3.Sub(x[1], c1)
	nc := r3.Sub(x[2], c1)
	t, err := Template(p)
	if err != nil {
		return nil, err
	}
	names := append([]string{cmmn.N}, cmmn.SugarAtoms...)
	pts := make([]Xyz, len(names))
	for i, n := range names {
		pts[i] = t[n]
	}

	vt := pts[0]
	ang, err := geom.VecAngle(vt, vb)
	if err != nil {
		return nil, fmt.Errorf("glycosidic bond: %w", err)
	}
	if ang > 1e-6 {
		axis := r3.Cross(vt, vb)
		if r3.Norm(axis) < 1e-8 { // pointing the opposite way
			axis = anyPerp(vt)
		}
		if pts, err = geom.Rotate(pts, Xyz{}, axis, ang); err != nil {
			return nil, err
		}
	}

	cur := geom.Torsion(pts[1+indexOf(cmmn.SugarAtoms, cmmn.O4)], Xyz{}, pts[0], nc)
	if pts, err = geom.Rotate(pts, Xyz{}, vb, cur-chi); err != nil {
		return nil, err
	}

	ret := make(cmmn.AtomSet, len(cmmn.SugarAtoms))
	for i, n := range names[1:] {
		ret[n] = r3.Add(pts[i+1], c1)
	}
	return ret, nil
}

func indexOf(s []string, name string) int {
	for i, n := range s {
		if n == name {
			return i
		}
	}
	panic("build: no atom " + name)
}

// NextO5 places the O5' which follows a phosphate. Start with a point
// on the P to O3' line, bond length from P. Swing it about an axis
// through P at right angles to the O3'-P bond, to get the O3', P, O5'
// angle. Then turn it about the O3'-P bond to get zeta.
func NextO5(c3, o3, p Xyz, zeta float64) (Xyz, error) {
	po3 := r3.Sub(o3, p)
	u, err := geom.Unit(po3)
	if err != nil {
		return Xyz{}, err
	}
	x := r3.Add(p, r3.Scale(BondPO5, u))
	rot, err := geom.NewRotation(p, r3.Cross(po3, r3.Sub(c3, o3)), AngO3PO5)
	if err != nil {
		return Xyz{}, err
	}
	x = rot.Apply(x)
	cur := geom.Torsion(c3, o3, p, x)
	if rot, err = geom.NewRotation(p, r3.Sub(p, o3), zeta-cur); err != nil {
		return Xyz{}, err
	}
	return rot.Apply(x), nil
}

// PhosOxy builds OP1 and OP2 when we have both oxygens either side of
// the phosphate. Drop P onto the O3' to O5' line. The phosphoryl
// oxygens point away from that foot, and are turned either way about
// the line by half the O-P-O angle.
func PhosOxy(o3, p, o5 Xyz) (op1, op2 Xyz, err error) {
	n, err := geom.Unit(r3.Sub(o5, o3))
	if err != nil {
		return op1, op2, err
	}
	foot := r3.Add(o3, r3.Scale(r3.Dot(r3.Sub(p, o3), n), n))
	out, err := geom.Unit(r3.Sub(p, foot))
	if err != nil {
		return op1, op2, err
	}
	x := r3.Add(p, r3.Scale(BondPOP, out))
	return pair(x, p, n, AngOPO/2)
}

// pair turns x about the axis through p by +ang and -ang.
func pair(x, p, axis Xyz, ang float64) (Xyz, Xyz, error) {
	r1, err := geom.NewRotation(p, axis, ang)
	if err != nil {
		return Xyz{}, Xyz{}, err
	}
	r2, _ := geom.NewRotation(p, axis, -ang)
	return r1.Apply(x), r2.Apply(x), nil
}

// InitPhosOxy builds OP1 and OP2 when only one side of the phosphate
// is there. ref is the oxygen bonded to P (O5' at a chain start, O3'
// at a chain end) and ref2 the carbon behind it. Put a point straight
// out from P, away from ref, and swing it in the plane of the three
// atoms to the ideal ref, P, O angle. Then turn it both ways about the
// P-ref bond, far enough to give the ideal O-P-O angle.
func InitPhosOxy(p, ref, ref2 Xyz) (op1, op2 Xyz, err error) {
	u, err := geom.Unit(r3.Sub(p, ref))
	if err != nil {
		return op1, op2, err
	}
	x := r3.Add(p, r3.Scale(BondPOP, u))
	rot, err := geom.NewRotation(p, r3.Cross(r3.Sub(ref, p), r3.Sub(ref2, ref)), 180-AngO5POP)
	if err != nil {
		return op1, op2, err
	}
	x = rot.Apply(x)
	return pair(x, p, r3.Sub(ref, p), initTwist())
}

// initTwist is how far each oxygen is turned about the P-ref bond.
// Both make angle t with the bond, so
//   cos(OPO) = cos^2 t + sin^2 t cos (2 beta)
func initTwist() float64 {
	st, ct := math.Sincos(AngO5POP * math.Pi / 180)
	cg := math.Cos(AngOPO * math.Pi / 180)
	return math.Acos((cg-ct*ct)/(st*st)) * 90 / math.Pi
}

// StartO5 puts an O5' on the C5' of a nucleotide at the start of a
// chain, using gamma for the torsion.
func StartO5(c3, c4, c5 Xyz, gamma float64) (Xyz, error) {
	return geom.Place(c3, c4, c5, BondO5C5, AngO5C5C4, gamma)
}

// PuckerFor says which sugar a nucleotide gets. The suite ending at the
// nucleotide decides. At the start of a chain, the suite leaving it.
func PuckerFor(prev, next *rotamer.Rotamer) rotamer.Pucker {
	switch {
	case prev != nil:
		return prev.End
	case next != nil:
		return next.Start
	}
	return rotamer.C3Endo
}
