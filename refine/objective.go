package refine

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/andrew-torda/suitebuild/geom"
	"github.com/andrew-torda/suitebuild/pdb/cmmn"
	"github.com/andrew-torda/suitebuild/rotamer"
)

type Xyz = cmmn.Xyz

// Problem says what is to be refined. Work is the working set of one
// nucleotide with its neighbours' atoms (see chain.Project). Prev and
// Next are the rotamers of the suites either side, nil if there is no
// such suite. Movable atoms each get a displacement. If Sugar is set,
// the sugar atoms can also be turned about the glycosidic bond (chi)
// and about an axis through C1' at right angles to it (xi).
type Problem struct {
	Work       cmmn.AtomSet
	Prev, Next *rotamer.Rotamer
	Movable    []string
	Sugar      bool
}

type bondT struct {
	a, b string
	Ideal
}

type angleT struct {
	a, b, c string
	Ideal
}

type phosT struct {
	name string
	x0   Xyz
}

type torsT struct {
	atoms [4]string
	Ideal
}

// terms are the bond, angle and torsion restraints.
type terms struct {
	bonds  []bondT
	angles []angleT
	tors   []torsT
}

func (ts *terms) len() int { return len(ts.bonds) + len(ts.angles) + len(ts.tors) }

// cost adds up the terms for atoms w. It is false if an angle cannot
// be measured.
func (ts *terms) cost(w cmmn.AtomSet) (float64, bool) {
	var sum float64
	for _, b := range ts.bonds {
		sum += sq((geom.Dist(w[b.a], w[b.b]) - b.Mean) / b.Sd)
	}
	for _, a := range ts.angles {
		ang, err := geom.Angle(w[a.a], w[a.b], w[a.c])
		if err != nil {
			return 0, false
		}
		sum += sq((ang - a.Mean) / a.Sd)
	}
	for _, t := range ts.tors {
		tor := geom.Torsion(w[t.atoms[0]], w[t.atoms[1]], w[t.atoms[2]], w[t.atoms[3]])
		sum += sq(geom.AngleDiff(tor, t.Mean) / t.Sd)
	}
	return sum, true
}

// Objective is a Problem turned into a function of a parameter vector.
// The starting atoms are never changed, so every call with the same
// parameters gives the same answer. The first parameters are chi and
// xi, if the sugar moves, then x, y, z for each movable atom.
// Terms where no atom moves are added up once, at the start, and kept
// out of the cost. Fixed returns them.
type Objective struct {
	terms
	work    cmmn.AtomSet
	movable []string
	sugar   bool
	phos    []phosT // where the phosphates started
	phosSd  float64
	nfixed  int
	fixed   float64
}

// moving says which atoms can change.
func moving(prob Problem) map[string]bool {
	m := make(map[string]bool)
	for _, n := range prob.Movable {
		m[n] = true
	}
	if prob.Sugar {
		for _, n := range cmmn.SugarAtoms {
			m[n] = true
		}
	}
	return m
}

// pick says where a term goes. It is nil if an atom is missing, free
// if any atom moves and fixed otherwise.
func pick(work cmmn.AtomSet, mv map[string]bool, free, fixed *terms, names ...string) *terms {
	if !work.Has(names...) {
		return nil
	}
	for _, n := range names {
		if mv[n] {
			return free
		}
	}
	return fixed
}

// NewObjective sets up the terms. Anything which needs a missing atom
// is left out. Movable atoms must exist.
func NewObjective(prob Problem, ideals Ideals, cfg Config) (*Objective, error) {
	for _, n := range prob.Movable {
		if !prob.Work.Has(n) {
			return nil, &cmmn.MissingAtomError{Name: n}
		}
	}
	if prob.Sugar && !prob.Work.Has(cmmn.N, cmmn.C1, cmmn.O4) {
		return nil, errors.New("cannot turn a sugar without N, C1' and O4'")
	}
	o := &Objective{
		work:    prob.Work.Copy(),
		movable: append([]string(nil), prob.Movable...),
		sugar:   prob.Sugar,
		phosSd:  cfg.PhosSd,
	}
	mv := moving(prob)
	var fixed terms
	for _, b := range ideals.Bonds {
		if ts := pick(o.work, mv, &o.terms, &fixed, b.A, b.B); ts != nil {
			ts.bonds = append(ts.bonds, bondT{b.A, b.B, b.Ideal})
		}
	}
	for _, a := range ideals.Angles {
		if ts := pick(o.work, mv, &o.terms, &fixed, a.A, a.B, a.C); ts != nil {
			ts.angles = append(ts.angles, angleT{a.A, a.B, a.C, a.Ideal})
		}
	}
	if ts := pick(o.work, mv, &o.terms, &fixed, cmmn.N, cmmn.C1, cmmn.O4); ts != nil {
		ts.angles = append(ts.angles, angleT{cmmn.N, cmmn.C1, cmmn.O4, ideals.Xi})
	}
	addTors := func(r *rotamer.Rotamer, tt []TorsionTerm) {
		if r == nil {
			return
		}
		for _, t := range tt {
			if ts := pick(o.work, mv, &o.terms, &fixed, t.Atoms[:]...); ts != nil {
				a := r.Get(t.Which)
				ts.tors = append(ts.tors, torsT{t.Atoms, Ideal{a.Mean, a.Sd * cfg.TorsionLoosen}})
			}
		}
	}
	addTors(prob.Prev, PrevTorsions)
	addTors(prob.Next, NextTorsions)
	for _, n := range []string{cmmn.P, pNext} {
		if mv[n] {
			o.phos = append(o.phos, phosT{n, o.work[n]})
		}
	}
	var ok bool
	if o.fixed, ok = fixed.cost(o.work); !ok {
		return nil, fmt.Errorf("atoms which do not move: %w", geom.ErrDegenerate)
	}
	o.nfixed = fixed.len()
	if c, err := o.Cost(o.Start()); err != nil {
		return nil, err
	} else if math.IsInf(c, 1) {
		return nil, fmt.Errorf("starting geometry: %w", geom.ErrDegenerate)
	}
	return o, nil
}

// NParam is the number of parameters.
func (o *Objective) NParam() int {
	n := 3 * len(o.movable)
	if o.sugar {
		n += 2
	}
	return n
}

// Start is the parameter vector which changes nothing.
func (o *Objective) Start() []float64 { return make([]float64, o.NParam()) }

// Steps are the sizes of the first simplex steps.
func (o *Objective) Steps(cfg Config) []float64 {
	ret := make([]float64, 0, o.NParam())
	if o.sugar {
		ret = append(ret, cfg.ChiStep, cfg.XiStep)
	}
	for range o.movable {
		ret = append(ret, cfg.MoveStep, cfg.MoveStep, cfg.MoveStep)
	}
	return ret
}

// Apply returns a new working set with the parameters applied. Sugar
// rotations come first, then displacements.
func (o *Objective) Apply(x []float64) (cmmn.AtomSet, error) {
	if len(x) != o.NParam() {
		return nil, fmt.Errorf("got %d parameters, wanted %d", len(x), o.NParam())
	}
	w := o.work.Copy()
	if o.sugar {
		c1, n := w[cmmn.C1], w[cmmn.N]
		if err := turn(w, c1, r3.Sub(n, c1), x[0]); err != nil {
			return nil, fmt.Errorf("chi: %w", err)
		}
		axis := r3.Cross(r3.Sub(n, c1), r3.Sub(w[cmmn.O4], c1))
		if err := turn(w, c1, axis, x[1]); err != nil {
			return nil, fmt.Errorf("xi: %w", err)
		}
		x = x[2:]
	}
	for i, n := range o.movable {
		w[n] = r3.Add(w[n], Xyz{X: x[3*i], Y: x[3*i+1], Z: x[3*i+2]})
	}
	return w, nil
}

// turn rotates the sugar atoms in place.
func turn(w cmmn.AtomSet, origin, axis Xyz, deg float64) error {
	if deg == 0 {
		return nil
	}
	rot, err := geom.NewRotation(origin, axis, deg)
	if err != nil {
		return err
	}
	for _, n := range cmmn.SugarAtoms {
		if x, ok := w[n]; ok {
			w[n] = rot.Apply(x)
		}
	}
	return nil
}

func sq(x float64) float64 { return x * x }

// Cost is the sum of squared deviations from ideal values, each scaled
// by its standard deviation. A geometry where something collapses onto
// something else is infinitely bad, so the simplex never goes there.
func (o *Objective) Cost(x []float64) (float64, error) {
	w, err := o.Apply(x)
	if err != nil {
		if errors.Is(err, geom.ErrDegenerate) {
			return math.Inf(1), nil
		}
		return 0, err
	}
	sum, ok := o.terms.cost(w)
	if !ok {
		return math.Inf(1), nil
	}
	for _, p := range o.phos {
		sum += sq(geom.Dist(w[p.name], p.x0) / o.phosSd)
	}
	return sum, nil
}

// NTerm is how many terms go into the score, fixed ones included.
func (o *Objective) NTerm() int { return o.terms.len() + len(o.phos) + o.nfixed }

// Fixed is the part of the cost no parameter can change.
func (o *Objective) Fixed() float64 { return o.fixed }
