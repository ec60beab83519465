// Package refine moves backbone atoms so bonds, angles and torsions
// come out as close to ideal as possible, without moving the
// phosphates far from where they were measured. The work is done by
// the simplex package. This package says what is being optimised.
package refine

import (
	"fmt"

	"github.com/andrew-torda/suitebuild/build"
	"github.com/andrew-torda/suitebuild/pdb/cmmn"
	"github.com/andrew-torda/suitebuild/rotamer"
	"github.com/andrew-torda/suitebuild/simplex"
)

// Result is a refined working set and how good it is.
type Result struct {
	Atoms     cmmn.AtomSet
	Score     float64 // lower is better, including Fixed
	Fixed     float64 // terms between atoms which did not move
	Syn       bool    // the sugar was rebuilt with a syn chi
	Converged bool    // false if the simplex ran out of steps
	Nstart    int
	Ncycle    int
}

// Movable lists the atoms refined for a nucleotide. The O3' before and
// the phosphate and O5' only move if there is a suite before. The next
// phosphate and its O5' only if there is a suite after.
func Movable(work cmmn.AtomSet, prev, next *rotamer.Rotamer) []string {
	var names []string
	if prev != nil {
		names = append(names, o3Prev, cmmn.P, cmmn.O5)
	}
	names = append(names, cmmn.C5, cmmn.O3)
	if next != nil {
		names = append(names, pNext, o5Next)
	}
	ret := names[:0]
	for _, n := range names {
		if work.Has(n) {
			ret = append(ret, n)
		}
	}
	return ret
}

// minimise runs the simplex with restarts.
func minimise(prob Problem, ideals Ideals, cfg Config) (Result, error) {
	obj, err := NewObjective(prob, ideals, cfg)
	if err != nil {
		return Result{}, err
	}
	s := simplex.NewSplxCtrl(obj.Cost, obj.Start(), cfg.MaxStep)
	if err := s.Span(obj.Steps(cfg)); err != nil {
		return Result{}, err
	}
	s.Tol(cfg.Tol)
	s.Seed(cfg.Seed)
	s.RandSign(true)
	s.Restart(cfg.RestartRatio, cfg.GoodEnough)
	res, err := s.Run(cfg.MaxRestart)
	if err != nil {
		return Result{}, err
	}
	atoms, err := obj.Apply(res.BestPrm)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Atoms:     atoms,
		Score:     res.Best + obj.Fixed(),
		Fixed:     obj.Fixed(),
		Converged: res.StopReason == simplex.Converged,
		Nstart:    res.Nstart,
		Ncycle:    res.Ncycle,
	}, nil
}

// canFlip says whether we have the atoms to rebuild a sugar.
func canFlip(work cmmn.AtomSet) bool {
	return work.Has(cmmn.C1, cmmn.N, cmmn.NC, cmmn.O4)
}

// Refine refines one nucleotide's working set. The sugar in work
// should have been built with the anti chi. If the result is worse
// than cfg.BadFit, the sugar is rebuilt with the syn chi and refined
// from scratch. The better of the two wins.
func Refine(work cmmn.AtomSet, prev, next *rotamer.Rotamer, ideals Ideals, cfg Config) (Result, error) {
	if prev == nil && next == nil {
		return Result{}, fmt.Errorf("refine: no rotamer either side")
	}
	prob := Problem{
		Work:    work,
		Prev:    prev,
		Next:    next,
		Movable: Movable(work, prev, next),
		Sugar:   canFlip(work),
	}
	anti, err := minimise(prob, ideals, cfg)
	if err != nil {
		return Result{}, err
	}
	if anti.Score <= cfg.BadFit || !canFlip(work) {
		return anti, nil
	}

	sug, err := build.Sugar(work, build.PuckerFor(prev, next), cfg.SynChi)
	if err != nil {
		return anti, nil // keep what we have
	}
	prob.Work = work.Copy()
	for n, x := range sug {
		prob.Work[n] = x
	}
	syn, err := minimise(prob, ideals, cfg)
	if err != nil || syn.Score >= anti.Score {
		return anti, nil
	}
	syn.Syn = true
	return syn, nil
}

// firstMovable are the atoms refined at the start of a chain.
var firstMovable = []string{cmmn.P, cmmn.O5, cmmn.C5}

// RefineFirst tidies up the 5' end of a chain, after the first
// nucleotide's sugar has been refined. Only P, O5' and C5' move and
// there are no torsions to fit.
func RefineFirst(work cmmn.AtomSet, ideals Ideals, cfg Config) (Result, error) {
	prob := Problem{Work: work, Movable: firstMovable}
	return minimise(prob, ideals, cfg)
}
