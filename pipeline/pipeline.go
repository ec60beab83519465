// Package pipeline runs the whole business along a chain. Choose
// rotamers, then for each nucleotide in order, build a sugar, place
// the next O5', refine and put in the phosphoryl oxygens. Each step
// moves atoms the next one starts from, so there is no parallelism.
package pipeline

import (
	"fmt"
	"io"
	"log"

	"github.com/andrew-torda/suitebuild/build"
	"github.com/andrew-torda/suitebuild/chain"
	"github.com/andrew-torda/suitebuild/decode"
	"github.com/andrew-torda/suitebuild/pdb/cmmn"
	"github.com/andrew-torda/suitebuild/refine"
	"github.com/andrew-torda/suitebuild/rotamer"
)

// Options for a run. A nil Log means no logging.
type Options struct {
	Refine refine.Config
	Ideals refine.Ideals
	Log    *log.Logger
}

// DefaultOptions are the usual settings, without logging.
func DefaultOptions() Options {
	return Options{Refine: refine.DefaultConfig(), Ideals: refine.DefaultIdeals()}
}

// Report says what happened to one nucleotide.
type Report struct {
	Num       int
	Pucker    rotamer.Pucker
	Refined   bool
	Score     float64
	Syn       bool
	Converged bool
	Err       error // construction failed, the nucleotide may be incomplete
}

// Assignment gives, for each nucleotide, the rotamer of the suite which
// ends there. It is nil at chain starts.
type Assignment []*rotamer.Rotamer

// around gives the rotamers either side of nucleotide i.
func (a Assignment) around(i int) (prev, next *rotamer.Rotamer) {
	prev = a[i]
	if i+1 < len(a) {
		next = a[i+1]
	}
	return prev, next
}

// assign spreads a decoded path over the nucleotides.
func assign(n int, suites []int, path decode.Path) Assignment {
	a := make(Assignment, n)
	for j, s := range path {
		a[suites[j]] = s.Rotamer
	}
	return a
}

// suiteProbs lines up the likelihoods with the suites of the chain.
// probs is keyed by the number of the nucleotide ending each suite.
func suiteProbs(ch chain.Chain, suites []int, probs map[int]map[string]float64) ([]decode.SuiteProbs, error) {
	ret := make([]decode.SuiteProbs, len(suites))
	for j, i := range suites {
		p, ok := probs[ch[i].Num]
		if !ok {
			return nil, fmt.Errorf("no rotamer likelihoods for the suite ending at %d", ch[i].Num)
		}
		ret[j] = decode.SuiteProbs{Probs: p, Connected: j > 0 && suites[j-1] == i-1}
	}
	return ret, nil
}

// Decode chooses the most likely rotamers for a chain.
func Decode(cat *rotamer.Catalog, ch chain.Chain, probs map[int]map[string]float64) (Assignment, decode.Path, error) {
	suites := ch.Suites()
	sp, err := suiteProbs(ch, suites, probs)
	if err != nil {
		return nil, nil, err
	}
	path, err := decode.Viterbi(cat, sp)
	if err != nil {
		return nil, nil, err
	}
	return assign(len(ch), suites, path), path, nil
}

// Fixed uses rotamers given by the user, one per suite, after
// checking them.
func Fixed(cat *rotamer.Catalog, ch chain.Chain, codes []string) (Assignment, decode.Path, error) {
	suites := ch.Suites()
	conn := make([]bool, len(suites))
	for j, i := range suites {
		conn[j] = j > 0 && suites[j-1] == i-1
	}
	path, err := decode.Validate(cat, codes, conn)
	if err != nil {
		return nil, nil, err
	}
	return assign(len(ch), suites, path), path, nil
}

// runner carries what every step needs.
type runner struct {
	ch   chain.Chain
	rots Assignment
	opts Options
	log  *log.Logger
}

// Run builds and refines every nucleotide, changing the chain in
// place. A nucleotide which cannot be built is reported and we carry
// on with the next. The error return is for things which make the
// whole run pointless.
func Run(ch chain.Chain, rots Assignment, opts Options) ([]Report, error) {
	if len(rots) != len(ch) {
		return nil, fmt.Errorf("%d rotamers for %d nucleotides", len(rots), len(ch))
	}
	r := runner{ch: ch, rots: rots, opts: opts, log: opts.Log}
	if r.log == nil {
		r.log = log.New(io.Discard, "", 0)
	}
	ch.Suites() // settle connectivity before atoms move
	reports := make([]Report, len(ch))
	for i := range ch {
		reports[i] = r.one(i)
		if err := reports[i].Err; err != nil {
			r.log.Printf("nucleotide %d: %v", ch[i].Num, err)
		} else if reports[i].Refined && !reports[i].Converged {
			r.log.Printf("nucleotide %d: refinement did not converge, score %.3g", ch[i].Num, reports[i].Score)
		}
	}
	return reports, nil
}

// set copies some atoms into nucleotide i, if we have them.
func (r *runner) set(i int, atoms cmmn.AtomSet, names ...string) {
	nuc := r.ch[i].Atoms.Copy()
	for _, n := range names {
		if x, ok := atoms[n]; ok {
			nuc[n] = x
		}
	}
	r.ch.Rebuild(i, nuc)
}

// one does everything for nucleotide i.
func (r *runner) one(i int) Report {
	ch, cfg := r.ch, r.opts.Refine
	prev, next := r.rots.around(i)
	rep := Report{Num: ch[i].Num, Pucker: build.PuckerFor(prev, next)}

	sug, err := build.Sugar(ch.Project(i), rep.Pucker, cfg.AntiChi)
	if err != nil {
		rep.Err = fmt.Errorf("building sugar: %w", err)
		return rep
	}
	r.set(i, sug, cmmn.SugarAtoms...)
	atoms := ch[i].Atoms

	if next != nil {
		o5, err := build.NextO5(atoms[cmmn.C3], atoms[cmmn.O3], ch[i+1].Atoms[cmmn.P], next.Zeta.Mean)
		if err != nil {
			rep.Err = fmt.Errorf("placing next O5': %w", err)
			return rep
		}
		r.set(i+1, cmmn.AtomSet{cmmn.O5: o5}, cmmn.O5)
	}
	if prev == nil && !atoms.Has(cmmn.O5) {
		gamma := build.DfltGamma
		if next != nil {
			gamma = next.Gamma.Mean
		}
		o5, err := build.StartO5(atoms[cmmn.C3], atoms[cmmn.C4], atoms[cmmn.C5], gamma)
		if err != nil {
			rep.Err = fmt.Errorf("placing O5': %w", err)
			return rep
		}
		r.set(i, cmmn.AtomSet{cmmn.O5: o5}, cmmn.O5)
	}

	if prev != nil || next != nil {
		if err := r.refine(i, prev, next, &rep); err != nil {
			rep.Err = err
			return rep
		}
	}
	if err := r.phosOxy(i, prev); err != nil {
		rep.Err = fmt.Errorf("phosphoryl oxygens: %w", err)
	}
	return rep
}

// refine refines nucleotide i and copies the moved atoms back to
// their owners. At the start of a chain, the first phosphate gets its
// own refinement afterwards.
func (r *runner) refine(i int, prev, next *rotamer.Rotamer, rep *Report) error {
	ch, cfg, ideals := r.ch, r.opts.Refine, r.opts.Ideals
	res, err := refine.Refine(ch.Project(i), prev, next, ideals, cfg)
	if err != nil {
		return fmt.Errorf("refining: %w", err)
	}
	rep.Refined, rep.Score, rep.Syn, rep.Converged = true, res.Score, res.Syn, res.Converged
	if prev != nil {
		r.set(i-1, unsuffix(res.Atoms, cmmn.PrevSfx), cmmn.O3)
	}
	r.set(i, res.Atoms, append([]string{cmmn.P, cmmn.O5}, cmmn.SugarAtoms...)...)
	if next != nil {
		r.set(i+1, unsuffix(res.Atoms, cmmn.NextSfx), cmmn.P, cmmn.O5)
	}

	if prev != nil || !ch[i].Atoms.Has(cmmn.P) {
		return nil
	}
	first, err := refine.RefineFirst(ch.Project(i), ideals, cfg)
	if err != nil {
		return fmt.Errorf("refining first phosphate: %w", err)
	}
	if !first.Converged {
		r.log.Printf("nucleotide %d: first phosphate did not converge, score %.3g", ch[i].Num, first.Score)
	}
	r.set(i, first.Atoms, cmmn.P, cmmn.O5, cmmn.C5)
	return nil
}

// unsuffix picks out the atoms with a suffix and strips it.
func unsuffix(atoms cmmn.AtomSet, sfx string) cmmn.AtomSet {
	ret := make(cmmn.AtomSet)
	for n, x := range atoms {
		if l := len(n) - len(sfx); l > 0 && n[l:] == sfx {
			ret[n[:l]] = x
		}
	}
	return ret
}

// phosOxy puts OP1 and OP2 on the phosphate of nucleotide i. With the
// O3' before and the O5' after, we use both. Otherwise, whichever
// side we have.
func (r *runner) phosOxy(i int, prev *rotamer.Rotamer) error {
	atoms := r.ch[i].Atoms
	p, ok := atoms[cmmn.P]
	if !ok {
		return nil
	}
	var pv cmmn.AtomSet
	if prev != nil {
		pv = r.ch[i-1].Atoms
	}
	var op1, op2 cmmn.Xyz
	var err error
	switch {
	case pv.Has(cmmn.O3) && atoms.Has(cmmn.O5):
		op1, op2, err = build.PhosOxy(pv[cmmn.O3], p, atoms[cmmn.O5])
	case atoms.Has(cmmn.O5, cmmn.C5):
		op1, op2, err = build.InitPhosOxy(p, atoms[cmmn.O5], atoms[cmmn.C5])
	case pv.Has(cmmn.O3, cmmn.C3):
		op1, op2, err = build.InitPhosOxy(p, pv[cmmn.O3], pv[cmmn.C3])
	default:
		return fmt.Errorf("no oxygen bonded to P")
	}
	if err != nil {
		return err
	}
	r.set(i, cmmn.AtomSet{cmmn.OP1: op1, cmmn.OP2: op2}, cmmn.OP1, cmmn.OP2)
	return nil
}
