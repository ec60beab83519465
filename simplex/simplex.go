// 27 Dec 2019
// Package simplex provides a simplex (Nelder and Meade) optimizer.
// Using J.A. Nelder, R. Mead, Comp. J., 7, 308-313
// J.C. Lagarias, J.A. Reeds, M.H. Wright, and P.E. Wright
// Press, W.H., Teukolsky, S.A., Vetterling, W.T., Flannery, B.P.,
// Numerical Recipes in C., Cambridge University Press, 1992
// The structure with the amotry() function comes from numerical recipes,
// but the formulae for moving the highest point around are taken from
// the primary references.
// It has a couple of frills.
//  1. Restarts. The basic method likes to stall, so Run(n) will start
//     again from the best point up to n times. It stops early if a
//     restart did not buy much or the answer is already good enough.
//     On a restart, steps can be given random signs.
//  2. It allows a vector of minimum and maximum values. It will reject
//     moves if they go beyond these boundaries. This is done by wrapping
//     the cost function.
//  3. Two ways to build the first simplex. IniClassic is one step along
//     each axis from the start point. IniPntSpread spreads the points
//     over the span and scrambles the order of coordinates, which
//     minimises the effect of passenger (unimportant) coordinates.
// Could be improved
// * we call a full sort after each cycle. This is not necessary. One
//   only needs a list with the highest, next-highest and best points.
package simplex

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/andrew-torda/suitebuild/matrix"
)

// Reasons for stopping
const (
	Converged = iota
	Maxsteps
)

// IniType says how to build the initial simplex.
type IniType uint8

const (
	IniClassic   IniType = iota // start point plus one step along each axis
	IniPntSpread                // points spread across the span, permuted
)

const (
	randSeed = 1637 // default seed
	alpha    = 1.
	beta     = -1 / 2.
	gamma    = -2.
	tiny     = 1e-10 // stops us dividing by zero when values go to zero
)

// CostFun is the function to be minimised. An error stops the minimiser
// and is handed back to the caller.
type CostFun func(x []float64) (float64, error)

// SplxCtrl holds the settings for a minimisation.
type SplxCtrl struct {
	maxstep      int       // cycles of the simplex
	lower        []float64 // bounds on the parameters
	upper        []float64
	iniPrm       []float64 // where we start
	span         []float64 // size of the first step in each dimension
	seed         int64     // Seed for random number generator
	tol          float64
	iniType      IniType
	randSign     bool    // random signs on steps for restarts
	restartRatio float64 // stop restarting when new/old best is above this
	goodEnough   float64 // stop restarting when best is below this
	cost         CostFun // the function to be optimised
}

// Result is what comes back from a minimisation.
type Result struct {
	BestPrm    []float64 // best params found
	Best       float64   // cost at BestPrm
	StopReason int       // Converged or Maxsteps, from the last run
	Ncycle     int       // cycles summed over all runs
	Nstart     int       // runs done
}

// NewSplxCtrl gives us a structure with default values.
// The cost function must be specified. iniPrm is copied.
func NewSplxCtrl(cost CostFun, iniPrm []float64, maxstep int) *SplxCtrl {
	s := new(SplxCtrl)
	s.cost = cost
	s.iniPrm = append([]float64(nil), iniPrm...)
	s.maxstep = maxstep
	s.tol = 1e-10
	s.seed = randSeed
	s.span = make([]float64, len(iniPrm))
	for i, x := range iniPrm { // 10 % of the value, if there is a value
		if s.span[i] = 0.1 * math.Abs(x); s.span[i] == 0 {
			s.span[i] = 0.1
		}
	}
	return s
}

func (s *SplxCtrl) Seed(i int64) { s.seed = i }

func (s *SplxCtrl) Tol(f float64) { s.tol = f }

func (s *SplxCtrl) IniType(t IniType) { s.iniType = t }

// RandSign turns on random signs for the steps when building a simplex.
func (s *SplxCtrl) RandSign(b bool) { s.randSign = b }

// Restart sets the two criteria for giving up on restarts. If a run
// finishes with best at or above ratio times the previous best, it has
// not improved enough to be worth another go. If the best value is below goodEnough
// we have what we want. Zeroes turn the tests off.
func (s *SplxCtrl) Restart(ratio, goodEnough float64) {
	s.restartRatio, s.goodEnough = ratio, goodEnough
}

// Span sets the size of the first steps.
func (s *SplxCtrl) Span(span []float64) error {
	if len(span) != len(s.iniPrm) {
		return errors.New("span has wrong dimensions")
	}
	copy(s.span, span)
	return nil
}

// Lower and Upper let one add a slice of lower or upper bounds for
// parameters. If you specify bounds for one parameter, you have to
// specify bounds for all.
func (s *SplxCtrl) Lower(lower []float64) error {
	if len(lower) != len(s.iniPrm) {
		return errors.New("lower bounds wrong dimensions")
	}
	s.lower = lower
	return nil
}

func (s *SplxCtrl) Upper(upper []float64) error {
	if len(upper) != len(s.iniPrm) {
		return errors.New("upper bounds wrong dimensions")
	}
	s.upper = upper
	return nil
}

// bounded wraps the cost function so anything out of bounds is
// infinitely bad. Without bounds, cost is just cost.
func (s *SplxCtrl) bounded() CostFun {
	if s.lower == nil && s.upper == nil {
		return s.cost
	}
	return func(x []float64) (float64, error) {
		for i, v := range x {
			if (s.lower != nil && v < s.lower[i]) || (s.upper != nil && v > s.upper[i]) {
				return math.Inf(1), nil
			}
		}
		return s.cost(x)
	}
}

// splx is really just a dynamically allocated matrix from the matrix
// package. Row i is vertex i.
type splx struct {
	*matrix.DMatrix2d
}

// iniPoints fills the simplex around prm.
func (s *SplxCtrl) iniPoints(splx splx, prm []float64, rnd *rand.Rand) {
	nparam := len(prm)
	npoint := nparam + 1
	step := make([]float64, nparam)
	copy(step, s.span)
	if s.randSign {
		for i := range step {
			if rnd.Intn(2) == 0 {
				step[i] = -step[i]
			}
		}
	}
	if s.iniType == IniClassic {
		for j := 0; j < npoint; j++ {
			copy(splx.Mat[j], prm)
			if j > 0 {
				splx.Mat[j][j-1] += step[j-1]
			}
		}
	} else {
		for i := 0; i < nparam; i++ {
			incrmt := step[i] / float64(nparam)
			start := prm[i] - step[i]/2
			for j := 0; j < npoint; j++ {
				splx.Mat[j][i] = start + float64(j)*incrmt
			}
		}
		for ip := 0; ip < nparam; ip++ { // permute elements in each dimension
			for j, val := range rnd.Perm(npoint) {
				splx.Mat[val][ip], splx.Mat[j][ip] = splx.Mat[j][ip], splx.Mat[val][ip]
			}
		}
	}
	s.clamp(splx)
}

// clamp pulls the starting vertices inside any bounds. After this, only
// trial moves can be out of bounds and they always lose.
func (s *SplxCtrl) clamp(splx splx) {
	for _, v := range splx.Mat {
		for i := range v {
			if s.lower != nil && v[i] < s.lower[i] {
				v[i] = s.lower[i]
			}
			if s.upper != nil && v[i] > s.upper[i] {
				v[i] = s.upper[i]
			}
		}
	}
}

// sWk holds the scratch arrays for sums and ranks.
type sWk struct {
	cost   CostFun   // copy of cost function
	y      []float64 // y values at each simplex point
	cntrd  []float64 // centroid of all points, except worst
	ptrial []float64 // trial point used in amotry
	rank   []int     // vertices sorted from worst to best
}

// init sets up the arrays for a simplex work (sWk) structure
func (sWk *sWk) init(ndim int, cost CostFun) {
	npnt := ndim + 1
	sWk.y = make([]float64, npnt)
	sWk.rank = make([]int, npnt)
	sWk.cntrd = make([]float64, ndim)
	sWk.ptrial = make([]float64, ndim)
	sWk.cost = cost
}

type tryResult uint8

const (
	yesImprove tryResult = iota // move improved worst point
	noImprove
)

// amotry moves the worst vertex by reflection, expansion or 1D contraction
// as determined by fac. Expansion is called after a successful reflection,
// so it is measured from the reflected point.
func amotry(splx splx, fac float64, sWk *sWk) (tryResult, error) {
	ihi := sWk.rank[0]
	for i, c := range sWk.cntrd {
		sWk.ptrial[i] = (1+fac)*c - fac*splx.Mat[ihi][i]
	}
	ytry, err := sWk.cost(sWk.ptrial)
	if err != nil {
		return noImprove, err
	}
	if ytry > sWk.y[ihi] {
		return noImprove, nil
	}
	copy(splx.Mat[ihi], sWk.ptrial)
	sWk.y[ihi] = ytry
	return yesImprove, nil
}

// centroid updates the simplex centroid. This is the middle of the points,
// but excluding the worst (highest)
func (sWk *sWk) centroid(splx splx) {
	for i := range sWk.cntrd {
		sWk.cntrd[i] = 0
	}
	for _, r := range sWk.rank[1:] {
		floats.Add(sWk.cntrd, splx.Mat[r])
	}
	floats.Scale(1/float64(len(sWk.cntrd)), sWk.cntrd)
}

// contract brings all points halfway towards the lowest point and
// recalculates their values.
func (sWk *sWk) contract(splx splx) error {
	ilo := sWk.rank[len(sWk.rank)-1]
	pntLow := splx.Mat[ilo]
	for i, v := range splx.Mat {
		if i == ilo {
			continue
		}
		floats.Add(v, pntLow)
		floats.Scale(0.5, v)
		var err error
		if sWk.y[i], err = sWk.cost(v); err != nil {
			return fmt.Errorf("contracting simplex: %w", err)
		}
	}
	return nil
}

// setupFirstStep calculates values at the initial simplex vertices.
func (sWk *sWk) setupFirstStep(splx splx) error {
	for i, v := range splx.Mat {
		var err error
		if sWk.y[i], err = sWk.cost(v); err != nil {
			return fmt.Errorf("initialising simplex: %w", err)
		}
	}
	for i := range sWk.rank {
		sWk.rank[i] = i
	}
	return nil
}

// sortRank puts the worst vertex first. Stable, so ties are always
// broken the same way.
func (sWk *sWk) sortRank() {
	sort.SliceStable(sWk.rank, func(i, j int) bool {
		return sWk.y[sWk.rank[i]] > sWk.y[sWk.rank[j]]
	})
}

// converged returns true if we have converged. Use the criterion
// from the implementation in numerical recipes.
func (sWk *sWk) converged(tol float64) bool {
	yhi := sWk.y[sWk.rank[0]]
	ylo := sWk.y[sWk.rank[len(sWk.rank)-1]]
	if math.IsInf(yhi, 1) {
		return false
	}
	rtol := (2 * math.Abs(yhi-ylo)) / (math.Abs(yhi) + math.Abs(ylo) + tiny)
	return rtol < tol
}

// onerun is the inner call to the simplex. It will be called with
// different starting points on each call. It returns the stop reason
// and number of cycles.
func (s *SplxCtrl) onerun(sWk *sWk, splx splx) (int, int, error) {
	if err := sWk.setupFirstStep(splx); err != nil {
		return Maxsteps, 0, err
	}
	for n := 0; n < s.maxstep; n++ {
		sWk.sortRank()
		ilo := sWk.rank[len(sWk.rank)-1] // best point
		ihi := sWk.rank[0]               // worst (hi) point
		if sWk.converged(s.tol) {
			return Converged, n, nil
		}
		sWk.centroid(splx)
		tRes, err := amotry(splx, alpha, sWk)
		if err != nil {
			return Maxsteps, n, err
		}
		if tRes == yesImprove {
			if sWk.y[ihi] > sWk.y[ilo] {
				continue // just accept and move on
			} // new best point, so try to extend
			if _, err = amotry(splx, gamma, sWk); err != nil {
				return Maxsteps, n, err
			}
			continue
		}
		if tRes, err = amotry(splx, beta, sWk); err != nil {
			return Maxsteps, n, err
		}
		if tRes == yesImprove {
			continue // 1 point contraction worked
		}
		if err = sWk.contract(splx); err != nil { // last option
			return Maxsteps, n, err
		}
	}
	sWk.sortRank()
	return Maxsteps, s.maxstep, nil
}

// Run does up to maxstart runs of the simplex, each starting from the
// best point of the one before. An error from the cost function stops
// everything. Hitting maxstep is not an error, but the StopReason in
// the result says so.
func (s *SplxCtrl) Run(maxstart int) (Result, error) {
	ndim := len(s.iniPrm)
	res := Result{BestPrm: append([]float64(nil), s.iniPrm...), Best: math.Inf(1)}
	if maxstart < 1 {
		maxstart = 1
	}
	rnd := rand.New(rand.NewSource(s.seed))
	splx := splx{matrix.NewDMatrix2d(ndim+1, ndim)}
	var sWk sWk
	sWk.init(ndim, s.bounded())
	for mr := 0; mr < maxstart; mr++ {
		s.iniPoints(splx, res.BestPrm, rnd)
		stop, ncycle, err := s.onerun(&sWk, splx)
		res.Ncycle += ncycle
		res.Nstart = mr + 1
		if err != nil {
			return res, err
		}
		res.StopReason = stop
		prev := res.Best
		ilo := sWk.rank[ndim]
		copy(res.BestPrm, splx.Mat[ilo])
		res.Best = sWk.y[ilo]
		if res.Best < s.goodEnough {
			break
		}
		if s.restartRatio > 0 && mr > 0 && res.Best >= s.restartRatio*prev {
			break
		}
	}
	return res, nil
}
