// Package decode picks the most likely chain of rotamers. Each suite
// has a likelihood for every rotamer. Neighbouring suites which are
// bonded share a sugar, so the end pucker of one rotamer has to be the
// start pucker of the next. We find the best path through all that
// with the Viterbi algorithm, working with logs.
package decode

import (
	"errors"
	"fmt"
	"math"
	"strings"

	fmatrix "github.com/andrew-torda/matrix"

	"github.com/andrew-torda/suitebuild/matrix"
	"github.com/andrew-torda/suitebuild/rotamer"
)

var (
	ErrZeroProb     = errors.New("all probabilities zero")
	ErrIncompatible = errors.New("incompatible rotamers")
	ErrUnknown      = errors.New("unknown rotamer")
	ErrLength       = errors.New("wrong number of rotamers")
)

// A zero probability has no log. We count zeros separately from the
// sum of logs of everything else, and a state with fewer zeros always
// beats one with more. unreachable marks states with no legal way in.
const unreachable = -1

// SuiteProbs is what we know about one suite.
type SuiteProbs struct {
	Probs     map[string]float64 // likelihood of each rotamer code
	Connected bool               // bonded to the suite before
}

// Step is one suite on the best path.
type Step struct {
	Suite   int
	Rotamer *rotamer.Rotamer
	Prob    float64 // normalised probability of this rotamer here
}

// Path is the decoder's answer, one step per suite, in chain order.
type Path []Step

// Codes gives the rotamer codes along a path.
func (p Path) Codes() []string {
	ret := make([]string, len(p))
	for i, s := range p {
		ret[i] = s.Rotamer.Code
	}
	return ret
}

func (p Path) String() string { return strings.Join(p.Codes(), " ") }

// emissions normalises the probabilities for each suite and puts them
// in a suite x rotamer table, along with their logs. The log of a zero
// is left as zero and must be recognised from prob.
func emissions(cat *rotamer.Catalog, suites []SuiteProbs) (*matrix.DMatrix2d, *fmatrix.FMatrix2d, error) {
	nrot := cat.Len()
	prob := matrix.NewDMatrix2d(len(suites), nrot)
	lnp := fmatrix.NewFMatrix2d(len(suites), nrot)
	for i, s := range suites {
		var sum float64
		for code, p := range s.Probs {
			j := cat.Position(code)
			if j < 0 {
				return nil, nil, fmt.Errorf("suite %d: %w %q", i, ErrUnknown, code)
			}
			if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
				return nil, nil, fmt.Errorf("suite %d: bad probability %g for %s", i, p, code)
			}
			prob.Mat[i][j] = p
			sum += p
		}
		if sum == 0 {
			return nil, nil, fmt.Errorf("suite %d: %w", i, ErrZeroProb)
		}
		for j, p := range prob.Mat[i] {
			p /= sum
			prob.Mat[i][j] = p
			if p != 0 {
				lnp.Mat[i][j] = float32(math.Log(p))
			}
		}
	}
	return prob, lnp, nil
}

// better says if (nz, sum) beats (bnz, bsum). Fewer zeros wins, then
// the bigger sum. An unreachable state never wins.
func better(nz int, sum float64, bnz int, bsum float64) bool {
	switch {
	case nz == unreachable:
		return false
	case bnz == unreachable:
		return true
	case nz != bnz:
		return nz < bnz
	}
	return sum > bsum
}

// Viterbi returns the most likely rotamer for every suite. A suite
// which is connected to the one before can only follow a compatible
// rotamer. Those transitions are not just unlikely, they are never
// taken. Paths are ranked first by how many zero probabilities they
// go through and then by the sum of the logs of the rest. Ties go to
// the rotamer which comes first in the catalog.
func Viterbi(cat *rotamer.Catalog, suites []SuiteProbs) (Path, error) {
	if len(suites) == 0 {
		return nil, nil
	}
	prob, lnp, err := emissions(cat, suites)
	if err != nil {
		return nil, err
	}
	nsuite, nrot := len(suites), cat.Len()
	zeros := matrix.NewIMatrix2d(nsuite, nrot)
	lnsum := matrix.NewDMatrix2d(nsuite, nrot)
	back := matrix.NewIMatrix2d(nsuite, nrot)
	back.Fill(-1)
	emit := func(t, r int) (int, float64) {
		if prob.Mat[t][r] == 0 {
			return 1, 0
		}
		return 0, float64(lnp.Mat[t][r])
	}
	for r := 0; r < nrot; r++ {
		zeros.Mat[0][r], lnsum.Mat[0][r] = emit(0, r)
	}
	for t := 1; t < nsuite; t++ {
		pz, ps := zeros.Mat[t-1], lnsum.Mat[t-1]
		for r := 0; r < nrot; r++ {
			bnz, bsum, arg := unreachable, 0.0, -1
			for rp := 0; rp < nrot; rp++ {
				if suites[t].Connected && !rotamer.Compatible(cat.Index(rp), cat.Index(r)) {
					continue
				}
				if better(pz[rp], ps[rp], bnz, bsum) {
					bnz, bsum, arg = pz[rp], ps[rp], rp
				}
			}
			back.Mat[t][r] = arg
			if arg < 0 {
				zeros.Mat[t][r] = unreachable
				continue
			}
			nz, s := emit(t, r)
			zeros.Mat[t][r], lnsum.Mat[t][r] = bnz+nz, bsum+s
		}
	}

	last, bnz, bsum := -1, unreachable, 0.0
	for r := 0; r < nrot; r++ {
		if better(zeros.Mat[nsuite-1][r], lnsum.Mat[nsuite-1][r], bnz, bsum) {
			last, bnz, bsum = r, zeros.Mat[nsuite-1][r], lnsum.Mat[nsuite-1][r]
		}
	}
	if last < 0 {
		return nil, fmt.Errorf("no path through %d suites: %w", nsuite, ErrIncompatible)
	}
	path := make(Path, nsuite)
	for t, r := nsuite-1, last; t >= 0; t-- {
		path[t] = Step{Suite: t, Rotamer: cat.Index(r), Prob: prob.Mat[t][r]}
		r = back.Mat[t][r]
	}
	return path, nil
}

// Score is how Viterbi ranks a path: the number of suites on it with
// no chance at all and the sum of the logs of the probabilities at
// the other suites.
func Score(cat *rotamer.Catalog, suites []SuiteProbs, codes []string) (nzero int, lnsum float64, err error) {
	prob, _, err := emissions(cat, suites)
	if err != nil {
		return 0, 0, err
	}
	if len(codes) != len(suites) {
		return 0, 0, ErrLength
	}
	for t, code := range codes {
		j := cat.Position(code)
		if j < 0 {
			return 0, 0, fmt.Errorf("%w %q", ErrUnknown, code)
		}
		if p := prob.Mat[t][j]; p == 0 {
			nzero++
		} else {
			lnsum += math.Log(p)
		}
	}
	return nzero, lnsum, nil
}

// LogLik is the log likelihood of a path under the given suite
// probabilities. It uses the same normalisation as Viterbi and is -Inf
// if anything on the path had no chance.
func LogLik(cat *rotamer.Catalog, suites []SuiteProbs, codes []string) (float64, error) {
	nzero, lnsum, err := Score(cat, suites, codes)
	if err != nil {
		return 0, err
	}
	if nzero > 0 {
		return math.Inf(-1), nil
	}
	return lnsum, nil
}
