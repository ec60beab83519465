// 19 Oct 2026

// Package randlik makes test input for suitebuild. It builds a chain
// with perfect geometry from a rotamer string, then writes the seed
// atoms and a likelihood table in which the right rotamers are likely,
// but not certain.
package randlik

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/andrew-torda/suitebuild/build"
	"github.com/andrew-torda/suitebuild/chain"
	"github.com/andrew-torda/suitebuild/pdb"
	"github.com/andrew-torda/suitebuild/rotamer"
	"github.com/andrew-torda/suitebuild/synth"
)

// RandLikArgs is the set of arguments passed to the main function.
type RandLikArgs struct {
	Iseed   int64     // random number seed
	Codes   []string  // the true rotamers, one per suite
	Noise   float64   // probability spread over the wrong rotamers
	Syn     bool      // build with syn bases
	Full    io.Writer // if not nil, all atoms of the true chain go here
	Atoms   io.Writer // seed atoms
	Probs   io.Writer // likelihoods
	Catalog *rotamer.Catalog
}

// probs gives one suite's likelihoods. The true code gets 1 - noise
// and the rest is scattered at random over the others.
func probs(cat *rotamer.Catalog, code string, noise float64, rnd *rand.Rand) map[string]float64 {
	ret := make(map[string]float64, cat.Len())
	var tot float64
	for _, c := range cat.Codes() {
		if c != code {
			ret[c] = rnd.Float64()
			tot += ret[c]
		}
	}
	for c := range ret {
		ret[c] *= noise / tot
	}
	ret[code] = 1 - noise
	return ret
}

// likelihoods makes the whole table, keyed by the residue number at
// the end of each suite.
func likelihoods(cat *rotamer.Catalog, ch chain.Chain, codes []string, noise float64, rnd *rand.Rand) (pdb.Probs, []int) {
	ret := make(pdb.Probs)
	var nums []int
	for j, i := range ch.Suites() {
		n := ch[i].Num
		ret[n] = probs(cat, codes[j], noise, rnd)
		nums = append(nums, n)
	}
	return ret, nums
}

// RandLikMain writes the atom and likelihood tables.
func RandLikMain(args *RandLikArgs) error {
	if args.Noise < 0 || args.Noise >= 1 {
		return fmt.Errorf("noise %g must be from 0 to less than 1", args.Noise)
	}
	cat := args.Catalog
	if cat == nil {
		cat = rotamer.Default()
	}
	chi := build.ChiAnti
	if args.Syn {
		chi = build.ChiSyn
	}
	full, err := synth.Chain(cat, args.Codes, chi)
	if err != nil {
		return err
	}
	if args.Full != nil {
		if err := pdb.WriteAtoms(args.Full, full); err != nil {
			return err
		}
	}
	seeds := synth.Seeds(full)
	if err := pdb.WriteAtoms(args.Atoms, seeds); err != nil {
		return err
	}
	rnd := rand.New(rand.NewSource(args.Iseed))
	p, nums := likelihoods(cat, seeds, args.Codes, args.Noise, rnd)
	if len(nums) != len(args.Codes) {
		return fmt.Errorf("built %d suites from %d rotamers", len(nums), len(args.Codes))
	}
	return pdb.WriteProbs(args.Probs, p, nums, cat.Codes())
}
