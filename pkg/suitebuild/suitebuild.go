// Package suitebuild reads seed atoms and rotamer likelihoods, builds
// the backbone and writes out all the atoms.
package suitebuild

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/andrew-torda/suitebuild/chain"
	"github.com/andrew-torda/suitebuild/config"
	"github.com/andrew-torda/suitebuild/decode"
	"github.com/andrew-torda/suitebuild/pdb"
	"github.com/andrew-torda/suitebuild/pdb/cmmn"
	"github.com/andrew-torda/suitebuild/pipeline"
	"github.com/andrew-torda/suitebuild/pkg/common"
	"github.com/andrew-torda/suitebuild/rmsd"
	"github.com/andrew-torda/suitebuild/rotamer"
)

// CmdFlag is literally command line flags after parsing. Rotamers
// and Log override whatever the config file says.
type CmdFlag struct {
	Config   string // toml file with settings
	Rotamers string // rotamer statistics, instead of the built in table
	Log      string // "" for none, "stdout" or a file name
	Fixed    string // rotamer string to use instead of likelihoods
}

// inputs is everything we read before doing anything.
type inputs struct {
	ch    chain.Chain
	probs pdb.Probs
}

// readTwoFiles reads the atoms and the likelihoods. The likelihoods
// are read in the background.
func readTwoFiles(atomFile, probFile string) (inputs, error) {
	var in inputs
	var errP error
	var wg sync.WaitGroup
	if probFile != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in.probs, errP = pdb.ReadProbs(probFile)
		}()
	}
	var errA error
	in.ch, errA = pdb.ReadAtoms(atomFile)
	wg.Wait()
	return in, errors.Join(errA, errP)
}

// setup reads the config and decides on the catalog and the log.
func setup(flags *CmdFlag) (config.Config, *rotamer.Catalog, error) {
	cfg := config.Default()
	if flags.Config != "" {
		var err error
		if cfg, err = config.Read(flags.Config); err != nil {
			return cfg, nil, err
		}
	}
	if flags.Rotamers != "" {
		cfg.Files.Rotamers = flags.Rotamers
	}
	if flags.Log != "" {
		cfg.Files.Log = flags.Log
	}
	if cfg.Files.Rotamers == "" {
		return cfg, rotamer.Default(), nil
	}
	cat, err := rotamer.Load(cfg.Files.Rotamers)
	return cfg, cat, err
}

// phosphates collects the P atoms, so we can say how far they moved.
func phosphates(ch chain.Chain) map[int]cmmn.Xyz {
	ret := make(map[int]cmmn.Xyz)
	for _, nuc := range ch {
		if x, ok := nuc.Atoms[cmmn.P]; ok {
			ret[nuc.Num] = x
		}
	}
	return ret
}

// phosRmsd is the rmsd between phosphates before and after, after
// superposition, so it only sees changes of shape.
func phosRmsd(before map[int]cmmn.Xyz, ch chain.Chain) (float64, int, error) {
	var a, b []cmmn.Xyz
	for _, nuc := range ch {
		if x, ok := before[nuc.Num]; ok {
			a = append(a, x)
			b = append(b, nuc.Atoms[cmmn.P])
		}
	}
	if len(a) < 3 {
		return 0, len(a), nil
	}
	r, err := rmsd.Superposed(a, b)
	return r, len(a), err
}

// choose picks the rotamers, from a string or from likelihoods.
func choose(cat *rotamer.Catalog, flags *CmdFlag, in inputs) (pipeline.Assignment, decode.Path, error) {
	if flags.Fixed != "" {
		codes, err := decode.ParseString(flags.Fixed)
		if err != nil {
			return nil, nil, err
		}
		return pipeline.Fixed(cat, in.ch, codes)
	}
	return pipeline.Decode(cat, in.ch, in.probs)
}

// Run does the work. Summary goes to summary. Per nucleotide detail
// goes to the log.
func Run(flags *CmdFlag, atomFile, probFile, outFile string, summary io.Writer) error {
	cfg, cat, err := setup(flags)
	if err != nil {
		return err
	}
	lg, lgClose, err := pdb.LogWhere(cfg.Files.Log)
	if err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	defer lgClose.Close()

	if flags.Fixed != "" {
		probFile = ""
	}
	in, err := readTwoFiles(atomFile, probFile)
	if err != nil {
		return err
	}
	rots, path, err := choose(cat, flags, in)
	if err != nil {
		return fmt.Errorf("choosing rotamers: %w", err)
	}
	fmt.Fprintln(summary, "rotamers:", path)

	before := phosphates(in.ch)
	opts := pipeline.Options{Refine: cfg.Refine, Ideals: pipeline.DefaultOptions().Ideals, Log: lg}
	reports, err := pipeline.Run(in.ch, rots, opts)
	if err != nil {
		return err
	}
	logReports(lg, reports)
	nFail := 0
	for _, r := range reports {
		if r.Err != nil {
			nFail++
		}
	}
	if nFail > 0 {
		fmt.Fprintf(summary, "%d of %d nucleotides could not be built\n", nFail, len(reports))
	}
	if r, n, err := phosRmsd(before, in.ch); err != nil {
		lg.Println("phosphate rmsd:", err)
	} else if n >= 3 {
		fmt.Fprintf(summary, "phosphate rmsd %.3f over %d atoms\n", r, n)
	}

	fp, err := common.OutFile(outFile)
	if err != nil {
		return err
	}
	if err := pdb.WriteAtoms(fp, in.ch); err != nil {
		fp.Close()
		return fmt.Errorf("writing %s: %w", outFile, err)
	}
	return fp.Close()
}

// logReports says how each nucleotide went. Failures have already
// been logged by the pipeline.
func logReports(lg *log.Logger, reports []pipeline.Report) {
	for _, r := range reports {
		switch {
		case r.Err != nil:
		case !r.Refined:
			lg.Printf("%d %v not refined", r.Num, r.Pucker)
		default:
			lg.Printf("%d %v score %.3g syn %t converged %t", r.Num, r.Pucker, r.Score, r.Syn, r.Converged)
		}
	}
}

// MyMain is Run with an exit code.
func MyMain(flags *CmdFlag, atomFile, probFile, outFile string, summary io.Writer, errw io.Writer) int {
	if err := Run(flags, atomFile, probFile, outFile, summary); err != nil {
		fmt.Fprintln(errw, err)
		return common.ExitFailure
	}
	return common.ExitSuccess
}
