// 19 Oct 2026

// randlik writes an atom table and a likelihood table for testing
// suitebuild.
//
// Usage:
//
//	randlik [-r seed] [-n noise] [-syn] [-f full.txt] rotamers atoms.txt probs.txt
//
// rotamers is a string like "1a1a1b". The chain has one more
// nucleotide than there are rotamers. With -f, the chain with all its
// atoms is written too, so you can see how well suitebuild got it back.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/andrew-torda/suitebuild/decode"
	. "github.com/andrew-torda/suitebuild/pkg/common"
	"github.com/andrew-torda/suitebuild/pkg/randlik"
)

func main() {
	f := flag.NewFlagSet("randlik", flag.ExitOnError)
	const iseed int64 = 1637
	var args randlik.RandLikArgs
	var fullFile string

	f.Int64Var(&args.Iseed, "r", iseed, "random number seed")
	f.Float64Var(&args.Noise, "n", 0.2, "probability given to wrong rotamers")
	f.BoolVar(&args.Syn, "syn", false, "syn instead of anti bases")
	f.StringVar(&fullFile, "f", "", "write the full chain here")
	if err := f.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(f.Output(), err)
		os.Exit(ExitUsageError)
	}
	if f.NArg() != 3 {
		fmt.Fprintln(f.Output(), "randlik [..] rotamers atoms.txt probs.txt")
		f.Usage()
		os.Exit(ExitUsageError)
	}
	var err error
	if args.Codes, err = decode.ParseString(f.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitUsageError)
	}
	var files []io.WriteCloser
	open := func(name string) io.Writer {
		fp, err := OutFile(name)
		if err != nil {
			fmt.Fprintln(os.Stderr, "File for output:", err)
			os.Exit(ExitFailure)
		}
		files = append(files, fp)
		return fp
	}
	args.Atoms, args.Probs = open(f.Arg(1)), open(f.Arg(2))
	if fullFile != "" {
		args.Full = open(fullFile)
	}
	err = randlik.RandLikMain(&args)
	for _, fp := range files {
		if e := fp.Close(); err == nil {
			err = e
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitFailure)
	}
	os.Exit(ExitSuccess)
}
