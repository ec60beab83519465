package main

import (
	"flag"
	"fmt"
	"os"
	"path"

	. "github.com/andrew-torda/suitebuild/pkg/common"
	"github.com/andrew-torda/suitebuild/pkg/suitebuild"
)

func usage() int {
	name := path.Base(os.Args[0])
	fmt.Fprintln(os.Stderr, "usage:", name, "[opts] atoms.txt probs.txt out.txt")
	fmt.Fprintln(os.Stderr, "      ", name, "[opts] -s rotamers atoms.txt out.txt")
	flag.PrintDefaults()
	return ExitUsageError
}

func main() {
	var flags suitebuild.CmdFlag
	flag.StringVar(&flags.Config, "c", "", "toml config file")
	flag.StringVar(&flags.Log, "l", "", "log file, \"stdout\" for standard output")
	flag.StringVar(&flags.Rotamers, "r", "", "rotamer statistics file")
	flag.StringVar(&flags.Fixed, "s", "", "rotamer string, instead of likelihoods")
	flag.Parse()

	var atomFile, probFile, outFile string
	switch {
	case flags.Fixed == "" && flag.NArg() == 3:
		atomFile, probFile, outFile = flag.Arg(0), flag.Arg(1), flag.Arg(2)
	case flags.Fixed != "" && flag.NArg() == 2:
		atomFile, outFile = flag.Arg(0), flag.Arg(1)
	default:
		os.Exit(usage())
	}
	os.Exit(suitebuild.MyMain(&flags, atomFile, probFile, outFile, os.Stdout, os.Stderr))
}
