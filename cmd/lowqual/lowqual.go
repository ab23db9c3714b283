// 4 Jun 2024
// Read an aligned fasta file and report per-member divergence and
// low quality column blocks.

package main

import (
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/andrew-torda/multal/pkg/lowqual"
	. "github.com/andrew-torda/multal/pkg/multal/common"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage:", path.Base(os.Args[0]), "[infile [outfile]]")
	long := `Do not just type the command name. It will wait on input from stdin.
Given no arguments, read and write from stdin / stdout.
Given one argument, read from the given file name, but write to stdout.
Given two arguments, read from the first one, write to the second.`
	fmt.Fprintln(os.Stderr, long)
	flag.PrintDefaults()
}

func main() {
	var flags lowqual.CmdFlag
	var infile, outfile string

	flag.StringVar(&flags.MatFile, "m", "", "substitution matrix file, built-in DNA matrix by default")
	flag.StringVar(&flags.RefName, "r", "", "use this sequence as the reference instead of the consensus")
	flag.Float64Var(&flags.Threshold, "t", 0, "low quality block threshold, default 1.0")
	flag.Float64Var(&flags.GapInit, "g", 0, "gap open penalty, default -40")
	flag.Float64Var(&flags.GapExt, "e", 0, "gap extend penalty, default -15")
	flag.IntVar(&flags.Vbsty, "v", 0, "verbosity, bigger is noisier")
	flag.BoolVar(&flags.Time, "time", false, "print out timing information")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() > 0 {
		infile = flag.Arg(0)
		if flag.NArg() > 1 {
			outfile = flag.Arg(1)
		}
	}

	if err := lowqual.Mymain(&flags, infile, outfile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitFailure)
	}
	os.Exit(ExitSuccess)
}
