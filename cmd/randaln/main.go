// 12 Jun 2024

// Randaln makes a random alignment for testing the code.
// Usage:
//
//	randaln [options] fname nseq length
//
// will generate nseq aligned sequences of the given width and write
// them to fname, or stdout for "-".
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	. "github.com/andrew-torda/multal/pkg/multal/common"
	"github.com/andrew-torda/multal/pkg/randaln"
)

func main() {
	f := flag.NewFlagSet("randaln", flag.ExitOnError)
	const iseed int64 = 1637
	var args randaln.RandAlnArgs

	f.BoolVar(&args.NoGap, "g", false, "do not put gaps in sequences")
	f.Int64Var(&args.Iseed, "r", iseed, "random number seed")
	f.Float64Var(&args.PMut, "m", 0, "substitution chance per site, default 0.1")
	f.Float64Var(&args.PGap, "G", 0, "gap chance per site, default 0.05")
	if err := f.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(f.Output(), err)
		os.Exit(ExitUsageError)
	}
	if f.NArg() != 3 {
		fmt.Fprintln(f.Output(), "Too few args\nrandaln [..] file nseq length")
		f.Usage()
		os.Exit(ExitUsageError)
	}

	fname := f.Args()[0]
	if fname == "-" || fname == "" {
		args.Wrtr = os.Stdout
	} else {
		if ft, err := os.Create(fname); err != nil {
			fmt.Fprintln(os.Stderr, "File for output:", err)
			os.Exit(ExitFailure)
		} else {
			defer ft.Close()
			args.Wrtr = ft
		}
	}
	args.Cmmt = "rand"

	const emsg = "Failed converting %s to positive integer\n"
	if nseq, err := strconv.ParseUint(f.Args()[1], 10, 32); err != nil {
		fmt.Fprintf(os.Stderr, emsg, f.Args()[1])
		os.Exit(ExitFailure)
	} else {
		args.Nseq = int(nseq)
	}
	if nlen, err := strconv.ParseUint(f.Args()[2], 10, 32); err != nil {
		fmt.Fprintf(os.Stderr, emsg, f.Args()[2])
		os.Exit(ExitFailure)
	} else {
		args.Len = int(nlen)
	}
	if err := randaln.RandAlnMain(&args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitFailure)
	}
	os.Exit(ExitSuccess)
}
