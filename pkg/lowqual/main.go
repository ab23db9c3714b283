// 4 Jun 2024

// Package lowqual reads an aligned fasta file, calls the consensus,
// works out how diverged every member is and reports the stretches
// of columns the alignment does not really support. The output is a
// small csv per member plus one line per low quality block.
package lowqual

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/andrew-torda/multal/pkg/fasta"
	"github.com/andrew-torda/multal/pkg/multal"
	"github.com/andrew-torda/multal/pkg/submat"
)

// CmdFlag is everything settable from the command line.
type CmdFlag struct {
	MatFile   string  // substitution matrix file, "" means built in
	RefName   string  // use this member as the reference/consensus
	Threshold float64 // low quality block threshold
	GapInit   float64 // gap open penalty for the column profile
	GapExt    float64 // gap extend penalty
	Vbsty     int
	Time      bool
}

// warnExists checks if a filename exists and prints a warning
// if we will trash a file. It does not return an error.
func warnExists(fname string) {
	if _, err := os.Stat(fname); err == nil {
		fmt.Fprintln(os.Stderr, "Warning, trashing old version of", fname)
	}
}

func writeReport(fp io.Writer, aln *multal.MultAln, cons []byte,
	blocks []multal.Interval) error {
	fmt.Fprintln(fp, `"name","simple","kimura","kimura CpG adj","transitions","transversions","CpG sites"`)
	for i := 0; i < aln.NSeq(); i++ {
		s, err := aln.Seq(i)
		if err != nil {
			return err
		}
		simple, err := aln.SimpleDivergence(i, cons)
		if err != nil {
			return err
		}
		kim, err := aln.KimuraDivergence(i, cons)
		if err != nil {
			return err
		}
		rep, err := aln.KimuraCpG(i, cons)
		if err != nil {
			return err
		}
		fmt.Fprintf(fp, "%s,%.4f,%.4f,%.4f,%d,%d,%d\n",
			s.Name(), simple, kim, rep.AdjKimura/100,
			rep.Transitions, rep.Transversions, rep.CpGSites)
	}
	for _, b := range blocks {
		fmt.Fprintf(fp, "low quality columns %d-%d score %.1f\n",
			b.Start, b.End, b.Score)
	}
	return nil
}

// Mymain does the work, so main() stays a flag-parsing shell.
func Mymain(flags *CmdFlag, infile, outfile string) error {
	if flags.Time {
		startTime := time.Now()
		end := func() {
			fmt.Println("finished after", time.Since(startTime).Milliseconds(), "ms")
		}
		defer end()
	}

	tuples, err := fasta.ReadFile(infile)
	if err != nil {
		return fmt.Errorf("reading sequences: %w", err)
	}

	sOpts := &multal.SeedOptions{Vbsty: flags.Vbsty}
	if flags.RefName != "" {
		for i := range tuples {
			if tuples[i].Name == flags.RefName {
				sOpts.Reference = tuples[i].Seq
				sOpts.RefName = tuples[i].Name
				tuples = append(tuples[:i], tuples[i+1:]...)
				break
			}
		}
		if sOpts.Reference == nil {
			return fmt.Errorf("cannot find reference sequence \"%s\"", flags.RefName)
		}
	}
	aln, err := multal.ImportSeeds(tuples, sOpts)
	if err != nil {
		return err
	}

	var mat *submat.Submat
	if flags.MatFile != "" {
		if mat, err = submat.Read(flags.MatFile); err != nil {
			return err
		}
	}
	cons := aln.Consensus(&multal.ConsOptions{Mat: mat})
	blocks := aln.LowQualityBlocks(cons, &multal.ScoreOptions{
		Mat:       mat,
		GapInit:   float32(flags.GapInit),
		GapExt:    float32(flags.GapExt),
		Threshold: flags.Threshold,
	})

	var fp io.WriteCloser = os.Stdout
	if outfile != "" && outfile != "-" {
		warnExists(outfile)
		if fp, err = os.Create(outfile); err != nil {
			return fmt.Errorf("output file %v: %w", outfile, err)
		}
		defer fp.Close()
	}
	return writeReport(fp, aln, cons, blocks)
}
