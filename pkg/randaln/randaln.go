// 11 Jun 2024

// Package randaln writes random alignments for testing and
// benchmarking. One random master sequence is drawn, then every
// output sequence is a mutated copy with substitutions and the odd
// gap. All members keep the master's width, so the output can go
// straight into anything that expects aligned fasta.
package randaln

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
)

var bases = []byte("ACGT")

const (
	dfltPMut = 0.1
	dfltPGap = 0.05
)

// RandAlnArgs is the set of arguments passed to the main function.
type RandAlnArgs struct {
	Iseed int64     // random number seed
	Wrtr  io.Writer // where we write to
	Cmmt  string    // comment for the sequences
	Nseq  int       // number of sequences
	Len   int       // number of columns
	NoGap bool      // do not put gaps in sequences
	PMut  float64   // substitution chance per site, 0 means 0.1
	PGap  float64   // gap chance per site, 0 means 0.05
}

func master(n int, rnd *rand.Rand) []byte {
	s := make([]byte, n)
	for i := range s {
		s[i] = bases[rnd.Intn(len(bases))]
	}
	return s
}

func mutate(m []byte, args *RandAlnArgs, rnd *rand.Rand) []byte {
	s := append([]byte(nil), m...)
	for i := range s {
		switch r := rnd.Float64(); {
		case !args.NoGap && r < args.PGap:
			s[i] = '-'
		case r < args.PGap+args.PMut:
			s[i] = bases[rnd.Intn(len(bases))]
		}
	}
	return s
}

// writeseq drains the channel of sequences and writes each with a
// numbered comment line, "> something 1, > something 2..."
func writeseq(sChan <-chan []byte, args *RandAlnArgs, wg *sync.WaitGroup) {
	defer wg.Done()
	width := len(fmt.Sprintf("%d", args.Nseq))
	var i int
	for s := range sChan {
		i++
		fmt.Fprintf(args.Wrtr, "> %s %[2]*d\n", args.Cmmt, width, i)
		args.Wrtr.Write(s)
		args.Wrtr.Write([]byte{'\n'})
	}
}

// RandAlnMain writes a random alignment to an io.Writer.
func RandAlnMain(args *RandAlnArgs) error {
	if args.Wrtr == nil {
		return errors.New("randaln: nowhere to write to")
	}
	if args.Nseq < 1 || args.Len < 1 {
		return errors.New("randaln: need at least one sequence and one column")
	}
	if args.PMut == 0 {
		args.PMut = dfltPMut
	}
	if args.PGap == 0 {
		args.PGap = dfltPGap
	}
	rnd := rand.New(rand.NewSource(args.Iseed))
	m := master(args.Len, rnd)

	var wg sync.WaitGroup
	sChan := make(chan []byte)
	wg.Add(1)
	go writeseq(sChan, args, &wg)
	for i := 0; i < args.Nseq; i++ {
		sChan <- mutate(m, args, rnd)
	}
	close(sChan)
	wg.Wait()
	return nil
}
