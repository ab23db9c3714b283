// 26 Apr 2024

// Calling a consensus over the alignment. Two passes. The first is
// plain argmax scoring of each column under a substitution matrix,
// with one quirk kept from long use: if N ties with the winner, N
// wins. The second pass hunts for historic CpG sites. A consensus
// position that looks like "CA" or "TG" today was often "CG" in the
// ancestral sequence, because methylated C mutates to T at high rate.
// If enough members support that reading, the pair is rewritten.

package multal

import (
	"github.com/andrew-torda/matrix"
	. "github.com/andrew-torda/multal/pkg/multal/common"
	"github.com/andrew-torda/multal/pkg/dna"
	"github.com/andrew-torda/multal/pkg/submat"
)

// Default CpG parameters. CGParam rewards a CA or TG observation at
// a candidate site, TAParam punishes TA, which means the C mutated
// on both strands and the site is no longer informative, and
// CGTransParam is a half bonus when only one side of the pair still
// shows the transition.
const (
	DfltCGParam      float32 = 12
	DfltTAParam      float32 = -5
	DfltCGTransParam float32 = 2
)

// ConsOptions configures the consensus caller. The zero value means
// the compiled-in DNA matrix, its alphabet and the default CpG
// parameters.
type ConsOptions struct {
	Mat          *submat.Submat
	Alphabet     []byte // candidate symbols; nil means the matrix's own
	CGParam      float32
	TAParam      float32
	CGTransParam float32
	UseRef       bool // count the reference as one more member
	NoCpG        bool // skip the correction pass
}

func (o *ConsOptions) fill() {
	if o.Mat == nil {
		o.Mat = submat.NewDNAConsensus()
	}
	if o.Alphabet == nil {
		o.Alphabet = o.Mat.Alphabet()
	}
	if o.CGParam == 0 {
		o.CGParam = DfltCGParam
	}
	if o.TAParam == 0 {
		o.TAParam = DfltTAParam
	}
	if o.CGTransParam == 0 {
		o.CGTransParam = DfltCGTransParam
	}
}

// colCounts tallies symbol observations per column, one row per
// symbol seen, the way UsageSite does it for entropy calculations.
// Mapping unknown symbols onto N keeps the row set small.
type colCounts struct {
	counts  *matrix.FMatrix2d
	mapping [128]int16
	syms    []byte
}

func (aln *MultAln) countCols(useRef bool) *colCounts {
	cc := new(colCounts)
	for i := range cc.mapping {
		cc.mapping[i] = -1
	}
	add := func(c byte) {
		c = dna.Upper(c)
		if c >= 128 || cc.mapping[c] >= 0 {
			return
		}
		cc.mapping[c] = int16(len(cc.syms))
		cc.syms = append(cc.syms, c)
	}
	for i := range aln.seqs {
		for _, c := range aln.seqs[i].seq {
			add(c)
		}
	}
	if useRef {
		for _, c := range aln.ref.seq {
			add(c)
		}
	}
	cc.counts = matrix.NewFMatrix2d(len(cc.syms), aln.GappedRefLen())
	bump := func(c byte, col int) {
		cc.counts.Mat[cc.mapping[dna.Upper(c)]][col]++
	}
	for i := range aln.seqs {
		s := &aln.seqs[i]
		for j, c := range s.seq {
			bump(c, s.alignStart+j)
		}
	}
	if useRef {
		for col, c := range aln.ref.seq {
			if c != BlankChar {
				bump(c, col)
			}
		}
	}
	return cc
}

// Consensus computes the corrected consensus string. Its length is
// the gapped reference length. Columns nobody covers come out as the
// gap character.
func (aln *MultAln) Consensus(o *ConsOptions) []byte {
	var opts ConsOptions
	if o != nil {
		opts = *o
	}
	opts.fill()

	cc := aln.countCols(opts.UseRef)
	ncol := aln.GappedRefLen()
	cons := make([]byte, ncol)

	for col := 0; col < ncol; col++ {
		var best byte = GapChar
		var bestScore float32
		var nScore float32
		var sawN, sawAny bool
		for _, a := range opts.Alphabet {
			var score float32
			for bi, b := range cc.syms {
				freq := cc.counts.Mat[bi][col]
				if freq == 0 {
					continue
				}
				score += freq * opts.Mat.Score(a, b)
			}
			if a == 'N' {
				nScore, sawN = score, true
			}
			if !sawAny || score > bestScore {
				best, bestScore, sawAny = a, score, true
			}
		}
		if sawN && best != 'N' && nScore == bestScore {
			best = 'N' // ambiguity wins exact ties
		}
		empty := true
		for bi := range cc.syms {
			if cc.counts.Mat[bi][col] != 0 {
				empty = false
				break
			}
		}
		if empty {
			best = GapChar
		}
		cons[col] = best
	}

	if !opts.NoCpG {
		aln.cpgCorrect(cons, cc, &opts)
	}
	return cons
}

// cpgCorrect is the second pass. For each adjacent pair of non-gap
// consensus positions we compare the matrix score of the called pair
// with a CpG-origin score and rewrite the pair as CG when the latter
// wins.
func (aln *MultAln) cpgCorrect(cons []byte, cc *colCounts, o *ConsOptions) {
	colScore := func(a byte, col int) float32 {
		var score float32
		for bi, b := range cc.syms {
			freq := cc.counts.Mat[bi][col]
			if freq == 0 {
				continue
			}
			score += freq * o.Mat.Score(a, b)
		}
		return score
	}

	prev := -1 // previous non-gap column
	for col := 0; col < len(cons); col++ {
		if cons[col] == GapChar {
			continue
		}
		if prev >= 0 {
			std := colScore(cons[prev], prev) + colScore(cons[col], col)
			alt := aln.cpgScore(cc, prev, col, o)
			if alt > std {
				cons[prev], cons[col] = 'C', 'G'
			}
		}
		prev = col
	}
}

// cpgScore says how well the members at two columns support an
// ancestral CG pair. CA and TG are the products of a C to T (or G to
// A on the other strand) transition at a methylated site, so they
// score the full bonus. TA means both sides mutated, which costs.
// A lone T or lone A half-match gets the half bonus. Everything else
// falls back to the matrix against C and G.
func (aln *MultAln) cpgScore(cc *colCounts, c1, c2 int, o *ConsOptions) float32 {
	var score float32
	for i := range aln.seqs {
		s := &aln.seqs[i]
		b1 := dna.Upper(s.CharAt(c1))
		b2 := dna.Upper(s.CharAt(c2))
		if b1 == BlankChar || b2 == BlankChar {
			continue // member does not cover the pair
		}
		switch {
		case b1 == 'C' && b2 == 'A', b1 == 'T' && b2 == 'G':
			score += o.CGParam
		case b1 == 'T' && b2 == 'A':
			score += o.TAParam
		case b1 == 'T', b2 == 'A':
			score += o.CGTransParam
		default:
			score += o.Mat.Score('C', b1) + o.Mat.Score('G', b2)
		}
	}
	return score
}
