// 10 May 2024

// Finding badly supported stretches of alignment columns. We score
// every column of the alignment against the consensus, flip the sign
// so that bad columns score high, and run the Ruzzo and Tompa
// algorithm, which finds all maximal scoring subsequences in one left
// to right pass. Anything whose interval score clears a threshold is
// reported as a low quality block.

package multal

import (
	. "github.com/andrew-torda/multal/pkg/multal/common"
	"github.com/andrew-torda/multal/pkg/dna"
	"github.com/andrew-torda/multal/pkg/submat"
)

// Default gap penalties for the column profile. Opening an indel is
// expensive, sitting in one less so.
const (
	DfltGapInit   float32 = -40
	DfltGapExt    float32 = -15
	DfltThreshold float64 = 1.0
)

// ScoreOptions configures the column scorer. The zero value uses the
// compiled-in DNA matrix and the default penalties.
type ScoreOptions struct {
	Mat       *submat.Submat
	GapInit   float32
	GapExt    float32
	Threshold float64
}

func (o *ScoreOptions) fill() {
	if o.Mat == nil {
		o.Mat = submat.NewDNAConsensus()
	}
	if o.GapInit == 0 {
		o.GapInit = DfltGapInit
	}
	if o.GapExt == 0 {
		o.GapExt = DfltGapExt
	}
	if o.Threshold == 0 {
		o.Threshold = DfltThreshold
	}
}

// Interval is a half open [Start,End) column range with the summed
// profile score of everything inside it.
type Interval struct {
	Start, End int
	Score      float64
}

// ColumnProfile averages, for every gapped reference column, the
// score of each covering member against the consensus symbol there.
// A gap on either side scores the gap-open penalty at the boundary
// of an indel and the gap-extend penalty inside one.
func (aln *MultAln) ColumnProfile(cons []byte, o *ScoreOptions) []float64 {
	var opts ScoreOptions
	if o != nil {
		opts = *o
	}
	opts.fill()

	ncol := aln.GappedRefLen()
	profile := make([]float64, ncol)
	nseen := make([]int, ncol)

	for i := range aln.seqs {
		s := &aln.seqs[i]
		inGap := false
		for j, c := range s.seq {
			col := s.alignStart + j
			if col >= len(cons) {
				break
			}
			cc := dna.Upper(cons[col])
			c = dna.Upper(c)
			var score float32
			if c == GapChar || cc == GapChar {
				if c == cc { // gap against gap says nothing
					inGap = false
					continue
				}
				if inGap {
					score = opts.GapExt
				} else {
					score = opts.GapInit
				}
				inGap = true
			} else {
				inGap = false
				score = opts.Mat.Score(cc, c)
			}
			profile[col] += float64(score)
			nseen[col]++
		}
	}
	for col := range profile {
		if nseen[col] > 0 {
			profile[col] /= float64(nseen[col])
		}
	}
	return profile
}

// rtInterval carries the cumulative totals Ruzzo and Tompa need
// while an interval is still open. l and r are the running totals
// just before the interval starts and at its end.
type rtInterval struct {
	start, end int
	l, r       float64
}

// MaxScoringIntervals runs the Ruzzo-Tompa algorithm over a profile.
// It returns all maximal scoring intervals, disjoint and sorted by
// position, and a mask with, at every position, the total score of
// the interval covering it, or 0.
//
// One pass, O(N) amortised. Each profile entry pushes at most one
// interval and every merge removes one, so the stack work is paid
// for by the pushes.
func MaxScoringIntervals(profile []float64) ([]Interval, []float64) {
	var stack []rtInterval
	cum := 0.0
	for i, x := range profile {
		if x <= 0 {
			cum += x
			continue
		}
		cur := rtInterval{start: i, end: i + 1, l: cum, r: cum + x}
		cum += x
		for {
			// look for the most recent interval whose left total
			// is below ours
			j := len(stack) - 1
			for ; j >= 0; j-- {
				if stack[j].l < cur.l {
					break
				}
			}
			if j < 0 || stack[j].r >= cur.r {
				stack = append(stack, cur)
				break
			}
			// merge and try again from the merged interval
			cur = rtInterval{start: stack[j].start, end: cur.end,
				l: stack[j].l, r: cur.r}
			stack = stack[:j]
		}
	}

	out := make([]Interval, len(stack))
	mask := make([]float64, len(profile))
	for i, iv := range stack {
		out[i] = Interval{Start: iv.start, End: iv.end, Score: iv.r - iv.l}
		for p := iv.start; p < iv.end; p++ {
			mask[p] = out[i].Score
		}
	}
	return out, mask
}

// LowQualityBlocks scores the columns, inverts the profile and
// reports the contiguous ranges whose masked score clears the
// threshold. These are the stretches where the alignment does not
// really support the consensus.
func (aln *MultAln) LowQualityBlocks(cons []byte, o *ScoreOptions) []Interval {
	var opts ScoreOptions
	if o != nil {
		opts = *o
	}
	opts.fill()

	profile := aln.ColumnProfile(cons, &opts)
	for i := range profile {
		profile[i] = -profile[i]
	}
	_, mask := MaxScoringIntervals(profile)

	var blocks []Interval
	open := false
	for i, v := range mask {
		if v > opts.Threshold {
			if !open {
				blocks = append(blocks, Interval{Start: i, End: i + 1, Score: v})
				open = true
			} else {
				b := &blocks[len(blocks)-1]
				b.End = i + 1
				if v > b.Score {
					b.Score = v
				}
			}
		} else {
			open = false
		}
	}
	return blocks
}
