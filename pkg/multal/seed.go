// 22 May 2024

// Importing an alignment that somebody else already gapped, from
// tuples of name and gapped sequence. This is the other way into a
// MultAln, used when the members come from a seed alignment rather
// than from our own pairwise merging.

package multal

import (
	"fmt"

	. "github.com/andrew-torda/multal/pkg/multal/common"
	"github.com/andrew-torda/multal/pkg/dna"
	"github.com/andrew-torda/multal/pkg/seqid"
)

// SeedTuple is one pre-gapped input sequence. Start and End are
// 1-based coordinates in the ungapped source. Both zero means not
// given, and we will look for an id:start-end suffix in the name or
// fall back to 1..ungapped length. Start greater than End encodes
// the reverse strand.
type SeedTuple struct {
	Name string
	Seq  []byte
	Start, End int
}

// SeedOptions configures ImportSeeds.
type SeedOptions struct {
	Reference    []byte // gapped; nil means use the consensus
	RefName      string
	KeepEdgeGaps bool // do not strip leading and trailing gap runs
	Vbsty        int
}

// edgeStrip finds the first and one-past-last columns of s that are
// not gaps or white space. With keep, nothing is stripped.
func edgeStrip(s []byte, keep bool) (lo, hi int) {
	hi = len(s)
	if keep {
		return 0, hi
	}
	isEdge := func(c byte) bool {
		return c == GapChar || c == DotChar || c == ' ' || c == '\t'
	}
	for lo < hi && isEdge(s[lo]) {
		lo++
	}
	for hi > lo && isEdge(s[hi-1]) {
		hi--
	}
	return lo, hi
}

// ImportSeeds builds a MultAln from pre-gapped tuples. All tuples
// must have the same gapped length, since they come from one
// alignment. The reference is the supplied one, or failing that the
// consensus of the imported members.
func ImportSeeds(tuples []SeedTuple, o *SeedOptions) (*MultAln, error) {
	if o == nil {
		o = &SeedOptions{}
	}
	if len(tuples) == 0 {
		return nil, ErrEmptyInput
	}
	width := len(tuples[0].Seq)
	for i := range tuples {
		if len(tuples[i].Seq) != width {
			return nil, fmt.Errorf(
				"seed %s has %d columns, first had %d: %w",
				tuples[i].Name, len(tuples[i].Seq), width, ErrInvalidArgument)
		}
	}

	aln := new(MultAln)
	refName := o.RefName
	if o.Reference != nil {
		if len(o.Reference) != width {
			return nil, fmt.Errorf("reference has %d columns, seeds have %d: %w",
				len(o.Reference), width, ErrInvalidArgument)
		}
		aln.SetRef(refName, append([]byte(nil), o.Reference...), 1)
	} else {
		// a placeholder so Append's bounds checks have something to
		// measure against; replaced by the consensus below
		blank := make([]byte, width)
		for i := range blank {
			blank[i] = GapChar
		}
		aln.SetRef(refName, blank, 1)
	}

	for ti := range tuples {
		t := &tuples[ti]
		lo, hi := edgeStrip(t.Seq, o.KeepEdgeGaps)
		if lo == hi {
			if o.Vbsty > 0 {
				fmt.Printf("seed %s is all gaps, skipped\n", t.Name)
			}
			continue
		}
		seq := make([]byte, hi-lo)
		for i, c := range t.Seq[lo:hi] {
			if c == DotChar {
				c = GapChar
			}
			seq[i] = c
		}

		name := t.Name
		start, end := t.Start, t.End
		orient := Forward
		switch {
		case start != 0 || end != 0:
			if start > end {
				start, end = end, start
				orient = Reverse
			}
		default:
			if id, ok := seqid.TryParse(t.Name); ok {
				start, end = id.Start, id.End
				if id.Reverse {
					orient = Reverse
				}
			} else {
				start, end = 1, dna.UngappedLen(seq)
			}
		}
		s := AlignedSeq{name: name, orient: orient}
		if err := s.SetSpan(seq, lo, hi-1, start, end); err != nil {
			return nil, err
		}
		if err := aln.Append(s); err != nil {
			return nil, err
		}
	}
	if aln.NSeq() == 0 {
		return nil, ErrEmptyInput
	}

	if o.Reference == nil {
		cons := aln.Consensus(nil)
		aln.SetRef(refName, cons, 1)
	}
	return aln, nil
}
