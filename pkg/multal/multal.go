// 2 Apr 2024

// Package multal holds a multiple sequence alignment anchored to one
// gapped reference. All member sequences carry their coordinates in
// two systems at once. alignStart and alignEnd are offsets into the
// gapped reference string, so every sequence shares one column
// numbering. seqStart and seqEnd are 1-based positions in the
// original, ungapped source sequence. Whoever mutates the alignment
// must keep the two systems consistent, which is why the mutators in
// this package always recompute both together.
//
// Nothing here is safe for concurrent mutation. One goroutine owns an
// alignment. If you want parallelism, build many alignments.
package multal

import (
	"errors"
	"fmt"

	. "github.com/andrew-torda/multal/pkg/multal/common"
	"github.com/andrew-torda/multal/pkg/dna"
)

// The errors callers are expected to test with errors.Is.
var (
	ErrEmptyInput       = errors.New("no pairwise records given")
	ErrMissingParameter = errors.New("missing required parameter")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrIndexOutOfBounds = errors.New("sequence index out of bounds")
)

// Orient says whether the original sequence runs in the same
// direction as the reference.
type Orient byte

const (
	Forward Orient = iota
	Reverse
)

func (o Orient) String() string {
	if o == Reverse {
		return "-"
	}
	return "+"
}

// RefSeq is the gapped reference the alignment is anchored to.
// start is 1-based in the original sequence's own numbering.
type RefSeq struct {
	name  string
	seq   []byte
	start int
}

// AlignedSeq is one member of the alignment. The length equation
// len(seq) == alignEnd-alignStart+1 holds at all times, and seqStart
// is never greater than seqEnd, whatever the orientation.
type AlignedSeq struct {
	name                 string
	seq                  []byte
	alignStart, alignEnd int // offsets in the gapped reference frame
	seqStart, seqEnd     int // 1-based, in the ungapped source sequence
	orient               Orient
	div                  float64 // divergence from the consensus
	gcBg                 float64 // GC background of the source
	srcDiv               float64 // divergence reported by whoever aligned it
	transitions          int
	transversions        int
	leftFlank            []byte
	rightFlank           []byte
}

// MultAln owns one reference and any number of aligned sequences.
type MultAln struct {
	ref       RefSeq
	seqs      []AlignedSeq
	gappedLen int // memoized length of ref.seq, 0 means not yet known
}

// NSeq returns the number of aligned sequences. The reference is not
// counted.
func (aln *MultAln) NSeq() int { return len(aln.seqs) }

// Seq gives bounds-checked access to member i.
func (aln *MultAln) Seq(i int) (*AlignedSeq, error) {
	if i < 0 || i >= len(aln.seqs) {
		return nil, fmt.Errorf("index %d with %d sequences: %w",
			i, len(aln.seqs), ErrIndexOutOfBounds)
	}
	return &aln.seqs[i], nil
}

// SeqSlc returns the member slice itself. Most calculations range
// over all members, so make them convenient.
func (aln *MultAln) SeqSlc() []AlignedSeq { return aln.seqs }

// Ref returns a pointer to the reference.
func (aln *MultAln) Ref() *RefSeq { return &aln.ref }

// SetRef replaces the reference and invalidates the memoized length.
func (aln *MultAln) SetRef(name string, seq []byte, start int) {
	aln.ref = RefSeq{name: name, seq: seq, start: start}
	aln.gappedLen = 0
}

// GappedRefLen is the length of the gapped reference string. It is
// memoized since some callers ask for it per column.
func (aln *MultAln) GappedRefLen() int {
	if aln.gappedLen == 0 {
		aln.gappedLen = len(aln.ref.seq)
	}
	return aln.gappedLen
}

// Append adds a member. It refuses a sequence whose coordinates do
// not satisfy the model's invariants.
func (aln *MultAln) Append(s AlignedSeq) error {
	if len(s.seq) != s.alignEnd-s.alignStart+1 {
		return fmt.Errorf("seq %s length %d does not match span %d..%d: %w",
			s.name, len(s.seq), s.alignStart, s.alignEnd, ErrInvalidArgument)
	}
	if s.alignStart < 0 || s.alignEnd >= aln.GappedRefLen() {
		return fmt.Errorf("seq %s span %d..%d outside reference of %d columns: %w",
			s.name, s.alignStart, s.alignEnd, aln.GappedRefLen(), ErrInvalidArgument)
	}
	if s.seqStart > s.seqEnd {
		return fmt.Errorf("seq %s has seqStart %d > seqEnd %d: %w",
			s.name, s.seqStart, s.seqEnd, ErrInvalidArgument)
	}
	aln.seqs = append(aln.seqs, s)
	return nil
}

// RefSeq accessors

func (r *RefSeq) Name() string     { return r.name }
func (r *RefSeq) Seq() []byte      { return r.seq }
func (r *RefSeq) Start() int       { return r.start }
func (r *RefSeq) SetName(n string) { r.name = n }
func (r *RefSeq) SetStart(s int)   { r.start = s }

// UngappedLen is the number of real bases in the reference.
func (r *RefSeq) UngappedLen() int { return dna.UngappedLen(r.seq) }

// AlignedSeq accessors. There are a lot of them, but they keep the
// invariant-preserving mutations in this package.

func (s *AlignedSeq) Name() string          { return s.name }
func (s *AlignedSeq) Seq() []byte           { return s.seq }
func (s *AlignedSeq) AlignStart() int       { return s.alignStart }
func (s *AlignedSeq) AlignEnd() int         { return s.alignEnd }
func (s *AlignedSeq) SeqStart() int         { return s.seqStart }
func (s *AlignedSeq) SeqEnd() int           { return s.seqEnd }
func (s *AlignedSeq) Orient() Orient        { return s.orient }
func (s *AlignedSeq) Div() float64          { return s.div }
func (s *AlignedSeq) GCBackground() float64 { return s.gcBg }
func (s *AlignedSeq) SrcDiv() float64       { return s.srcDiv }
func (s *AlignedSeq) Transitions() int      { return s.transitions }
func (s *AlignedSeq) Transversions() int    { return s.transversions }
func (s *AlignedSeq) LeftFlank() []byte     { return s.leftFlank }
func (s *AlignedSeq) RightFlank() []byte    { return s.rightFlank }

func (s *AlignedSeq) SetName(n string)          { s.name = n }
func (s *AlignedSeq) SetDiv(d float64)          { s.div = d }
func (s *AlignedSeq) SetGCBackground(g float64) { s.gcBg = g }
func (s *AlignedSeq) SetSrcDiv(d float64)       { s.srcDiv = d }
func (s *AlignedSeq) SetOrient(o Orient)        { s.orient = o }
func (s *AlignedSeq) SetFlanks(left, right []byte) {
	s.leftFlank, s.rightFlank = left, right
}

// SetSpan replaces the sequence and both coordinate systems in one
// go, so a caller cannot update one half and forget the other.
func (s *AlignedSeq) SetSpan(seq []byte, alignStart, alignEnd, seqStart, seqEnd int) error {
	if len(seq) != alignEnd-alignStart+1 {
		return fmt.Errorf("span %d..%d does not fit sequence of %d: %w",
			alignStart, alignEnd, len(seq), ErrInvalidArgument)
	}
	if seqStart > seqEnd {
		return fmt.Errorf("seqStart %d > seqEnd %d: %w", seqStart, seqEnd, ErrInvalidArgument)
	}
	s.seq = seq
	s.alignStart, s.alignEnd = alignStart, alignEnd
	s.seqStart, s.seqEnd = seqStart, seqEnd
	return nil
}

// UngappedLen is the number of real bases in this member.
func (s *AlignedSeq) UngappedLen() int { return dna.UngappedLen(s.seq) }

// CharAt returns the member's symbol in a given reference column, or
// BlankChar if the member does not reach that column.
func (s *AlignedSeq) CharAt(col int) byte {
	if col < s.alignStart || col > s.alignEnd {
		return BlankChar
	}
	return s.seq[col-s.alignStart]
}

// String is for debugging. It prints the reference and each member
// padded out to its column offset.
func (aln *MultAln) String() string {
	out := fmt.Sprintf("ref %s\n%s\n", aln.ref.name, aln.ref.seq)
	for i := range aln.seqs {
		s := &aln.seqs[i]
		pad := make([]byte, s.alignStart)
		for j := range pad {
			pad[j] = BlankChar
		}
		out += fmt.Sprintf("%s%s  %s %d-%d (%s)\n",
			pad, s.seq, s.name, s.seqStart, s.seqEnd, s.orient)
	}
	return out
}
