// 17 May 2024

// In-place surgery on an alignment. Trimming, reverse complementing
// and pulling out blocks of columns. These are the operations that
// can silently wreck the two coordinate systems if done casually, so
// every path here recomputes alignment offsets and source
// coordinates together.

package multal

import (
	"fmt"

	. "github.com/andrew-torda/multal/pkg/multal/common"
	"github.com/andrew-torda/multal/pkg/dna"
)

// colsForBases returns how many leading (or, going backwards,
// trailing) gapped columns of the reference correspond to n ungapped
// bases. The cut lands just before the next real base, so a trailing
// gap run goes with the removed side.
func colsForBases(ref []byte, n int, fromEnd bool) int {
	if n <= 0 {
		return 0
	}
	seen := 0
	if !fromEnd {
		for i, c := range ref {
			if c == GapChar {
				continue
			}
			if seen == n {
				return i
			}
			seen++
		}
		return len(ref)
	}
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == GapChar {
			continue
		}
		if seen == n {
			return len(ref) - 1 - i
		}
		seen++
	}
	return len(ref)
}

// ambigRun counts the reference bases to cut when a negative trim
// asks us to advance to the first unambiguous base.
func ambigRun(ref []byte, fromEnd bool) int {
	n := 0
	if !fromEnd {
		for _, c := range ref {
			if c == GapChar {
				continue
			}
			if dna.IsWellChar(dna.Upper(c)) {
				return n
			}
			n++
		}
		return n
	}
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == GapChar {
			continue
		}
		if dna.IsWellChar(dna.Upper(ref[i])) {
			return n
		}
		n++
	}
	return n
}

// Trim removes left and right ungapped reference bases from the two
// ends of the alignment, in reference bases, not columns. A negative
// count means advance past leading (or trailing) ambiguous bases
// instead. Members are clipped, members falling entirely inside a
// removed region are dropped, and both coordinate systems of every
// survivor are recomputed. Trim(0,0) changes nothing.
func (aln *MultAln) Trim(left, right int) error {
	ref := aln.ref.seq
	if left < 0 {
		left = ambigRun(ref, false)
	}
	if right < 0 {
		right = ambigRun(ref, true)
	}
	if left == 0 && right == 0 {
		return nil
	}
	lcols := colsForBases(ref, left, false)
	rcols := colsForBases(ref, right, true)
	if lcols+rcols >= len(ref) {
		return fmt.Errorf("trim of %d+%d bases leaves no reference: %w",
			left, right, ErrInvalidArgument)
	}
	lo := lcols            // first surviving column
	hi := len(ref) - rcols // one past the last surviving column

	// Rebuild the member list rather than splicing it in place.
	kept := make([]AlignedSeq, 0, len(aln.seqs))
	for i := len(aln.seqs) - 1; i >= 0; i-- {
		s := aln.seqs[i]
		if s.alignEnd < lo || s.alignStart >= hi {
			continue // wholly inside a trimmed region
		}
		clipStart, clipEnd := s.alignStart, s.alignEnd
		if clipStart < lo {
			clipStart = lo
		}
		if clipEnd >= hi {
			clipEnd = hi - 1
		}
		seq := s.seq[clipStart-s.alignStart : clipEnd-s.alignStart+1]
		// strip the gap run the cut may have exposed at either edge
		for len(seq) > 0 && seq[0] == GapChar {
			seq = seq[1:]
			clipStart++
		}
		for len(seq) > 0 && seq[len(seq)-1] == GapChar {
			seq = seq[:len(seq)-1]
			clipEnd--
		}
		if len(seq) == 0 {
			continue
		}

		// ungapped bases lost at each end fix the source coordinates
		lostHead := dna.UngappedLen(s.seq[:clipStart-s.alignStart])
		lostTail := dna.UngappedLen(s.seq[clipEnd-s.alignStart+1:])
		if s.orient == Forward {
			s.seqStart += lostHead
			s.seqEnd -= lostTail
		} else { // alignment-left is the source sequence's far end
			s.seqEnd -= lostHead
			s.seqStart += lostTail
		}

		s.seq = append([]byte(nil), seq...)
		s.alignStart = clipStart - lo
		s.alignEnd = clipEnd - lo
		kept = append(kept, s)
	}
	// we walked backwards, put them back in order
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	aln.seqs = kept

	removedBases := dna.UngappedLen(ref[:lo])
	aln.ref.seq = append([]byte(nil), ref[lo:hi]...)
	aln.ref.start += removedBases
	aln.gappedLen = 0
	return nil
}

// RevComplement reverse complements the reference and every member
// and re-derives the alignment offsets. Source coordinates do not
// move, only each member's orientation flag flips. Doing it twice
// gets you back exactly where you started.
func (aln *MultAln) RevComplement() {
	refLen := aln.GappedRefLen()
	dna.RevCompInPlace(aln.ref.seq)
	for i := range aln.seqs {
		s := &aln.seqs[i]
		dna.RevCompInPlace(s.seq)
		n := len(s.seq)
		s.alignStart = refLen - (s.alignStart + n)
		s.alignEnd = s.alignStart + n - 1
		if s.orient == Forward {
			s.orient = Reverse
		} else {
			s.orient = Forward
		}
		s.leftFlank, s.rightFlank =
			dna.RevComp(s.rightFlank), dna.RevComp(s.leftFlank)
	}
	aln.gappedLen = 0
}

// BlockRow is one member's slice of an alignment block.
type BlockRow struct {
	Index int // member index in the alignment
	Name  string
	Seq   []byte
}

// Block returns the reference substring over the inclusive column
// range [start,end] plus a row for every member whose span fully
// covers the range. With stripGaps the rows lose their gap
// characters, which is what you want when feeding the block to an
// external tool.
func (aln *MultAln) Block(start, end int, stripGaps bool) ([]byte, []BlockRow, error) {
	if start < 0 || end < start || end >= aln.GappedRefLen() {
		return nil, nil, fmt.Errorf("block %d..%d of %d columns: %w",
			start, end, aln.GappedRefLen(), ErrIndexOutOfBounds)
	}
	ref := append([]byte(nil), aln.ref.seq[start:end+1]...)
	var rows []BlockRow
	for i := range aln.seqs {
		s := &aln.seqs[i]
		if s.alignStart > start || s.alignEnd < end {
			continue
		}
		sub := append([]byte(nil), s.seq[start-s.alignStart:end-s.alignStart+1]...)
		if stripGaps {
			t := sub[:0]
			for _, c := range sub {
				if c != GapChar {
					t = append(t, c)
				}
			}
			sub = t
		}
		rows = append(rows, BlockRow{Index: i, Name: s.name, Seq: sub})
	}
	return ref, rows, nil
}
