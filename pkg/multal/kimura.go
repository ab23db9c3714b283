// 3 May 2024

// Divergence of each member from the consensus. There are three
// calculators and they are not interchangeable. The simple one is a
// mismatch fraction. The plain Kimura two parameter estimate
// distinguishes transitions from transversions. The third also
// corrects for CpG sites, where methylated cytosine deaminates so
// fast that counting those transitions at face value badly inflates
// the estimated age of a repeat. The plain and CpG variants have
// both been in service for years with slightly different habits, so
// both are kept, separately, on purpose.

package multal

import (
	"fmt"
	"math"

	. "github.com/andrew-torda/multal/pkg/multal/common"
	"github.com/andrew-torda/multal/pkg/dna"
)

// comparable says whether a member symbol and a consensus symbol
// form a scorable pair, i.e. neither is a gap.
func comparable(a, b byte) bool {
	return a != GapChar && b != GapChar && a != BlankChar && b != BlankChar
}

// SimpleDivergence is the mismatch fraction of member i against a
// consensus or reference string in alignment coordinates. Columns
// with a gap on either side are skipped. With not one comparable
// column we report total divergence, 1, rather than an error.
func (aln *MultAln) SimpleDivergence(i int, cons []byte) (float64, error) {
	s, err := aln.Seq(i)
	if err != nil {
		return 0, err
	}
	if cons == nil {
		return 0, fmt.Errorf("no consensus given: %w", ErrMissingParameter)
	}
	var n, mis int
	for j, c := range s.seq {
		col := s.alignStart + j
		if col >= len(cons) {
			break
		}
		cc := dna.Upper(cons[col])
		c = dna.Upper(c)
		if !comparable(c, cc) {
			continue
		}
		n++
		if c != cc {
			mis++
		}
	}
	if n == 0 {
		return 1, nil
	}
	d := float64(mis) / float64(n)
	s.div = d
	return d, nil
}

// kimura evaluates the two parameter formula from transition and
// transversion fractions, clamping to 1 whenever the estimate blows
// up. q over one half, or a non-positive log argument, means the
// sequences are too far gone for the formula to say anything.
func kimura(p, q float64) float64 {
	if q > 0.5 {
		return 1
	}
	logOperand := (1 - 2*p - q) * math.Sqrt(1-2*q)
	if logOperand <= 0 {
		return 1
	}
	d := math.Abs(-0.5 * math.Log(logOperand))
	if d > 1 {
		return 1
	}
	return d
}

// KimuraDivergence is the plain two parameter estimate for member i
// against a consensus. Only well-characterised bases on both sides
// are counted. The member's transition and transversion counts are
// stored as a side effect, old habit, callers rely on it.
func (aln *MultAln) KimuraDivergence(i int, cons []byte) (float64, error) {
	s, err := aln.Seq(i)
	if err != nil {
		return 0, err
	}
	if cons == nil {
		return 0, fmt.Errorf("no consensus given: %w", ErrMissingParameter)
	}
	var n, transI, transV int
	for j, c := range s.seq {
		col := s.alignStart + j
		if col >= len(cons) {
			break
		}
		cc := dna.Upper(cons[col])
		c = dna.Upper(c)
		if !dna.IsWellChar(c) || !dna.IsWellChar(cc) {
			continue
		}
		n++
		if c == cc {
			continue
		}
		if dna.IsTransition(c, cc) {
			transI++
		} else {
			transV++
		}
	}
	s.transitions, s.transversions = transI, transV
	if n == 0 {
		return 1, nil
	}
	p := float64(transI) / float64(n)
	q := float64(transV) / float64(n)
	d := kimura(p, q)
	s.div = d
	return d, nil
}

// KimuraCpGReport is what the CpG adjusted calculator hands back.
// Percentages are times 100, the way downstream tables want them.
type KimuraCpGReport struct {
	Transitions       int     // raw count
	Transversions     int     // raw count
	FoldedTransitions float64 // transitions after CpG down-weighting
	RawKimura         float64 // percent, uncorrected
	AdjKimura         float64 // percent, CpG corrected
	CpGSites          int
	WellCharBases     int
}

// KimuraCpG is the CpG adjusted two parameter estimate. It walks the
// well-characterised pairs of member i against the consensus. At a
// consensus CpG site a transition on the C is held pending. If the G
// shows a transition too, the pair folds to one count. A transition
// on the G alone counts one. A pending C transition never confirmed
// folds to a tenth. A member with fewer than one well-characterised
// base gets the 100 percent sentinel.
func (aln *MultAln) KimuraCpG(i int, cons []byte) (KimuraCpGReport, error) {
	var rep KimuraCpGReport
	s, err := aln.Seq(i)
	if err != nil {
		return rep, err
	}
	if cons == nil {
		return rep, fmt.Errorf("no consensus given: %w", ErrMissingParameter)
	}

	// nextBase[col] is the column of the next non-gap consensus
	// position, for spotting C..G pairs across gap runs.
	isCpGStart := func(col int) bool {
		if dna.Upper(cons[col]) != 'C' {
			return false
		}
		for k := col + 1; k < len(cons); k++ {
			if cons[k] == GapChar {
				continue
			}
			return dna.Upper(cons[k]) == 'G'
		}
		return false
	}

	pending := false
	inCpG := false // currently between the C and the G of a site
	settle := func() {
		if pending {
			rep.FoldedTransitions += 0.1
			pending = false
		}
	}

	for j, c := range s.seq {
		col := s.alignStart + j
		if col >= len(cons) {
			break
		}
		cc := dna.Upper(cons[col])
		c = dna.Upper(c)
		if cc == GapChar || cc == BlankChar {
			continue // alignment column, not a consensus position
		}
		startsSite := isCpGStart(col)
		closesSite := inCpG && cc == 'G'
		if !closesSite && !startsSite {
			settle() // we walked out of a site with the C pending
			inCpG = false
		}
		if startsSite {
			if !closesSite {
				settle()
			}
			rep.CpGSites++
		}

		if !dna.IsWellChar(c) || !dna.IsWellChar(cc) {
			if startsSite {
				inCpG = true
			} else if closesSite {
				inCpG = false
			}
			continue
		}
		rep.WellCharBases++

		isTrans := c != cc && dna.IsTransition(c, cc)
		isTransv := c != cc && !isTrans
		if isTrans {
			rep.Transitions++
		}
		if isTransv {
			rep.Transversions++
		}

		switch {
		case startsSite:
			inCpG = true
			if isTrans {
				pending = true
			}
		case closesSite:
			inCpG = false
			if isTrans {
				if pending {
					pending = false // C and G fold to one
				}
				rep.FoldedTransitions++
			} else {
				settle()
			}
		default:
			if isTrans {
				rep.FoldedTransitions++
			}
		}
	}
	settle()

	if rep.WellCharBases < 1 {
		rep.RawKimura, rep.AdjKimura = 100, 100
		return rep, nil
	}

	n := float64(rep.WellCharBases)
	rep.RawKimura = 100 * kimura(float64(rep.Transitions)/n,
		float64(rep.Transversions)/n)
	rep.AdjKimura = 100 * kimura(rep.FoldedTransitions/n,
		float64(rep.Transversions)/n)
	return rep, nil
}

// GCBackground computes the member's own GC fraction over its
// aligned bases and stores it, for whoever wants to correct
// divergence for composition later.
func (aln *MultAln) GCBackground(i int) (float64, error) {
	s, err := aln.Seq(i)
	if err != nil {
		return 0, err
	}
	var n, gc int
	for _, c := range s.seq {
		switch dna.Upper(c) {
		case 'G', 'C':
			gc++
			n++
		case 'A', 'T':
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	f := float64(gc) / float64(n)
	s.gcBg = f
	return f, nil
}
