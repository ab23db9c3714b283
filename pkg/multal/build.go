// 18 Apr 2024

// Building one multiple alignment out of many independent pairwise
// alignments. Each pairwise record gapped its own copy of the
// reference without knowing about the others, so the same reference
// base sits at a different column in every record. The trick is the
// gap pattern. For each record we note how many inserted bases sit
// in front of each ungapped reference position. The merged reference
// takes the elementwise maximum over all records, which is exactly
// enough room for the fattest insertion anybody needs. Then every
// member sequence is re-emitted, padding each of its columns up to
// the merged width.

package multal

import (
	"fmt"
	"os"

	. "github.com/andrew-torda/multal/pkg/multal/common"
	"github.com/andrew-torda/multal/pkg/dna"
	"github.com/andrew-torda/multal/pkg/seqdb"
)

// PairwiseRecord is one pairwise alignment as it comes from whoever
// did the searching. Ref coordinates are 1-based and ungapped. Orient
// is '+' or 'C', the way search tools write it.
type PairwiseRecord struct {
	RefName      string
	RefSeq       []byte // gapped
	RefStart     int
	RefEnd       int
	RefRemaining int

	InstName      string
	InstSeq       []byte // gapped, same length as RefSeq
	InstStart     int
	InstEnd       int
	InstRemaining int

	Orient     byte // '+' or 'C'
	PctDiverge float64
}

// RefRole says which side of a pairwise record plays the reference.
type RefRole byte

const (
	Query RefRole = iota
	Subject
)

// ParseRefRole turns the strings used in configuration files into a
// RefRole. Anything unknown is an error, not a guess.
func ParseRefRole(s string) (RefRole, error) {
	switch s {
	case "query", "Query":
		return Query, nil
	case "subject", "Subject":
		return Subject, nil
	}
	return Query, fmt.Errorf("reference role \"%s\": %w", s, ErrInvalidArgument)
}

// GapCum picks the cumulative gap sum used when translating record
// offsets into merged gapped coordinates. Corrected counts the gap
// runs up to and including position j. Legacy stops one short. Legacy
// exists only so old coordinate output can be reproduced bit for bit.
// New code wants the zero value.
type GapCum byte

const (
	GapCumCorrected GapCum = iota
	GapCumLegacy
)

// DfltMaxFlankingLen is how many bases of flanking sequence we fetch
// on each side when a database is available.
const DfltMaxFlankingLen = 50

// BuildOptions configures Build. The zero value is usable whenever
// no flanking database is wanted.
type BuildOptions struct {
	Role           RefRole
	GapCum         GapCum
	Reference      []byte      // ungapped, covering the records' combined span; nil means synthesise one
	RefName        string      // name for a synthesised reference
	DB             seqdb.SeqDB // nil means no flanking lookups
	MaxFlankingLen int         // 0 means DfltMaxFlankingLen, -1 unbounded
	Vbsty          int
}

// refSide and instSide pull the two halves out of a record according
// to the role. With the Subject role the sides swap, and so does the
// meaning of the orientation flag.
func (o *BuildOptions) refSide(r *PairwiseRecord) (name string, seq []byte, start, end int) {
	if o.Role == Subject {
		return r.InstName, r.InstSeq, r.InstStart, r.InstEnd
	}
	return r.RefName, r.RefSeq, r.RefStart, r.RefEnd
}

func (o *BuildOptions) instSide(r *PairwiseRecord) (name string, seq []byte, start, end int) {
	if o.Role == Subject {
		return r.RefName, r.RefSeq, r.RefStart, r.RefEnd
	}
	return r.InstName, r.InstSeq, r.InstStart, r.InstEnd
}

// gapPattern is the per-record insertion profile. pat[j] is the
// number of inserted bases immediately in front of ungapped combined
// reference position j, and pat[len] holds a trailing run. Only the
// builder ever sees one.
type gapPattern []int

// recGapPattern computes the gap pattern of one record, left padded
// for its offset from the combined reference start.
func recGapPattern(refGapped []byte, offset, combinedLen int) gapPattern {
	pat := make(gapPattern, combinedLen+1)
	run := 0
	k := offset
	for _, c := range refGapped {
		if c == GapChar {
			run++
			continue
		}
		pat[k] = run
		run = 0
		k++
	}
	pat[k] = run // a trailing insertion, usually zero
	return pat
}

// Build merges pairwise records into one multiple alignment. All
// records must name the same reference sequence side. Zero records is
// an error. Positions of a synthesised reference that no record
// covers stay blank and are only worth a warning.
func Build(recs []PairwiseRecord, o *BuildOptions) (*MultAln, error) {
	if o == nil {
		return nil, fmt.Errorf("build options: %w", ErrMissingParameter)
	}
	if recs == nil {
		return nil, fmt.Errorf("pairwise records: %w", ErrMissingParameter)
	}
	if len(recs) == 0 {
		return nil, ErrEmptyInput
	}

	tMin, tMax := 0, 0
	for i := range recs {
		_, _, start, end := o.refSide(&recs[i])
		if i == 0 || start < tMin {
			tMin = start
		}
		if i == 0 || end > tMax {
			tMax = end
		}
	}
	combinedLen := tMax - tMin + 1

	// Step 1: an ungapped combined reference, either supplied or
	// written together from the records' own reference substrings.
	refName := o.RefName
	if refName == "" {
		refName, _, _, _ = o.refSide(&recs[0])
	}
	combined := make([]byte, combinedLen)
	if o.Reference != nil {
		if len(o.Reference) < combinedLen {
			return nil, fmt.Errorf("supplied reference has %d bases, records span %d: %w",
				len(o.Reference), combinedLen, ErrInvalidArgument)
		}
		copy(combined, o.Reference[:combinedLen])
	} else {
		for i := range combined {
			combined[i] = BlankChar
		}
		for i := range recs {
			_, seq, start, _ := o.refSide(&recs[i])
			k := start - tMin
			for _, c := range seq {
				if c != GapChar {
					combined[k] = dna.Upper(c)
					k++
				}
			}
		}
		nblank := 0
		for _, c := range combined {
			if c == BlankChar {
				nblank++
			}
		}
		if nblank > 0 && o.Vbsty > 0 {
			fmt.Fprintf(os.Stderr,
				"Warning: %d of %d reference positions covered by no record\n",
				nblank, combinedLen)
		}
	}

	// Steps 2 and 3: per-record gap patterns and their elementwise max.
	pats := make([]gapPattern, len(recs))
	merged := make(gapPattern, combinedLen+1)
	for i := range recs {
		_, seq, start, _ := o.refSide(&recs[i])
		pats[i] = recGapPattern(seq, start-tMin, combinedLen)
		for j, g := range pats[i] {
			if g > merged[j] {
				merged[j] = g
			}
		}
	}

	// Step 4: the gapped reference string.
	gapped := make([]byte, 0, combinedLen+combinedLen/4)
	for j := 0; j < combinedLen; j++ {
		for g := 0; g < merged[j]; g++ {
			gapped = append(gapped, GapChar)
		}
		gapped = append(gapped, combined[j])
	}
	for g := 0; g < merged[combinedLen]; g++ {
		gapped = append(gapped, GapChar)
	}

	// Step 5: cumulative gap counts, so an ungapped offset can be
	// turned into a merged gapped column.
	totalGaps := make([]int, combinedLen+1)
	sum := 0
	for j := 0; j <= combinedLen; j++ {
		if o.GapCum == GapCumLegacy {
			totalGaps[j] = sum // gaps strictly before position j
			sum += merged[j]
		} else {
			sum += merged[j]
			totalGaps[j] = sum // gaps up to and including position j
		}
	}

	aln := new(MultAln)
	aln.SetRef(refName, gapped, tMin)

	maxFlank := o.MaxFlankingLen
	if maxFlank == 0 {
		maxFlank = DfltMaxFlankingLen
	}

	for i := range recs {
		rec := &recs[i]
		name, instSeq, instStart, instEnd := o.instSide(rec)
		_, refGapped, refStart, _ := o.refSide(rec)
		offset := refStart - tMin

		// Step 6: re-emit the member, padding every reference
		// position up to the merged insertion width. The first base
		// gets no padding. Nothing of the member lies left of it,
		// so the member simply starts behind its own insertion,
		// inside whatever run the merged reference put there.
		out := make([]byte, 0, len(instSeq)+len(instSeq)/4)
		k := offset
		first := true
		for p, c := range refGapped {
			if c == GapChar {
				out = append(out, instSeq[p])
				continue
			}
			if !first {
				extra := merged[k] - pats[i][k]
				for g := 0; g < extra; g++ {
					out = append(out, GapChar)
				}
			}
			first = false
			out = append(out, instSeq[p])
			k++
		}
		// records reaching the end of the combined span also pad
		// their trailing insertion to the merged width, so records
		// covering the same span come out the same length
		if k == combinedLen {
			for g := merged[k] - pats[i][k]; g > 0; g-- {
				out = append(out, GapChar)
			}
		}

		// With the corrected sum, totalGaps[offset] counts the whole
		// run in front of the first base, so step back over the
		// member's own share of it. The legacy sum stops one run
		// short and is used as it comes.
		alignStart := offset + totalGaps[offset]
		if o.GapCum == GapCumCorrected {
			alignStart -= pats[i][offset]
		}

		orient := Forward
		if rec.Orient == 'C' {
			orient = Reverse
		} else if rec.Orient != '+' {
			return nil, fmt.Errorf("orientation '%c' in record %d: %w",
				rec.Orient, i, ErrInvalidArgument)
		}

		seqStart, seqEnd := instStart, instEnd
		if seqStart > seqEnd {
			seqStart, seqEnd = seqEnd, seqStart
		}

		s := AlignedSeq{
			name:   name,
			orient: orient,
			srcDiv: rec.PctDiverge,
		}
		if err := s.SetSpan(out, alignStart, alignStart+len(out)-1,
			seqStart, seqEnd); err != nil {
			return nil, err
		}
		if o.DB != nil {
			if err := fetchFlanks(&s, o.DB, maxFlank); err != nil {
				return nil, err
			}
		}
		if err := aln.Append(s); err != nil {
			return nil, err
		}
	}
	return aln, nil
}

// fetchFlanks asks the database for up to maxFlank bases either side
// of a member's span in its source sequence. For reverse members the
// flanks are complemented and swapped, so left stays the alignment's
// left.
func fetchFlanks(s *AlignedSeq, db seqdb.SeqDB, maxFlank int) error {
	n, err := db.SeqLength(s.name)
	if err != nil {
		return err
	}
	leftLen := s.seqStart - 1
	rightLen := n - s.seqEnd
	if maxFlank >= 0 {
		if leftLen > maxFlank {
			leftLen = maxFlank
		}
		if rightLen > maxFlank {
			rightLen = maxFlank
		}
	}
	var left, right []byte
	if leftLen > 0 {
		if left, err = db.Substr(s.name, s.seqStart-leftLen, leftLen); err != nil {
			return err
		}
	}
	if rightLen > 0 {
		if right, err = db.Substr(s.name, s.seqEnd+1, rightLen); err != nil {
			return err
		}
	}
	if s.orient == Reverse {
		left, right = dna.RevComp(right), dna.RevComp(left)
	}
	s.leftFlank, s.rightFlank = left, right
	return nil
}
