// 24 Apr 2024

package multal_test

import (
	"bytes"
	"errors"
	"testing"

	. "github.com/andrew-torda/multal/pkg/multal"
)

// twoRecs is the worked example used by most of the tests here.
// Both records cover reference bases 1..4. The first inserted a base
// after the end, the second in the middle, so the merged reference
// needs a gap column for each.
func twoRecs() []PairwiseRecord {
	return []PairwiseRecord{
		{RefName: "ref", RefSeq: []byte("ACGT-"), RefStart: 1, RefEnd: 4,
			InstName: "i1", InstSeq: []byte("ACGTA"), InstStart: 1, InstEnd: 5,
			Orient: '+'},
		{RefName: "ref", RefSeq: []byte("AC-GT"), RefStart: 1, RefEnd: 4,
			InstName: "i2", InstSeq: []byte("ACAGT"), InstStart: 1, InstEnd: 5,
			Orient: '+'},
	}
}

func chkMember(t *testing.T, aln *MultAln, i int, seq string, alignStart, seqStart, seqEnd int) {
	t.Helper()
	s, err := aln.Seq(i)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(s.Seq(), []byte(seq)) {
		t.Fatalf("member %d got %s wanted %s", i, s.Seq(), seq)
	}
	if s.AlignStart() != alignStart {
		t.Fatalf("member %d alignStart got %d wanted %d", i, s.AlignStart(), alignStart)
	}
	if s.AlignEnd() != alignStart+len(seq)-1 {
		t.Fatalf("member %d alignEnd got %d wanted %d", i, s.AlignEnd(), alignStart+len(seq)-1)
	}
	if s.SeqStart() != seqStart || s.SeqEnd() != seqEnd {
		t.Fatalf("member %d source coords got %d..%d wanted %d..%d",
			i, s.SeqStart(), s.SeqEnd(), seqStart, seqEnd)
	}
}

func TestBuildMerge(t *testing.T) {
	aln, err := Build(twoRecs(), &BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(aln.Ref().Seq(), []byte("AC-GT-")) {
		t.Fatalf("merged reference got %s wanted AC-GT-", aln.Ref().Seq())
	}
	if aln.Ref().Name() != "ref" || aln.Ref().Start() != 1 {
		t.Fatalf("reference got %s at %d wanted ref at 1",
			aln.Ref().Name(), aln.Ref().Start())
	}
	if aln.NSeq() != 2 {
		t.Fatalf("got %d members wanted 2", aln.NSeq())
	}
	chkMember(t, aln, 0, "AC-GTA", 0, 1, 5)
	chkMember(t, aln, 1, "ACAGT-", 0, 1, 5)
}

// A record starting inside a merged gap run. The corrected cumulative
// sum puts its first base on the base column, the legacy sum lands it
// one run earlier. Both are checked, since the legacy one is kept to
// reproduce old coordinate output.
func TestBuildOffsets(t *testing.T) {
	recs := append(twoRecs(), PairwiseRecord{
		RefName: "ref", RefSeq: []byte("GT"), RefStart: 3, RefEnd: 4,
		InstName: "i3", InstSeq: []byte("GT"), InstStart: 1, InstEnd: 2,
		Orient: '+'})

	aln, err := Build(recs, &BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	chkMember(t, aln, 2, "GT-", 3, 1, 2)

	aln, err = Build(recs, &BuildOptions{GapCum: GapCumLegacy})
	if err != nil {
		t.Fatal(err)
	}
	chkMember(t, aln, 2, "GT-", 2, 1, 2)
}

func TestBuildSubjectRole(t *testing.T) {
	recs := []PairwiseRecord{
		{RefName: "inst", RefSeq: []byte("ACGT"), RefStart: 1, RefEnd: 4,
			InstName: "ref", InstSeq: []byte("ACGT"), InstStart: 5, InstEnd: 8,
			Orient: '+'},
	}
	aln, err := Build(recs, &BuildOptions{Role: Subject})
	if err != nil {
		t.Fatal(err)
	}
	if aln.Ref().Name() != "ref" || aln.Ref().Start() != 5 {
		t.Fatalf("subject role reference got %s at %d wanted ref at 5",
			aln.Ref().Name(), aln.Ref().Start())
	}
	s, _ := aln.Seq(0)
	if s.Name() != "inst" {
		t.Fatalf("subject role member got %s wanted inst", s.Name())
	}
	chkMember(t, aln, 0, "ACGT", 0, 1, 4)
}

func TestBuildOrient(t *testing.T) {
	recs := []PairwiseRecord{
		{RefName: "ref", RefSeq: []byte("ACGT"), RefStart: 1, RefEnd: 4,
			InstName: "i1", InstSeq: []byte("ACGT"), InstStart: 10, InstEnd: 7,
			Orient: 'C'},
	}
	aln, err := Build(recs, &BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	s, _ := aln.Seq(0)
	if s.Orient() != Reverse {
		t.Fatal("orientation C did not give a reverse member")
	}
	if s.SeqStart() != 7 || s.SeqEnd() != 10 {
		t.Fatalf("reverse coords got %d..%d wanted 7..10", s.SeqStart(), s.SeqEnd())
	}

	recs[0].Orient = 'x'
	if _, err := Build(recs, &BuildOptions{}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatal("junk orientation got", err)
	}
}

func TestBuildErrors(t *testing.T) {
	recs := twoRecs()
	if _, err := Build(recs, nil); !errors.Is(err, ErrMissingParameter) {
		t.Fatal("nil options got", err)
	}
	if _, err := Build(nil, &BuildOptions{}); !errors.Is(err, ErrMissingParameter) {
		t.Fatal("nil records got", err)
	}
	if _, err := Build([]PairwiseRecord{}, &BuildOptions{}); !errors.Is(err, ErrEmptyInput) {
		t.Fatal("zero records got", err)
	}
	o := &BuildOptions{Reference: []byte("AC")}
	if _, err := Build(recs, o); !errors.Is(err, ErrInvalidArgument) {
		t.Fatal("short reference got", err)
	}
}

// mapDB is an in-memory stand-in for a sequence database.
type mapDB map[string][]byte

func (m mapDB) SeqLength(id string) (int, error) {
	s, ok := m[id]
	if !ok {
		return 0, errors.New("no sequence " + id)
	}
	return len(s), nil
}

func (m mapDB) Substr(id string, start, length int) ([]byte, error) {
	s, ok := m[id]
	if !ok {
		return nil, errors.New("no sequence " + id)
	}
	end := start - 1 + length
	if end > len(s) {
		end = len(s)
	}
	return append([]byte(nil), s[start-1:end]...), nil
}

func TestBuildFlanks(t *testing.T) {
	db := mapDB{"s1": []byte("AACCGGTTAA")}
	recs := []PairwiseRecord{
		{RefName: "ref", RefSeq: []byte("ACGT"), RefStart: 1, RefEnd: 4,
			InstName: "s1", InstSeq: []byte("ACGT"), InstStart: 3, InstEnd: 6,
			Orient: '+'},
	}
	aln, err := Build(recs, &BuildOptions{DB: db})
	if err != nil {
		t.Fatal(err)
	}
	s, _ := aln.Seq(0)
	if !bytes.Equal(s.LeftFlank(), []byte("AA")) ||
		!bytes.Equal(s.RightFlank(), []byte("TTAA")) {
		t.Fatalf("flanks got %s / %s wanted AA / TTAA",
			s.LeftFlank(), s.RightFlank())
	}

	// reverse members get their flanks complemented and swapped
	recs[0].InstStart, recs[0].InstEnd = 6, 3
	recs[0].Orient = 'C'
	if aln, err = Build(recs, &BuildOptions{DB: db}); err != nil {
		t.Fatal(err)
	}
	s, _ = aln.Seq(0)
	if !bytes.Equal(s.LeftFlank(), []byte("TTAA")) ||
		!bytes.Equal(s.RightFlank(), []byte("TT")) {
		t.Fatalf("reverse flanks got %s / %s wanted TTAA / TT",
			s.LeftFlank(), s.RightFlank())
	}
}
