// 5 Apr 2024

package multal_test

import (
	"errors"
	"testing"

	. "github.com/andrew-torda/multal/pkg/multal"
)

func TestSetSpanChecks(t *testing.T) {
	var s AlignedSeq
	if err := s.SetSpan([]byte("ACGT"), 0, 4, 1, 4); err == nil {
		t.Fatal("span of 5 columns took a sequence of 4")
	}
	if err := s.SetSpan([]byte("ACGT"), 0, 3, 5, 2); err == nil {
		t.Fatal("seqStart > seqEnd was accepted")
	}
	if err := s.SetSpan([]byte("ACGT"), 2, 5, 1, 4); err != nil {
		t.Fatal("good span rejected:", err)
	}
	if s.AlignStart() != 2 || s.AlignEnd() != 5 {
		t.Fatalf("got span %d..%d wanted 2..5", s.AlignStart(), s.AlignEnd())
	}
}

func TestAppendChecks(t *testing.T) {
	var aln MultAln
	aln.SetRef("r", []byte("ACGT-"), 1)

	var s AlignedSeq
	s.SetName("m")
	if err := s.SetSpan([]byte("ACGT"), 3, 6, 1, 4); err != nil {
		t.Fatal(err)
	}
	if err := aln.Append(s); !errors.Is(err, ErrInvalidArgument) {
		t.Fatal("span past the reference end, got", err)
	}
	if err := s.SetSpan([]byte("ACGT"), 0, 3, 1, 4); err != nil {
		t.Fatal(err)
	}
	if err := aln.Append(s); err != nil {
		t.Fatal("good member rejected:", err)
	}
	if aln.NSeq() != 1 {
		t.Fatalf("got %d seqs wanted 1", aln.NSeq())
	}
}

func TestSeqBounds(t *testing.T) {
	var aln MultAln
	aln.SetRef("r", []byte("ACGT"), 1)
	var s AlignedSeq
	if err := s.SetSpan([]byte("AC"), 1, 2, 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := aln.Append(s); err != nil {
		t.Fatal(err)
	}
	for _, i := range []int{-1, 1, 99} {
		if _, err := aln.Seq(i); !errors.Is(err, ErrIndexOutOfBounds) {
			t.Fatalf("index %d got %v wanted out of bounds", i, err)
		}
	}
	if _, err := aln.Seq(0); err != nil {
		t.Fatal(err)
	}
}

func TestCharAt(t *testing.T) {
	var aln MultAln
	aln.SetRef("r", []byte("ACGT"), 1)
	var s AlignedSeq
	if err := s.SetSpan([]byte("CG"), 1, 2, 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := aln.Append(s); err != nil {
		t.Fatal(err)
	}
	m, _ := aln.Seq(0)
	want := []byte{' ', 'C', 'G', ' '}
	for col, w := range want {
		if c := m.CharAt(col); c != w {
			t.Fatalf("col %d got %c wanted %c", col, c, w)
		}
	}
}
