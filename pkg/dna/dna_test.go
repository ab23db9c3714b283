// 19 Mar 2024

package dna_test

import (
	"bytes"
	"testing"

	. "github.com/andrew-torda/multal/pkg/dna"
)

func TestComp(t *testing.T) {
	cases := []struct{ in, want byte }{
		{'A', 'T'}, {'T', 'A'}, {'C', 'G'}, {'G', 'C'},
		{'a', 't'}, {'g', 'c'},
		{'R', 'Y'}, {'M', 'K'}, {'S', 'S'}, {'N', 'N'},
		{'-', '-'}, {' ', ' '},
		{'Q', 'N'}, // nonsense becomes N
	}
	for _, c := range cases {
		if got := Comp(c.in); got != c.want {
			t.Fatalf("comp of %c got %c wanted %c", c.in, got, c.want)
		}
	}
}

func TestRevComp(t *testing.T) {
	if got := RevComp([]byte("AACG")); !bytes.Equal(got, []byte("CGTT")) {
		t.Fatalf("got %s wanted CGTT", got)
	}
	if RevComp(nil) != nil {
		t.Fatal("reverse complement of nothing should stay nil")
	}
	s := []byte("AaC-gTn")
	twice := RevComp(RevComp(s))
	if !bytes.Equal(twice, s) {
		t.Fatalf("double reverse complement got %s wanted %s", twice, s)
	}
}

func TestRevCompInPlace(t *testing.T) {
	s := []byte("ACG") // odd length, the middle base must flip too
	RevCompInPlace(s)
	if !bytes.Equal(s, []byte("CGT")) {
		t.Fatalf("got %s wanted CGT", s)
	}
}

func TestTransitions(t *testing.T) {
	trans := [][2]byte{{'A', 'G'}, {'G', 'A'}, {'C', 'T'}, {'T', 'C'}}
	for _, p := range trans {
		if !IsTransition(p[0], p[1]) {
			t.Fatalf("%c to %c should be a transition", p[0], p[1])
		}
	}
	if IsTransition('A', 'A') {
		t.Fatal("identity is not a transition")
	}
	if IsTransition('A', 'C') || IsTransition('G', 'T') {
		t.Fatal("a transversion was called a transition")
	}
}

func TestMatch(t *testing.T) {
	if !Match('N', 'A') || !Match('R', 'G') || !Match('Y', 'c') {
		t.Fatal("compatible pairs did not match")
	}
	if Match('R', 'C') || Match('A', '-') {
		t.Fatal("incompatible pairs matched")
	}
}

func TestWellAndAmbig(t *testing.T) {
	for _, c := range []byte("ACGT") {
		if !IsWellChar(c) {
			t.Fatalf("%c should be well characterised", c)
		}
	}
	for _, c := range []byte("NRYacgt- ") {
		if IsWellChar(c) {
			t.Fatalf("%c should not be well characterised", c)
		}
	}
	if !IsAmbig('N') || !IsAmbig('R') || IsAmbig('A') || IsAmbig('-') {
		t.Fatal("ambiguity codes misclassified")
	}
}

func TestUngappedLen(t *testing.T) {
	if n := UngappedLen([]byte("A--C-T")); n != 3 {
		t.Fatalf("got %d wanted 3", n)
	}
}
