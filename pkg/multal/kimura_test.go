// 7 May 2024

package multal_test

import (
	"errors"
	"math"
	"testing"

	. "github.com/andrew-torda/multal/pkg/multal"
)

const divTol = 1e-4

// oneSeqAln puts a single member under a reference of the same width.
func oneSeqAln(t *testing.T, ref, member string) *MultAln {
	t.Helper()
	tuples := []SeedTuple{{Name: "m", Seq: []byte(member)}}
	aln, err := ImportSeeds(tuples, &SeedOptions{
		Reference: []byte(ref), KeepEdgeGaps: true})
	if err != nil {
		t.Fatal(err)
	}
	return aln
}

func TestSimpleDivergence(t *testing.T) {
	cons := []byte("AACTCTGACC")
	aln := oneSeqAln(t, string(cons), "AACTTTGACC")
	d, err := aln.SimpleDivergence(0, cons)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(d-0.1) > divTol {
		t.Fatalf("got %g wanted 0.1", d)
	}
	s, _ := aln.Seq(0)
	if s.Div() != d {
		t.Fatalf("stored divergence %g does not match returned %g", s.Div(), d)
	}
}

func TestSimpleDivergenceNoOverlap(t *testing.T) {
	aln := oneSeqAln(t, "ACGT", "ACGT")
	d, err := aln.SimpleDivergence(0, []byte("----"))
	if err != nil {
		t.Fatal(err)
	}
	if d != 1 {
		t.Fatalf("no comparable columns got %g wanted 1", d)
	}
}

func TestKimuraDivergence(t *testing.T) {
	cons := []byte("AACTCTGACC")
	aln := oneSeqAln(t, string(cons), "AACTTTGACC")
	d, err := aln.KimuraDivergence(0, cons)
	if err != nil {
		t.Fatal(err)
	}
	want := 0.5 * math.Log(1/0.8) // p = 0.1, q = 0
	if math.Abs(d-want) > divTol {
		t.Fatalf("got %g wanted %g", d, want)
	}
	s, _ := aln.Seq(0)
	if s.Transitions() != 1 || s.Transversions() != 0 {
		t.Fatalf("got %d transitions %d transversions wanted 1 and 0",
			s.Transitions(), s.Transversions())
	}
}

func TestKimuraClamp(t *testing.T) {
	aln := oneSeqAln(t, "CCCC", "AAAA")
	d, err := aln.KimuraDivergence(0, []byte("CCCC"))
	if err != nil {
		t.Fatal(err)
	}
	if d != 1 {
		t.Fatalf("all transversions got %g wanted the clamp at 1", d)
	}
}

func TestKimuraMissingCons(t *testing.T) {
	aln := oneSeqAln(t, "ACGT", "ACGT")
	if _, err := aln.SimpleDivergence(0, nil); !errors.Is(err, ErrMissingParameter) {
		t.Fatal("nil consensus got", err)
	}
	if _, err := aln.KimuraDivergence(0, nil); !errors.Is(err, ErrMissingParameter) {
		t.Fatal("nil consensus got", err)
	}
	if _, err := aln.KimuraCpG(0, nil); !errors.Is(err, ErrMissingParameter) {
		t.Fatal("nil consensus got", err)
	}
}

// The folding rules at a consensus CG site. A transition on the C
// alone is worth a tenth, on the G alone a whole count, and on both
// the pair folds to one.
func TestKimuraCpGFolding(t *testing.T) {
	cons := []byte("CGT")
	cases := []struct {
		member string
		transI int
		folded float64
	}{
		{"CGT", 0, 0},
		{"TGT", 1, 0.1},
		{"CAT", 1, 1},
		{"TAT", 2, 1},
	}
	for _, c := range cases {
		aln := oneSeqAln(t, string(cons), c.member)
		rep, err := aln.KimuraCpG(0, cons)
		if err != nil {
			t.Fatal(err)
		}
		if rep.Transitions != c.transI {
			t.Fatalf("%s got %d transitions wanted %d", c.member, rep.Transitions, c.transI)
		}
		if math.Abs(rep.FoldedTransitions-c.folded) > divTol {
			t.Fatalf("%s got %g folded wanted %g", c.member, rep.FoldedTransitions, c.folded)
		}
		if rep.CpGSites != 1 || rep.WellCharBases != 3 || rep.Transversions != 0 {
			t.Fatalf("%s got %d sites %d bases %d transversions",
				c.member, rep.CpGSites, rep.WellCharBases, rep.Transversions)
		}
	}
}

func TestKimuraCpGValues(t *testing.T) {
	cons := []byte("CGT")
	aln := oneSeqAln(t, string(cons), "TGT")
	rep, err := aln.KimuraCpG(0, cons)
	if err != nil {
		t.Fatal(err)
	}
	raw := 100 * 0.5 * math.Log(3)           // p = 1/3
	adj := 100 * 0.5 * math.Log(1/(1-0.2/3)) // p = 0.1/3
	if math.Abs(rep.RawKimura-raw) > 1e-3 {
		t.Fatalf("raw got %g wanted %g", rep.RawKimura, raw)
	}
	if math.Abs(rep.AdjKimura-adj) > 1e-3 {
		t.Fatalf("adjusted got %g wanted %g", rep.AdjKimura, adj)
	}
}

func TestKimuraCpGSentinel(t *testing.T) {
	aln := oneSeqAln(t, "CGT", "NNN")
	rep, err := aln.KimuraCpG(0, []byte("CGT"))
	if err != nil {
		t.Fatal(err)
	}
	if rep.RawKimura != 100 || rep.AdjKimura != 100 {
		t.Fatalf("no usable bases got %g / %g wanted the 100 sentinel",
			rep.RawKimura, rep.AdjKimura)
	}
}

func TestGCBackground(t *testing.T) {
	aln := oneSeqAln(t, "GGCCAT--", "GGCCAT--")
	f, err := aln.GCBackground(0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f-4.0/6.0) > divTol {
		t.Fatalf("got %g wanted %g", f, 4.0/6.0)
	}
}
