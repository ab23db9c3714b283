// 12 Jun 2024

package randaln_test

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/andrew-torda/multal/pkg/randaln"
)

func TestRandAln(t *testing.T) {
	var buf bytes.Buffer
	args := RandAlnArgs{Iseed: 1637, Wrtr: &buf, Cmmt: "t", Nseq: 5, Len: 40}
	if err := RandAlnMain(&args); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d lines wanted 10", len(lines))
	}
	for i, l := range lines {
		if i%2 == 0 {
			if !strings.HasPrefix(l, ">") {
				t.Fatalf("line %d is not a comment: %s", i, l)
			}
			continue
		}
		if len(l) != 40 {
			t.Fatalf("sequence of %d columns wanted 40: %s", len(l), l)
		}
		if strings.Trim(l, "ACGT-") != "" {
			t.Fatalf("funny characters in sequence %s", l)
		}
	}
}

func TestRandAlnDeterministic(t *testing.T) {
	var b1, b2 bytes.Buffer
	a1 := RandAlnArgs{Iseed: 7, Wrtr: &b1, Cmmt: "t", Nseq: 3, Len: 20}
	a2 := RandAlnArgs{Iseed: 7, Wrtr: &b2, Cmmt: "t", Nseq: 3, Len: 20}
	if err := RandAlnMain(&a1); err != nil {
		t.Fatal(err)
	}
	if err := RandAlnMain(&a2); err != nil {
		t.Fatal(err)
	}
	if b1.String() != b2.String() {
		t.Fatal("the same seed gave different alignments")
	}
}

func TestRandAlnNoGap(t *testing.T) {
	var buf bytes.Buffer
	args := RandAlnArgs{Iseed: 3, Wrtr: &buf, Cmmt: "t", Nseq: 4, Len: 200, NoGap: true}
	if err := RandAlnMain(&args); err != nil {
		t.Fatal(err)
	}
	if strings.ContainsRune(buf.String(), '-') {
		t.Fatal("NoGap output has gaps")
	}
}

func TestRandAlnArgsChecks(t *testing.T) {
	if err := RandAlnMain(&RandAlnArgs{}); err == nil {
		t.Fatal("no writer was accepted")
	}
	var buf bytes.Buffer
	if err := RandAlnMain(&RandAlnArgs{Wrtr: &buf}); err == nil {
		t.Fatal("zero sequences were accepted")
	}
}
