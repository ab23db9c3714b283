// 16 Mar 2024

// Package dna has the little byte tables one always ends up needing
// for nucleotide sequences. Complementing, IUPAC ambiguity codes and
// deciding if a substitution is a transition or a transversion.
// Everything works on single bytes. Sequences here are ascii, one
// byte per base, so there is no rune handling.
package dna

import (
	. "github.com/andrew-torda/multal/pkg/multal/common"
)

var comp [256]byte

const (
	maskA = 1 << iota
	maskC
	maskG
	maskT
)

// iupac maps a base or ambiguity code to a four bit mask,
// so 'R' (a or g) is maskA|maskG and so on.
var iupac [256]byte

var upper [256]byte

func init() {
	pairs := []struct{ a, b byte }{
		{'A', 'T'}, {'C', 'G'}, {'R', 'Y'}, {'K', 'M'},
		{'B', 'V'}, {'D', 'H'},
	}
	for _, p := range pairs {
		comp[p.a], comp[p.b] = p.b, p.a
	}
	for _, c := range []byte{'S', 'W', 'N', 'X'} { // their own complement
		comp[c] = c
	}
	comp[GapChar] = GapChar
	comp[BlankChar] = BlankChar
	for c := byte('A'); c <= 'Z'; c++ { // lower case complements to
		if comp[c] != 0 { //              lower case
			comp[c+'a'-'A'] = comp[c] + 'a' - 'A'
		}
	}

	iupac['A'] = maskA
	iupac['C'] = maskC
	iupac['G'] = maskG
	iupac['T'] = maskT
	iupac['U'] = maskT
	iupac['R'] = maskA | maskG
	iupac['Y'] = maskC | maskT
	iupac['S'] = maskC | maskG
	iupac['W'] = maskA | maskT
	iupac['K'] = maskG | maskT
	iupac['M'] = maskA | maskC
	iupac['B'] = maskC | maskG | maskT
	iupac['D'] = maskA | maskG | maskT
	iupac['H'] = maskA | maskC | maskT
	iupac['V'] = maskA | maskC | maskG
	iupac['N'] = maskA | maskC | maskG | maskT
	for c := byte('A'); c <= 'Z'; c++ {
		iupac[c+'a'-'A'] = iupac[c]
	}

	for c := byte('a'); c <= 'z'; c++ {
		upper[c] = c - 'a' + 'A'
	}
	for i := range upper {
		if upper[i] == 0 {
			upper[i] = byte(i)
		}
	}
}

// Comp returns the complement of one base. Ambiguity codes map to
// their ambiguous complements. Anything we do not recognise becomes
// an 'N', except gaps and blanks which are their own complement.
func Comp(c byte) byte {
	if r := comp[c]; r != 0 {
		return r
	}
	return 'N'
}

// Upper returns the upper case version of a base without looking
// at the whole unicode business.
func Upper(c byte) byte { return upper[c] }

// RevComp returns a newly allocated reverse complement of s.
func RevComp(s []byte) []byte {
	if len(s) == 0 {
		return nil
	}
	t := make([]byte, len(s))
	for i, n := 0, len(s); i < n; i++ {
		t[i] = Comp(s[n-1-i])
	}
	return t
}

// RevCompInPlace does what it says, without allocating.
func RevCompInPlace(s []byte) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = Comp(s[j]), Comp(s[i])
	}
	if len(s)%2 == 1 {
		m := len(s) / 2
		s[m] = Comp(s[m])
	}
}

// IsWellChar says whether a byte is one of the four unambiguous
// upper case bases. The divergence calculations only trust these.
func IsWellChar(c byte) bool {
	switch c {
	case 'A', 'C', 'G', 'T':
		return true
	}
	return false
}

// IsAmbig is true for IUPAC codes that are not a single base.
// Gaps are not ambiguity codes.
func IsAmbig(c byte) bool {
	m := iupac[c]
	return m != 0 && m != maskA && m != maskC && m != maskG && m != maskT
}

// Match says whether two symbols are compatible under IUPAC rules,
// that is, their base sets overlap.
func Match(a, b byte) bool { return iupac[a]&iupac[b] != 0 }

// IsTransition reports whether a substitution between two
// well-characterised bases is a transition (purine to purine or
// pyrimidine to pyrimidine). Identical bases are not a transition.
func IsTransition(a, b byte) bool {
	if a == b {
		return false
	}
	pur := func(c byte) bool { return c == 'A' || c == 'G' }
	pyr := func(c byte) bool { return c == 'C' || c == 'T' }
	return (pur(a) && pur(b)) || (pyr(a) && pyr(b))
}

// UngappedLen counts the non-gap bytes in a gapped sequence.
func UngappedLen(s []byte) (n int) {
	for _, c := range s {
		if c != GapChar {
			n++
		}
	}
	return n
}
