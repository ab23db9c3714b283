// 23 Mar 2024
// A substitution matrix for scoring columns of a nucleotide
// alignment. This started from the old protein matrix reader, but
// nucleotide matrices are small, so we also carry a compiled-in
// default used by the consensus caller.

package submat

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/andrew-torda/matrix"
)

// Submat is the export type. Its internals do not have to be exported.
type Submat struct {
	mat   *matrix.FMatrix2d
	cmap  [128]int8
	alfbt []byte // the characters, in matrix row order
}

const notset int8 = -1

// Alphabet returns the symbols the matrix knows about, in row order.
func (submat *Submat) Alphabet() []byte { return submat.alfbt }

// Knows says whether a character has a row in the matrix.
func (submat *Submat) Knows(c byte) bool {
	return c < 128 && submat.cmap[c] != notset
}

// Score returns the similarity score of bytes a and b, given
// a specific scoring matrix. Characters the matrix has never heard
// of are scored as 'N'.
func (submat *Submat) Score(a, b byte) float32 {
	i := submat.ndx(a)
	j := submat.ndx(b)
	return submat.mat.Mat[i][j]
}

func (submat *Submat) ndx(c byte) int8 {
	if c < 128 {
		if i := submat.cmap[c]; i != notset {
			return i
		}
	}
	if i := submat.cmap['N']; i != notset {
		return i
	}
	return 0 // a matrix with no N row, score against its first entry
}

// String prints out a substitution matrix. Useful during debugging.
func (submat *Submat) String() (s string) {
	s = fmt.Sprintf("%4s", " ")
	for _, c := range submat.alfbt {
		s += fmt.Sprintf("%6s", string(c))
	}
	s += "\n"
	for _, c := range submat.alfbt {
		s += fmt.Sprintf("%4s", string(c))
		for _, d := range submat.alfbt {
			s += fmt.Sprintf("%6.1f", submat.Score(c, d))
		}
		s += "\n"
	}
	return s
}

// New builds a matrix from an alphabet and a full score table given
// row by row. It is mostly here so tests and the compiled-in default
// do not have to go via a file.
func New(alfbt []byte, scores [][]float32) (*Submat, error) {
	n := len(alfbt)
	if n == 0 || len(scores) != n {
		return nil, errors.New("submat.New: alphabet and table sizes do not agree")
	}
	submat := new(Submat)
	for i := range submat.cmap {
		submat.cmap[i] = notset
	}
	submat.alfbt = append([]byte(nil), alfbt...)
	submat.mat = matrix.NewFMatrix2d(n, n)
	for i, row := range scores {
		if len(row) != n {
			return nil, fmt.Errorf("submat.New: row %d has %d entries, wanted %d", i, len(row), n)
		}
		copy(submat.mat.Mat[i], row)
	}
	for i, c := range submat.alfbt {
		if c >= 128 {
			return nil, errors.New("submat.New: non-ascii character in alphabet")
		}
		submat.cmap[c] = int8(i)
		l := bytes.ToLower([]byte{c})[0] // set upper and lower case,
		u := bytes.ToUpper([]byte{c})[0] // whichever was not given
		if submat.cmap[l] == notset {
			submat.cmap[l] = int8(i)
		}
		if submat.cmap[u] == notset {
			submat.cmap[u] = int8(i)
		}
	}
	return submat, nil
}

// Default scores for calling a nucleotide consensus. Transitions are
// punished less than transversions, N is indifferent to everything and
// a column full of gaps should end up as a gap.
const (
	dfltMatch      = 10
	dfltTransition = -2
	dfltTransvrsn  = -6
	dfltGapGap     = 3
	dfltGapBase    = -6
)

// NewDNAConsensus returns the compiled-in nucleotide matrix over
// "ACGTN-". This is the default used by the consensus caller and the
// column scorer when the caller does not read one from a file.
func NewDNAConsensus() *Submat {
	alfbt := []byte("ACGTN-")
	const m, ts, tv, gg, gb = dfltMatch, dfltTransition, dfltTransvrsn, dfltGapGap, dfltGapBase
	scores := [][]float32{
		//        A   C   G   T  N   -
		{m, tv, ts, tv, 0, gb},   // A
		{tv, m, tv, ts, 0, gb},   // C
		{ts, tv, m, tv, 0, gb},   // G
		{tv, ts, tv, m, 0, gb},   // T
		{0, 0, 0, 0, 0, gb},      // N
		{gb, gb, gb, gb, gb, gg}, // -
	}
	submat, err := New(alfbt, scores)
	if err != nil { // cannot happen with the tables above
		panic("program bug " + err.Error())
	}
	return submat
}

// CmmtScanner is a wrapper around bufio.Scanner that will ignore
// anything after a comment character and remove leading and trailing
// white space.
type CmmtScanner struct {
	bufio.Scanner
	cmmt byte // Comment character
}

// NewCmmtScanner is a wrapper around scanner, but
//   - jumps over blank lines
//   - removes leading spaces
//   - removes anything after a comment character
func NewCmmtScanner(r io.Reader, cmmt byte) *CmmtScanner {
	s := bufio.NewScanner(r)
	return &CmmtScanner{*s, cmmt}
}

// CBytes presents exactly the same interface as scanner.Bytes, but
// has to do a bit more work. Before returning, we remove anything
// after the comment symbol and strip white space. If this leaves us
// with an empty string, we call Scan again.
func (s *CmmtScanner) CBytes() []byte {
	ok := true
	for b := s.Bytes(); ok; ok, b = s.Scan(), s.Bytes() {
		for i := 0; i < len(b); i++ {
			if b[i] == s.cmmt {
				b = b[:i]
				break
			}
		}
		b = bytes.TrimSpace(b)
		if len(b) > 0 {
			return b
		}
	}
	return nil
}

// The first non-comment line of the substitution matrix file contains
// a list of the allowed characters. Each field has to be one character
// long.
func alfbtLine(inline []byte) (alfbt []byte, err error) {
	f := bytes.Fields(inline)
	for _, c := range f {
		if len(c) != 1 {
			return nil, errors.New("alfbt line: expected a single character, got " + string(c))
		}
		if c[0] >= 128 {
			return nil, errors.New("alfbt line: saw a non-ascii character in " + string(inline))
		}
		alfbt = append(alfbt, c[0])
	}
	return alfbt, nil
}

// ReadFrom reads a substitution matrix in the usual text format from
// an io.Reader. Lines after the alphabet line hold the row character
// followed by one score per alphabet entry. The matrix is stored
// symmetrically.
func ReadFrom(r io.Reader) (*Submat, error) {
	scnr := NewCmmtScanner(r, '#')
	scnr.Scan()
	alfbt, err := alfbtLine(scnr.CBytes())
	if err != nil {
		return nil, err
	}
	n := len(alfbt)
	scores := make([][]float32, n)
	for i := range scores {
		scores[i] = make([]float32, n)
	}
	rowOf := make(map[byte]int, n)
	for i, c := range alfbt {
		rowOf[c] = i
	}
	nc := 0
	for scnr.Scan() {
		line := scnr.CBytes()
		if line == nil {
			break
		}
		fields := bytes.Fields(line)
		if len(fields) != n+1 {
			return nil, errors.New("wrong number of items on line: " + string(line))
		}
		i, ok := rowOf[fields[0][0]]
		if !ok {
			return nil, errors.New("row character not in alphabet on line: " + string(line))
		}
		for j := 0; j < n; j++ {
			f, e := strconv.ParseFloat(string(fields[j+1]), 32)
			if e != nil {
				return nil, e
			}
			scores[i][j], scores[j][i] = float32(f), float32(f)
		}
		nc++
	}
	if err := scnr.Err(); err != nil {
		return nil, err
	}
	if nc != n {
		return nil, errors.New("not enough matrix lines found")
	}
	return New(alfbt, scores)
}

// Read will read a substitution matrix from a filename.
func Read(fname string) (*Submat, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	submat, err := ReadFrom(fp)
	if err != nil {
		return nil, fmt.Errorf("reading from %s: %w", fname, err)
	}
	return submat, nil
}
