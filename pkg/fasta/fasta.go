// 28 May 2024

// Package fasta reads aligned fasta files into the seed tuples the
// alignment importer wants. It is deliberately small. Gaps, both "-"
// and ".", are kept, since the whole point of reading an alignment
// is the columns. White space inside sequences is thrown away.
package fasta

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andrew-torda/multal/pkg/multal"
)

const cmmtChar byte = '>'

// Read reads aligned fasta from an io.Reader. The name of each
// tuple is the first word of its comment line, which is where the
// id:start-end convention lives if anybody used it.
func Read(rdr io.Reader) ([]multal.SeedTuple, error) {
	scnr := bufio.NewScanner(rdr)
	scnr.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var tuples []multal.SeedTuple
	var cur *multal.SeedTuple
	first := true
	for scnr.Scan() {
		line := scnr.Bytes()
		if first {
			trimmed := bytes.TrimSpace(line)
			if len(trimmed) == 0 {
				continue
			}
			if trimmed[0] != cmmtChar {
				return nil, errors.New("first line is not a fasta comment")
			}
			first = false
		}
		if len(line) > 0 && line[0] == cmmtChar {
			cmmt := strings.TrimSpace(string(line[1:]))
			name := cmmt
			if f := strings.Fields(cmmt); len(f) > 0 {
				name = f[0]
			}
			tuples = append(tuples, multal.SeedTuple{Name: name})
			cur = &tuples[len(tuples)-1]
			continue
		}
		if cur == nil {
			continue
		}
		for _, c := range line {
			switch c {
			case ' ', '\t', '\r':
			default:
				cur.Seq = append(cur.Seq, c)
			}
		}
	}
	if err := scnr.Err(); err != nil {
		return nil, err
	}
	if len(tuples) == 0 {
		return nil, errors.New("no sequences found")
	}
	for i := range tuples {
		if len(tuples[i].Seq) == 0 {
			return nil, fmt.Errorf("zero length sequence after %s", tuples[i].Name)
		}
	}
	return tuples, nil
}

// ReadFile is Read on a named file, or standard input for "".
func ReadFile(fname string) ([]multal.SeedTuple, error) {
	var fp io.ReadCloser = os.Stdin
	if fname != "" {
		var err error
		if fp, err = os.Open(fname); err != nil {
			return nil, err
		}
		defer fp.Close()
	}
	tuples, err := Read(fp)
	if err != nil && fname != "" {
		return nil, fmt.Errorf("file %s: %w", fname, err)
	}
	return tuples, err
}

// Write puts an alignment back out as aligned fasta, reference
// first. Mostly used for eyeballing results.
func Write(w io.Writer, aln *multal.MultAln) error {
	const perLine = 60
	wrt := func(name string, s []byte) error {
		if _, err := fmt.Fprintf(w, "%c%s\n", cmmtChar, name); err != nil {
			return err
		}
		for ; len(s) > perLine; s = s[perLine:] {
			if _, err := fmt.Fprintf(w, "%s\n", s[:perLine]); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%s\n", s)
		return err
	}
	if err := wrt(aln.Ref().Name(), aln.Ref().Seq()); err != nil {
		return err
	}
	width := aln.GappedRefLen()
	for i := 0; i < aln.NSeq(); i++ {
		s, err := aln.Seq(i)
		if err != nil {
			return err
		}
		padded := make([]byte, 0, width)
		for j := 0; j < s.AlignStart(); j++ {
			padded = append(padded, '-')
		}
		padded = append(padded, s.Seq()...)
		for len(padded) < width {
			padded = append(padded, '-')
		}
		if err := wrt(s.Name(), padded); err != nil {
			return err
		}
	}
	return nil
}
