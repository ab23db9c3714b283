// 9 Apr 2024

// Package seqdb serves substrings of sequences by name. The builder
// uses it to fetch flanking bases around each aligned member. The
// interface is tiny so a caller can plug in whatever database they
// have. The implementation here memory maps a fasta file and indexes
// it once, so repeated little lookups do not reread anything.
package seqdb

import (
	"bytes"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// SeqDB is what the builder wants from a sequence database.
// Substr uses 1-based start coordinates, matching the coordinates
// stored in the alignment.
type SeqDB interface {
	SeqLength(id string) (int, error)
	Substr(id string, start, length int) ([]byte, error)
}

// rec is one fasta record. Line breaks inside the sequence force us
// to keep a cleaned copy, but only for records somebody asked about.
type rec struct {
	body    []byte // raw bytes in the mapping, newlines included
	cleaned []byte // lazily built, no white space
}

// FastaDB is a SeqDB over one memory mapped fasta file.
type FastaDB struct {
	fp   *os.File
	mm   mmap.MMap
	recs map[string]*rec
}

// OpenFasta maps a fasta file and builds the name index. The name of
// a record is the first word of its comment line.
func OpenFasta(fname string) (*FastaDB, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	mm, err := mmap.Map(fp, mmap.RDONLY, 0)
	if err != nil {
		fp.Close()
		return nil, err
	}
	db := &FastaDB{fp: fp, mm: mm, recs: make(map[string]*rec)}
	if err := db.index(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Close unmaps the file. Substrings handed out earlier point into the
// mapping only if they were copied, which Substr always does, so they
// stay valid.
func (db *FastaDB) Close() error {
	if db.mm != nil {
		if err := db.mm.Unmap(); err != nil {
			return err
		}
		db.mm = nil
	}
	if db.fp != nil {
		err := db.fp.Close()
		db.fp = nil
		return err
	}
	return nil
}

func (db *FastaDB) index() error {
	b := db.mm
	if len(b) == 0 || b[0] != '>' {
		return fmt.Errorf("fasta file does not start with a comment line")
	}
	for len(b) > 0 { // b always starts at a '>' here
		nl := bytes.IndexByte(b, '\n')
		if nl < 0 {
			return fmt.Errorf("fasta record with no sequence after comment")
		}
		cmmt := bytes.TrimSpace(b[1:nl])
		f := bytes.Fields(cmmt)
		if len(f) == 0 {
			return fmt.Errorf("fasta record with an empty name")
		}
		name := string(f[0])
		rest := b[nl+1:]
		end := bytes.IndexByte(rest, '>')
		if end < 0 {
			end = len(rest)
		}
		db.recs[name] = &rec{body: rest[:end]}
		b = rest[end:]
	}
	return nil
}

// clean builds the whitespace-free copy of a record, once.
func (r *rec) clean() []byte {
	if r.cleaned != nil {
		return r.cleaned
	}
	n := 0
	for _, c := range r.body {
		if c != '\n' && c != '\r' && c != ' ' && c != '\t' {
			n++
		}
	}
	r.cleaned = make([]byte, 0, n)
	for _, c := range r.body {
		if c != '\n' && c != '\r' && c != ' ' && c != '\t' {
			r.cleaned = append(r.cleaned, c)
		}
	}
	return r.cleaned
}

func (db *FastaDB) get(id string) (*rec, error) {
	r, ok := db.recs[id]
	if !ok {
		return nil, fmt.Errorf("sequence \"%s\" not in database", id)
	}
	return r, nil
}

// SeqLength returns the number of bases in a record.
func (db *FastaDB) SeqLength(id string) (int, error) {
	r, err := db.get(id)
	if err != nil {
		return 0, err
	}
	return len(r.clean()), nil
}

// Substr returns length bases starting at the 1-based position start.
// Requests beyond the ends of the record are clipped, not errors. The
// result is a copy, safe to keep after Close.
func (db *FastaDB) Substr(id string, start, length int) ([]byte, error) {
	r, err := db.get(id)
	if err != nil {
		return nil, err
	}
	s := r.clean()
	if start < 1 {
		length += start - 1
		start = 1
	}
	if start > len(s) || length <= 0 {
		return nil, nil
	}
	end := start - 1 + length
	if end > len(s) {
		end = len(s)
	}
	return append([]byte(nil), s[start-1:end]...), nil
}
