// 11 Apr 2024

// Package seqid parses and writes the sequence identifiers used when
// talking to stockholm style tools. The grammar is
//
//	assemblyName:sequenceName:start-end[_+|_-]
//	sequenceName:start-end
//
// Coordinates are 1-based. If there is no orientation suffix, then
// start bigger than end means the reverse strand. We always store
// start <= end and keep the strand in Reverse.
package seqid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrParse is wrapped into every parse failure.
var ErrParse = errors.New("malformed sequence identifier")

// ID is a parsed identifier. Assembly may be empty.
type ID struct {
	Assembly string
	Name     string
	Start    int
	End      int
	Reverse  bool
}

// parseRange handles "start-end" and tells us if the coordinates
// were given backwards.
func parseRange(s string) (start, end int, swapped bool, err error) {
	dash := strings.IndexByte(s, '-')
	if dash <= 0 || dash == len(s)-1 {
		return 0, 0, false, fmt.Errorf("range \"%s\": %w", s, ErrParse)
	}
	if start, err = strconv.Atoi(s[:dash]); err != nil {
		return 0, 0, false, fmt.Errorf("range \"%s\": %w", s, ErrParse)
	}
	if end, err = strconv.Atoi(s[dash+1:]); err != nil {
		return 0, 0, false, fmt.Errorf("range \"%s\": %w", s, ErrParse)
	}
	if start > end {
		start, end, swapped = end, start, true
	}
	if start < 1 {
		return 0, 0, false, fmt.Errorf("range \"%s\" not 1-based: %w", s, ErrParse)
	}
	return start, end, swapped, nil
}

// Parse turns an identifier string into an ID.
func Parse(s string) (ID, error) {
	var id ID
	t := s
	switch {
	case strings.HasSuffix(t, "_+"):
		t = t[:len(t)-2]
	case strings.HasSuffix(t, "_-"):
		t = t[:len(t)-2]
		id.Reverse = true
		// with an explicit suffix the range must not be backwards,
		// but we are forgiving and just normalise below anyway
	}
	hadSuffix := len(t) != len(s)

	parts := strings.Split(t, ":")
	var rng string
	switch len(parts) {
	case 2:
		id.Name, rng = parts[0], parts[1]
	case 3:
		id.Assembly, id.Name, rng = parts[0], parts[1], parts[2]
	default:
		return ID{}, fmt.Errorf("\"%s\" has %d fields: %w", s, len(parts), ErrParse)
	}
	if id.Name == "" {
		return ID{}, fmt.Errorf("\"%s\" has an empty sequence name: %w", s, ErrParse)
	}
	start, end, swapped, err := parseRange(rng)
	if err != nil {
		return ID{}, err
	}
	id.Start, id.End = start, end
	if !hadSuffix && swapped {
		id.Reverse = true
	}
	return id, nil
}

// TryParse is Parse, except failure just says no instead of an error.
// The seed importer uses it to sniff names like "chr1:100-200".
func TryParse(s string) (ID, bool) {
	id, err := Parse(s)
	return id, err == nil
}

// String writes the canonical form with an explicit strand suffix.
func (id ID) String() string {
	strand := "_+"
	if id.Reverse {
		strand = "_-"
	}
	if id.Assembly != "" {
		return fmt.Sprintf("%s:%s:%d-%d%s", id.Assembly, id.Name, id.Start, id.End, strand)
	}
	return fmt.Sprintf("%s:%d-%d%s", id.Name, id.Start, id.End, strand)
}
